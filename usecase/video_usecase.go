package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/shopspring/decimal"
	"subtitle-credit/domain/apperror"
	"subtitle-credit/domain/dto"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

const defaultDispatchMessage = "Video job accepted and processing started"

type IVideoUsecase interface {
	Estimate(ctx context.Context, identity model.Identity, req dto.ReqEstimate) (dto.ResEstimate, error)
	Accept(ctx context.Context, identity model.Identity, token string) (dto.ResAccept, error)
	ListJobs(ctx context.Context, identity model.Identity, status string) ([]dto.JobSummary, error)
	GetJob(ctx context.Context, identity model.Identity, jobID string) (model.VideoJob, error)
	// CompleteJob applies the processor's final verdict for a job.
	CompleteJob(ctx context.Context, jobID string, req dto.ReqJobCallback) error
}

type IJobIDs interface {
	Next(ctx context.Context) (string, error)
}

type VideoConfig struct {
	TokenTTL            time.Duration
	InfoTimeout         time.Duration
	DispatchTimeout     time.Duration
	CompensationTimeout time.Duration
}

func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		TokenTTL:            MaxEstimateTTL,
		InfoTimeout:         15 * time.Second,
		DispatchTimeout:     30 * time.Second,
		CompensationTimeout: 10 * time.Second,
	}
}

type videoUsecase struct {
	cfg        VideoConfig
	pricing    IPricing
	codec      ITokenCodec
	jobIDs     IJobIDs
	videoInfo  repository.IVideoInfo
	dispatcher repository.ISubtitleDispatcher
	ledger     repository.ICreditLedger
	jobs       repository.IVideoJob
	events     repository.IEventPublisher
}

func NewVideoUsecase(
	cfg VideoConfig,
	pricing IPricing,
	codec ITokenCodec,
	jobIDs IJobIDs,
	videoInfo repository.IVideoInfo,
	dispatcher repository.ISubtitleDispatcher,
	ledger repository.ICreditLedger,
	jobs repository.IVideoJob,
	events repository.IEventPublisher,
) IVideoUsecase {
	return &videoUsecase{
		cfg:        cfg,
		pricing:    pricing,
		codec:      codec,
		jobIDs:     jobIDs,
		videoInfo:  videoInfo,
		dispatcher: dispatcher,
		ledger:     ledger,
		jobs:       jobs,
		events:     events,
	}
}

func (u *videoUsecase) Estimate(ctx context.Context, identity model.Identity, req dto.ReqEstimate) (dto.ResEstimate, error) {
	if !req.SubtitleType.Valid() {
		return dto.ResEstimate{}, apperror.Validation("subtitle_type must be one of: srt, merge")
	}

	infoCtx, cancel := context.WithTimeout(ctx, u.cfg.InfoTimeout)
	info, err := u.videoInfo.GetVideoInfo(infoCtx, req.VideoURL)
	cancel()
	if err != nil {
		logger.FromContext(ctx).WithField("error", err).WithField("video_url", req.VideoURL).Warn("Video metadata lookup failed")
		return dto.ResEstimate{}, apperror.Validation("could not retrieve video metadata")
	}

	sizeMB := BytesToMB(info.SizeBytes)
	minutes := SecondsToMinutes(info.DurationSeconds)
	if minutes <= 0 {
		return dto.ResEstimate{}, apperror.Validation("video duration must be greater than zero")
	}

	opts := req.CustomizationOptions
	if !opts.HasCustomization() {
		opts = nil
	}
	hasTranslation := req.TranslationLanguage != ""
	cost := u.pricing.Price(minutes, req.SubtitleType, hasTranslation, opts.HasCustomization())

	jobID, err := u.jobIDs.Next(ctx)
	if err != nil {
		return dto.ResEstimate{}, apperror.Upstream("could not allocate job id", err)
	}

	claims := model.EstimateClaims{
		UserID:              identity.UserID,
		VideoURL:            req.VideoURL,
		FileName:            req.FileName,
		SizeBytes:           info.SizeBytes,
		DurationSeconds:     info.DurationSeconds,
		SubtitleType:        req.SubtitleType,
		CustomizationOpts:   opts,
		TranslationLanguage: req.TranslationLanguage,
		CreditEstimate:      cost,
		StandardClaims:      jwt.StandardClaims{Id: jobID, Subject: identity.UserID},
	}
	token, expiresAt, err := u.codec.Mint(claims, u.cfg.TokenTTL)
	if err != nil {
		return dto.ResEstimate{}, apperror.Internal(err)
	}

	return dto.ResEstimate{
		CreditEstimate:    cost,
		EstimateBreakdown: breakdown(sizeMB, minutes, req.SubtitleType, req.TranslationLanguage, opts, cost),
		Token:             token,
		ExpiresAt:         expiresAt,
	}, nil
}

func breakdown(sizeMB, minutes float64, subtitleType model.SubtitleType, language string, opts *model.SubtitleOptions, total decimal.Decimal) model.EstimateBreakdown {
	b := model.EstimateBreakdown{
		BaseCost: model.BaseCost{
			FileSizeMB:      sizeMB,
			DurationMinutes: minutes,
			Description:     fmt.Sprintf("Video of %v MB and %v minutes", sizeMB, minutes),
		},
		SubtitleType: model.SubtitleTypeCost{
			Type:        subtitleType,
			Description: subtitleType.Description(),
		},
		TotalCredits: total,
	}
	if language != "" {
		b.Translation = &model.TranslationCost{
			Language:    language,
			Description: "Translation to " + language,
		}
	}
	if opts.HasCustomization() {
		b.Customizations = &model.CustomizationDetail{
			Options:     opts,
			Description: "Custom subtitle styling applied",
		}
	}
	return b
}

func (u *videoUsecase) Accept(ctx context.Context, identity model.Identity, token string) (dto.ResAccept, error) {
	claims, err := u.codec.Verify(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return dto.ResAccept{}, apperror.Unauthorized("estimate has expired, request a new estimate")
		}
		return dto.ResAccept{}, apperror.Unauthorized("invalid estimate token")
	}
	if claims.UserID != identity.UserID {
		logger.FromContext(ctx).WithFields(map[string]interface{}{
			"token_user": claims.UserID,
			"caller":     identity.UserID,
			"job_id":     claims.JobID(),
		}).Warn("Estimate token presented by another user")
		return dto.ResAccept{}, apperror.TamperDetected("user mismatch, possible tampering")
	}
	if !claims.SubtitleType.Valid() || claims.JobID() == "" {
		return dto.ResAccept{}, apperror.TamperDetected("malformed estimate, possible tampering")
	}

	minutes := SecondsToMinutes(claims.DurationSeconds)
	if minutes <= 0 {
		return dto.ResAccept{}, apperror.Validation("video duration must be greater than zero")
	}
	cost := u.pricing.Price(minutes, claims.SubtitleType, claims.TranslationLanguage != "", claims.CustomizationOpts.HasCustomization())
	if !cost.Equal(claims.CreditEstimate) {
		logger.FromContext(ctx).WithFields(map[string]interface{}{
			"expected": cost.String(),
			"claimed":  claims.CreditEstimate.String(),
			"job_id":   claims.JobID(),
		}).Warn("Estimate price mismatch")
		return dto.ResAccept{}, apperror.TamperDetected("estimate mismatch, possible tampering")
	}

	jobID := claims.JobID()
	if _, err := u.jobs.GetByJobID(ctx, jobID); err == nil {
		return dto.ResAccept{}, apperror.Conflict("estimate already accepted")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return dto.ResAccept{}, apperror.Internal(err)
	}

	// The waiting row claims the job id; the unique index picks one winner per token.
	job := &model.VideoJob{
		JobID:               jobID,
		UserID:              identity.UserID,
		VideoURL:            claims.VideoURL,
		FileName:            claims.FileName,
		DurationMinutes:     minutes,
		SizeMB:              BytesToMB(claims.SizeBytes),
		SubtitleType:        claims.SubtitleType,
		TranslationLanguage: claims.TranslationLanguage,
		CustomizationOpts:   claims.CustomizationOpts,
		CreditCost:          cost,
		Status:              model.JobWaiting,
	}
	if err := u.jobs.Create(ctx, job); err != nil {
		if errors.Is(err, repository.ErrDuplicateJob) {
			return dto.ResAccept{}, apperror.Conflict("estimate already accepted")
		}
		return dto.ResAccept{}, apperror.Internal(err)
	}

	balance, err := u.ledger.Debit(ctx, identity.UserID, cost, jobID)
	if err != nil {
		u.release(ctx, jobID)
		switch {
		case errors.Is(err, repository.ErrInsufficientCredits):
			return dto.ResAccept{}, apperror.InsufficientFunds("insufficient credits, please fund your wallet")
		case errors.Is(err, repository.ErrNotFound):
			return dto.ResAccept{}, apperror.NotFound("user not found")
		}
		return dto.ResAccept{}, apperror.Internal(err)
	}

	moved, err := u.jobs.Transition(ctx, jobID, model.JobWaiting, model.JobActive, "")
	if err == nil && !moved {
		err = fmt.Errorf("job %s left waiting before activation", jobID)
	}
	if err != nil {
		u.compensate(ctx, u.acceptRollback(job, "activation failed"), job, err)
		return dto.ResAccept{}, apperror.Internal(err)
	}
	job.Status = model.JobActive
	rb := u.acceptRollback(job, "dispatch failed")

	res, err := u.dispatch(ctx, identity, job)
	if err != nil {
		logger.FromContext(ctx).WithField("error", err).WithField("job_id", jobID).Error("Subtitle dispatch failed, rolling back")
		u.compensate(ctx, rb, job, err)
		publish(ctx, u.events, model.EventJobFailed, model.JobEvent{
			JobID: jobID, UserID: identity.UserID, Status: model.JobFailed,
			CreditCost: cost, Reason: "dispatch failed", At: time.Now().UTC(),
		})
		return dto.ResAccept{}, apperror.Upstream("failed to process video job", err)
	}

	publish(ctx, u.events, model.EventJobAccepted, model.JobEvent{
		JobID: jobID, UserID: identity.UserID, Status: model.JobActive,
		CreditCost: cost, At: time.Now().UTC(),
	})

	message := res.Message
	if message == "" {
		message = defaultDispatchMessage
	}
	return dto.ResAccept{
		Message:    message,
		JobID:      jobID,
		CreditCost: cost,
		Balance:    balance,
	}, nil
}

func (u *videoUsecase) dispatch(ctx context.Context, identity model.Identity, job *model.VideoJob) (model.DispatchResult, error) {
	req := model.DispatchRequest{
		Email:        identity.Email,
		VideoURL:     job.VideoURL,
		FileName:     job.FileName,
		SubtitleMode: job.SubtitleType,
		Language:     job.TranslationLanguage,
		JobID:        job.JobID,
	}
	if job.SubtitleType == model.SubtitleMerge {
		style := job.CustomizationOpts.Resolve()
		req.SubtitleOptions = &style
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, u.cfg.DispatchTimeout)
	defer cancel()
	res, err := u.dispatcher.Dispatch(dispatchCtx, req)
	if err != nil {
		return res, err
	}
	if res.StatusCode != 200 && res.StatusCode != 201 {
		return res, fmt.Errorf("unexpected response from processing API: %d", res.StatusCode)
	}
	return res, nil
}

// acceptRollback undoes a debited job: the refund runs first, then the job is marked failed.
func (u *videoUsecase) acceptRollback(job *model.VideoJob, reason string) *rollback {
	from := job.Status
	rb := &rollback{}
	rb.Record("mark job failed", func(c context.Context) error {
		_, err := u.jobs.Transition(c, job.JobID, from, model.JobFailed, reason)
		return err
	})
	rb.Record("refund credits", u.refundStep(job.UserID, job.CreditCost, job.JobID))
	return rb
}

// release frees the job id after a debit that moved no credits, so the estimate can be retried.
func (u *videoUsecase) release(ctx context.Context, jobID string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.cfg.CompensationTimeout)
	defer cancel()
	if err := u.jobs.Release(cctx, jobID); err != nil {
		logger.FromContext(ctx).WithField("error", err).WithField("job_id", jobID).Warn("Failed to release job claim")
	}
}

func (u *videoUsecase) refundStep(userID string, amount decimal.Decimal, jobID string) func(context.Context) error {
	return func(c context.Context) error {
		_, err := u.ledger.Credit(c, userID, amount, model.LedgerRefund, jobID)
		return err
	}
}

// compensate runs rb detached from the request so a disconnecting client cannot abort a refund.
func (u *videoUsecase) compensate(ctx context.Context, rb *rollback, job *model.VideoJob, cause error) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.cfg.CompensationTimeout)
	defer cancel()
	for _, f := range rb.Compensate(cctx) {
		logger.Alert(logger.FromContext(ctx).WithFields(map[string]interface{}{
			"job_id":      job.JobID,
			"user_id":     job.UserID,
			"credit_cost": job.CreditCost.String(),
			"step":        f.Step,
			"error":       f.Err,
			"cause":       cause.Error(),
		}), "Compensation failed")
	}
}

func (u *videoUsecase) ListJobs(ctx context.Context, identity model.Identity, status string) ([]dto.JobSummary, error) {
	filter := model.JobStatus(status)
	if filter != "" && !model.ListableJobStatus(filter) {
		return nil, apperror.Validation("invalid status. valid statuses are: active, completed, failed")
	}
	jobs, err := u.jobs.ListByUser(ctx, identity.UserID, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	out := make([]dto.JobSummary, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, dto.NewJobSummary(j))
	}
	return out, nil
}

func (u *videoUsecase) GetJob(ctx context.Context, identity model.Identity, jobID string) (model.VideoJob, error) {
	job, err := u.jobs.GetByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.VideoJob{}, apperror.NotFound("video job not found")
		}
		return model.VideoJob{}, apperror.Internal(err)
	}
	if job.UserID != identity.UserID {
		return model.VideoJob{}, apperror.NotFound("video job not found")
	}
	return job, nil
}

func (u *videoUsecase) CompleteJob(ctx context.Context, jobID string, req dto.ReqJobCallback) error {
	if req.Status != model.JobCompleted && req.Status != model.JobFailed {
		return apperror.Validation("status must be one of: completed, failed")
	}
	job, err := u.jobs.GetByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("video job not found")
		}
		return apperror.Internal(err)
	}

	if req.Status == model.JobFailed {
		settled, err := u.failAndRefund(ctx, job, req.Message)
		if err != nil || !settled {
			return err
		}
	} else {
		moved, err := u.jobs.Transition(ctx, jobID, model.JobActive, model.JobCompleted, req.Message)
		if err != nil {
			return apperror.Internal(err)
		}
		if !moved {
			logger.FromContext(ctx).WithField("job_id", jobID).WithField("status", job.Status).Info("Job already settled, ignoring callback")
			return nil
		}
	}

	eventType := model.EventJobCompleted
	if req.Status == model.JobFailed {
		eventType = model.EventJobFailed
	}
	publish(ctx, u.events, eventType, model.JobEvent{
		JobID: jobID, UserID: job.UserID, Status: req.Status,
		CreditCost: job.CreditCost, Reason: req.Message, At: time.Now().UTC(),
	})
	return nil
}

// failAndRefund parks the job in refunding while the credits go back. A failed refund
// returns the job to active so the processor's retry can drive it again.
func (u *videoUsecase) failAndRefund(ctx context.Context, job model.VideoJob, reason string) (bool, error) {
	log := logger.FromContext(ctx).WithField("job_id", job.JobID)
	moved, err := u.jobs.Transition(ctx, job.JobID, model.JobActive, model.JobRefunding, reason)
	if err != nil {
		return false, apperror.Internal(err)
	}
	if !moved {
		log.WithField("status", job.Status).Info("Job already settled, ignoring callback")
		return false, nil
	}

	if _, err := u.ledger.Credit(ctx, job.UserID, job.CreditCost, model.LedgerRefund, job.JobID); err != nil {
		log.WithField("error", err).Error("Refund for failed job did not apply, releasing for retry")
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.cfg.CompensationTimeout)
		defer cancel()
		if _, rerr := u.jobs.Transition(cctx, job.JobID, model.JobRefunding, model.JobActive, ""); rerr != nil {
			logger.Alert(log.WithFields(map[string]interface{}{
				"user_id":     job.UserID,
				"credit_cost": job.CreditCost.String(),
				"error":       rerr,
			}), "Failed job stuck in refunding without refund")
		}
		return false, apperror.Internal(err)
	}

	if _, err := u.jobs.Transition(ctx, job.JobID, model.JobRefunding, model.JobFailed, reason); err != nil {
		log.WithField("error", err).Warn("Refunded job not marked failed")
	}
	return true, nil
}

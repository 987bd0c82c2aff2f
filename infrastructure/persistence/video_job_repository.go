package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

const videoJobsCollection = "video_jobs"

type videoJobDocument struct {
	JobID               string                 `bson:"job_id"`
	UserID              string                 `bson:"user_id"`
	VideoURL            string                 `bson:"video_url"`
	FileName            string                 `bson:"file_name"`
	DurationMinutes     float64                `bson:"duration_minutes"`
	SizeMB              float64                `bson:"size_mb"`
	SubtitleType        string                 `bson:"subtitle_type"`
	TranslationLanguage string                 `bson:"translation_language,omitempty"`
	CustomizationOpts   *model.SubtitleOptions `bson:"customization_options,omitempty"`
	CreditCost          bson.Decimal128        `bson:"credit_cost"`
	Status              string                 `bson:"status"`
	FailureReason       string                 `bson:"failure_reason,omitempty"`
	CreatedAt           time.Time              `bson:"created_at"`
	UpdatedAt           time.Time              `bson:"updated_at"`
}

func toVideoJobDocument(job *model.VideoJob) (videoJobDocument, error) {
	cost, err := bson.ParseDecimal128(job.CreditCost.String())
	if err != nil {
		return videoJobDocument{}, err
	}
	return videoJobDocument{
		JobID:               job.JobID,
		UserID:              job.UserID,
		VideoURL:            job.VideoURL,
		FileName:            job.FileName,
		DurationMinutes:     job.DurationMinutes,
		SizeMB:              job.SizeMB,
		SubtitleType:        string(job.SubtitleType),
		TranslationLanguage: job.TranslationLanguage,
		CustomizationOpts:   job.CustomizationOpts,
		CreditCost:          cost,
		Status:              string(job.Status),
		FailureReason:       job.FailureReason,
		CreatedAt:           job.CreatedAt,
		UpdatedAt:           job.UpdatedAt,
	}, nil
}

func (d videoJobDocument) toModel() (model.VideoJob, error) {
	cost, err := decimal.NewFromString(d.CreditCost.String())
	if err != nil {
		return model.VideoJob{}, err
	}
	return model.VideoJob{
		JobID:               d.JobID,
		UserID:              d.UserID,
		VideoURL:            d.VideoURL,
		FileName:            d.FileName,
		DurationMinutes:     d.DurationMinutes,
		SizeMB:              d.SizeMB,
		SubtitleType:        model.SubtitleType(d.SubtitleType),
		TranslationLanguage: d.TranslationLanguage,
		CustomizationOpts:   d.CustomizationOpts,
		CreditCost:          cost,
		Status:              model.JobStatus(d.Status),
		FailureReason:       d.FailureReason,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}, nil
}

// VideoJobRepository stores jobs in MongoDB. job_id carries a unique index.
type VideoJobRepository struct {
	collection *mongo.Collection
}

func NewVideoJobRepository(client *mongo.Client, database string) *VideoJobRepository {
	return &VideoJobRepository{collection: client.Database(database).Collection(videoJobsCollection)}
}

func (r *VideoJobRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "job_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *VideoJobRepository) Create(ctx context.Context, job *model.VideoJob) error {
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	doc, err := toVideoJobDocument(job)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateJob
		}
		logger.GetLogger().WithField("error", err).WithField("job_id", job.JobID).Error("Error while inserting video job")
		return err
	}
	return nil
}

func (r *VideoJobRepository) GetByJobID(ctx context.Context, jobID string) (model.VideoJob, error) {
	var doc videoJobDocument
	err := r.collection.FindOne(ctx, bson.D{{Key: "job_id", Value: jobID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.VideoJob{}, repository.ErrNotFound
	}
	if err != nil {
		return model.VideoJob{}, err
	}
	return doc.toModel()
}

func (r *VideoJobRepository) ListByUser(ctx context.Context, userID string, status model.JobStatus) ([]model.VideoJob, error) {
	filter := bson.D{{Key: "user_id", Value: userID}}
	if status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(status)})
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer func(cursor *mongo.Cursor, ctx context.Context) {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}(cursor, ctx)

	jobs := []model.VideoJob{}
	for cursor.Next(ctx) {
		var doc videoJobDocument
		if err := cursor.Decode(&doc); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding video job")
			continue
		}
		job, err := doc.toModel()
		if err != nil {
			logger.GetLogger().WithField("error", err).WithField("job_id", doc.JobID).Error("Error while converting video job")
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, cursor.Err()
}

// Transition is a compare-and-set on status, so concurrent callbacks apply once.
func (r *VideoJobRepository) Transition(ctx context.Context, jobID string, from, to model.JobStatus, reason string) (bool, error) {
	set := bson.D{
		{Key: "status", Value: string(to)},
		{Key: "updated_at", Value: time.Now().UTC()},
	}
	if reason != "" {
		set = append(set, bson.E{Key: "failure_reason", Value: reason})
	}
	res, err := r.collection.UpdateOne(ctx,
		bson.D{{Key: "job_id", Value: jobID}, {Key: "status", Value: string(from)}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}

// Release only removes waiting claims; a job that reached active is history.
func (r *VideoJobRepository) Release(ctx context.Context, jobID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.D{
		{Key: "job_id", Value: jobID},
		{Key: "status", Value: string(model.JobWaiting)},
	})
	return err
}

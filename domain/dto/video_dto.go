package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"subtitle-credit/domain/model"
)

type ReqEstimate struct {
	VideoURL             string                 `json:"video_url" binding:"required,url,video_url"`
	FileName             string                 `json:"file_name" binding:"required,file_name"`
	SubtitleType         model.SubtitleType     `json:"subtitle_type" binding:"required,oneof=srt merge"`
	CustomizationOptions *model.SubtitleOptions `json:"customization_options"`
	TranslationLanguage  string                 `json:"translation_language" binding:"translation_language"`
}

type ResEstimate struct {
	CreditEstimate    decimal.Decimal         `json:"credit_estimate"`
	EstimateBreakdown model.EstimateBreakdown `json:"estimate_breakdown"`
	Token             string                  `json:"token"`
	ExpiresAt         time.Time               `json:"expires_at"`
}

type ReqAccept struct {
	Token string `json:"token" binding:"required"`
}

type ResAccept struct {
	Message    string          `json:"message"`
	JobID      string          `json:"job_id"`
	CreditCost decimal.Decimal `json:"credit_cost"`
	Balance    decimal.Decimal `json:"balance"`
}

// ReqJobCallback is posted by the subtitle processor when a job ends.
type ReqJobCallback struct {
	Status  model.JobStatus `json:"status" binding:"required,oneof=completed failed"`
	Message string          `json:"message"`
}

type JobSummary struct {
	JobID        string             `json:"job_id"`
	SubtitleType model.SubtitleType `json:"subtitle_type"`
	Status       model.JobStatus    `json:"status"`
	CreditCost   decimal.Decimal    `json:"credit_cost"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func NewJobSummary(job model.VideoJob) JobSummary {
	return JobSummary{
		JobID:        job.JobID,
		SubtitleType: job.SubtitleType,
		Status:       job.Status,
		CreditCost:   job.CreditCost,
		CreatedAt:    job.CreatedAt,
	}
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubtitleType string

const (
	SubtitleSRT   SubtitleType = "srt"
	SubtitleMerge SubtitleType = "merge"
)

func (t SubtitleType) Valid() bool {
	return t == SubtitleSRT || t == SubtitleMerge
}

func (t SubtitleType) Description() string {
	if t == SubtitleSRT {
		return "Generating separate subtitle file (.srt)"
	}
	return "Merging subtitles with video"
}

type JobStatus string

const (
	JobWaiting   JobStatus = "waiting"
	JobActive    JobStatus = "active"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	// JobRefunding holds a failed job while its credits go back to the user.
	JobRefunding JobStatus = "refunding"
)

// ListableJobStatus reports whether s may be used as a job listing filter.
func ListableJobStatus(s JobStatus) bool {
	switch s {
	case JobActive, JobCompleted, JobFailed:
		return true
	}
	return false
}

type VideoJob struct {
	JobID               string           `json:"job_id"`
	UserID              string           `json:"user_id"`
	VideoURL            string           `json:"video_url"`
	FileName            string           `json:"file_name"`
	DurationMinutes     float64          `json:"duration_minutes"`
	SizeMB              float64          `json:"size_mb"`
	SubtitleType        SubtitleType     `json:"subtitle_type"`
	TranslationLanguage string           `json:"translation_language"`
	CustomizationOpts   *SubtitleOptions `json:"customization_options,omitempty"`
	CreditCost          decimal.Decimal  `json:"credit_cost"`
	Status              JobStatus        `json:"status"`
	FailureReason       string           `json:"failure_reason,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt"`
}

// VideoInfo is what the metadata collaborator reports for a video.
type VideoInfo struct {
	SizeBytes       int64   `json:"video_size_in_bytes"`
	DurationSeconds float64 `json:"video_duration_in_seconds"`
	Title           string  `json:"title,omitempty"`
}

// DispatchRequest is the payload handed to the subtitle processor.
type DispatchRequest struct {
	Email           string         `json:"email"`
	VideoURL        string         `json:"video_url"`
	FileName        string         `json:"file_name"`
	SubtitleMode    SubtitleType   `json:"subtitle_mode"`
	Language        string         `json:"language"`
	SubtitleOptions *SubtitleStyle `json:"subtitle_options"`
	JobID           string         `json:"job_id"`
}

type DispatchResult struct {
	StatusCode int
	Message    string
}

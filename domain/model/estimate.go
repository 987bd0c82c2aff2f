package model

import (
	"github.com/golang-jwt/jwt"
	"github.com/shopspring/decimal"
)

// EstimateClaims carries everything needed to re-price and materialize a job.
// The job id travels as the JWT id.
type EstimateClaims struct {
	UserID              string           `json:"user_id"`
	VideoURL            string           `json:"video_url"`
	FileName            string           `json:"file_name"`
	SizeBytes           int64            `json:"size_bytes"`
	DurationSeconds     float64          `json:"duration_seconds"`
	SubtitleType        SubtitleType     `json:"subtitle_type"`
	CustomizationOpts   *SubtitleOptions `json:"customization_options,omitempty"`
	TranslationLanguage string           `json:"translation_language"`
	CreditEstimate      decimal.Decimal  `json:"credit_estimate"`
	jwt.StandardClaims
}

func (c EstimateClaims) JobID() string { return c.Id }

type EstimateBreakdown struct {
	BaseCost       BaseCost             `json:"baseCost"`
	SubtitleType   SubtitleTypeCost     `json:"subtitleType"`
	Translation    *TranslationCost     `json:"translation"`
	Customizations *CustomizationDetail `json:"customizations"`
	TotalCredits   decimal.Decimal      `json:"totalCredits"`
}

type BaseCost struct {
	FileSizeMB      float64 `json:"fileSizeMB"`
	DurationMinutes float64 `json:"durationMinutes"`
	Description     string  `json:"description"`
}

type SubtitleTypeCost struct {
	Type        SubtitleType `json:"type"`
	Description string       `json:"description"`
}

type TranslationCost struct {
	Language    string `json:"language"`
	Description string `json:"description"`
}

type CustomizationDetail struct {
	Options     *SubtitleOptions `json:"options"`
	Description string           `json:"description"`
}

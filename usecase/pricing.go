package usecase

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"subtitle-credit/domain/model"
)

// PricingConfig holds the per-minute credit rates.
type PricingConfig struct {
	SrtPerMinute           decimal.Decimal
	MergePerMinute         decimal.Decimal
	TranslationPerMinute   decimal.Decimal
	CustomizationPerMinute decimal.Decimal
	MinimumCharge          decimal.Decimal
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		SrtPerMinute:           decimal.RequireFromString("1.00"),
		MergePerMinute:         decimal.RequireFromString("1.50"),
		TranslationPerMinute:   decimal.RequireFromString("0.50"),
		CustomizationPerMinute: decimal.RequireFromString("0.25"),
		MinimumCharge:          decimal.RequireFromString("1.00"),
	}
}

// ParsePricingConfig reads rates written as decimal strings, in PricingConfig field order.
func ParsePricingConfig(srt, merge, translation, customization, minimum string) (PricingConfig, error) {
	var cfg PricingConfig
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"srt", srt, &cfg.SrtPerMinute},
		{"merge", merge, &cfg.MergePerMinute},
		{"translation", translation, &cfg.TranslationPerMinute},
		{"customization", customization, &cfg.CustomizationPerMinute},
		{"minimum", minimum, &cfg.MinimumCharge},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return PricingConfig{}, fmt.Errorf("pricing %s rate %q: %w", f.name, f.raw, err)
		}
		if d.IsNegative() {
			return PricingConfig{}, fmt.Errorf("pricing %s rate %q is negative", f.name, f.raw)
		}
		*f.dst = d
	}
	if !cfg.MinimumCharge.IsPositive() {
		return PricingConfig{}, fmt.Errorf("pricing minimum charge must be positive")
	}
	return cfg, nil
}

type IPricing interface {
	Price(durationMinutes float64, subtitleType model.SubtitleType, translation, customization bool) decimal.Decimal
}

type Pricing struct {
	cfg PricingConfig
}

func NewPricing(cfg PricingConfig) *Pricing {
	return &Pricing{cfg: cfg}
}

// Price returns the credit cost of a job. Customization only affects burned-in (merge) subtitles.
func (p *Pricing) Price(durationMinutes float64, subtitleType model.SubtitleType, translation, customization bool) decimal.Decimal {
	var rate decimal.Decimal
	switch subtitleType {
	case model.SubtitleSRT:
		rate = p.cfg.SrtPerMinute
	case model.SubtitleMerge:
		rate = p.cfg.MergePerMinute
		if customization {
			rate = rate.Add(p.cfg.CustomizationPerMinute)
		}
	default:
		panic(fmt.Sprintf("pricing: unknown subtitle type %q", subtitleType))
	}
	if durationMinutes <= 0 {
		return decimal.Zero
	}
	if translation {
		rate = rate.Add(p.cfg.TranslationPerMinute)
	}
	cost := rate.Mul(decimal.NewFromFloat(durationMinutes)).Round(2)
	if cost.LessThan(p.cfg.MinimumCharge) {
		return p.cfg.MinimumCharge
	}
	return cost
}

// BytesToMB converts a byte count to megabytes rounded to 2 places.
func BytesToMB(size int64) float64 {
	return round2(float64(size) / (1024 * 1024))
}

// SecondsToMinutes converts seconds to minutes rounded to 2 places.
func SecondsToMinutes(seconds float64) float64 {
	return round2(seconds / 60)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

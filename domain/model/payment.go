package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailed
}

type Payment struct {
	ID               int64           `json:"id"`
	UserID           string          `json:"user_id"`
	Email            string          `json:"email"`
	Amount           decimal.Decimal `json:"amount"`
	CreditsPurchased decimal.Decimal `json:"credits_purchased"`
	PackageType      string          `json:"package_type"`
	PaystackRef      string          `json:"paystack_ref"`
	Status           PaymentStatus   `json:"status"`
	Channel          string          `json:"channel,omitempty"`
	CountryCode      string          `json:"country_code,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Settlement is the outcome applied to a pending payment by a successful charge.
type Settlement struct {
	Reference   string
	UserID      string
	Credits     decimal.Decimal
	Channel     string
	CountryCode string
}

type CreditPackage struct {
	Type         string          `json:"package_type"`
	Credits      int             `json:"credits"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
	ExpiryMonths int             `json:"expiry_months"`
}

var creditPackages = []CreditPackage{
	{Type: "starter", Credits: 50, Price: decimal.RequireFromString("7653.49"), Currency: "NGN", ExpiryMonths: 1},
	{Type: "growth", Credits: 110, Price: decimal.RequireFromString("15323.66"), Currency: "NGN", ExpiryMonths: 2},
	{Type: "pro", Credits: 280, Price: decimal.RequireFromString("38344.92"), Currency: "NGN", ExpiryMonths: 3},
	{Type: "ultimate", Credits: 575, Price: decimal.RequireFromString("76691.92"), Currency: "NGN", ExpiryMonths: 6},
}

func CreditPackages() []CreditPackage {
	out := make([]CreditPackage, len(creditPackages))
	copy(out, creditPackages)
	return out
}

func PackageForCredits(credits int) (CreditPackage, bool) {
	for _, p := range creditPackages {
		if p.Credits == credits {
			return p, true
		}
	}
	return CreditPackage{}, false
}

// PaystackEvent is the webhook envelope posted by Paystack.
type PaystackEvent struct {
	Event string            `json:"event"`
	Data  PaystackEventData `json:"data"`
}

type PaystackEventData struct {
	Reference     string           `json:"reference"`
	Amount        int64            `json:"amount"`
	Currency      string           `json:"currency"`
	Metadata      PaystackMetadata `json:"metadata"`
	Authorization struct {
		Channel     string `json:"channel"`
		CountryCode string `json:"country_code"`
	} `json:"authorization"`
	Customer struct {
		Email string `json:"email"`
	} `json:"customer"`
}

// PaystackMetadata keeps the raw values; Paystack echoes them back as strings or numbers.
type PaystackMetadata struct {
	Credits     interface{} `json:"credits"`
	PackageType string      `json:"package_type"`
}

// WebhookEvent is the dedup log row for inbound gateway events.
type WebhookEvent struct {
	ID          uint64 `gorm:"primaryKey"`
	Provider    string `gorm:"size:32;not null;uniqueIndex:idx_webhook_event"`
	Reference   string `gorm:"size:128;not null;uniqueIndex:idx_webhook_event"`
	Event       string `gorm:"size:64;not null;uniqueIndex:idx_webhook_event"`
	PayloadHash string `gorm:"size:128;not null"`
	ProcessedAt *time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }

package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventJobAccepted      = "job.accepted"
	EventJobCompleted     = "job.completed"
	EventJobFailed        = "job.failed"
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

type JobEvent struct {
	JobID      string          `json:"job_id"`
	UserID     string          `json:"user_id"`
	Status     JobStatus       `json:"status"`
	CreditCost decimal.Decimal `json:"credit_cost"`
	Reason     string          `json:"reason,omitempty"`
	At         time.Time       `json:"at"`
}

type PaymentEvent struct {
	Reference string          `json:"reference"`
	UserID    string          `json:"user_id"`
	Status    PaymentStatus   `json:"status"`
	Credits   decimal.Decimal `json:"credits"`
	At        time.Time       `json:"at"`
}

// Envelope is the message body written to the event bus.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

func EncodeEnvelope(eventType string, payload interface{}, at time.Time) ([]byte, error) {
	return json.Marshal(Envelope{Type: eventType, OccurredAt: at.UTC(), Data: payload})
}

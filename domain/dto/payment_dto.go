package dto

import "github.com/shopspring/decimal"

type ReqInitiatePayment struct {
	Credits int `json:"credits" binding:"required,min=1"`
}

type ResInitiatePayment struct {
	AuthorizationURL string          `json:"authorization_url"`
	AccessCode       string          `json:"access_code"`
	Reference        string          `json:"reference"`
	Amount           decimal.Decimal `json:"amount"`
	Credits          int             `json:"credits"`
	PackageType      string          `json:"package_type"`
}

type ResBalance struct {
	UserID  string          `json:"user_id"`
	Credits decimal.Decimal `json:"credits"`
}

package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/clients"
)

const DefaultBaseURL = "https://api.paystack.co"

type initializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	Currency    string   `json:"currency"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    metadata `json:"metadata"`
}

type metadata struct {
	Credits     int    `json:"credits"`
	PackageType string `json:"package_type"`
}

type initializeResponse struct {
	Status  bool                            `json:"status"`
	Message string                          `json:"message"`
	Data    repository.PaymentAuthorization `json:"data"`
}

// Client talks to the Paystack transaction API with the merchant secret key.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) repository.IPaymentGateway {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    clients.NewBearerClient(secretKey, timeout),
	}
}

func (c *Client) Initialize(ctx context.Context, in repository.PaymentInit) (repository.PaymentAuthorization, error) {
	payload, err := json.Marshal(initializeRequest{
		Email:       in.Email,
		Amount:      in.AmountKobo,
		Currency:    in.Currency,
		CallbackURL: in.CallbackURL,
		Metadata:    metadata{Credits: in.Credits, PackageType: in.PackageType},
	})
	if err != nil {
		return repository.PaymentAuthorization{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return repository.PaymentAuthorization{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return repository.PaymentAuthorization{}, fmt.Errorf("paystack initialize: %w", err)
	}
	defer res.Body.Close()

	var body initializeResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return repository.PaymentAuthorization{}, fmt.Errorf("paystack initialize: status %d: decode: %w", res.StatusCode, err)
	}
	if res.StatusCode/100 != 2 || !body.Status {
		return repository.PaymentAuthorization{}, fmt.Errorf("paystack initialize: status %d: %s", res.StatusCode, body.Message)
	}
	if body.Data.Reference == "" {
		return repository.PaymentAuthorization{}, fmt.Errorf("paystack initialize: empty reference")
	}
	return body.Data, nil
}

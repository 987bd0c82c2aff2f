package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"subtitle-credit/domain/apperror"
	"subtitle-credit/domain/dto"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/logger"
)

var errInvalidCredits = errors.New("invalid credits in metadata")

const (
	paystackProvider   = "paystack"
	eventChargeSuccess = "charge.success"
	eventChargeFailed  = "charge.failed"
)

type IPaymentUsecase interface {
	Bundles() []model.CreditPackage
	Balance(ctx context.Context, identity model.Identity) (dto.ResBalance, error)
	Initiate(ctx context.Context, identity model.Identity, credits int) (dto.ResInitiatePayment, error)
	GetStatus(ctx context.Context, identity model.Identity, reference string) (model.Payment, error)
	List(ctx context.Context, identity model.Identity) ([]model.Payment, error)
	// Reconcile applies a signed Paystack webhook delivery.
	Reconcile(ctx context.Context, rawBody []byte, signature string) error
}

type PaymentConfig struct {
	SecretKey   string
	CallbackURL string
	Currency    string
}

type paymentUsecase struct {
	cfg      PaymentConfig
	gateway  repository.IPaymentGateway
	payments repository.IPayment
	webhooks repository.IWebhookEvent
	ledger   repository.ICreditLedger
	events   repository.IEventPublisher
}

func NewPaymentUsecase(
	cfg PaymentConfig,
	gateway repository.IPaymentGateway,
	payments repository.IPayment,
	webhooks repository.IWebhookEvent,
	ledger repository.ICreditLedger,
	events repository.IEventPublisher,
) IPaymentUsecase {
	if cfg.Currency == "" {
		cfg.Currency = "NGN"
	}
	return &paymentUsecase{
		cfg:      cfg,
		gateway:  gateway,
		payments: payments,
		webhooks: webhooks,
		ledger:   ledger,
		events:   events,
	}
}

func (u *paymentUsecase) Bundles() []model.CreditPackage {
	return model.CreditPackages()
}

func (u *paymentUsecase) Balance(ctx context.Context, identity model.Identity) (dto.ResBalance, error) {
	credits, err := u.ledger.Balance(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.ResBalance{}, apperror.NotFound("user not found")
		}
		return dto.ResBalance{}, apperror.Internal(err)
	}
	return dto.ResBalance{UserID: identity.UserID, Credits: credits}, nil
}

func (u *paymentUsecase) Initiate(ctx context.Context, identity model.Identity, credits int) (dto.ResInitiatePayment, error) {
	pkg, ok := model.PackageForCredits(credits)
	if !ok {
		return dto.ResInitiatePayment{}, apperror.Validation("invalid credit amount selected")
	}

	auth, err := u.gateway.Initialize(ctx, repository.PaymentInit{
		Email:       identity.Email,
		AmountKobo:  pkg.Price.Shift(2).IntPart(),
		Currency:    u.cfg.Currency,
		CallbackURL: u.cfg.CallbackURL,
		Credits:     pkg.Credits,
		PackageType: pkg.Type,
	})
	if err != nil {
		return dto.ResInitiatePayment{}, apperror.Upstream("failed to initialize payment", err)
	}

	payment := &model.Payment{
		UserID:           identity.UserID,
		Email:            identity.Email,
		Amount:           pkg.Price,
		CreditsPurchased: decimal.NewFromInt(int64(pkg.Credits)),
		PackageType:      pkg.Type,
		PaystackRef:      auth.Reference,
		Status:           model.PaymentPending,
	}
	if err := u.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicatePayment) {
			return dto.ResInitiatePayment{}, apperror.Conflict("payment reference already exists")
		}
		return dto.ResInitiatePayment{}, apperror.Internal(err)
	}

	logger.FromContext(ctx).WithFields(map[string]interface{}{
		"reference": auth.Reference,
		"user_id":   identity.UserID,
		"package":   pkg.Type,
	}).Info("Payment initialized")

	return dto.ResInitiatePayment{
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		Reference:        auth.Reference,
		Amount:           pkg.Price,
		Credits:          pkg.Credits,
		PackageType:      pkg.Type,
	}, nil
}

func (u *paymentUsecase) GetStatus(ctx context.Context, identity model.Identity, reference string) (model.Payment, error) {
	payment, err := u.payments.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Payment{}, apperror.NotFound("payment not found")
		}
		return model.Payment{}, apperror.Internal(err)
	}
	if payment.UserID != identity.UserID {
		return model.Payment{}, apperror.NotFound("payment not found")
	}
	return payment, nil
}

func (u *paymentUsecase) List(ctx context.Context, identity model.Identity) ([]model.Payment, error) {
	payments, err := u.payments.ListByUser(ctx, identity.UserID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	return payments, nil
}

// VerifySignature checks the hex HMAC-SHA512 Paystack puts in x-paystack-signature.
func VerifySignature(secret string, body []byte, signature string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

func (u *paymentUsecase) Reconcile(ctx context.Context, rawBody []byte, signature string) error {
	if u.cfg.SecretKey == "" {
		logger.FromContext(ctx).Error("Rejected webhook: Paystack secret key is not configured")
		return apperror.Unauthorized("webhook verification is not configured")
	}
	if signature == "" {
		return apperror.Unauthorized("missing signature")
	}
	if !VerifySignature(u.cfg.SecretKey, rawBody, signature) {
		logger.FromContext(ctx).Warn("Rejected webhook with invalid signature")
		return apperror.Unauthorized("invalid signature")
	}

	var evt model.PaystackEvent
	if err := json.Unmarshal(rawBody, &evt); err != nil {
		return apperror.Validation("malformed webhook payload")
	}
	if evt.Data.Reference == "" {
		return apperror.Validation("missing payment reference")
	}

	log := logger.FromContext(ctx).WithField("reference", evt.Data.Reference).WithField("event", evt.Event)

	sum := sha512.Sum512(rawBody)
	record := &model.WebhookEvent{
		Provider:    paystackProvider,
		Reference:   evt.Data.Reference,
		Event:       evt.Event,
		PayloadHash: hex.EncodeToString(sum[:]),
	}
	processed, err := u.webhooks.Record(ctx, record)
	if err != nil {
		return apperror.Internal(err)
	}
	if processed {
		log.Info("Duplicate webhook delivery ignored")
		return nil
	}

	payment, err := u.payments.GetByReference(ctx, evt.Data.Reference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("payment not found")
		}
		return apperror.Internal(err)
	}

	if !payment.Status.Terminal() {
		switch evt.Event {
		case eventChargeSuccess:
			if err := u.settle(ctx, payment, evt.Data); err != nil {
				return err
			}
		case eventChargeFailed:
			moved, err := u.payments.MarkFailed(ctx, payment.PaystackRef)
			if err != nil {
				return apperror.Internal(err)
			}
			if moved {
				publish(ctx, u.events, model.EventPaymentFailed, model.PaymentEvent{
					Reference: payment.PaystackRef, UserID: payment.UserID, Status: model.PaymentFailed,
					Credits: payment.CreditsPurchased, At: time.Now().UTC(),
				})
			}
		default:
			log.Info("Unhandled webhook event")
		}
	} else {
		log.WithField("status", payment.Status).Info("Payment already settled")
	}

	if err := u.webhooks.MarkProcessed(ctx, record); err != nil {
		log.WithField("error", err).Warn("Failed to mark webhook processed")
	}
	return nil
}

func (u *paymentUsecase) settle(ctx context.Context, payment model.Payment, data model.PaystackEventData) error {
	log := logger.FromContext(ctx).WithField("reference", payment.PaystackRef)

	credits, err := metadataCredits(data.Metadata.Credits)
	if err != nil {
		return apperror.Validation(err.Error())
	}
	pkg, ok := model.PackageForCredits(int(credits.IntPart()))
	if !ok {
		return apperror.Validation("unknown credit package")
	}
	if paid := decimal.New(data.Amount, -2); !paid.Equal(pkg.Price) {
		log.WithFields(map[string]interface{}{
			"paid":     paid.String(),
			"expected": pkg.Price.String(),
		}).Warn("Webhook amount does not match package price")
		return apperror.Validation("amount mismatch")
	}
	if !credits.Equal(payment.CreditsPurchased) {
		log.WithField("credits", credits.String()).Warn("Webhook credits do not match payment")
		return apperror.Validation("credits mismatch")
	}

	settled, err := u.payments.Settle(ctx, model.Settlement{
		Reference:   payment.PaystackRef,
		UserID:      payment.UserID,
		Credits:     credits,
		Channel:     data.Authorization.Channel,
		CountryCode: data.Authorization.CountryCode,
	})
	if err != nil {
		return apperror.Internal(err)
	}
	if !settled {
		log.Info("Payment settled by a concurrent delivery")
		return nil
	}

	log.WithField("credits", credits.String()).Info("Payment settled")
	publish(ctx, u.events, model.EventPaymentSucceeded, model.PaymentEvent{
		Reference: payment.PaystackRef, UserID: payment.UserID, Status: model.PaymentSuccess,
		Credits: credits, At: time.Now().UTC(),
	})
	return nil
}

// metadataCredits accepts the credits value as a JSON number or a numeric string.
func metadataCredits(v interface{}) (decimal.Decimal, error) {
	var d decimal.Decimal
	switch t := v.(type) {
	case float64:
		d = decimal.NewFromFloat(t)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Zero, errInvalidCredits
		}
		d = parsed
	default:
		return decimal.Zero, errInvalidCredits
	}
	if !d.IsPositive() || !d.IsInteger() {
		return decimal.Zero, errInvalidCredits
	}
	return d, nil
}

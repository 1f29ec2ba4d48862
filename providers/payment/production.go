package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
	"github.com/goliatone/go-checkout/webhooks"
)

const EngineProduction = "ProductionPaymentService"

const invalidCredentialsMessage = "Invalid Stripe credentials"

type ProductionService struct {
	cfg      core.StripePaymentConfig
	gateway  Gateway
	clock    core.Clock
	logger   core.Logger
	observer core.Observer
	verifier webhooks.SignatureVerifier
	replay   webhooks.ReplayLedger
	handlers map[string][]WebhookHandler
}

// NewProductionService fails when no secret key is configured.
func NewProductionService(cfg core.StripePaymentConfig, opts ...Option) (*ProductionService, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, core.NewServiceConstructionError(core.CapabilityPayment, "stripe", "Stripe secret key is required")
	}
	resolved := buildOptions(opts)
	verifier := webhooks.NewSignatureVerifier(cfg.WebhookSecret)
	verifier.Now = resolved.clock.Now
	if resolved.tolerance > 0 {
		verifier.Tolerance = resolved.tolerance
	}
	handlers := make(map[string][]WebhookHandler, len(resolved.handlers))
	for eventType, list := range resolved.handlers {
		handlers[eventType] = append([]WebhookHandler(nil), list...)
	}
	return &ProductionService{
		cfg:      cfg,
		gateway:  resolved.gateway,
		clock:    resolved.clock,
		logger:   resolved.logger,
		observer: core.NewObserver(loggerName, resolved.logger, resolved.metrics),
		verifier: verifier,
		replay:   resolved.replay,
		handlers: handlers,
	}, nil
}

func (*ProductionService) EngineName() string {
	return EngineProduction
}

func (*ProductionService) IsDemo() bool {
	return false
}

// CredentialsValid reports whether both keys carry the expected prefixes.
func (s *ProductionService) CredentialsValid() bool {
	return strings.HasPrefix(s.cfg.SecretKey, "sk_") && strings.HasPrefix(s.cfg.PublishableKey, "pk_")
}

func (s *ProductionService) ValidatePaymentMethod(method core.PaymentMethod) core.ValidationResult {
	return ValidateMethod(method, s.clock.Now())
}

func (s *ProductionService) ProcessPayment(ctx context.Context, amount float64, method core.PaymentMethod) (result core.PaymentResult) {
	startedAt := time.Now()
	defer func() {
		s.observePayment(ctx, startedAt, "process_payment", result, amount)
	}()

	if !s.CredentialsValid() {
		return core.PaymentResult{Error: invalidCredentialsMessage}
	}
	if !validAmount(amount) {
		return core.PaymentResult{Error: "Amount must be greater than zero"}
	}
	if validation := s.ValidatePaymentMethod(method); !validation.Valid {
		return core.PaymentResult{Error: FirstError(validation)}
	}
	intent, err := s.gateway.CreateIntent(ctx, toMinorUnits(amount), "usd")
	if err != nil {
		return core.PaymentResult{Error: gatewayMessage(err)}
	}
	return s.confirm(ctx, intent, method)
}

func (s *ProductionService) CreatePaymentIntent(ctx context.Context, amount float64, currency string) (core.PaymentIntent, error) {
	if !s.CredentialsValid() {
		return core.PaymentIntent{}, core.NewServiceConstructionError(core.CapabilityPayment, "stripe", invalidCredentialsMessage)
	}
	if !validAmount(amount) {
		return core.PaymentIntent{}, fmt.Errorf("payment: amount must be greater than zero")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "usd"
	}
	startedAt := time.Now()
	intent, err := s.gateway.CreateIntent(ctx, toMinorUnits(amount), currency)
	s.observer.ObserveOperation(ctx, startedAt, "create_payment_intent", err, map[string]any{
		"engine":    EngineProduction,
		"intent_id": intent.ID,
		"currency":  currency,
	})
	if err != nil {
		return core.PaymentIntent{}, err
	}
	return intent, nil
}

func (s *ProductionService) ConfirmPayment(ctx context.Context, intentID string, method core.PaymentMethod) (result core.PaymentResult) {
	startedAt := time.Now()
	defer func() {
		s.observePayment(ctx, startedAt, "confirm_payment", result, 0)
	}()

	if !s.CredentialsValid() {
		return core.PaymentResult{PaymentID: intentID, Error: invalidCredentialsMessage}
	}
	if strings.TrimSpace(intentID) == "" {
		return core.PaymentResult{Error: "Payment intent id is required"}
	}
	if validation := s.ValidatePaymentMethod(method); !validation.Valid {
		return core.PaymentResult{PaymentID: intentID, Error: FirstError(validation)}
	}
	return s.confirm(ctx, core.PaymentIntent{ID: strings.TrimSpace(intentID), Currency: "usd"}, method)
}

func (s *ProductionService) RefundPayment(ctx context.Context, paymentID string, amount float64) core.RefundResult {
	if !s.CredentialsValid() {
		return core.RefundResult{Error: invalidCredentialsMessage}
	}
	if strings.TrimSpace(paymentID) == "" {
		return core.RefundResult{Error: "Payment id is required"}
	}
	startedAt := time.Now()
	refundID, err := s.gateway.Refund(ctx, strings.TrimSpace(paymentID), toMinorUnits(amount))
	s.observer.ObserveOperation(ctx, startedAt, "refund_payment", err, map[string]any{
		"engine":     EngineProduction,
		"payment_id": paymentID,
	})
	if err != nil {
		return core.RefundResult{Amount: amount, Error: gatewayMessage(err)}
	}
	return core.RefundResult{Success: true, RefundID: refundID, Amount: amount}
}

func (*ProductionService) GetPaymentMethods() []core.PaymentMethodOption {
	return []core.PaymentMethodOption{{
		ID:          "card",
		Type:        core.PaymentMethodCard,
		Name:        "Credit or debit card",
		Description: "Pay securely with your card",
		Brands:      []string{BrandVisa, BrandMastercard, BrandAmex, BrandDiscover},
	}}
}

func (s *ProductionService) confirm(ctx context.Context, intent core.PaymentIntent, method core.PaymentMethod) core.PaymentResult {
	charge, err := s.gateway.Confirm(ctx, intent.ID, method)
	if err != nil {
		return core.PaymentResult{PaymentID: intent.ID, Error: gatewayMessage(err)}
	}
	if charge.Status != "" && charge.Status != core.IntentStatusSucceeded {
		return core.PaymentResult{PaymentID: intent.ID, Error: "Payment was not completed"}
	}
	brand := charge.Brand
	if brand == "" {
		brand = DetectBrand(method.CardNumber)
	}
	last4 := charge.Last4
	if last4 == "" {
		last4 = Last4(method.CardNumber)
	}
	paymentID := charge.ID
	if paymentID == "" {
		paymentID = intent.ID
	}
	return core.PaymentResult{
		Success:       true,
		PaymentID:     paymentID,
		TransactionID: charge.TransactionID,
		Receipt: &core.PaymentReceipt{
			PaymentID: paymentID,
			Amount:    intent.Amount,
			Currency:  strings.ToUpper(intent.Currency),
			Method:    core.PaymentMethodCard,
			Timestamp: s.clock.Now().UTC(),
			Last4:     last4,
			Brand:     brand,
		},
	}
}

func (s *ProductionService) observePayment(ctx context.Context, startedAt time.Time, operation string, result core.PaymentResult, amount float64) {
	var err error
	if !result.Success {
		err = errors.New(result.Error)
	}
	s.observer.ObserveOperation(ctx, startedAt, operation, err, map[string]any{
		"engine":     EngineProduction,
		"payment_id": result.PaymentID,
		"amount":     amount,
	})
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func gatewayMessage(err error) string {
	if errors.Is(err, core.ErrNotConfigured) {
		return "Payment gateway is not configured"
	}
	return err.Error()
}

var (
	_ core.PaymentService = (*ProductionService)(nil)
	_ core.Engine         = (*ProductionService)(nil)
)

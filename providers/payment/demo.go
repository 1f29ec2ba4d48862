package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-checkout/core"
	"github.com/google/uuid"
)

const EngineDemo = "DemoPaymentService"

// DeclineMessages are the canned failures returned by simulated declines.
var DeclineMessages = []string{
	"Your card was declined.",
	"Insufficient funds.",
	"Your card has expired.",
	"Incorrect CVC code.",
	"Processing error. Please try again.",
}

// Scenario documents a reproducible demo outcome.
type Scenario struct {
	Name        string `json:"name"`
	CardNumber  string `json:"cardNumber"`
	Brand       string `json:"brand"`
	Succeeds    bool   `json:"succeeds"`
	Description string `json:"description"`
}

var scenarios = []Scenario{
	{Name: "Visa success", CardNumber: "4242424242424242", Brand: BrandVisa, Succeeds: true, Description: "Always approved"},
	{Name: "Mastercard success", CardNumber: "5555555555554444", Brand: BrandMastercard, Succeeds: true, Description: "Always approved"},
	{Name: "American Express success", CardNumber: "378282246310005", Brand: BrandAmex, Succeeds: true, Description: "Always approved"},
	{Name: "Generic decline", CardNumber: "4000000000000002", Brand: BrandVisa, Description: "Your card was declined."},
	{Name: "Insufficient funds", CardNumber: "4000000000009995", Brand: BrandVisa, Description: "Insufficient funds."},
	{Name: "Expired card", CardNumber: "4000000000000069", Brand: BrandVisa, Description: "Your card has expired."},
}

type TestCards struct {
	Success []string `json:"success"`
	Fail    []string `json:"fail"`
}

// ProcessingStats describes the simulation settings. TotalTransactions is
// reported but no call path increments it.
type ProcessingStats struct {
	SuccessRate       float64 `json:"successRate"`
	AverageDelayMS    int     `json:"averageDelayMs"`
	TotalTransactions int     `json:"totalTransactions"`
}

type DemoService struct {
	cfg      core.DemoPaymentConfig
	failSet  map[string]struct{}
	clock    core.Clock
	random   RandomSource
	logger   core.Logger
	observer core.Observer
	stats    ProcessingStats

	mu         sync.Mutex
	intents    map[string]core.PaymentIntent
	confirming map[string]struct{}
}

func NewDemoService(cfg core.DemoPaymentConfig, opts ...Option) *DemoService {
	resolved := buildOptions(opts)
	failSet := make(map[string]struct{}, len(cfg.FailCards))
	for _, card := range cfg.FailCards {
		if digits := DigitsOnly(card); digits != "" {
			failSet[digits] = struct{}{}
		}
	}
	cfg.FailCards = append([]string(nil), cfg.FailCards...)
	cfg.SuccessCards = append([]string(nil), cfg.SuccessCards...)
	return &DemoService{
		cfg:      cfg,
		failSet:  failSet,
		clock:    resolved.clock,
		random:   &lockedRandom{src: resolved.random},
		logger:   resolved.logger,
		observer: core.NewObserver(loggerName, resolved.logger, resolved.metrics),
		stats: ProcessingStats{
			SuccessRate:    cfg.SuccessRate,
			AverageDelayMS: cfg.ProcessingDelay,
		},
		intents:    map[string]core.PaymentIntent{},
		confirming: map[string]struct{}{},
	}
}

func (*DemoService) EngineName() string {
	return EngineDemo
}

func (*DemoService) IsDemo() bool {
	return true
}

func (s *DemoService) ValidatePaymentMethod(method core.PaymentMethod) core.ValidationResult {
	return ValidateMethod(method, s.clock.Now())
}

func (s *DemoService) ProcessPayment(ctx context.Context, amount float64, method core.PaymentMethod) core.PaymentResult {
	return s.charge(ctx, "pay_demo_"+uuid.NewString(), amount, "USD", method)
}

func (s *DemoService) charge(ctx context.Context, paymentID string, amount float64, currency string, method core.PaymentMethod) (result core.PaymentResult) {
	startedAt := time.Now()
	defer func() {
		var err error
		if !result.Success {
			err = errors.New(result.Error)
		}
		s.observer.ObserveOperation(ctx, startedAt, "process_payment", err, map[string]any{
			"engine":     EngineDemo,
			"payment_id": result.PaymentID,
			"amount":     amount,
		})
	}()

	if !validAmount(amount) {
		return core.PaymentResult{PaymentID: paymentID, Error: "Amount must be greater than zero"}
	}
	if validation := s.ValidatePaymentMethod(method); !validation.Valid {
		return core.PaymentResult{PaymentID: paymentID, Error: FirstError(validation)}
	}

	if err := core.Sleep(ctx, s.clock, s.cfg.Delay()); err != nil {
		return core.PaymentResult{PaymentID: paymentID, Error: "Payment cancelled: " + err.Error()}
	}

	digits := DigitsOnly(method.CardNumber)
	if _, fail := s.failSet[digits]; fail {
		return core.PaymentResult{PaymentID: paymentID, Error: s.declineFor(digits)}
	}
	if s.cfg.EnableFailures && s.random.Float64() >= s.cfg.SuccessRate {
		return core.PaymentResult{PaymentID: paymentID, Error: s.randomDecline()}
	}

	methodType := method.Type
	if methodType == "" {
		methodType = core.PaymentMethodDemoCard
	}
	return core.PaymentResult{
		Success:       true,
		PaymentID:     paymentID,
		TransactionID: "txn_demo_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Receipt: &core.PaymentReceipt{
			PaymentID:         paymentID,
			Amount:            amount,
			Currency:          strings.ToUpper(currency),
			Method:            methodType,
			Timestamp:         s.clock.Now().UTC(),
			Last4:             Last4(digits),
			Brand:             DetectBrand(digits),
			IsDemoTransaction: true,
		},
	}
}

func (s *DemoService) CreatePaymentIntent(_ context.Context, amount float64, currency string) (core.PaymentIntent, error) {
	if !validAmount(amount) {
		return core.PaymentIntent{}, fmt.Errorf("payment: amount must be greater than zero")
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "usd"
	}
	id := fmt.Sprintf("pi_demo_%d_%s", s.clock.Now().UnixMilli(), s.randomSuffix(9))
	intent := core.PaymentIntent{
		ID:           id,
		Amount:       amount,
		Currency:     currency,
		Status:       core.IntentStatusRequiresPaymentMethod,
		ClientSecret: id + "_secret_demo",
	}
	s.mu.Lock()
	s.intents[id] = intent
	s.mu.Unlock()
	return intent, nil
}

// ConfirmPayment charges method for an intent created by this engine. An
// intent can be confirmed once successfully.
func (s *DemoService) ConfirmPayment(ctx context.Context, intentID string, method core.PaymentMethod) core.PaymentResult {
	intentID = strings.TrimSpace(intentID)
	s.mu.Lock()
	intent, ok := s.intents[intentID]
	if !ok {
		s.mu.Unlock()
		return core.PaymentResult{PaymentID: intentID, Error: "Payment intent not found"}
	}
	if intent.Status == core.IntentStatusSucceeded {
		s.mu.Unlock()
		return core.PaymentResult{PaymentID: intentID, Error: "Payment intent has already been confirmed"}
	}
	if _, busy := s.confirming[intentID]; busy {
		s.mu.Unlock()
		return core.PaymentResult{PaymentID: intentID, Error: "Payment intent is already being confirmed"}
	}
	s.confirming[intentID] = struct{}{}
	s.mu.Unlock()

	result := s.charge(ctx, intentID, intent.Amount, intent.Currency, method)

	s.mu.Lock()
	delete(s.confirming, intentID)
	if result.Success {
		intent.Status = core.IntentStatusSucceeded
		s.intents[intentID] = intent
	}
	s.mu.Unlock()
	return result
}

func (s *DemoService) RefundPayment(_ context.Context, paymentID string, amount float64) core.RefundResult {
	if strings.TrimSpace(paymentID) == "" {
		return core.RefundResult{Error: "Payment id is required"}
	}
	return core.RefundResult{
		Success:  true,
		RefundID: "re_demo_" + s.randomSuffix(12),
		Amount:   amount,
	}
}

func (*DemoService) GetPaymentMethods() []core.PaymentMethodOption {
	return []core.PaymentMethodOption{{
		ID:          "demo_card",
		Type:        core.PaymentMethodDemoCard,
		Name:        "Demo Card",
		Description: "Simulated card payment, no real charge is made",
		Brands:      []string{BrandVisa, BrandMastercard, BrandAmex, BrandDiscover},
		Demo:        true,
	}}
}

func (s *DemoService) TestCards() TestCards {
	return TestCards{
		Success: append([]string(nil), s.cfg.SuccessCards...),
		Fail:    append([]string(nil), s.cfg.FailCards...),
	}
}

func (*DemoService) Scenarios() []Scenario {
	return append([]Scenario(nil), scenarios...)
}

func (s *DemoService) Stats() ProcessingStats {
	return s.stats
}

func (s *DemoService) declineFor(digits string) string {
	for _, scenario := range scenarios {
		if !scenario.Succeeds && scenario.CardNumber == digits {
			return scenario.Description
		}
	}
	return s.randomDecline()
}

func (s *DemoService) randomDecline() string {
	return DeclineMessages[s.random.IntN(len(DeclineMessages))]
}

func validAmount(amount float64) bool {
	return amount > 0 && !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func (s *DemoService) randomSuffix(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(suffixAlphabet[s.random.IntN(len(suffixAlphabet))])
	}
	return b.String()
}

var (
	_ core.PaymentService = (*DemoService)(nil)
	_ core.Engine         = (*DemoService)(nil)
)

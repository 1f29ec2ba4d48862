package email

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-checkout/core"
	"github.com/google/uuid"
)

const EngineDemo = "DemoEmailService"

// SentMessage is an outbox entry recorded by the demo provider.
type SentMessage struct {
	ID      string            `json:"id"`
	Message core.EmailMessage `json:"message"`
	SentAt  time.Time         `json:"sentAt"`
}

// DemoService records every message in memory and never fails once the
// message itself is valid.
type DemoService struct {
	fromName string
	clock    core.Clock
	logger   core.Logger
	observer core.Observer

	mu     sync.Mutex
	outbox []SentMessage
}

func NewDemoService(cfg core.EmailConfig, opts ...Option) *DemoService {
	resolved := buildOptions(opts)
	return &DemoService{
		fromName: cfg.FromName,
		clock:    resolved.clock,
		logger:   resolved.logger,
		observer: core.NewObserver(loggerName, resolved.logger, resolved.metrics),
	}
}

func (*DemoService) Provider() string {
	return core.EmailServiceDemo
}

func (*DemoService) EngineName() string {
	return EngineDemo
}

func (*DemoService) IsDemo() bool {
	return true
}

func (s *DemoService) Send(ctx context.Context, msg core.EmailMessage) (core.EmailResult, error) {
	startedAt := time.Now()
	if err := validateMessage(msg); err != nil {
		s.observer.ObserveOperation(ctx, startedAt, "send", err, map[string]any{"provider": core.EmailServiceDemo})
		return core.EmailResult{Provider: core.EmailServiceDemo, Error: err.Error()}, err
	}
	entry := SentMessage{
		ID:      "demo_email_" + uuid.NewString(),
		Message: cloneMessage(msg),
		SentAt:  s.clock.Now().UTC(),
	}
	s.mu.Lock()
	s.outbox = append(s.outbox, entry)
	s.mu.Unlock()

	s.logger.Info("demo email captured",
		"message_id", entry.ID,
		"to", msg.To,
		"subject", msg.Subject,
		"from_name", s.fromName,
	)
	s.observer.ObserveOperation(ctx, startedAt, "send", nil, map[string]any{
		"provider":   core.EmailServiceDemo,
		"message_id": entry.ID,
	})
	return core.EmailResult{Success: true, MessageID: entry.ID, Provider: core.EmailServiceDemo}, nil
}

func (s *DemoService) SendOrderConfirmation(ctx context.Context, confirmation core.OrderConfirmation) (core.EmailResult, error) {
	return s.Send(ctx, ConfirmationMessage(confirmation))
}

// Outbox returns a copy of every captured message in send order.
func (s *DemoService) Outbox() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentMessage, len(s.outbox))
	for i, entry := range s.outbox {
		entry.Message = cloneMessage(entry.Message)
		out[i] = entry
	}
	return out
}

func (s *DemoService) ClearOutbox() {
	s.mu.Lock()
	s.outbox = nil
	s.mu.Unlock()
}

var (
	_ core.EmailService = (*DemoService)(nil)
	_ core.Engine       = (*DemoService)(nil)
)

package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-checkout/core"
)

const EngineSES = "SESEmailService"

// SESService validates its settings at construction. No SES client is wired,
// so every send reports core.ErrNotConfigured.
type SESService struct {
	region   string
	from     string
	observer core.Observer
}

func NewSESService(cfg core.EmailConfig, opts ...Option) (*SESService, error) {
	region := strings.TrimSpace(cfg.SES.Region)
	if region == "" {
		return nil, core.NewServiceConstructionError(core.CapabilityEmail, core.EmailServiceSES, "SES region is required")
	}
	from := strings.TrimSpace(cfg.SES.FromEmail)
	if !core.IsEmail(from) {
		return nil, core.NewServiceConstructionError(core.CapabilityEmail, core.EmailServiceSES, "SES from email must be a valid email address")
	}
	resolved := buildOptions(opts)
	return &SESService{
		region:   region,
		from:     from,
		observer: core.NewObserver(loggerName, resolved.logger, resolved.metrics),
	}, nil
}

func (*SESService) Provider() string {
	return core.EmailServiceSES
}

func (*SESService) EngineName() string {
	return EngineSES
}

func (*SESService) IsDemo() bool {
	return false
}

func (s *SESService) Region() string {
	return s.region
}

func (s *SESService) Send(ctx context.Context, msg core.EmailMessage) (core.EmailResult, error) {
	startedAt := time.Now()
	err := validateMessage(msg)
	if err == nil {
		err = fmt.Errorf("email: ses client for %s: %w", s.region, core.ErrNotConfigured)
	}
	s.observer.ObserveOperation(ctx, startedAt, "send", err, map[string]any{"provider": core.EmailServiceSES})
	return core.EmailResult{Provider: core.EmailServiceSES, Error: err.Error()}, err
}

func (s *SESService) SendOrderConfirmation(ctx context.Context, confirmation core.OrderConfirmation) (core.EmailResult, error) {
	return s.Send(ctx, ConfirmationMessage(confirmation))
}

var (
	_ core.EmailService = (*SESService)(nil)
	_ core.Engine       = (*SESService)(nil)
)

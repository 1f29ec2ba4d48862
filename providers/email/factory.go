package email

import (
	"strings"

	"github.com/goliatone/go-checkout/core"
)

// New dispatches on cfg.Service; an empty service selects the demo provider.
func New(cfg core.EmailConfig, opts ...Option) (core.EmailService, error) {
	switch ProviderName(cfg) {
	case core.EmailServiceDemo:
		return NewDemoService(cfg, opts...), nil
	case core.EmailServiceSendGrid:
		service, err := NewSendGridService(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return service, nil
	case core.EmailServiceSES:
		service, err := NewSESService(cfg, opts...)
		if err != nil {
			return nil, err
		}
		return service, nil
	default:
		return nil, core.NewUnsupportedProviderError(core.CapabilityEmail, cfg.Service)
	}
}

func ProviderName(cfg core.EmailConfig) string {
	name := strings.ToLower(strings.TrimSpace(cfg.Service))
	if name == "" {
		return core.EmailServiceDemo
	}
	return name
}

// EngineFor names the engine New would build for cfg, or "" when unsupported.
func EngineFor(cfg core.EmailConfig) string {
	switch ProviderName(cfg) {
	case core.EmailServiceDemo:
		return EngineDemo
	case core.EmailServiceSendGrid:
		return EngineSendGrid
	case core.EmailServiceSES:
		return EngineSES
	default:
		return ""
	}
}

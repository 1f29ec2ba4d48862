package checkout

import (
	"context"
	"fmt"

	"github.com/goliatone/go-checkout/core"
)

// ValidateServices builds every provider and collects the failures. It never
// fails itself.
func (f *ServiceFactory) ValidateServices(ctx context.Context) core.ServiceValidation {
	result := core.ServiceValidation{Valid: true, Errors: []string{}}
	for _, capability := range core.Capabilities() {
		if err := f.construct(ctx, capability); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", capability, err.Error()))
		}
	}
	return result
}

// CheckServiceHealth reports one entry per capability; the overall result is
// healthy only when every capability could be built.
func (f *ServiceFactory) CheckServiceHealth(ctx context.Context) core.ServiceHealth {
	health := core.ServiceHealth{
		Healthy:   true,
		Services:  make(map[core.Capability]core.CapabilityHealth, len(core.Capabilities())),
		CheckedAt: f.clock.Now().UTC(),
	}
	for _, capability := range core.Capabilities() {
		if err := f.construct(ctx, capability); err != nil {
			health.Healthy = false
			health.Services[capability] = core.CapabilityHealth{
				Status:  core.HealthStatusError,
				Message: err.Error(),
			}
			continue
		}
		health.Services[capability] = core.CapabilityHealth{Status: core.HealthStatusHealthy}
	}
	if !health.Healthy {
		f.logger.Warn("service health check failed", "services", len(health.Services))
	}
	return health
}

func (f *ServiceFactory) construct(ctx context.Context, capability core.Capability) error {
	var err error
	switch capability {
	case core.CapabilityPayment:
		_, err = f.GetPaymentService(ctx)
	case core.CapabilityEmail:
		_, err = f.GetEmailService(ctx)
	case core.CapabilityStorage:
		_, err = f.GetStorageService(ctx)
	default:
		err = core.NewUnsupportedProviderError(capability, "")
	}
	return err
}

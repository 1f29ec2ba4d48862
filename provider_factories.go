package checkout

import (
	"github.com/goliatone/go-checkout/core"
	"github.com/goliatone/go-checkout/providers/email"
	"github.com/goliatone/go-checkout/providers/payment"
	"github.com/goliatone/go-checkout/providers/storage"
)

// PaymentProvider builds the engine selected by cfg.Mode without memoizing
// it.
func PaymentProvider(cfg core.AppConfig, opts ...payment.Option) (core.PaymentService, error) {
	return payment.New(cfg, opts...)
}

func DemoPaymentProvider(cfg core.DemoPaymentConfig, opts ...payment.Option) *payment.DemoService {
	return payment.NewDemoService(cfg, opts...)
}

func ProductionPaymentProvider(cfg core.StripePaymentConfig, opts ...payment.Option) (*payment.ProductionService, error) {
	return payment.NewProductionService(cfg, opts...)
}

func EmailProvider(cfg core.EmailConfig, opts ...email.Option) (core.EmailService, error) {
	return email.New(cfg, opts...)
}

func StorageProvider(cfg core.StorageConfig, opts ...storage.Option) (core.StorageService, error) {
	return storage.New(cfg, opts...)
}

package core

import (
	"strings"
	"time"
)

// RequiredProductionVariables must all be set before a production deploy.
var RequiredProductionVariables = []string{
	"DATABASE_URL",
	"JWT_SECRET",
	"NEXTAUTH_SECRET",
	"NEXTAUTH_URL",
	"PAYMENT_MODE",
}

var optionalProductionVariables = []string{
	"STRIPE_WEBHOOK_SECRET",
	"EMAIL_SERVICE",
	"STORAGE_PROVIDER",
	"SENTRY_DSN",
}

type ProductionReadiness struct {
	IsValid  bool     `json:"isValid"`
	Missing  []string `json:"missing"`
	Warnings []string `json:"warnings"`
}

// ValidateProductionConfig reports every missing required variable at once.
// Unlike AppConfig.Validate it never stops at the first problem.
func ValidateProductionConfig(lookup LookupFunc) ProductionReadiness {
	if lookup == nil {
		lookup = OSLookup()
	}
	report := ProductionReadiness{Missing: []string{}, Warnings: []string{}}
	for _, key := range RequiredProductionVariables {
		if _, ok := lookupValue(lookup, key); !ok {
			report.Missing = append(report.Missing, key)
		}
	}

	if mode, ok := lookupValue(lookup, EnvPaymentMode); ok && strings.EqualFold(strings.TrimSpace(mode), string(ModeProduction)) {
		for _, key := range []string{"STRIPE_PUBLISHABLE_KEY", "STRIPE_SECRET_KEY"} {
			if _, ok := lookupValue(lookup, key); !ok {
				report.Missing = append(report.Missing, key)
			}
		}
	}
	if service, ok := lookupValue(lookup, "EMAIL_SERVICE"); ok && strings.EqualFold(strings.TrimSpace(service), EmailServiceSendGrid) {
		for _, key := range []string{"SENDGRID_API_KEY", "SENDGRID_FROM_EMAIL"} {
			if _, ok := lookupValue(lookup, key); !ok {
				report.Missing = append(report.Missing, key)
			}
		}
	}

	for _, key := range optionalProductionVariables {
		if _, ok := lookupValue(lookup, key); !ok {
			report.Warnings = append(report.Warnings, "Optional variable "+key+" is not set")
		}
	}
	report.IsValid = len(report.Missing) == 0
	return report
}

// ProductionChecklist is a point-in-time readiness snapshot for deployment
// tooling.
type ProductionChecklist struct {
	Mode                   Mode      `json:"mode"`
	PaymentsLive           bool      `json:"paymentsLive"`
	StripeConfigured       bool      `json:"stripeConfigured"`
	WebhookSecretSet       bool      `json:"webhookSecretSet"`
	DatabaseConfigured     bool      `json:"databaseConfigured"`
	SecretsConfigured      bool      `json:"secretsConfigured"`
	EmailProviderLive      bool      `json:"emailProviderLive"`
	StorageProviderLive    bool      `json:"storageProviderLive"`
	CMSConfigured          bool      `json:"cmsConfigured"`
	MonitoringEnabled      bool      `json:"monitoringEnabled"`
	ErrorReportingEnabled  bool      `json:"errorReportingEnabled"`
	DemoAutoAdvanceEnabled bool      `json:"demoAutoAdvanceEnabled"`
	Ready                  bool      `json:"ready"`
	GeneratedAt            time.Time `json:"generatedAt"`
}

func BuildProductionChecklist(cfg AppConfig, now time.Time) ProductionChecklist {
	demoDefaults := DefaultConfig(ModeDemo).Auth
	checklist := ProductionChecklist{
		Mode:               cfg.Mode,
		PaymentsLive:       cfg.IsProduction(),
		StripeConfigured:   strings.HasPrefix(cfg.Payment.Stripe.PublishableKey, "pk_") && strings.HasPrefix(cfg.Payment.Stripe.SecretKey, "sk_"),
		WebhookSecretSet:   strings.TrimSpace(cfg.Payment.Stripe.WebhookSecret) != "",
		DatabaseConfigured: strings.TrimSpace(cfg.Database.URL) != "" && !strings.Contains(cfg.Database.URL, "mode=memory"),
		SecretsConfigured: len(cfg.Auth.JWTSecret) >= MinSecretLength &&
			len(cfg.Auth.SessionSecret) >= MinSecretLength &&
			cfg.Auth.JWTSecret != demoDefaults.JWTSecret &&
			cfg.Auth.SessionSecret != demoDefaults.SessionSecret,
		EmailProviderLive:      cfg.Email.Service != "" && cfg.Email.Service != EmailServiceDemo,
		StorageProviderLive:    cfg.Storage.Provider != "" && cfg.Storage.Provider != StorageProviderLocal,
		CMSConfigured:          cfg.CMS.Enabled && strings.TrimSpace(cfg.CMS.Endpoint) != "",
		MonitoringEnabled:      cfg.Monitoring.Enabled,
		ErrorReportingEnabled:  strings.TrimSpace(cfg.Monitoring.SentryDSN) != "",
		DemoAutoAdvanceEnabled: cfg.Payment.Demo.AutoAdvanceOrders,
		GeneratedAt:            now.UTC(),
	}
	checklist.Ready = checklist.PaymentsLive &&
		checklist.StripeConfigured &&
		checklist.DatabaseConfigured &&
		checklist.SecretsConfigured &&
		checklist.EmailProviderLive
	return checklist
}

package core

import "strings"

// ConfigSummary is a diagnostics view of AppConfig. Secrets are never copied;
// only their presence is reported.
type ConfigSummary struct {
	Mode       Mode              `json:"mode"`
	IsDemo     bool              `json:"isDemo"`
	Database   DatabaseSummary   `json:"database"`
	Auth       AuthSummary       `json:"auth"`
	Payment    PaymentSummary    `json:"payment"`
	Email      EmailSummary      `json:"email"`
	CMS        CMSSummary        `json:"cms"`
	Storage    StorageSummary    `json:"storage"`
	Monitoring MonitoringSummary `json:"monitoring"`
}

type DatabaseSummary struct {
	Configured bool   `json:"configured"`
	Driver     string `json:"driver"`
	Debug      bool   `json:"debug"`
}

type AuthSummary struct {
	JWTSecretSet     bool   `json:"jwtSecretSet"`
	SessionSecretSet bool   `json:"sessionSecretSet"`
	URL              string `json:"url,omitempty"`
}

type PaymentSummary struct {
	Provider      string              `json:"provider"`
	Demo          *DemoPaymentSummary `json:"demo,omitempty"`
	PublicKeySet  bool                `json:"publicKeySet"`
	SecretKeySet  bool                `json:"secretKeySet"`
	WebhookSecret bool                `json:"webhookSecretSet"`
}

type DemoPaymentSummary struct {
	SuccessRate       float64  `json:"successRate"`
	ProcessingDelay   int      `json:"processingDelay"`
	EnableFailures    bool     `json:"enableFailures"`
	FailCards         []string `json:"failCards"`
	AutoAdvanceOrders bool     `json:"autoAdvanceOrders"`
	OrderAdvanceDelay int      `json:"orderAdvanceDelay"`
}

type EmailSummary struct {
	Service      string `json:"service"`
	FromName     string `json:"fromName,omitempty"`
	APIKeySet    bool   `json:"apiKeySet"`
	FromEmailSet bool   `json:"fromEmailSet"`
}

type CMSSummary struct {
	Enabled     bool   `json:"enabled"`
	Provider    string `json:"provider,omitempty"`
	EndpointSet bool   `json:"endpointSet"`
	APIKeySet   bool   `json:"apiKeySet"`
}

type StorageSummary struct {
	Provider       string `json:"provider"`
	CloudName      string `json:"cloudName,omitempty"`
	Bucket         string `json:"bucket,omitempty"`
	Region         string `json:"region,omitempty"`
	CredentialsSet bool   `json:"credentialsSet"`
}

type MonitoringSummary struct {
	Enabled        bool   `json:"enabled"`
	ErrorReporting bool   `json:"errorReporting"`
	LogLevel       string `json:"logLevel"`
}

// Summary builds a ConfigSummary that shares no slices with cfg.
func (c AppConfig) Summary() ConfigSummary {
	summary := ConfigSummary{
		Mode:   c.Mode,
		IsDemo: c.IsDemo(),
		Database: DatabaseSummary{
			Configured: isSet(c.Database.URL),
			Driver:     c.Database.GetDriver(),
			Debug:      c.Database.Debug,
		},
		Auth: AuthSummary{
			JWTSecretSet:     isSet(c.Auth.JWTSecret),
			SessionSecretSet: isSet(c.Auth.SessionSecret),
			URL:              strings.TrimSpace(c.Auth.URL),
		},
		Payment: PaymentSummary{
			Provider:      "stripe",
			PublicKeySet:  isSet(c.Payment.Stripe.PublishableKey),
			SecretKeySet:  isSet(c.Payment.Stripe.SecretKey),
			WebhookSecret: isSet(c.Payment.Stripe.WebhookSecret),
		},
		Email: EmailSummary{
			Service:  c.Email.Service,
			FromName: c.Email.FromName,
		},
		CMS: CMSSummary{
			Enabled:     c.CMS.Enabled,
			Provider:    c.CMS.Provider,
			EndpointSet: isSet(c.CMS.Endpoint),
			APIKeySet:   isSet(c.CMS.APIKey),
		},
		Storage: StorageSummary{
			Provider: c.Storage.Provider,
		},
		Monitoring: MonitoringSummary{
			Enabled:        c.Monitoring.Enabled,
			ErrorReporting: isSet(c.Monitoring.SentryDSN),
			LogLevel:       c.Monitoring.LogLevel,
		},
	}

	if c.IsDemo() {
		demo := c.Payment.Demo
		summary.Payment.Provider = "demo"
		summary.Payment.Demo = &DemoPaymentSummary{
			SuccessRate:       demo.SuccessRate,
			ProcessingDelay:   demo.ProcessingDelay,
			EnableFailures:    demo.EnableFailures,
			FailCards:         append([]string(nil), demo.FailCards...),
			AutoAdvanceOrders: demo.AutoAdvanceOrders,
			OrderAdvanceDelay: demo.OrderAdvanceDelay,
		}
	}

	switch c.Email.Service {
	case EmailServiceSendGrid:
		summary.Email.APIKeySet = isSet(c.Email.SendGrid.APIKey)
		summary.Email.FromEmailSet = isSet(c.Email.SendGrid.FromEmail)
	case EmailServiceSES:
		summary.Email.FromEmailSet = isSet(c.Email.SES.FromEmail)
	}

	switch c.Storage.Provider {
	case StorageProviderCloudinary:
		summary.Storage.CloudName = c.Storage.Cloudinary.CloudName
		summary.Storage.CredentialsSet = isSet(c.Storage.Cloudinary.APIKey) && isSet(c.Storage.Cloudinary.APISecret)
	case StorageProviderS3:
		summary.Storage.Bucket = c.Storage.S3.Bucket
		summary.Storage.Region = c.Storage.S3.Region
	}
	return summary
}

func isSet(value string) bool {
	return strings.TrimSpace(value) != ""
}

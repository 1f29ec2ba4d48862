package core

import (
	"net/url"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var logLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Validate checks the configuration and returns the first violation as a
// *ConfigValidationError. Unknown email and storage providers are left to the
// service factory, which reports them as unsupported.
func (c AppConfig) Validate() error {
	if !c.Mode.Valid() {
		return NewConfigValidationError("mode", "PAYMENT_MODE must be one of demo, production", string(c.Mode))
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return NewConfigValidationError("database.url", "DATABASE_URL is required", "")
	}
	if err := c.Auth.validate(); err != nil {
		return err
	}
	if err := c.Payment.Demo.validate(); err != nil {
		return err
	}
	if c.IsProduction() {
		if err := c.Payment.Stripe.validate(); err != nil {
			return err
		}
	}
	if err := c.Email.validate(); err != nil {
		return err
	}
	if err := c.CMS.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	return c.Monitoring.validate()
}

func (c AuthConfig) validate() error {
	if len(c.JWTSecret) < MinSecretLength {
		return NewConfigValidationError("auth.jwt_secret", "JWT secret must be at least 32 characters", len(c.JWTSecret))
	}
	if len(c.SessionSecret) < MinSecretLength {
		return NewConfigValidationError("auth.session_secret", "Session secret must be at least 32 characters", len(c.SessionSecret))
	}
	if strings.TrimSpace(c.URL) != "" && !isHTTPURL(c.URL) {
		return NewConfigValidationError("auth.url", "Auth URL must be a valid URL", c.URL)
	}
	return nil
}

func (c DemoPaymentConfig) validate() error {
	if !(c.SuccessRate >= 0 && c.SuccessRate <= 1) {
		return NewConfigValidationError("payment.demo.success_rate", "Demo success rate must be between 0 and 1", c.SuccessRate)
	}
	if c.ProcessingDelay < 0 {
		return NewConfigValidationError("payment.demo.processing_delay", "Demo processing delay must be non-negative", c.ProcessingDelay)
	}
	if c.OrderAdvanceDelay < 0 {
		return NewConfigValidationError("payment.demo.order_advance_delay", "Demo order advance delay must be non-negative", c.OrderAdvanceDelay)
	}
	return nil
}

func (c StripePaymentConfig) validate() error {
	if strings.TrimSpace(c.PublishableKey) == "" {
		return NewConfigValidationError("payment.stripe.publishable_key", "Stripe publishable key is required in production mode", "")
	}
	if !strings.HasPrefix(c.PublishableKey, "pk_") {
		return NewConfigValidationError("payment.stripe.publishable_key", "Stripe publishable key must start with 'pk_'", nil)
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return NewConfigValidationError("payment.stripe.secret_key", "Stripe secret key is required in production mode", "")
	}
	if !strings.HasPrefix(c.SecretKey, "sk_") {
		return NewConfigValidationError("payment.stripe.secret_key", "Stripe secret key must start with 'sk_'", nil)
	}
	return nil
}

func (c EmailConfig) validate() error {
	switch c.Service {
	case EmailServiceSendGrid:
		if strings.TrimSpace(c.SendGrid.APIKey) == "" {
			return NewConfigValidationError("email.sendgrid.api_key", "SendGrid API key is required", "")
		}
		if !strings.HasPrefix(c.SendGrid.APIKey, "SG.") {
			return NewConfigValidationError("email.sendgrid.api_key", "SendGrid API key must start with 'SG.'", nil)
		}
		if !IsEmail(c.SendGrid.FromEmail) {
			return NewConfigValidationError("email.sendgrid.from_email", "SendGrid from email must be a valid email address", c.SendGrid.FromEmail)
		}
	case EmailServiceSES:
		if strings.TrimSpace(c.SES.Region) == "" {
			return NewConfigValidationError("email.ses.region", "SES region is required", "")
		}
		if !IsEmail(c.SES.FromEmail) {
			return NewConfigValidationError("email.ses.from_email", "SES from email must be a valid email address", c.SES.FromEmail)
		}
	}
	return nil
}

func (c CMSConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Provider) == "" {
		return NewConfigValidationError("cms.provider", "CMS provider is required when CMS is enabled", "")
	}
	if !isHTTPURL(c.Endpoint) {
		return NewConfigValidationError("cms.endpoint", "CMS endpoint must be a valid URL when CMS is enabled", c.Endpoint)
	}
	return nil
}

func (c StorageConfig) validate() error {
	switch c.Provider {
	case StorageProviderCloudinary:
		if strings.TrimSpace(c.Cloudinary.CloudName) == "" {
			return NewConfigValidationError("storage.cloudinary.cloud_name", "Cloudinary cloud name is required", "")
		}
	case StorageProviderS3:
		if strings.TrimSpace(c.S3.Bucket) == "" {
			return NewConfigValidationError("storage.s3.bucket", "S3 bucket is required", "")
		}
	}
	return nil
}

func (c MonitoringConfig) validate() error {
	level := strings.ToLower(strings.TrimSpace(c.LogLevel))
	if level == "" {
		return nil
	}
	if _, ok := logLevels[level]; !ok {
		return NewConfigValidationError("monitoring.log_level", "LOG_LEVEL must be one of debug, info, warn, error", c.LogLevel)
	}
	return nil
}

func isHTTPURL(raw string) bool {
	parsed, err := url.ParseRequestURI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}

// IsEmail applies the single-@ address check used by config validation.
func IsEmail(raw string) bool {
	return emailPattern.MatchString(strings.TrimSpace(raw))
}

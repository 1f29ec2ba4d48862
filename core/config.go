package core

import (
	"strings"
	"time"
)

type Mode string

const (
	ModeDemo       Mode = "demo"
	ModeProduction Mode = "production"
)

func (m Mode) Valid() bool {
	return m == ModeDemo || m == ModeProduction
}

func (m Mode) String() string {
	return string(m)
}

const (
	EmailServiceDemo     = "demo"
	EmailServiceSendGrid = "sendgrid"
	EmailServiceSES      = "ses"

	StorageProviderLocal      = "local"
	StorageProviderCloudinary = "cloudinary"
	StorageProviderS3         = "s3"
)

const (
	DefaultDemoSuccessRate       = 0.8
	DefaultDemoProcessingDelay   = 2000
	DefaultDemoOrderAdvanceDelay = 30000
	MinSecretLength              = 32
)

// DefaultFailCards always decline in demo mode regardless of the success rate.
var DefaultFailCards = []string{
	"4000000000000002",
	"4000000000009995",
	"4000000000000069",
}

// DefaultSuccessCards are advertised as reliable demo cards.
var DefaultSuccessCards = []string{
	"4242424242424242",
	"5555555555554444",
	"378282246310005",
}

type AppConfig struct {
	Mode       Mode             `koanf:"mode" mapstructure:"mode"`
	Database   DatabaseConfig   `koanf:"database" mapstructure:"database"`
	Auth       AuthConfig       `koanf:"auth" mapstructure:"auth"`
	Payment    PaymentConfig    `koanf:"payment" mapstructure:"payment"`
	Email      EmailConfig      `koanf:"email" mapstructure:"email"`
	CMS        CMSConfig        `koanf:"cms" mapstructure:"cms"`
	Storage    StorageConfig    `koanf:"storage" mapstructure:"storage"`
	Monitoring MonitoringConfig `koanf:"monitoring" mapstructure:"monitoring"`
}

type DatabaseConfig struct {
	URL   string `koanf:"url" mapstructure:"url"`
	Debug bool   `koanf:"debug" mapstructure:"debug"`
}

// GetDebug, GetDriver, GetServer, GetPingTimeout and GetOtelIdentifier satisfy
// the go-persistence-bun client configuration contract.
func (c DatabaseConfig) GetDebug() bool {
	return c.Debug
}

func (c DatabaseConfig) GetDriver() string {
	if c.IsPostgres() {
		return "postgres"
	}
	return "sqlite3"
}

func (c DatabaseConfig) GetServer() string {
	return strings.TrimSpace(c.URL)
}

func (c DatabaseConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c DatabaseConfig) GetOtelIdentifier() string {
	return "go-checkout"
}

func (c DatabaseConfig) IsPostgres() bool {
	url := strings.ToLower(strings.TrimSpace(c.URL))
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

type AuthConfig struct {
	JWTSecret     string `koanf:"jwt_secret" mapstructure:"jwt_secret"`
	SessionSecret string `koanf:"session_secret" mapstructure:"session_secret"`
	URL           string `koanf:"url" mapstructure:"url"`
}

type PaymentConfig struct {
	Demo   DemoPaymentConfig   `koanf:"demo" mapstructure:"demo"`
	Stripe StripePaymentConfig `koanf:"stripe" mapstructure:"stripe"`
}

// DemoPaymentConfig delays are expressed in milliseconds.
type DemoPaymentConfig struct {
	SuccessRate       float64  `koanf:"success_rate" mapstructure:"success_rate"`
	ProcessingDelay   int      `koanf:"processing_delay" mapstructure:"processing_delay"`
	EnableFailures    bool     `koanf:"enable_failures" mapstructure:"enable_failures"`
	FailCards         []string `koanf:"fail_cards" mapstructure:"fail_cards"`
	SuccessCards      []string `koanf:"success_cards" mapstructure:"success_cards"`
	AutoAdvanceOrders bool     `koanf:"auto_advance_orders" mapstructure:"auto_advance_orders"`
	OrderAdvanceDelay int      `koanf:"order_advance_delay" mapstructure:"order_advance_delay"`
}

func (c DemoPaymentConfig) Delay() time.Duration {
	if c.ProcessingDelay <= 0 {
		return 0
	}
	return time.Duration(c.ProcessingDelay) * time.Millisecond
}

func (c DemoPaymentConfig) AdvanceDelay() time.Duration {
	if c.OrderAdvanceDelay <= 0 {
		return 0
	}
	return time.Duration(c.OrderAdvanceDelay) * time.Millisecond
}

type StripePaymentConfig struct {
	PublishableKey string `koanf:"publishable_key" mapstructure:"publishable_key"`
	SecretKey      string `koanf:"secret_key" mapstructure:"secret_key"`
	WebhookSecret  string `koanf:"webhook_secret" mapstructure:"webhook_secret"`
}

type EmailConfig struct {
	Service  string         `koanf:"service" mapstructure:"service"`
	FromName string         `koanf:"from_name" mapstructure:"from_name"`
	SendGrid SendGridConfig `koanf:"sendgrid" mapstructure:"sendgrid"`
	SES      SESConfig      `koanf:"ses" mapstructure:"ses"`
}

type SendGridConfig struct {
	APIKey    string `koanf:"api_key" mapstructure:"api_key"`
	FromEmail string `koanf:"from_email" mapstructure:"from_email"`
}

type SESConfig struct {
	Region    string `koanf:"region" mapstructure:"region"`
	FromEmail string `koanf:"from_email" mapstructure:"from_email"`
}

type CMSConfig struct {
	Enabled  bool   `koanf:"enabled" mapstructure:"enabled"`
	Provider string `koanf:"provider" mapstructure:"provider"`
	Endpoint string `koanf:"endpoint" mapstructure:"endpoint"`
	APIKey   string `koanf:"api_key" mapstructure:"api_key"`
}

type StorageConfig struct {
	Provider   string           `koanf:"provider" mapstructure:"provider"`
	Local      LocalStorage     `koanf:"local" mapstructure:"local"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary" mapstructure:"cloudinary"`
	S3         S3Config         `koanf:"s3" mapstructure:"s3"`
}

type LocalStorage struct {
	Path      string `koanf:"path" mapstructure:"path"`
	PublicURL string `koanf:"public_url" mapstructure:"public_url"`
}

type CloudinaryConfig struct {
	CloudName string `koanf:"cloud_name" mapstructure:"cloud_name"`
	APIKey    string `koanf:"api_key" mapstructure:"api_key"`
	APISecret string `koanf:"api_secret" mapstructure:"api_secret"`
}

type S3Config struct {
	Bucket string `koanf:"bucket" mapstructure:"bucket"`
	Region string `koanf:"region" mapstructure:"region"`
}

type MonitoringConfig struct {
	Enabled   bool   `koanf:"enabled" mapstructure:"enabled"`
	SentryDSN string `koanf:"sentry_dsn" mapstructure:"sentry_dsn"`
	LogLevel  string `koanf:"log_level" mapstructure:"log_level"`
}

// DefaultConfig returns the defaults for the given mode. Demo defaults carry
// development secrets so a bare environment resolves; production defaults
// leave every secret empty.
func DefaultConfig(mode Mode) AppConfig {
	cfg := AppConfig{
		Mode: mode,
		Database: DatabaseConfig{
			URL: "file:checkout-demo?mode=memory&cache=shared",
		},
		Payment: PaymentConfig{
			Demo: DemoPaymentConfig{
				SuccessRate:       DefaultDemoSuccessRate,
				ProcessingDelay:   DefaultDemoProcessingDelay,
				EnableFailures:    true,
				FailCards:         append([]string(nil), DefaultFailCards...),
				SuccessCards:      append([]string(nil), DefaultSuccessCards...),
				AutoAdvanceOrders: true,
				OrderAdvanceDelay: DefaultDemoOrderAdvanceDelay,
			},
		},
		Email: EmailConfig{
			Service:  EmailServiceDemo,
			FromName: "Checkout",
		},
		CMS: CMSConfig{
			Provider: "headless",
		},
		Storage: StorageConfig{
			Provider: StorageProviderLocal,
			Local: LocalStorage{
				Path:      "./public/uploads",
				PublicURL: "/uploads",
			},
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Monitoring: MonitoringConfig{
			LogLevel: "info",
		},
	}
	if mode != ModeProduction {
		cfg.Auth = AuthConfig{
			JWTSecret:     "demo-jwt-secret-not-for-production-use-0001",
			SessionSecret: "demo-session-secret-not-for-production-0001",
			URL:           "http://localhost:3000",
		}
	} else {
		cfg.Database.URL = ""
	}
	return cfg
}

// Clone returns a deep copy so callers can never mutate a cached tree.
func (c AppConfig) Clone() AppConfig {
	out := c
	out.Payment.Demo.FailCards = append([]string(nil), c.Payment.Demo.FailCards...)
	out.Payment.Demo.SuccessCards = append([]string(nil), c.Payment.Demo.SuccessCards...)
	return out
}

func (c AppConfig) IsDemo() bool {
	return c.Mode != ModeProduction
}

func (c AppConfig) IsProduction() bool {
	return c.Mode == ModeProduction
}

package core

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LookupFunc resolves one environment variable; ok is false when unset.
type LookupFunc func(key string) (string, bool)

func OSLookup() LookupFunc {
	return os.LookupEnv
}

// MapLookup serves variables from a static map, mostly for tests and dotenv
// layers.
func MapLookup(values map[string]string) LookupFunc {
	copied := make(map[string]string, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return func(key string) (string, bool) {
		value, ok := copied[key]
		return value, ok
	}
}

// ChainLookup returns the first lookup that has the variable set.
func ChainLookup(lookups ...LookupFunc) LookupFunc {
	return func(key string) (string, bool) {
		for _, lookup := range lookups {
			if lookup == nil {
				continue
			}
			if value, ok := lookupValue(lookup, key); ok {
				return value, true
			}
		}
		return "", false
	}
}

type envKind int

const (
	envString envKind = iota
	envLower
	envBool
	envFloat
	envInt
	envList
)

type envBinding struct {
	Variable string
	Path     string
	Kind     envKind
}

// envBindings maps every supported variable onto the configuration tree.
var envBindings = []envBinding{
	{Variable: "DATABASE_URL", Path: "database.url"},
	{Variable: "DATABASE_DEBUG", Path: "database.debug", Kind: envBool},
	{Variable: "JWT_SECRET", Path: "auth.jwt_secret"},
	{Variable: "NEXTAUTH_SECRET", Path: "auth.session_secret"},
	{Variable: "NEXTAUTH_URL", Path: "auth.url"},
	{Variable: "DEMO_SUCCESS_RATE", Path: "payment.demo.success_rate", Kind: envFloat},
	{Variable: "DEMO_PROCESSING_DELAY", Path: "payment.demo.processing_delay", Kind: envInt},
	{Variable: "DEMO_ENABLE_FAILURES", Path: "payment.demo.enable_failures", Kind: envBool},
	{Variable: "DEMO_FAIL_CARDS", Path: "payment.demo.fail_cards", Kind: envList},
	{Variable: "DEMO_AUTO_ADVANCE_ORDERS", Path: "payment.demo.auto_advance_orders", Kind: envBool},
	{Variable: "DEMO_ORDER_ADVANCE_DELAY", Path: "payment.demo.order_advance_delay", Kind: envInt},
	{Variable: "STRIPE_PUBLISHABLE_KEY", Path: "payment.stripe.publishable_key"},
	{Variable: "STRIPE_SECRET_KEY", Path: "payment.stripe.secret_key"},
	{Variable: "STRIPE_WEBHOOK_SECRET", Path: "payment.stripe.webhook_secret"},
	{Variable: "EMAIL_SERVICE", Path: "email.service", Kind: envLower},
	{Variable: "EMAIL_FROM_NAME", Path: "email.from_name"},
	{Variable: "SENDGRID_API_KEY", Path: "email.sendgrid.api_key"},
	{Variable: "SENDGRID_FROM_EMAIL", Path: "email.sendgrid.from_email"},
	{Variable: "SES_REGION", Path: "email.ses.region"},
	{Variable: "SES_FROM_EMAIL", Path: "email.ses.from_email"},
	{Variable: "CMS_ENABLED", Path: "cms.enabled", Kind: envBool},
	{Variable: "CMS_PROVIDER", Path: "cms.provider", Kind: envLower},
	{Variable: "CMS_ENDPOINT", Path: "cms.endpoint"},
	{Variable: "CMS_API_KEY", Path: "cms.api_key"},
	{Variable: "STORAGE_PROVIDER", Path: "storage.provider", Kind: envLower},
	{Variable: "STORAGE_LOCAL_PATH", Path: "storage.local.path"},
	{Variable: "STORAGE_PUBLIC_URL", Path: "storage.local.public_url"},
	{Variable: "CLOUDINARY_CLOUD_NAME", Path: "storage.cloudinary.cloud_name"},
	{Variable: "CLOUDINARY_API_KEY", Path: "storage.cloudinary.api_key"},
	{Variable: "CLOUDINARY_API_SECRET", Path: "storage.cloudinary.api_secret"},
	{Variable: "S3_BUCKET", Path: "storage.s3.bucket"},
	{Variable: "S3_REGION", Path: "storage.s3.region"},
	{Variable: "MONITORING_ENABLED", Path: "monitoring.enabled", Kind: envBool},
	{Variable: "SENTRY_DSN", Path: "monitoring.sentry_dsn"},
	{Variable: "LOG_LEVEL", Path: "monitoring.log_level", Kind: envLower},
}

const (
	EnvPaymentMode = "PAYMENT_MODE"
	EnvDotenvFile  = "CHECKOUT_ENV_FILE"
)

// EnvRawConfigLoader turns environment variables into a nested raw map ready
// for cfgx. Only variables that are set appear in the map.
type EnvRawConfigLoader struct {
	Lookup LookupFunc
}

func NewEnvRawConfigLoader(lookup LookupFunc) *EnvRawConfigLoader {
	if lookup == nil {
		lookup = OSLookup()
	}
	return &EnvRawConfigLoader{Lookup: lookup}
}

func (l *EnvRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l == nil || l.Lookup == nil {
		return map[string]any{}, nil
	}
	raw := map[string]any{}
	if value, ok := lookupValue(l.Lookup, EnvPaymentMode); ok {
		mode, err := parseMode(value)
		if err != nil {
			return nil, err
		}
		raw["mode"] = string(mode)
	}
	for _, binding := range envBindings {
		value, ok := lookupValue(l.Lookup, binding.Variable)
		if !ok {
			continue
		}
		parsed, err := parseEnvValue(binding, value)
		if err != nil {
			return nil, err
		}
		setPath(raw, binding.Path, parsed)
	}
	return raw, nil
}

// ResolveMode reads PAYMENT_MODE, defaulting to demo.
func ResolveMode(lookup LookupFunc) (Mode, error) {
	if lookup == nil {
		return ModeDemo, nil
	}
	value, ok := lookupValue(lookup, EnvPaymentMode)
	if !ok {
		return ModeDemo, nil
	}
	return parseMode(value)
}

func parseMode(value string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(value)))
	if !mode.Valid() {
		return "", NewConfigValidationError(
			"mode",
			"PAYMENT_MODE must be one of demo, production",
			value,
		)
	}
	return mode, nil
}

// ParseBool accepts case-insensitive "true" and "1"; anything else is false.
func ParseBool(value string) bool {
	value = strings.TrimSpace(value)
	return strings.EqualFold(value, "true") || value == "1"
}

func parseEnvValue(binding envBinding, value string) (any, error) {
	trimmed := strings.TrimSpace(value)
	switch binding.Kind {
	case envLower:
		return strings.ToLower(trimmed), nil
	case envBool:
		return ParseBool(trimmed), nil
	case envFloat:
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil, NewConfigValidationError(binding.Path, binding.Variable+" must be a number", value)
		}
		return parsed, nil
	case envInt:
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, NewConfigValidationError(binding.Path, binding.Variable+" must be an integer", value)
		}
		return parsed, nil
	case envList:
		parts := strings.Split(trimmed, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		return trimmed, nil
	}
}

// lookupValue treats set-but-blank variables as unset.
func lookupValue(lookup LookupFunc, key string) (string, bool) {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}

func setPath(target map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := target
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}

// ReadDotenv loads a dotenv file without mutating the process environment. A
// missing file yields an empty map.
func ReadDotenv(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return values, nil
}

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorConfigInvalid       = "CHECKOUT_CONFIG_INVALID"
	ErrorServiceConstruction = "CHECKOUT_SERVICE_CONSTRUCTION"
	ErrorProviderUnsupported = "CHECKOUT_PROVIDER_UNSUPPORTED"
	ErrorWebhookRejected     = "CHECKOUT_WEBHOOK_REJECTED"
	ErrorBadInput            = "CHECKOUT_BAD_INPUT"
	ErrorNotConfigured       = "CHECKOUT_NOT_CONFIGURED"
	ErrorExternalFailure     = "CHECKOUT_EXTERNAL_FAILURE"
	ErrorNotFound            = "CHECKOUT_NOT_FOUND"
	ErrorInternal            = "CHECKOUT_INTERNAL_ERROR"
)

var (
	ErrScheduleNotFound = errors.New("core: progress schedule not found")
	ErrNotConfigured    = errors.New("core: provider client is not configured")
)

// ConfigValidationError reports the first configuration violation found.
type ConfigValidationError struct {
	Field   string
	Message string
	Value   any
}

func NewConfigValidationError(field string, message string, value any) *ConfigValidationError {
	return &ConfigValidationError{
		Field:   strings.TrimSpace(field),
		Message: strings.TrimSpace(message),
		Value:   value,
	}
}

func (e *ConfigValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

type Capability string

const (
	CapabilityPayment Capability = "payment"
	CapabilityEmail   Capability = "email"
	CapabilityStorage Capability = "storage"
)

// Capabilities lists every capability in reporting order.
func Capabilities() []Capability {
	return []Capability{CapabilityPayment, CapabilityEmail, CapabilityStorage}
}

// ServiceConstructionError is raised by provider constructors.
type ServiceConstructionError struct {
	Capability  Capability
	Provider    string
	Message     string
	Unsupported bool
	Cause       error
}

func NewUnsupportedProviderError(capability Capability, provider string) *ServiceConstructionError {
	return &ServiceConstructionError{
		Capability:  capability,
		Provider:    provider,
		Message:     fmt.Sprintf("Unsupported %s provider: %s", capability, provider),
		Unsupported: true,
	}
}

func NewServiceConstructionError(capability Capability, provider string, message string) *ServiceConstructionError {
	return &ServiceConstructionError{
		Capability: capability,
		Provider:   provider,
		Message:    strings.TrimSpace(message),
	}
}

func (e *ServiceConstructionError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *ServiceConstructionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// WebhookError is raised when a webhook cannot be accepted.
type WebhookError struct {
	Message string
	Cause   error
}

func NewWebhookError(message string, cause error) *WebhookError {
	return &WebhookError{Message: strings.TrimSpace(message), Cause: cause}
}

func (e *WebhookError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return fmt.Sprintf("webhook: %s: %v", e.Message, e.Cause)
	}
	return "webhook: " + e.Message
}

func (e *WebhookError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// MapError converts any runtime error into a go-errors envelope with a stable
// text code and HTTP status.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	var cfgErr *ConfigValidationError
	if errors.As(err, &cfgErr) {
		mapped := goerrors.NewValidation(cfgErr.Error(), goerrors.FieldError{
			Field:   cfgErr.Field,
			Message: cfgErr.Message,
		}).
			WithCode(http.StatusInternalServerError).
			WithTextCode(ErrorConfigInvalid).
			WithSeverity(goerrors.SeverityCritical)
		mapped.WithMetadata(map[string]any{"field": cfgErr.Field})
		return mapped
	}

	var constructionErr *ServiceConstructionError
	if errors.As(err, &constructionErr) {
		textCode := ErrorServiceConstruction
		if constructionErr.Unsupported {
			textCode = ErrorProviderUnsupported
		}
		mapped := goerrors.New(constructionErr.Error(), goerrors.CategoryOperation).
			WithCode(http.StatusServiceUnavailable).
			WithTextCode(textCode)
		mapped.WithMetadata(map[string]any{
			"capability": string(constructionErr.Capability),
			"provider":   constructionErr.Provider,
		})
		return mapped
	}

	var webhookErr *WebhookError
	if errors.As(err, &webhookErr) {
		return goerrors.New(webhookErr.Error(), goerrors.CategoryAuth).
			WithCode(http.StatusBadRequest).
			WithTextCode(ErrorWebhookRejected)
	}

	switch {
	case errors.Is(err, ErrScheduleNotFound):
		return newCheckoutError(err.Error(), goerrors.CategoryNotFound, ErrorNotFound)
	case errors.Is(err, ErrNotConfigured):
		return newCheckoutError(err.Error(), goerrors.CategoryOperation, ErrorNotConfigured)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "required") || strings.Contains(msg, "invalid") {
		return newCheckoutError(err.Error(), goerrors.CategoryBadInput, ErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func newCheckoutError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = httpStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryNotFound:
		return ErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorWebhookRejected
	case goerrors.CategoryExternal:
		return ErrorExternalFailure
	case goerrors.CategoryOperation:
		return ErrorServiceConstruction
	default:
		return ErrorInternal
	}
}

func httpStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	case goerrors.CategoryOperation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package transport

import (
	"fmt"
	"net/http"

	"github.com/goliatone/go-checkout/core"
	goerrors "github.com/goliatone/go-errors"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	metadata map[string]any,
) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	if source == nil {
		return transportError(message, category, code, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(transportTextCode(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// StatusError converts a non-2xx upstream response into an external failure.
func StatusError(res Response, metadata map[string]any) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	fields := map[string]any{
		"status_code": res.StatusCode,
		"adapter":     KindREST,
	}
	for key, value := range metadata {
		fields[key] = value
	}
	category := goerrors.CategoryExternal
	code := http.StatusBadGateway
	switch {
	case res.StatusCode == http.StatusUnauthorized:
		category = goerrors.CategoryAuth
		code = http.StatusUnauthorized
	case res.StatusCode == http.StatusForbidden:
		category = goerrors.CategoryAuthz
		code = http.StatusForbidden
	case res.StatusCode == http.StatusNotFound:
		category = goerrors.CategoryNotFound
		code = http.StatusNotFound
	case res.StatusCode >= 400 && res.StatusCode < 500:
		category = goerrors.CategoryBadInput
		code = http.StatusBadRequest
	}
	return transportError(
		fmt.Sprintf("transport: upstream responded with status %d", res.StatusCode),
		category,
		code,
		fields,
	)
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.ErrorBadInput
	case goerrors.CategoryNotFound:
		return core.ErrorNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz, goerrors.CategoryExternal:
		return core.ErrorExternalFailure
	default:
		return core.ErrorInternal
	}
}

package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/goliatone/go-checkout/core"
	goerrors "github.com/goliatone/go-errors"
)

// NormalizeKey cleans an object key into a relative slash path and rejects
// keys that would escape the storage root.
func NormalizeKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" || cleaned == "" || cleaned == "." {
		return "", invalidKey(key, "storage: object key is required")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", invalidKey(key, fmt.Sprintf("storage: object key %q escapes the storage root", key))
		}
	}
	return cleaned, nil
}

func invalidKey(key string, message string) error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(core.ErrorBadInput)
	err.WithMetadata(map[string]any{"key": key})
	return err
}

func joinURL(base string, key string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	key = strings.TrimLeft(key, "/")
	if base == "" {
		return "/" + key
	}
	return base + "/" + key
}

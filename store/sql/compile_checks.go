package sqlstore

import "github.com/goliatone/go-checkout/core"

var (
	_ core.ProgressStore = (*ProgressStore)(nil)
	_ core.ProgressStore = (*CachedProgressStore)(nil)
)

// Package core contains the checkout runtime contracts, configuration tree,
// error taxonomy, and domain values shared by providers and stores. Provider
// engines and persistence adapters depend on this package; core must not
// depend on any provider-specific or transport-specific package.
package core

// Package classifier maps free-text queries to a catalog intent plus raw slot
// values by delegating to an external language-understanding service.
package classifier

import (
	"context"

	"revcloud-gateway/internal/catalog"
)

// Result is a single classification outcome. Intent always names an intent
// present in the catalog (the fallback included). Slot values are raw strings
// as returned by the understanding service, not yet type-coerced.
type Result struct {
	Intent     string            `json:"intent"`
	Slots      map[string]string `json:"slots"`
	Confidence float64           `json:"confidence,omitempty"`
}

// Classifier is the narrow capability the gateway consumes. Each call is
// independent: the full catalog is briefed every time, and implementations
// hold no per-request state. Deterministic test doubles replace this in the
// test suite.
type Classifier interface {
	Classify(ctx context.Context, query string, cat *catalog.Catalog) (*Result, error)
}

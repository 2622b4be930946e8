package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "revcloud-gateway/internal/common/errors"
)

const validDoc = `
version: "1.0"
fallback_intent: UnsupportedRequest
intents:
  - name: GetProducts
    description: Fetch products from the catalog
    slots:
      - name: product_family
        type: string
        required: false
        description: Product family to filter by
    examples:
      - "List products."
      - "Show me all Solar panels."
  - name: GetProductPrice
    description: Fetch the list price for a product
    slots:
      - name: product_code
        type: string
        required: true
        description: Product code to price
  - name: UnsupportedRequest
    description: Reserved intent for queries outside the supported set
`

func TestParse_Valid(t *testing.T) {
	cat, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, "UnsupportedRequest", cat.Fallback())
	assert.True(t, cat.IsFallback("UnsupportedRequest"))
	assert.False(t, cat.IsFallback("GetProducts"))

	intent, ok := cat.Lookup("GetProducts")
	require.True(t, ok)
	require.Len(t, intent.Slots, 1)
	assert.Equal(t, "product_family", intent.Slots[0].Name)
	assert.Equal(t, SlotTypeString, intent.Slots[0].Type)
	assert.False(t, intent.Slots[0].Required)
	assert.Len(t, intent.Examples, 2)

	_, ok = cat.Lookup("NoSuchIntent")
	assert.False(t, ok)

	// Declaration order is preserved.
	names := []string{}
	for _, it := range cat.Intents() {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"GetProducts", "GetProductPrice", "UnsupportedRequest"}, names)

	assert.Contains(t, cat.PromptDocument(), "GetProducts")
	assert.Contains(t, cat.PromptDocument(), "product_family")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "duplicate intent names",
			doc: `
fallback_intent: UnsupportedRequest
intents:
  - name: GetProducts
    description: a
  - name: GetProducts
    description: b
  - name: UnsupportedRequest
    description: fallback
`,
		},
		{
			name: "duplicate slot names within one intent",
			doc: `
fallback_intent: UnsupportedRequest
intents:
  - name: GetProducts
    description: a
    slots:
      - name: product_family
        type: string
      - name: product_family
        type: string
  - name: UnsupportedRequest
    description: fallback
`,
		},
		{
			name: "unknown slot type",
			doc: `
fallback_intent: UnsupportedRequest
intents:
  - name: GetProducts
    description: a
    slots:
      - name: product_family
        type: decimal
  - name: UnsupportedRequest
    description: fallback
`,
		},
		{
			name: "enum without values",
			doc: `
fallback_intent: UnsupportedRequest
intents:
  - name: GetProducts
    description: a
    slots:
      - name: sort_order
        type: enum
  - name: UnsupportedRequest
    description: fallback
`,
		},
		{
			name: "missing fallback declaration",
			doc: `
fallback_intent: UnsupportedRequest
intents:
  - name: GetProducts
    description: a
`,
		},
		{
			name: "fallback intent with slots",
			doc: `
fallback_intent: UnsupportedRequest
intents:
  - name: UnsupportedRequest
    description: fallback
    slots:
      - name: reason
        type: string
`,
		},
		{
			name: "no fallback_intent field",
			doc: `
intents:
  - name: GetProducts
    description: a
`,
		},
		{
			name: "empty intents",
			doc: `
fallback_intent: UnsupportedRequest
intents: []
`,
		},
		{
			name: "not yaml",
			doc:  "{{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeCatalogInvalid, apperrors.CodeOf(err))
		})
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intents.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o644))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, len(cat.Intents()))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCatalogInvalid, apperrors.CodeOf(err))
}

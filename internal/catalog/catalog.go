// Package catalog loads and holds the declarative intent catalog. The catalog
// is built once at startup and shared read-only across concurrent requests.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "revcloud-gateway/internal/common/errors"
)

// SlotType enumerates the declared slot value types.
type SlotType string

const (
	SlotTypeString  SlotType = "string"
	SlotTypeNumber  SlotType = "number"
	SlotTypeBoolean SlotType = "boolean"
	SlotTypeEnum    SlotType = "enum"
)

// KnownSlotType reports whether t is one of the declared slot types.
func KnownSlotType(t SlotType) bool {
	switch t {
	case SlotTypeString, SlotTypeNumber, SlotTypeBoolean, SlotTypeEnum:
		return true
	}
	return false
}

// Slot declares a named parameter an intent accepts or requires.
type Slot struct {
	Name        string   `yaml:"name" json:"name"`
	Type        SlotType `yaml:"type" json:"type"`
	Required    bool     `yaml:"required" json:"required"`
	Description string   `yaml:"description" json:"description"`
	Values      []string `yaml:"values,omitempty" json:"values,omitempty"` // enum only
}

// Intent declares a supported category of user request.
type Intent struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Slots       []Slot   `yaml:"slots,omitempty" json:"slots,omitempty"`
	Examples    []string `yaml:"examples,omitempty" json:"examples,omitempty"`
}

// document is the on-disk shape of the catalog configuration.
type document struct {
	Version        string   `yaml:"version" json:"version"`
	FallbackIntent string   `yaml:"fallback_intent" json:"fallback_intent"`
	Intents        []Intent `yaml:"intents" json:"intents"`
}

// Catalog is the immutable intent catalog. Never mutated after Load.
type Catalog struct {
	fallback  string
	intents   []Intent
	byName    map[string]*Intent
	promptDoc string
}

// Load reads, structurally validates, and semantically validates the catalog
// document at path. Any failure is a fatal CATALOG_INVALID error.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewCatalogInvalidError(fmt.Sprintf("read %s: %v", path, err))
	}
	return Parse(data)
}

// Parse builds a Catalog from raw YAML document bytes.
func Parse(data []byte) (*Catalog, error) {
	if err := validateDocumentSchema(data); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewCatalogInvalidError(fmt.Sprintf("parse yaml: %v", err))
	}

	if err := validateSemantics(&doc); err != nil {
		return nil, err
	}

	promptDoc, err := yaml.Marshal(doc)
	if err != nil {
		return nil, apperrors.NewCatalogInvalidError(fmt.Sprintf("serialize for prompt: %v", err))
	}

	cat := &Catalog{
		fallback:  doc.FallbackIntent,
		intents:   doc.Intents,
		byName:    make(map[string]*Intent, len(doc.Intents)),
		promptDoc: string(promptDoc),
	}
	for i := range cat.intents {
		cat.byName[cat.intents[i].Name] = &cat.intents[i]
	}
	return cat, nil
}

func validateSemantics(doc *document) error {
	if doc.FallbackIntent == "" {
		return apperrors.NewCatalogInvalidError("fallback_intent is required")
	}
	if len(doc.Intents) == 0 {
		return apperrors.NewCatalogInvalidError("at least one intent is required")
	}

	seen := make(map[string]bool, len(doc.Intents))
	for _, intent := range doc.Intents {
		if intent.Name == "" {
			return apperrors.NewCatalogInvalidError("intent with empty name")
		}
		if seen[intent.Name] {
			return apperrors.NewCatalogInvalidError(fmt.Sprintf("duplicate intent name: %s", intent.Name))
		}
		seen[intent.Name] = true

		slotSeen := make(map[string]bool, len(intent.Slots))
		for _, slot := range intent.Slots {
			if slot.Name == "" {
				return apperrors.NewCatalogInvalidError(fmt.Sprintf("intent %s: slot with empty name", intent.Name))
			}
			if slotSeen[slot.Name] {
				return apperrors.NewCatalogInvalidError(fmt.Sprintf("intent %s: duplicate slot name: %s", intent.Name, slot.Name))
			}
			slotSeen[slot.Name] = true

			if !KnownSlotType(slot.Type) {
				return apperrors.NewCatalogInvalidError(fmt.Sprintf("intent %s: slot %s: unknown type %q", intent.Name, slot.Name, slot.Type))
			}
			if slot.Type == SlotTypeEnum && len(slot.Values) == 0 {
				return apperrors.NewCatalogInvalidError(fmt.Sprintf("intent %s: slot %s: enum type requires values", intent.Name, slot.Name))
			}
		}
	}

	if !seen[doc.FallbackIntent] {
		return apperrors.NewCatalogInvalidError(fmt.Sprintf("fallback intent %s is not declared", doc.FallbackIntent))
	}
	if fb := findIntent(doc.Intents, doc.FallbackIntent); fb != nil && len(fb.Slots) > 0 {
		return apperrors.NewCatalogInvalidError("fallback intent must not declare slots")
	}
	return nil
}

func findIntent(intents []Intent, name string) *Intent {
	for i := range intents {
		if intents[i].Name == name {
			return &intents[i]
		}
	}
	return nil
}

// Lookup returns the intent definition by name.
func (c *Catalog) Lookup(name string) (*Intent, bool) {
	intent, ok := c.byName[name]
	return intent, ok
}

// Fallback returns the reserved fallback intent name.
func (c *Catalog) Fallback() string {
	return c.fallback
}

// IsFallback reports whether name is the reserved fallback intent.
func (c *Catalog) IsFallback(name string) bool {
	return name == c.fallback
}

// Intents returns intent definitions in declaration order.
func (c *Catalog) Intents() []Intent {
	return c.intents
}

// PromptDocument returns the YAML serialization of the catalog used to brief
// the understanding service on every call.
func (c *Catalog) PromptDocument() string {
	return c.promptDoc
}

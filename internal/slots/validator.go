// Package slots validates raw extracted slot values against the catalog's
// declared schema and coerces them to typed values. Validation is pure and
// synchronous; it never mutates the catalog or talks to external systems.
package slots

import (
	"strconv"
	"strings"

	"revcloud-gateway/internal/catalog"
	apperrors "revcloud-gateway/internal/common/errors"
)

// Validate checks raw slot values against the declared schema of intentName.
// Checks run in declaration order so the first reported failure is
// reproducible. Slots not declared on the intent are dropped.
func Validate(intentName string, raw map[string]string, cat *catalog.Catalog) (map[string]interface{}, error) {
	intent, ok := cat.Lookup(intentName)
	if !ok {
		return nil, apperrors.NewNoHandlerRegisteredError(intentName)
	}

	validated := make(map[string]interface{}, len(intent.Slots))
	for _, slot := range intent.Slots {
		value, present := raw[slot.Name]
		if !present || strings.TrimSpace(value) == "" {
			if slot.Required {
				return nil, apperrors.NewMissingSlotError(intentName, slot.Name)
			}
			continue
		}

		coerced, err := coerce(intentName, slot, value)
		if err != nil {
			return nil, err
		}
		validated[slot.Name] = coerced
	}

	return validated, nil
}

func coerce(intentName string, slot catalog.Slot, value string) (interface{}, error) {
	switch slot.Type {
	case catalog.SlotTypeString:
		return value, nil

	case catalog.SlotTypeNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, apperrors.NewSlotTypeMismatchError(intentName, slot.Name, string(slot.Type), value)
		}
		return n, nil

	case catalog.SlotTypeBoolean:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(value)))
		if err != nil {
			return nil, apperrors.NewSlotTypeMismatchError(intentName, slot.Name, string(slot.Type), value)
		}
		return b, nil

	case catalog.SlotTypeEnum:
		for _, allowed := range slot.Values {
			if strings.EqualFold(value, allowed) {
				// Normalize to the declared casing.
				return allowed, nil
			}
		}
		return nil, apperrors.NewSlotTypeMismatchError(intentName, slot.Name, string(slot.Type), value)
	}

	// Unknown types are rejected at catalog load; guard anyway.
	return nil, apperrors.NewSlotTypeMismatchError(intentName, slot.Name, string(slot.Type), value)
}

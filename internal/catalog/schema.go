package catalog

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	apperrors "revcloud-gateway/internal/common/errors"
)

// documentSchema is the structural contract for the catalog document. Semantic
// rules that a schema cannot express (duplicate names, fallback consistency)
// are checked separately in validateSemantics.
const documentSchema = `{
  "type": "object",
  "required": ["fallback_intent", "intents"],
  "properties": {
    "version": {"type": "string"},
    "fallback_intent": {"type": "string", "minLength": 1},
    "intents": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "description"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "slots": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "type"],
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "type": {"type": "string"},
                "required": {"type": "boolean"},
                "description": {"type": "string"},
                "values": {"type": "array", "items": {"type": "string"}}
              }
            }
          },
          "examples": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

func validateDocumentSchema(data []byte) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return apperrors.NewCatalogInvalidError(fmt.Sprintf("parse yaml: %v", err))
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return apperrors.NewCatalogInvalidError(fmt.Sprintf("schema validation: %v", err))
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return apperrors.NewCatalogInvalidError(strings.Join(msgs, "; "))
	}
	return nil
}

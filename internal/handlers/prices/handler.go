// Package prices implements the GetProductPrice intent: a pricebook lookup
// for one product identified by its product code.
package prices

import (
	"context"
	"errors"
	"fmt"

	apperrors "revcloud-gateway/internal/common/errors"
	"revcloud-gateway/internal/common/logger"
	"revcloud-gateway/internal/dispatch"
	"revcloud-gateway/internal/salesforce"
)

const IntentName = "GetProductPrice"

// PriceEntry is the normalized pricebook record returned to gateway clients.
type PriceEntry struct {
	ID          string  `json:"id"`
	ProductName string  `json:"product_name"`
	ProductCode string  `json:"product_code"`
	UnitPrice   float64 `json:"unit_price"`
}

// QueryClient is the slice of the Salesforce client this handler needs.
type QueryClient interface {
	Query(ctx context.Context, soql string) (*salesforce.QueryResult, error)
	QueryLimit() int
}

type Handler struct {
	backend QueryClient
	logger  logger.Logger
}

func NewHandler(backend QueryClient, log logger.Logger) *Handler {
	return &Handler{
		backend: backend,
		logger: log.With(map[string]interface{}{
			"intent": IntentName,
		}),
	}
}

// Handle looks up pricebook entries for the product_code slot. The slot is
// required by the catalog, so validation guarantees it is present here.
func (h *Handler) Handle(ctx context.Context, slots map[string]interface{}) (*dispatch.HandlerResult, error) {
	code, _ := slots["product_code"].(string)

	soql := fmt.Sprintf(
		"SELECT Id, UnitPrice, Product2.Name, Product2.ProductCode FROM PricebookEntry WHERE Product2.ProductCode = '%s' LIMIT %d",
		salesforce.EscapeSOQLString(code),
		h.backend.QueryLimit(),
	)
	h.logger.Info("querying pricebook", map[string]interface{}{
		"productCode": code,
		"soql":        soql,
	})

	result, err := h.backend.Query(ctx, soql)
	if err != nil {
		if errors.Is(err, salesforce.ErrUnavailable) {
			return nil, apperrors.NewBackendUnavailableError(IntentName, err)
		}
		return nil, apperrors.NewBackendError(IntentName, err)
	}

	entries := make([]PriceEntry, 0, len(result.Records))
	for _, record := range result.Records {
		entries = append(entries, PriceEntry{
			ID:          stringField(record, "Id"),
			ProductName: nestedStringField(record, "Product2", "Name"),
			ProductCode: nestedStringField(record, "Product2", "ProductCode"),
			UnitPrice:   numberField(record, "UnitPrice"),
		})
	}

	if len(entries) == 0 {
		return &dispatch.HandlerResult{
			Message: fmt.Sprintf("No price found for product '%s'.", code),
			Data:    []PriceEntry{},
		}, nil
	}

	first := entries[0]
	return &dispatch.HandlerResult{
		Message: fmt.Sprintf("%s (%s) is priced at %.2f.", first.ProductName, first.ProductCode, first.UnitPrice),
		Data:    entries,
	}, nil
}

func stringField(record map[string]interface{}, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}

func nestedStringField(record map[string]interface{}, parent, key string) string {
	if nested, ok := record[parent].(map[string]interface{}); ok {
		return stringField(nested, key)
	}
	return ""
}

func numberField(record map[string]interface{}, key string) float64 {
	if v, ok := record[key].(float64); ok {
		return v
	}
	return 0
}

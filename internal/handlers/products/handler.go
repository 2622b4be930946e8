// Package products implements the GetProducts intent: a read over the
// Product2 catalog object, optionally filtered by product family.
package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "revcloud-gateway/internal/common/errors"
	"revcloud-gateway/internal/common/logger"
	"revcloud-gateway/internal/dispatch"
	"revcloud-gateway/internal/salesforce"
)

const IntentName = "GetProducts"

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

// Handle fetches products, filtered by the product_family slot when present.
func (h *Handler) Handle(ctx context.Context, slots map[string]interface{}) (*dispatch.HandlerResult, error) {
	family, _ := slots["product_family"].(string)

	soql := buildSOQL(family, h.backend.QueryLimit())
	h.logger.Info("querying products", map[string]interface{}{
		"family": family,
		"soql":   soql,
	})

	result, err := h.backend.Query(ctx, soql)
	if err != nil {
		if errors.Is(err, salesforce.ErrUnavailable) {
			return nil, apperrors.NewBackendUnavailableError(IntentName, err)
		}
		return nil, apperrors.NewBackendError(IntentName, err)
	}

	items := make([]Product, 0, len(result.Records))
	for _, record := range result.Records {
		items = append(items, Product{
			ID:          stringField(record, "Id"),
			Name:        stringField(record, "Name"),
			Code:        stringField(record, "ProductCode"),
			Description: stringField(record, "Description"),
			Family:      stringField(record, "Family"),
		})
	}

	if len(items) == 0 {
		message := "No products found"
		if family != "" {
			message += fmt.Sprintf(" for category '%s'", family)
		}
		message += "."
		return &dispatch.HandlerResult{Message: message, Data: []Product{}}, nil
	}

	return &dispatch.HandlerResult{
		Message: fmt.Sprintf("Found %d products.", len(items)),
		Data:    items,
	}, nil
}

func buildSOQL(family string, limit int) string {
	var sb strings.Builder
	sb.WriteString("SELECT Id, Name, ProductCode, Description, Family FROM Product2")
	if family != "" {
		sb.WriteString(fmt.Sprintf(" WHERE Family = '%s'", salesforce.EscapeSOQLString(family)))
	}
	sb.WriteString(fmt.Sprintf(" LIMIT %d", limit))
	return sb.String()
}

func stringField(record map[string]interface{}, key string) string {
	if v, ok := record[key].(string); ok {
		return v
	}
	return ""
}

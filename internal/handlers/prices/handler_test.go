package prices

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "revcloud-gateway/internal/common/errors"
	"revcloud-gateway/internal/common/logger"
	"revcloud-gateway/internal/salesforce"
)

type stubBackend struct {
	lastSOQL string
	result   *salesforce.QueryResult
	err      error
}

func (s *stubBackend) Query(_ context.Context, soql string) (*salesforce.QueryResult, error) {
	s.lastSOQL = soql
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubBackend) QueryLimit() int { return 20 }

func TestHandle_PriceFound(t *testing.T) {
	backend := &stubBackend{
		result: &salesforce.QueryResult{
			TotalSize: 1,
			Done:      true,
			Records: []map[string]interface{}{
				{
					"Id":        "01u1",
					"UnitPrice": 199.99,
					"Product2": map[string]interface{}{
						"Name":        "Panel A",
						"ProductCode": "PA-1",
					},
				},
			},
		},
	}
	handler := NewHandler(backend, logger.NewTestLogger(t))

	result, err := handler.Handle(context.Background(), map[string]interface{}{
		"product_code": "PA-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Panel A (PA-1) is priced at 199.99.", result.Message)
	assert.Equal(t,
		"SELECT Id, UnitPrice, Product2.Name, Product2.ProductCode FROM PricebookEntry WHERE Product2.ProductCode = 'PA-1' LIMIT 20",
		backend.lastSOQL)

	entries, ok := result.Data.([]PriceEntry)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, PriceEntry{ID: "01u1", ProductName: "Panel A", ProductCode: "PA-1", UnitPrice: 199.99}, entries[0])
}

func TestHandle_CodeEscaped(t *testing.T) {
	backend := &stubBackend{result: &salesforce.QueryResult{Records: nil}}
	handler := NewHandler(backend, logger.NewTestLogger(t))

	_, err := handler.Handle(context.Background(), map[string]interface{}{
		"product_code": "PA-1' OR Name != '",
	})
	require.NoError(t, err)
	assert.Contains(t, backend.lastSOQL, `ProductCode = 'PA-1\' OR Name != \''`)
}

func TestHandle_NoPriceFound(t *testing.T) {
	backend := &stubBackend{result: &salesforce.QueryResult{Records: nil}}
	handler := NewHandler(backend, logger.NewTestLogger(t))

	result, err := handler.Handle(context.Background(), map[string]interface{}{
		"product_code": "UNKNOWN",
	})
	require.NoError(t, err)
	assert.Equal(t, "No price found for product 'UNKNOWN'.", result.Message)
}

func TestHandle_BackendFailures(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		backend := &stubBackend{err: fmt.Errorf("%w: timeout", salesforce.ErrUnavailable)}
		handler := NewHandler(backend, logger.NewTestLogger(t))

		_, err := handler.Handle(context.Background(), map[string]interface{}{"product_code": "PA-1"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeBackendUnavailable, apperrors.CodeOf(err))
	})

	t.Run("api error", func(t *testing.T) {
		backend := &stubBackend{err: &salesforce.APIError{StatusCode: 400, Body: "MALFORMED_QUERY"}}
		handler := NewHandler(backend, logger.NewTestLogger(t))

		_, err := handler.Handle(context.Background(), map[string]interface{}{"product_code": "PA-1"})
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeBackendError, apperrors.CodeOf(err))
	})
}

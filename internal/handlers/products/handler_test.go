package products

import (
	"context"
	"errors"
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
	limit    int
}

func (s *stubBackend) Query(_ context.Context, soql string) (*salesforce.QueryResult, error) {
	s.lastSOQL = soql
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubBackend) QueryLimit() int {
	if s.limit == 0 {
		return 20
	}
	return s.limit
}

func TestHandle_ListAllProducts(t *testing.T) {
	backend := &stubBackend{
		result: &salesforce.QueryResult{
			TotalSize: 2,
			Done:      true,
			Records: []map[string]interface{}{
				{"Id": "01t1", "Name": "Panel A", "ProductCode": "PA-1", "Description": "400W panel", "Family": "Solar panels"},
				{"Id": "01t2", "Name": "Inverter B", "ProductCode": "IB-2", "Family": "Inverters"},
			},
		},
	}
	handler := NewHandler(backend, logger.NewTestLogger(t))

	result, err := handler.Handle(context.Background(), map[string]interface{}{})
	require.NoError(t, err)

	assert.Equal(t, "Found 2 products.", result.Message)
	assert.Equal(t, "SELECT Id, Name, ProductCode, Description, Family FROM Product2 LIMIT 20", backend.lastSOQL)

	items, ok := result.Data.([]Product)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, Product{ID: "01t1", Name: "Panel A", Code: "PA-1", Description: "400W panel", Family: "Solar panels"}, items[0])
	assert.Equal(t, "", items[1].Description, "absent fields normalize to empty strings")
}

func TestHandle_FamilyFilterEscaped(t *testing.T) {
	backend := &stubBackend{
		result: &salesforce.QueryResult{
			Records: []map[string]interface{}{
				{"Id": "01t1", "Name": "Panel A", "Family": "O'Brien's panels"},
			},
		},
	}
	handler := NewHandler(backend, logger.NewTestLogger(t))

	_, err := handler.Handle(context.Background(), map[string]interface{}{
		"product_family": "O'Brien's panels",
	})
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT Id, Name, ProductCode, Description, Family FROM Product2 WHERE Family = 'O\'Brien\'s panels' LIMIT 20`,
		backend.lastSOQL)
}

func TestHandle_NoMatches(t *testing.T) {
	backend := &stubBackend{result: &salesforce.QueryResult{Records: nil}}
	handler := NewHandler(backend, logger.NewTestLogger(t))

	t.Run("unfiltered", func(t *testing.T) {
		result, err := handler.Handle(context.Background(), map[string]interface{}{})
		require.NoError(t, err)
		assert.Equal(t, "No products found.", result.Message)
	})

	t.Run("filtered", func(t *testing.T) {
		result, err := handler.Handle(context.Background(), map[string]interface{}{
			"product_family": "Batteries",
		})
		require.NoError(t, err)
		assert.Equal(t, "No products found for category 'Batteries'.", result.Message)
	})
}

func TestHandle_BackendUnavailable(t *testing.T) {
	backend := &stubBackend{
		err: fmt.Errorf("%w: connection refused", salesforce.ErrUnavailable),
	}
	handler := NewHandler(backend, logger.NewTestLogger(t))

	_, err := handler.Handle(context.Background(), map[string]interface{}{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBackendUnavailable, apperrors.CodeOf(err))
	assert.True(t, apperrors.AsStandard(err).Retryable)
}

func TestHandle_BackendError(t *testing.T) {
	backend := &stubBackend{
		err: errors.New("MALFORMED_QUERY"),
	}
	handler := NewHandler(backend, logger.NewTestLogger(t))

	_, err := handler.Handle(context.Background(), map[string]interface{}{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBackendError, apperrors.CodeOf(err))
	assert.False(t, apperrors.AsStandard(err).Retryable)
}

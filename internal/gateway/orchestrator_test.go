package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revcloud-gateway/internal/catalog"
	"revcloud-gateway/internal/classifier"
	apperrors "revcloud-gateway/internal/common/errors"
	"revcloud-gateway/internal/common/logger"
	"revcloud-gateway/internal/dispatch"
)

// ==========================
// Test Doubles
// ==========================

// stubClassifier returns a canned classification per query, deterministically.
type stubClassifier struct {
	results map[string]*classifier.Result
	err     error
	calls   int
}

func (s *stubClassifier) Classify(ctx context.Context, query string, cat *catalog.Catalog) (*classifier.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.results[query]; ok {
		return r, nil
	}
	return &classifier.Result{Intent: cat.Fallback(), Slots: map[string]string{}}, nil
}

type recordingAuditor struct {
	entries []AuditEntry
	err     error
}

func (a *recordingAuditor) Record(ctx context.Context, entry AuditEntry) error {
	a.entries = append(a.entries, entry)
	return a.err
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse([]byte(`
fallback_intent: UnsupportedRequest
intents:
  - name: GetProducts
    description: Fetch products from the catalog
    slots:
      - name: product_family
        type: string
        required: false
  - name: GetProductPrice
    description: Fetch the list price for a product
    slots:
      - name: product_code
        type: string
        required: true
  - name: UnsupportedRequest
    description: Reserved fallback intent
`))
	require.NoError(t, err)
	return cat
}

type productCall struct {
	slots map[string]interface{}
}

func newTestOrchestrator(t *testing.T, cls classifier.Classifier) (*Orchestrator, *[]productCall) {
	t.Helper()
	cat := testCatalog(t)

	calls := &[]productCall{}
	reg := dispatch.NewRegistry(logger.NewNoOpLogger())
	require.NoError(t, reg.Register("GetProducts", dispatch.HandlerFunc(func(ctx context.Context, slots map[string]interface{}) (*dispatch.HandlerResult, error) {
		*calls = append(*calls, productCall{slots: slots})
		return &dispatch.HandlerResult{
			Message: "Found 2 products.",
			Data:    []map[string]string{{"name": "Panel A"}, {"name": "Panel B"}},
		}, nil
	})))
	require.NoError(t, reg.Register("GetProductPrice", dispatch.HandlerFunc(func(ctx context.Context, slots map[string]interface{}) (*dispatch.HandlerResult, error) {
		return &dispatch.HandlerResult{Message: "Found 1 price."}, nil
	})))
	require.NoError(t, reg.ValidateAgainstCatalog(cat))

	return NewOrchestrator(cat, cls, reg, logger.NewTestLogger(t)), calls
}

// ==========================
// End-to-End Scenarios
// ==========================

func TestHandle_SuccessWithoutSlots(t *testing.T) {
	cls := &stubClassifier{results: map[string]*classifier.Result{
		"List products.": {Intent: "GetProducts", Slots: map[string]string{}},
	}}
	orch, calls := newTestOrchestrator(t, cls)

	resp := orch.Handle(context.Background(), "List products.")

	assert.Equal(t, StatusSuccess, resp.Status)
	assert.Equal(t, "GetProducts", resp.Intent)
	assert.Equal(t, "Found 2 products.", resp.Message)
	assert.NotEmpty(t, resp.RequestID)
	require.Len(t, *calls, 1)
	assert.Empty(t, (*calls)[0].slots, "handler invoked with no filter slots")
}

func TestHandle_SuccessWithExtractedSlot(t *testing.T) {
	cls := &stubClassifier{results: map[string]*classifier.Result{
		"Show me all Solar panels.": {
			Intent: "GetProducts",
			Slots:  map[string]string{"product_family": "Solar panels"},
		},
	}}
	orch, calls := newTestOrchestrator(t, cls)

	resp := orch.Handle(context.Background(), "Show me all Solar panels.")

	assert.Equal(t, StatusSuccess, resp.Status)
	require.Len(t, *calls, 1)
	assert.Equal(t, "Solar panels", (*calls)[0].slots["product_family"])
}

func TestHandle_UnsupportedQuery(t *testing.T) {
	cls := &stubClassifier{} // defaults to fallback
	orch, calls := newTestOrchestrator(t, cls)

	resp := orch.Handle(context.Background(), "What is the current time?")

	assert.Equal(t, StatusUnsupported, resp.Status)
	assert.Equal(t, "What is the current time?", resp.Query)
	assert.NotEmpty(t, resp.Message)
	assert.Contains(t, resp.Suggestion, "Fetch products from the catalog")
	assert.Empty(t, *calls, "no handler invoked for the fallback intent")
	assert.Equal(t, 200, resp.HTTPStatus())
}

func TestHandle_ClassifierUnavailable(t *testing.T) {
	cls := &stubClassifier{err: apperrors.NewClassifierUnavailableError(assert.AnError)}
	orch, calls := newTestOrchestrator(t, cls)

	resp := orch.Handle(context.Background(), "List products.")

	require.Equal(t, StatusError, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(apperrors.ErrCodeClassifierUnavailable), resp.Error.Kind)
	assert.True(t, resp.Error.Retryable)
	assert.Empty(t, *calls, "no handler invoked on infra failure")
	assert.NotEqual(t, StatusUnsupported, resp.Status, "infra failure is not unsupported")
	assert.Equal(t, 502, resp.HTTPStatus())
}

// ==========================
// Validation and Dispatch Paths
// ==========================

func TestHandle_MissingRequiredSlot(t *testing.T) {
	cls := &stubClassifier{results: map[string]*classifier.Result{
		"How much is it?": {Intent: "GetProductPrice", Slots: map[string]string{}},
	}}
	orch, _ := newTestOrchestrator(t, cls)

	resp := orch.Handle(context.Background(), "How much is it?")

	require.Equal(t, StatusError, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(apperrors.ErrCodeMissingSlot), resp.Error.Kind)
	assert.Equal(t, "product_code", resp.Error.Slot)
	assert.Equal(t, 422, resp.HTTPStatus())
}

func TestHandle_BackendErrorForwarded(t *testing.T) {
	cat := testCatalog(t)
	cls := &stubClassifier{results: map[string]*classifier.Result{
		"List products.": {Intent: "GetProducts", Slots: map[string]string{}},
	}}

	reg := dispatch.NewRegistry(logger.NewNoOpLogger())
	require.NoError(t, reg.Register("GetProducts", dispatch.HandlerFunc(func(ctx context.Context, slots map[string]interface{}) (*dispatch.HandlerResult, error) {
		return nil, apperrors.NewBackendUnavailableError("GetProducts", assert.AnError)
	})))
	require.NoError(t, reg.Register("GetProductPrice", dispatch.HandlerFunc(func(ctx context.Context, slots map[string]interface{}) (*dispatch.HandlerResult, error) {
		return &dispatch.HandlerResult{}, nil
	})))

	orch := NewOrchestrator(cat, cls, reg, logger.NewNoOpLogger())
	resp := orch.Handle(context.Background(), "List products.")

	require.Equal(t, StatusError, resp.Status)
	assert.Equal(t, string(apperrors.ErrCodeBackendUnavailable), resp.Error.Kind)
	assert.Equal(t, 502, resp.HTTPStatus())
}

func TestHandle_OutcomeKindIsStable(t *testing.T) {
	cls := &stubClassifier{results: map[string]*classifier.Result{
		"List products.": {Intent: "GetProducts", Slots: map[string]string{}},
	}}
	orch, _ := newTestOrchestrator(t, cls)

	first := orch.Handle(context.Background(), "List products.")
	second := orch.Handle(context.Background(), "List products.")
	assert.Equal(t, first.Status, second.Status)

	firstUnknown := orch.Handle(context.Background(), "sing a song")
	secondUnknown := orch.Handle(context.Background(), "sing a song")
	assert.Equal(t, StatusUnsupported, firstUnknown.Status)
	assert.Equal(t, firstUnknown.Status, secondUnknown.Status)
}

// ==========================
// Audit Recording
// ==========================

func TestHandle_AuditRecorded(t *testing.T) {
	cls := &stubClassifier{results: map[string]*classifier.Result{
		"List products.": {Intent: "GetProducts", Slots: map[string]string{}},
	}}
	orch, _ := newTestOrchestrator(t, cls)

	auditor := &recordingAuditor{}
	orch.WithAuditor(auditor)

	resp := orch.Handle(context.Background(), "List products.")

	require.Len(t, auditor.entries, 1)
	entry := auditor.entries[0]
	assert.Equal(t, resp.RequestID, entry.ID)
	assert.Equal(t, "List products.", entry.Query)
	assert.Equal(t, "GetProducts", entry.Intent)
	assert.Equal(t, "success", entry.Outcome)
	assert.Empty(t, entry.ErrCode)
}

func TestHandle_AuditFailureDoesNotAffectOutcome(t *testing.T) {
	cls := &stubClassifier{results: map[string]*classifier.Result{
		"List products.": {Intent: "GetProducts", Slots: map[string]string{}},
	}}
	orch, _ := newTestOrchestrator(t, cls)
	orch.WithAuditor(&recordingAuditor{err: assert.AnError})

	resp := orch.Handle(context.Background(), "List products.")
	assert.Equal(t, StatusSuccess, resp.Status)
}

func TestHandle_AuditCarriesErrorCode(t *testing.T) {
	cls := &stubClassifier{err: apperrors.NewClassifierUnavailableError(assert.AnError)}
	orch, _ := newTestOrchestrator(t, cls)

	auditor := &recordingAuditor{}
	orch.WithAuditor(auditor)

	orch.Handle(context.Background(), "List products.")
	require.Len(t, auditor.entries, 1)
	assert.Equal(t, string(apperrors.ErrCodeClassifierUnavailable), auditor.entries[0].ErrCode)
	assert.Equal(t, "error", auditor.entries[0].Outcome)
}

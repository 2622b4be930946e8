// Package gateway drives the per-request pipeline: classify the query against
// the catalog, validate the extracted slots, and dispatch to the registered
// backend handler. The orchestrator holds no cross-request state; concurrent
// requests share only the read-only catalog.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"revcloud-gateway/internal/catalog"
	"revcloud-gateway/internal/classifier"
	apperrors "revcloud-gateway/internal/common/errors"
	"revcloud-gateway/internal/common/logger"
	"revcloud-gateway/internal/common/metrics"
	"revcloud-gateway/internal/common/observability"
	"revcloud-gateway/internal/dispatch"
	"revcloud-gateway/internal/slots"
)

const unsupportedMessage = "I'm sorry, I can't help with that request. I am focused on the Revenue Cloud product catalog."

// AuditEntry is one request's outcome for the audit log.
type AuditEntry struct {
	ID       string
	Query    string
	Intent   string
	Outcome  string
	ErrCode  string
	Duration time.Duration
}

// Auditor records request outcomes. Recording is best-effort; failures are
// logged by the orchestrator and never surfaced to the caller.
type Auditor interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// Orchestrator is the single entry point for query handling.
type Orchestrator struct {
	catalog    *catalog.Catalog
	classifier classifier.Classifier
	registry   *dispatch.Registry
	auditor    Auditor
	obs        *observability.Observability
	logger     logger.Logger
	suggestion string
}

func NewOrchestrator(cat *catalog.Catalog, cls classifier.Classifier, reg *dispatch.Registry, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		catalog:    cat,
		classifier: cls,
		registry:   reg,
		logger: log.With(map[string]interface{}{
			"component": "orchestrator",
		}),
		suggestion: buildSuggestion(cat),
	}
}

// WithAuditor enables best-effort audit recording.
func (o *Orchestrator) WithAuditor(a Auditor) *Orchestrator {
	o.auditor = a
	return o
}

// WithObservability enables otel request metrics.
func (o *Orchestrator) WithObservability(obs *observability.Observability) *Orchestrator {
	o.obs = obs
	return o
}

// Handle runs one query through classify -> validate -> dispatch and converts
// the outcome into the uniform response. The fallback intent is handled here
// directly and never dispatched to a backend handler.
func (o *Orchestrator) Handle(ctx context.Context, query string) *Response {
	requestID := uuid.NewString()
	start := time.Now()
	log := o.logger.With(map[string]interface{}{"requestId": requestID})

	log.Info("received query", map[string]interface{}{"query": query})

	resp := o.run(ctx, log, requestID, query)

	duration := time.Since(start)
	o.record(ctx, requestID, query, resp, duration)

	log.Info("request finished", map[string]interface{}{
		"status":     string(resp.Status),
		"intent":     resp.Intent,
		"durationMs": duration.Milliseconds(),
	})
	return resp
}

func (o *Orchestrator) run(ctx context.Context, log logger.Logger, requestID, query string) *Response {
	// Classifying
	result, err := o.classifier.Classify(ctx, query, o.catalog)
	if err != nil {
		// An infra failure is not the same as "I don't understand".
		log.WithError(err).Error("classification failed", nil)
		return errorResponse(requestID, err)
	}

	// Unsupported
	if o.catalog.IsFallback(result.Intent) {
		return &Response{
			Status:     StatusUnsupported,
			RequestID:  requestID,
			Message:    unsupportedMessage,
			Query:      query,
			Suggestion: o.suggestion,
		}
	}

	// Validating
	validated, err := slots.Validate(result.Intent, result.Slots, o.catalog)
	if err != nil {
		log.WithError(err).Warn("slot validation failed", map[string]interface{}{
			"intent": result.Intent,
			"slot":   apperrors.AsStandard(err).Slot(),
		})
		return errorResponse(requestID, err)
	}

	// Dispatching
	handlerResult, err := o.registry.Dispatch(ctx, result.Intent, validated)
	if err != nil {
		log.WithError(err).Error("dispatch failed", map[string]interface{}{
			"intent": result.Intent,
		})
		return errorResponse(requestID, err)
	}

	return &Response{
		Status:    StatusSuccess,
		RequestID: requestID,
		Intent:    result.Intent,
		Message:   handlerResult.Message,
		Data:      handlerResult.Data,
	}
}

func (o *Orchestrator) record(ctx context.Context, requestID, query string, resp *Response, duration time.Duration) {
	outcome := string(resp.Status)
	metrics.GatewayRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.GatewayRequestDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if o.obs != nil {
		o.obs.RecordRequest(ctx, outcome)
		o.obs.RecordRequestDuration(ctx, duration, outcome)
	}

	if o.auditor == nil {
		return
	}
	entry := AuditEntry{
		ID:       requestID,
		Query:    query,
		Intent:   resp.Intent,
		Outcome:  outcome,
		Duration: duration,
	}
	if resp.Error != nil {
		entry.ErrCode = resp.Error.Kind
	}
	if err := o.auditor.Record(ctx, entry); err != nil {
		o.logger.WithError(err).Warn("audit record failed", map[string]interface{}{
			"requestId": requestID,
		})
	}
}

func buildSuggestion(cat *catalog.Catalog) string {
	var supported []string
	for _, intent := range cat.Intents() {
		if cat.IsFallback(intent.Name) {
			continue
		}
		if intent.Description != "" {
			supported = append(supported, strings.TrimRight(intent.Description, "."))
		}
	}
	if len(supported) == 0 {
		return ""
	}
	return fmt.Sprintf("Supported requests: %s.", strings.Join(supported, "; "))
}

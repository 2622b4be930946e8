// Package dispatch routes a resolved, validated intent to its registered
// backend handler. The registry is fixed at startup and validated for
// completeness against the catalog before the gateway accepts traffic.
package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"revcloud-gateway/internal/catalog"
	apperrors "revcloud-gateway/internal/common/errors"
	"revcloud-gateway/internal/common/logger"
	"revcloud-gateway/internal/common/metrics"
)

// HandlerResult is a handler's normalized success payload.
type HandlerResult struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Handler executes the backend action for one intent. Handlers may perform
// network I/O against the backend data system; their outcome is surfaced
// unchanged by the dispatcher.
type Handler interface {
	Handle(ctx context.Context, slots map[string]interface{}) (*HandlerResult, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, slots map[string]interface{}) (*HandlerResult, error)

func (f HandlerFunc) Handle(ctx context.Context, slots map[string]interface{}) (*HandlerResult, error) {
	return f(ctx, slots)
}

// Registry maps intent names to handlers. Built once at startup; read-only
// while serving.
type Registry struct {
	handlers map[string]Handler
	logger   logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		logger: log.With(map[string]interface{}{
			"component": "dispatcher",
		}),
	}
}

// Register binds a handler to an intent name. Registering the same intent
// twice is a programming error and fails loudly.
func (r *Registry) Register(intent string, handler Handler) error {
	if _, exists := r.handlers[intent]; exists {
		return fmt.Errorf("handler already registered for intent %s", intent)
	}
	r.handlers[intent] = handler
	return nil
}

// ValidateAgainstCatalog checks at startup that every non-fallback catalog
// intent has exactly one handler and that no handler targets an undeclared
// intent. The runtime path still guards NO_HANDLER_REGISTERED.
func (r *Registry) ValidateAgainstCatalog(cat *catalog.Catalog) error {
	var missing []string
	for _, intent := range cat.Intents() {
		if cat.IsFallback(intent.Name) {
			continue
		}
		if _, ok := r.handlers[intent.Name]; !ok {
			missing = append(missing, intent.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("catalog intents without handlers: %s", strings.Join(missing, ", "))
	}

	var unknown []string
	for name := range r.handlers {
		if _, ok := cat.Lookup(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("handlers registered for undeclared intents: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// Dispatch invokes the handler registered for intent with the validated slots
// and surfaces the handler's outcome unchanged, tagged with the intent name.
func (r *Registry) Dispatch(ctx context.Context, intent string, slots map[string]interface{}) (*HandlerResult, error) {
	handler, ok := r.handlers[intent]
	if !ok {
		return nil, apperrors.NewNoHandlerRegisteredError(intent)
	}

	r.logger.Info("dispatching intent", map[string]interface{}{
		"intent":    intent,
		"slotCount": len(slots),
	})

	start := time.Now()
	result, err := handler.Handle(ctx, slots)
	metrics.HandlerDuration.WithLabelValues(intent).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.HandlerInvocationsTotal.WithLabelValues(intent, "error").Inc()
		return nil, err
	}

	metrics.HandlerInvocationsTotal.WithLabelValues(intent, "success").Inc()
	return result, nil
}

// Package audit persists per-request outcomes to Postgres. Recording is
// best-effort: the orchestrator logs and swallows failures, so a down audit
// database never affects query handling.
package audit

import (
	"context"
	"fmt"

	"revcloud-gateway/internal/common/config"
	"revcloud-gateway/internal/common/database"
	"revcloud-gateway/internal/common/logger"
	"revcloud-gateway/internal/gateway"
)

const insertSQL = `
	INSERT INTO gateway_requests (id, query, intent, outcome, error_code, duration_ms, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())`

// Store writes audit entries through the shared Postgres client.
type Store struct {
	db      *database.PostgresClient
	timeout config.AuditConfig
	logger  logger.Logger
}

func NewStore(db *database.PostgresClient, cfg config.AuditConfig, log logger.Logger) *Store {
	return &Store{
		db:      db,
		timeout: cfg,
		logger: log.With(map[string]interface{}{
			"component": "audit-store",
		}),
	}
}

// Record inserts one request outcome. It runs on its own deadline so a slow
// database cannot hold the request path open.
func (s *Store) Record(ctx context.Context, entry gateway.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout.GetTimeout())
	defer cancel()

	_, err := s.db.Exec(ctx, insertSQL,
		entry.ID,
		entry.Query,
		entry.Intent,
		entry.Outcome,
		nullable(entry.ErrCode),
		entry.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	s.logger.Debug("audit entry recorded", map[string]interface{}{
		"requestId": entry.ID,
		"outcome":   entry.Outcome,
	})
	return nil
}

// nullable maps an empty error code to SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

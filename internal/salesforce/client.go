// Package salesforce is the REST client for the backend catalog/CRM system.
// It owns session management and retry-on-expired-token; the gateway core
// above it never retries.
package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"revcloud-gateway/internal/common/config"
	"revcloud-gateway/internal/common/database"
	"revcloud-gateway/internal/common/logger"
)

// ErrUnavailable marks connectivity and server-side failures reaching
// Salesforce, as opposed to request-level API errors.
var ErrUnavailable = errors.New("salesforce unavailable")

// APIError is a request-level error returned by the Salesforce API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("salesforce api error (status %d): %s", e.StatusCode, e.Body)
}

// QueryResult is the decoded response of a SOQL query.
type QueryResult struct {
	TotalSize int                      `json:"totalSize"`
	Done      bool                     `json:"done"`
	Records   []map[string]interface{} `json:"records"`
}

// Client executes SOQL queries against the Salesforce REST API.
type Client struct {
	config     config.SalesforceConfig
	tokens     *TokenManager
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg config.SalesforceConfig, cache *database.RedisClient, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		tokens: NewTokenManager(cfg, cache, log),
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		logger: log.With(map[string]interface{}{
			"component": "salesforce-client",
		}),
	}
}

// Ping authenticates once, verifying credentials and connectivity. Used as a
// startup probe.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.tokens.Session(ctx)
	return err
}

// QueryLimit returns the configured max records per query.
func (c *Client) QueryLimit() int {
	return c.config.QueryLimit
}

// Query runs a SOQL query. An expired session (401) is refreshed and retried
// once; all other failures surface to the caller.
func (c *Client) Query(ctx context.Context, soql string) (*QueryResult, error) {
	result, err := c.query(ctx, soql)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("session rejected, re-authenticating", nil)
		c.tokens.Invalidate(ctx)
		result, err = c.query(ctx, soql)
	}
	return result, err
}

func (c *Client) query(ctx context.Context, soql string) (*QueryResult, error) {
	session, err := c.tokens.Session(ctx)
	if err != nil {
		return nil, err
	}

	queryURL := fmt.Sprintf("%s/services/data/%s/query?q=%s",
		strings.TrimRight(session.InstanceURL, "/"),
		c.config.APIVersion,
		url.QueryEscape(soql),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("executing soql query", map[string]interface{}{
		"soql": soql,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode query response: %w", err)
	}
	return &result, nil
}

// EscapeSOQLString escapes a user-supplied value for inclusion in a
// single-quoted SOQL literal.
func EscapeSOQLString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return value
}

package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"revcloud-gateway/internal/common/config"
	"revcloud-gateway/internal/common/database"
	"revcloud-gateway/internal/common/logger"
)

const sessionCacheKey = "salesforce:session"

// Session holds the credentials for one authenticated Salesforce API session.
type Session struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
}

// TokenManager authenticates via the OAuth2 username-password flow and caches
// the session in memory with a TTL, optionally backed by Redis so separate
// gateway processes share one session.
type TokenManager struct {
	config     config.SalesforceConfig
	httpClient *http.Client
	cache      *database.RedisClient // optional
	logger     logger.Logger

	mu        sync.Mutex
	session   *Session
	expiresAt time.Time
}

func NewTokenManager(cfg config.SalesforceConfig, cache *database.RedisClient, log logger.Logger) *TokenManager {
	return &TokenManager{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		cache: cache,
		logger: log.With(map[string]interface{}{
			"component": "salesforce-auth",
		}),
	}
}

// Session returns a cached session or authenticates for a fresh one.
func (m *TokenManager) Session(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil && time.Now().Before(m.expiresAt) {
		return m.session, nil
	}

	if session := m.fromRedis(ctx); session != nil {
		m.session = session
		m.expiresAt = time.Now().Add(m.config.GetSessionTTL())
		return session, nil
	}

	session, err := m.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	m.session = session
	m.expiresAt = time.Now().Add(m.config.GetSessionTTL())
	m.toRedis(ctx, session)
	return session, nil
}

// Invalidate drops the cached session, forcing re-authentication on the next
// call. Used after the API rejects a token.
func (m *TokenManager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.expiresAt = time.Time{}
	if m.cache != nil {
		if err := m.cache.Del(ctx, sessionCacheKey); err != nil {
			m.logger.WithError(err).Warn("failed to drop cached session", nil)
		}
	}
}

func (m *TokenManager) authenticate(ctx context.Context) (*Session, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", m.config.ClientID)
	form.Set("client_secret", m.config.ClientSecret)
	form.Set("username", m.config.Username)
	form.Set("password", m.config.Password)

	authURL := strings.TrimRight(m.config.Domain, "/") + "/services/oauth2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: token endpoint: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("authentication failed (status %d): %s", resp.StatusCode, string(body))
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal auth response: %w", err)
	}
	if session.AccessToken == "" || session.InstanceURL == "" {
		return nil, fmt.Errorf("auth response missing access_token or instance_url")
	}

	m.logger.Info("salesforce session obtained", map[string]interface{}{
		"instanceUrl": session.InstanceURL,
	})
	return &session, nil
}

func (m *TokenManager) fromRedis(ctx context.Context) *Session {
	if m.cache == nil {
		return nil
	}
	raw, err := m.cache.Get(ctx, sessionCacheKey)
	if err != nil {
		return nil
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		m.logger.WithError(err).Warn("discarding undecodable cached session", nil)
		return nil
	}
	if session.AccessToken == "" || session.InstanceURL == "" {
		return nil
	}
	return &session
}

func (m *TokenManager) toRedis(ctx context.Context, session *Session) {
	if m.cache == nil {
		return
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	if err := m.cache.Set(ctx, sessionCacheKey, string(raw), m.config.GetSessionTTL()); err != nil {
		m.logger.WithError(err).Warn("failed to cache session", nil)
	}
}

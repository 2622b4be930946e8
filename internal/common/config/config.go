// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	GenAI      GenAIConfig      `mapstructure:"genai"`
	Salesforce SalesforceConfig `mapstructure:"salesforce"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
}

// GetReadTimeout returns the HTTP read timeout as a duration.
func (s ServerConfig) GetReadTimeout() time.Duration {
	if s.ReadTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.ReadTimeout) * time.Millisecond
}

// GetWriteTimeout returns the HTTP write timeout as a duration.
func (s ServerConfig) GetWriteTimeout() time.Duration {
	if s.WriteTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.WriteTimeout) * time.Millisecond
}

// GetShutdownTimeout returns the graceful-drain window as a duration.
func (s ServerConfig) GetShutdownTimeout() time.Duration {
	if s.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.ShutdownTimeout) * time.Millisecond
}

// CatalogConfig locates the declarative intent catalog document.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// GenAIConfig holds settings for the language-understanding service.
type GenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// GetTimeout returns the understanding-service call timeout as a duration.
func (g GenAIConfig) GetTimeout() time.Duration {
	if g.Timeout <= 0 {
		return 10 * time.Second
	}
	return time.Duration(g.Timeout) * time.Millisecond
}

// SalesforceConfig holds settings for the backend catalog/CRM system.
type SalesforceConfig struct {
	Domain       string `mapstructure:"domain"` // e.g. https://login.salesforce.com
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"` // password + security token
	APIVersion   string `mapstructure:"api_version"`
	Timeout      int    `mapstructure:"timeout"`       // milliseconds
	SessionTTL   int    `mapstructure:"session_ttl"`   // seconds
	QueryLimit   int    `mapstructure:"query_limit"`   // max records per SOQL query
	ProbeOnBoot  bool   `mapstructure:"probe_on_boot"` // auth check at startup
}

// GetTimeout returns the backend call timeout as a duration.
func (s SalesforceConfig) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.Timeout) * time.Millisecond
}

// GetSessionTTL returns how long a cached session is trusted.
func (s SalesforceConfig) GetSessionTTL() time.Duration {
	if s.SessionTTL <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(s.SessionTTL) * time.Second
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuditConfig controls the request audit log.
type AuditConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // milliseconds
}

// GetTimeout returns the per-insert audit timeout as a duration.
func (a AuditConfig) GetTimeout() time.Duration {
	if a.Timeout <= 0 {
		return 2 * time.Second
	}
	return time.Duration(a.Timeout) * time.Millisecond
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

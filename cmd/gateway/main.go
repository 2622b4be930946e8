// cmd/gateway/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"revcloud-gateway/internal/audit"
	"revcloud-gateway/internal/catalog"
	"revcloud-gateway/internal/classifier"
	"revcloud-gateway/internal/common/config"
	"revcloud-gateway/internal/common/database"
	"revcloud-gateway/internal/common/logger"
	"revcloud-gateway/internal/common/observability"
	"revcloud-gateway/internal/dispatch"
	"revcloud-gateway/internal/gateway"
	"revcloud-gateway/internal/handlers/prices"
	"revcloud-gateway/internal/handlers/products"
	"revcloud-gateway/internal/salesforce"
	"revcloud-gateway/internal/server"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting intent gateway...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("intent-gateway")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Intent Catalog ---
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err), zap.String("path", cfg.Catalog.Path))
	}
	zapLog.Info("intent catalog loaded",
		zap.Int("intents", len(cat.Intents())),
		zap.String("fallback", cat.Fallback()),
	)

	// --- Redis (optional, shared Salesforce session cache) ---
	var redis *database.RedisClient
	if cfg.Database.Redis.Enabled {
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis failed", zap.Error(err))
		}
		if err := redis.Ping(ctx); err != nil {
			zapLog.Fatal("redis ping failed", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
	}

	// --- Salesforce Client ---
	sfClient := salesforce.NewClient(cfg.Salesforce, redis, log)
	if cfg.Salesforce.ProbeOnBoot {
		if err := sfClient.Ping(ctx); err != nil {
			// The gateway still starts; requests fail with a retryable error
			// until the backend recovers.
			zapLog.Warn("salesforce startup probe failed", zap.Error(err))
		} else {
			zapLog.Info("Salesforce connected successfully")
		}
	}

	// --- Classifier ---
	cls := classifier.NewGenAIClassifier(cfg.GenAI, log)

	// --- Handler Registry ---
	reg := dispatch.NewRegistry(log)
	if err := reg.Register(products.IntentName, products.NewHandler(sfClient, log)); err != nil {
		zapLog.Fatal("handler registration failed", zap.Error(err))
	}
	if err := reg.Register(prices.IntentName, prices.NewHandler(sfClient, log)); err != nil {
		zapLog.Fatal("handler registration failed", zap.Error(err))
	}
	if err := reg.ValidateAgainstCatalog(cat); err != nil {
		zapLog.Fatal("handler registry does not cover the catalog", zap.Error(err))
	}
	zapLog.Info("All intent handlers registered successfully")

	// --- Orchestrator ---
	orch := gateway.NewOrchestrator(cat, cls, reg, log).WithObservability(obs)

	// --- Audit Store (optional) ---
	if cfg.Audit.Enabled {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres failed", zap.Error(err))
		}
		if err := pg.Ping(ctx); err != nil {
			zapLog.Fatal("postgres ping failed", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		orch.WithAuditor(audit.NewStore(pg, cfg.Audit, log))
	}

	// --- HTTP Server ---
	srv := server.New(cfg.Server, orch, log)
	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down http server", zap.Error(err))
	}

	zapLog.Info("Intent gateway stopped gracefully")
}

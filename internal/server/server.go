// Package server is the HTTP boundary: one gateway endpoint plus health and
// metrics. All intent semantics live below in the gateway orchestrator.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"revcloud-gateway/internal/common/config"
	"revcloud-gateway/internal/common/logger"
	"revcloud-gateway/internal/gateway"
)

// queryRequest is the only request body the gateway accepts.
type queryRequest struct {
	Query string `json:"query" binding:"required"`
}

// Server wires the gin engine around the orchestrator.
type Server struct {
	config     config.ServerConfig
	engine     *gin.Engine
	httpServer *http.Server
	gateway    *gateway.Orchestrator
	logger     logger.Logger
}

func New(cfg config.ServerConfig, orch *gateway.Orchestrator, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		config:  cfg,
		engine:  engine,
		gateway: orch,
		logger: log.With(map[string]interface{}{
			"component": "http-server",
		}),
	}
	s.registerMiddleware()
	s.registerRoutes()
	return s
}

func (s *Server) registerMiddleware() {
	corsConfig := cors.DefaultConfig()
	if len(s.config.AllowedOrigins) == 0 || contains(s.config.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = s.config.AllowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	s.engine.Use(cors.New(corsConfig))
}

func (s *Server) registerRoutes() {
	s.engine.POST("/api/gateway", s.handleGateway)
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) handleGateway(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error": gin.H{
				"kind":    "BAD_REQUEST",
				"message": "request body must be JSON with a non-empty 'query' field",
			},
		})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error": gin.H{
				"kind":    "BAD_REQUEST",
				"message": "'query' must not be blank",
			},
		})
		return
	}

	resp := s.gateway.Handle(c.Request.Context(), req.Query)
	c.JSON(resp.HTTPStatus(), resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Router exposes the engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Start blocks serving HTTP until the server is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.GetReadTimeout(),
		WriteTimeout: s.config.GetWriteTimeout(),
	}

	s.logger.Info("http server listening", map[string]interface{}{
		"address": addr,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// Package http assembles the gin engine: global middleware, health
// endpoints, swagger docs, and every controller's routes under /api/v1.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginswagger "github.com/swaggo/gin-swagger"

	_ "github.com/rendis/esigncore/docs"
	"github.com/rendis/esigncore/internal/config"
	"github.com/rendis/esigncore/internal/http/controller"
	"github.com/rendis/esigncore/internal/http/middleware"
	"github.com/rendis/esigncore/internal/service/identity"
)

// @title           e-signcore API
// @version         1.0
// @description     Document upload, field-fill, and audit-trail API for a multi-tenant e-signing backend.

// @license.name    MIT

// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and a JWT.

// Server wraps the gin engine with the http.Server it's served through.
type Server struct {
	engine *gin.Engine
	cfg    *config.ServerConfig
}

// New builds the engine, wiring every controller's routes. Auth-gated
// routes (document, field, and the authenticated /account endpoints) sit
// behind middleware.Auth; /auth, /account/create, and /account/resurrect
// stay public.
func New(
	cfg *config.Config,
	identitySvc *identity.Service,
	auth *controller.AuthController,
	documents *controller.DocumentController,
	fields *controller.FieldController,
) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())

	engine.GET("/health", healthHandler)
	engine.GET("/ready", readyHandler)
	engine.GET("/swagger/*any", ginswagger.WrapHandler(swaggerfiles.Handler))

	v1 := engine.Group("/api/v1")
	v1.Use(middleware.Operation())
	v1.Use(middleware.ClientIP())
	v1.Use(middleware.RequestTimeout(cfg.External.Timeout))

	authed := v1.Group("")
	authed.Use(middleware.Auth(identitySvc))

	auth.RegisterRoutes(v1, authed)
	documents.RegisterRoutes(authed)
	fields.RegisterRoutes(authed)

	return &Server{engine: engine, cfg: &cfg.Server}
}

// Start serves the engine until ctx is canceled, then drains in-flight
// requests before returning.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting HTTP server", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http: server shutdown: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("http: server error: %w", err)
	}
}

// Engine exposes the gin engine for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "esigncore"})
}

func readyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, accessId")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Retry-After, X-Operation-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

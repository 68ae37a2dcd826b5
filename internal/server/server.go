// Package server assembles the VPN backend: it wires the database, policy
// engine, session and subscription managers into a Gin router and runs the
// HTTP server.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"matreshka-vpn/internal/api"
	"matreshka-vpn/internal/auth"
	"matreshka-vpn/internal/config"
	"matreshka-vpn/internal/database"
	"matreshka-vpn/internal/policy"
	"matreshka-vpn/internal/session"
	"matreshka-vpn/internal/subscription"
)

// Server is the assembled application.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	router *gin.Engine
}

// New builds the application from its configuration, database, and logger.
// All component wiring happens here so tests can assemble the same router
// against an in-memory database.
// Returns a pointer to the newly created Server.
func New(cfg *config.Config, db *database.Database, logger *zap.Logger) *Server {
	verifier := auth.NewVerifier(cfg.Telegram.BotToken)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TokenExpiry))
	middleware := auth.NewMiddleware(tokens)

	engine := policy.NewEngine()
	sessions := session.NewManager(db, engine, logger)
	subscriptions := subscription.NewManager(db, logger)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	router.Use(cors.New(corsConfig))

	router.GET("/", bannerHandler)
	router.GET("/health", healthHandler)

	api.NewAuthAPI(db, verifier, tokens).RegisterRoutes(router, middleware)
	api.NewServersAPI(db).RegisterRoutes(router)
	api.NewConnectionAPI(db, sessions).RegisterRoutes(router)
	api.NewSubscriptionAPI(db, subscriptions).RegisterRoutes(router)

	return &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
	}
}

// Router returns the assembled Gin engine, mainly for tests driving it
// through httptest.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run starts the HTTP server on the configured address and blocks until it
// stops. Returns an error if the server fails to start or serve.
func (s *Server) Run() error {
	s.logger.Info("server listening", zap.String("addr", s.cfg.Server.Addr()))
	return s.router.Run(s.cfg.Server.Addr())
}

// bannerHandler serves the service banner at the root path.
func bannerHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "MatreshkaVPN API",
		"status":  "running",
		"version": "1.0.0",
	})
}

// healthHandler serves the health check endpoint used by monitoring and load
// balancers.
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

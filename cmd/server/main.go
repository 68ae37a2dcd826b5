// Package main provides the entry point for the MatreshkaVPN backend: the
// HTTP API behind the Telegram WebApp that authenticates users, serves the
// server catalog, and tracks connection sessions and subscriptions.
package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"matreshka-vpn/internal/auth"
	"matreshka-vpn/internal/config"
	"matreshka-vpn/internal/database"
	"matreshka-vpn/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if cfg.Telegram.BotToken == "" {
		logger.Warn("no Telegram bot token configured, init_data verification will reject all payloads")
	}
	if cfg.JWT.Secret == "" {
		secret, err := auth.GenerateSecureSecret()
		if err != nil {
			logger.Fatal("Failed to generate JWT secret", zap.Error(err))
		}
		cfg.JWT.Secret = secret
		logger.Warn("no JWT secret configured, using an ephemeral one; tokens will not survive restarts")
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}

	if err := db.Seed(); err != nil {
		logger.Fatal("Failed to seed server catalog", zap.Error(err))
	}
	logger.Info("server catalog seeded")

	srv := server.New(cfg, db, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

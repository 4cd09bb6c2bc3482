package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vmportal/internal/auth"
	"vmportal/internal/config"
	"vmportal/internal/proxmox"
	"vmportal/internal/repository"
	"vmportal/internal/server"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.yml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	logger := newLogger(cfg.Env)
	defer func() {
		_ = logger.Sync()
	}()

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("Failed to initialize token manager", zap.Error(err))
	}

	var users repository.UserRepository
	if cfg.Database.InMemory {
		logger.Warn("Using in-memory user store, data will not survive a restart")
		users = repository.NewMemoryUserRepository()
	} else {
		db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		repository.MigrateDB(db, logger)
		users = repository.NewUserRepository(db, logger)
	}

	if cfg.Database.SeedUsers {
		if err := repository.SeedUsers(context.Background(), users, logger); err != nil {
			logger.Fatal("Failed to seed users", zap.Error(err))
		}
	}

	var gateway proxmox.Gateway
	if cfg.Proxmox.Mock {
		gateway = proxmox.NewMockGateway(logger)
	} else {
		gateway = proxmox.NewClient(proxmox.Config{
			Host:          cfg.Proxmox.Host,
			Port:          cfg.Proxmox.Port,
			User:          cfg.Proxmox.User,
			Password:      cfg.Proxmox.Password,
			Timeout:       cfg.Proxmox.Timeout,
			SkipTLSVerify: cfg.Proxmox.SkipTLSVerify,
		}, logger)
	}

	srv := server.New(cfg, users, gateway, tokens, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := srv.Run(); err != nil {
			logger.Error("Server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	logger.Info("Application stopped")
}

func newLogger(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

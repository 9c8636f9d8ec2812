// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the PulseCRM UI customization server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"pulsecrm/internal/ai"
	"pulsecrm/internal/auth"
	"pulsecrm/internal/cache"
	"pulsecrm/internal/config"
	"pulsecrm/internal/customize"
	"pulsecrm/internal/database"
	"pulsecrm/internal/handlers"
	"pulsecrm/internal/middleware"
	"pulsecrm/internal/router"
	"pulsecrm/internal/secret"
	"pulsecrm/internal/store"
	"pulsecrm/internal/wizard"
)

// devTokenTTL is the lifetime of the bearer token logged in development.
const devTokenTTL = 24 * time.Hour

// backend is the storage the server runs on, either PostgreSQL plus Valkey
// or everything in process.
type backend struct {
	rules interface {
		customize.RuleStore
		wizard.RuleCreator
	}
	convos interface {
		wizard.Conversations
		handlers.Conversations
	}
	settings interface {
		wizard.Settings
		handlers.Settings
	}
	surface customize.Surface
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
	)

	ctx := context.Background()
	be, err := openBackend(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer be.close()

	// Initialize the AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, cfg.Providers())
	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	rules := customize.NewService(be.rules, be.surface)
	generator := wizard.NewGenerator(be.rules, be.convos, be.settings, aiRegistry)
	api := handlers.NewAPI(rules, generator, be.convos, be.settings, aiRegistry)

	tokens := auth.NewTokens(cfg.JWTSecret)
	if cfg.IsDev() {
		logDevToken(tokens)
	}

	ipLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer ipLimiter.Stop()
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Stop()

	r := router.New(api, router.Options{
		Tokens:      tokens,
		CORSOrigins: cfg.CORSOrigins,
		IPLimiter:   ipLimiter,
		Limiter:     limiter,
	})

	// WriteTimeout must accommodate wizard calls that wait on LLM responses,
	// including one retry on the fallback model.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newLogger outputs JSON in production and text in development.
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// openBackend connects the configured storage. The postgres driver also
// needs Valkey, which holds the published stylesheets.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.StoreDriver == config.StoreMemory {
		slog.Warn("using in-memory storage, data is lost on restart")
		mem := store.NewMemory()
		return &backend{
			rules:    mem,
			convos:   mem,
			settings: mem,
			surface:  customize.NewDocument(),
			close:    func() {},
		}, nil
	}

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Published sheets are rebuilt from the rule store on first read, so
	// anything compiled under an older schema is dropped.
	sheets := cache.NewSheetCache(valkeyClient, cache.DefaultSheetTTL)
	if err := sheets.Clear(ctx); err != nil {
		slog.Warn("failed to clear cached stylesheets", "error", err)
	}

	return newPostgresBackend(db, secret.NewBox(cfg.SettingsSecret), sheets, func() {
		valkeyClient.Close()
		db.Close()
	}), nil
}

func newPostgresBackend(db *sql.DB, box *secret.Box, surface customize.Surface, closeFn func()) *backend {
	return &backend{
		rules:    store.NewCustomizationStore(db),
		convos:   store.NewConversationStore(db),
		settings: store.NewSettingsStore(db, box),
		surface:  surface,
		close:    closeFn,
	}
}

// logDevToken issues a token for a fresh owner so the API can be called
// without an identity provider.
func logDevToken(tokens *auth.Tokens) {
	owner := uuid.New()
	token, err := tokens.Issue(owner, devTokenTTL)
	if err != nil {
		slog.Warn("failed to issue development token", "error", err)
		return
	}
	slog.Info("development bearer token", "owner", owner, "token", token, "expires_in", devTokenTTL)
}

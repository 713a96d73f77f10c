// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the LightWork server.
// It loads configuration, connects to services, starts the batch scheduler
// and the HTTP server, and shuts both down on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"lightwork/internal/cache"
	"lightwork/internal/config"
	"lightwork/internal/database"
	"lightwork/internal/engine"
	"lightwork/internal/handlers"
	"lightwork/internal/middleware"
	"lightwork/internal/render"
	"lightwork/internal/router"
	"lightwork/internal/scheduler"
	"lightwork/internal/session"
	"lightwork/internal/storage"
	"lightwork/internal/store"
	"lightwork/web"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("lightwork stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped gracefully")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	// Image fields work without storage; uploads are then rejected.
	var images handlers.ImageStore
	storageClient, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	if err != nil {
		return err
	}
	if storageClient != nil {
		images = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	secure := !cfg.IsDev()
	sessions := session.NewStore(valkeyClient, secure)
	actions := middleware.NewActions(cfg.TokenSecret)

	renderer, err := render.New(cfg.IsDev(), actions)
	if err != nil {
		return err
	}

	types := store.NewContentTypeStore(db)
	mappings := store.NewMappingStore(db)
	records := store.NewRecordStore(db)
	sandbox := store.NewSandboxStore(db)
	users := store.NewUserStore(db)
	cacheLog := store.NewCacheLogStore(db)
	options := store.NewOptionStore(db)

	eng := engine.New(records, mappings, "LightWork")
	pageCache := cache.NewPageCache(valkeyClient, cfg.PageCacheTTL)

	sched := scheduler.New(options, &scheduler.Batch{
		Types:   types,
		Records: records,
		After: func(ctx context.Context) {
			pageCache.InvalidateAll(ctx)
			cacheLog.Log("batch", "*", "purge")
		},
	})

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return err
	}

	h, stopLimiter := router.New(router.Config{
		Sessions:    sessions,
		Actions:     actions,
		Admin:       handlers.NewAdmin(renderer, sessions, types, mappings, records, sandbox, cacheLog, pageCache, eng, images, sched),
		Auth:        handlers.NewAuth(renderer, sessions, users),
		API:         handlers.NewAPI(types, records, cfg.BaseURL),
		Public:      handlers.NewPublic(eng, types, records, pageCache),
		Static:      static,
		Secure:      secure,
		LoginLimit:  cfg.LoginRateLimit,
		LoginWindow: cfg.LoginRateWindow,
	})
	defer stopLimiter()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")

		// Give active requests up to 30 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

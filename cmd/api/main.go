package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"trophyangler/internal/cache"
	"trophyangler/internal/config"
	"trophyangler/internal/database"
	"trophyangler/internal/metrics"
	jwtsvc "trophyangler/internal/pkg/jwt"
	"trophyangler/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}

	log := setupLogger(cfg.AppEnv)
	slog.SetDefault(log)
	if cfg.ProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DB.URL, log, database.Options{MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: time.Hour})
	if err != nil {
		log.Error("db_connect_failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		log.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}

	var shareCache cache.Cache = cache.Noop{}
	if cfg.Redis.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		shareCache, err = cache.NewRedisCache(ctx, cfg.Redis.URL, "trophy:")
		cancel()
		if err != nil {
			log.Error("redis_connect_failed", "error", err)
			os.Exit(1)
		}
		log.Info("share cache enabled", "backend", "redis")
	}

	jwtOpts := []jwtsvc.Option{}
	if cfg.Auth.JWTIssuer != "" {
		jwtOpts = append(jwtOpts, jwtsvc.WithIssuer(cfg.Auth.JWTIssuer))
	}
	if cfg.Auth.JWTAudience != "" {
		jwtOpts = append(jwtOpts, jwtsvc.WithAudience(cfg.Auth.JWTAudience))
	}

	router := server.NewRouter(server.Deps{
		Config:  cfg,
		DB:      db,
		Log:     log,
		JWT:     jwtsvc.New(cfg.Auth.JWTSecret, cfg.Auth.DevTokenTTL, jwtOpts...),
		Cache:   shareCache,
		Metrics: metrics.New(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErr:
		if err != nil {
			log.Error("http_serve_failed", "error", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_incomplete", "error", err)
	}
	if err := database.Close(db); err != nil {
		log.Warn("db_close_failed", "error", err)
	}
	if err := shareCache.Close(); err != nil {
		log.Warn("cache_close_failed", "error", err)
	}

	log.Info("service_stopped")
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case "dev", "local", "test":
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

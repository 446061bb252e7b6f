package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/bursar/internal/bootstrap"
	"github.com/MrJamesThe3rd/bursar/internal/config"
	bursarHttp "github.com/MrJamesThe3rd/bursar/internal/http"
	applicationHandler "github.com/MrJamesThe3rd/bursar/internal/http/application"
	authHandler "github.com/MrJamesThe3rd/bursar/internal/http/auth"
	"github.com/MrJamesThe3rd/bursar/internal/http/middleware"
	reportHandler "github.com/MrJamesThe3rd/bursar/internal/http/report"
	scholarshipHandler "github.com/MrJamesThe3rd/bursar/internal/http/scholarship"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Production() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler).With("app", cfg.App.Name))
}

func run(ctx context.Context, cfg *config.Config) error {
	services, err := bootstrap.New(ctx, cfg)
	if err != nil {
		return err
	}

	defer func() {
		if err := services.Close(); err != nil {
			slog.Error("failed to close services", "error", err)
		}
	}()

	// Finish forwards interrupted by a previous crash.
	forwarded, err := services.Applications.ForwardApproved(ctx)
	if err != nil {
		slog.Error("failed to forward approved applications", "error", err)
	} else if forwarded > 0 {
		slog.Info("forwarded approved applications to finance", "count", forwarded)
	}

	var limiter middleware.Limiter
	if services.Redis != nil {
		limiter = middleware.NewRedisLimiter(services.Redis)
	}

	var (
		authH        = authHandler.NewHandler(services.Users, services.Issuer)
		scholarshipH = scholarshipHandler.NewHandler(services.Catalog)
		applicationH = applicationHandler.NewHandler(services.Applications)
		reportH      = reportHandler.NewHandler(services.Reports)
	)

	router := bursarHttp.New(bursarHttp.Options{
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		Verifier:        services.Issuer,
		Limiter:         limiter,
		LoginLimit:      cfg.Redis.LoginLimit,
		LoginWindow:     cfg.Redis.LoginWindow,
		RateLimitPrefix: cfg.Redis.KeyPrefix,
		Health:          services.Ping,
	}, authH, scholarshipH, applicationH, reportH)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           http.TimeoutHandler(router, cfg.Server.Timeout, "request timed out"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "port", server.Addr, "store", cfg.DB.Driver)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		slog.Info("shutting down server")

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

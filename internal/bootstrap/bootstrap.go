// Package bootstrap builds the services shared by the API server and the TUI from a Config.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	appStore "github.com/MrJamesThe3rd/bursar/internal/application/store"
	"github.com/MrJamesThe3rd/bursar/internal/auth"
	"github.com/MrJamesThe3rd/bursar/internal/catalog"
	catalogStore "github.com/MrJamesThe3rd/bursar/internal/catalog/store"
	"github.com/MrJamesThe3rd/bursar/internal/config"
	"github.com/MrJamesThe3rd/bursar/internal/database"
	"github.com/MrJamesThe3rd/bursar/internal/notify"
	"github.com/MrJamesThe3rd/bursar/internal/payment"
	"github.com/MrJamesThe3rd/bursar/internal/report"
	"github.com/MrJamesThe3rd/bursar/internal/user"
	userStore "github.com/MrJamesThe3rd/bursar/internal/user/store"
)

type Services struct {
	Users        *user.Service
	Catalog      *catalog.Service
	Applications *application.Service
	Reports      *report.Service
	Issuer       *auth.Issuer

	// DB is nil with the memory driver.
	DB *sql.DB
	// Redis is nil when REDIS_ADDR is unset.
	Redis *redis.Client

	closers []func() error
}

// Close releases every connection opened by New, in reverse order.
func (s *Services) Close() error {
	var errs []error

	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}

	return errors.Join(errs...)
}

// Ping checks the backing stores. It is nil-safe for the memory driver.
func (s *Services) Ping(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}

	return s.DB.PingContext(ctx)
}

func New(ctx context.Context, cfg *config.Config) (*Services, error) {
	s := &Services{
		Issuer: auth.NewIssuer(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TTL),
	}

	var (
		userRepo    user.Repository
		catalogRepo catalog.Repository
		appRepo     application.Repository
	)

	switch cfg.DB.Driver {
	case config.DriverMemory:
		userRepo = userStore.NewMemory()
		catalogRepo = catalogStore.NewMemory()
		appRepo = appStore.NewMemory()

		slog.Warn("using in-memory stores, data is lost on exit")
	default:
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return nil, err
		}

		s.DB = db
		s.closers = append(s.closers, db.Close)

		if err := database.Migrate(ctx, db); err != nil {
			_ = s.Close()
			return nil, err
		}

		userRepo = userStore.New(db)
		catalogRepo = catalogStore.New(db)
		appRepo = appStore.New(db)
	}

	s.Users = user.NewService(userRepo)
	s.Catalog = catalog.NewService(catalogRepo)

	notifier, err := s.notifier(cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	s.Applications = application.NewService(appRepo, s.Catalog, paymentProcessor(cfg), notifier)
	s.Reports = report.NewService(s.Applications)

	if cfg.Redis.Addr != "" {
		s.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, s.Redis.Close)
	}

	if err := s.seed(ctx, cfg); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

func paymentProcessor(cfg *config.Config) application.PaymentProcessor {
	if cfg.Payment.BaseURL == "" {
		slog.Info("no payment gateway configured, using the simulator")
		return payment.NewSimulator()
	}

	return payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.Token, cfg.Payment.Timeout)
}

func (s *Services) notifier(cfg *config.Config) (application.Notifier, error) {
	emitters := notify.Multi{notify.Logger{}}

	if cfg.RabbitMQ.URL == "" {
		return emitters, nil
	}

	publisher, err := notify.Dial(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		return nil, err
	}

	s.closers = append(s.closers, publisher.Close)

	return append(emitters, publisher), nil
}

// seed loads the catalog when it is empty and, with the memory driver, the demo accounts.
func (s *Services) seed(ctx context.Context, cfg *config.Config) error {
	if cfg.Catalog.SeedFile != "" {
		f, err := os.Open(cfg.Catalog.SeedFile)
		if err != nil {
			return fmt.Errorf("opening catalog seed file: %w", err)
		}
		defer f.Close()

		if _, err := s.Catalog.Import(ctx, f); err != nil {
			return fmt.Errorf("importing %s: %w", cfg.Catalog.SeedFile, err)
		}
	} else {
		existing, err := s.Catalog.List(ctx, catalog.ListFilter{})
		if err != nil {
			return fmt.Errorf("reading catalog: %w", err)
		}

		if len(existing) == 0 {
			if err := s.Catalog.Seed(ctx, catalog.Defaults()); err != nil {
				return fmt.Errorf("seeding catalog: %w", err)
			}
		}
	}

	if cfg.DB.Driver != config.DriverMemory {
		return nil
	}

	if err := s.Users.SeedDemo(ctx); err != nil {
		return err
	}

	slog.Info("seeded demo accounts", "password", user.DemoPassword)

	return nil
}

// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"biblioteca/internal/catalog"
	"biblioteca/internal/circulation"
	"biblioteca/internal/config"
	"biblioteca/internal/donation"
	"biblioteca/internal/logging"
	"biblioteca/internal/membership"
	"biblioteca/internal/server"
	"biblioteca/internal/storage"
	"biblioteca/internal/telemetry"
	"biblioteca/pkg/eventstore"

	"golang.org/x/time/rate"
)

// App wires repositories, services and handlers for one storage backend.
type App struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *storage.DB
	telemetry *telemetry.Provider
	now       func() time.Time

	Books     catalog.Service
	Users     membership.Service
	Loans     circulation.Service
	Donations donation.Service
	Scanner   *circulation.OverdueScanner
}

type Option func(*App)

// WithClock fixes the time source of every service. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

type repositories struct {
	books     catalog.Repository
	users     membership.Repository
	loans     circulation.Repository
	donations donation.DonationRepository
	hours     donation.HoursRepository
	events    eventstore.Store
	tx        storage.Transactor
}

// New builds the application. The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}

	tel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}
	a.telemetry = tel

	repos, err := a.openRepositories(ctx)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}

	journal := eventstore.NewJournal(repos.events, logging.Named(logger, "journal"))

	a.Books = catalog.NewService(repos.books, repos.tx, journal)
	a.Users = membership.NewService(repos.users, repos.tx, journal)
	a.Loans = circulation.NewService(repos.loans, repos.books, repos.users, repos.tx, journal,
		circulation.WithClock(a.now))
	a.Donations = donation.NewService(repos.donations, repos.hours, repos.books, repos.users, repos.tx, journal,
		donation.WithClock(a.now))
	a.Scanner = circulation.NewOverdueScanner(a.Loans, cfg.Overdue.ScanInterval, logging.Named(logger, "overdue"),
		circulation.WithScanClock(a.now))

	logger.Info("application ready", slog.String("db_driver", cfg.Database.Driver))
	return a, nil
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	if a.cfg.Database.Driver == storage.DriverMemory {
		return repositories{
			books:     catalog.NewMemoryRepository(),
			users:     membership.NewMemoryRepository(),
			loans:     circulation.NewMemoryRepository(),
			donations: donation.NewMemoryDonationRepository(),
			hours:     donation.NewMemoryHoursRepository(),
			events:    eventstore.NewMemoryStore(),
			tx:        storage.NewMemoryTransactor(),
		}, nil
	}

	db, err := storage.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return repositories{}, err
	}
	db.SetObserver(a.telemetry.Metrics)

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return repositories{}, err
	}

	events := eventstore.NewEventStore(db.SQLX())
	if err := events.EnsureSchema(ctx); err != nil {
		db.Close()
		return repositories{}, fmt.Errorf("event store schema: %w", err)
	}

	a.db = db
	return repositories{
		books:     catalog.NewSQLRepository(db),
		users:     membership.NewSQLRepository(db),
		loans:     circulation.NewSQLRepository(db),
		donations: donation.NewSQLDonationRepository(db),
		hours:     donation.NewSQLHoursRepository(db),
		events:    events,
		tx:        db,
	}, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	opts := server.Options{
		Logger:   logging.Named(a.logger, "http"),
		Observer: a.telemetry.Metrics,
		Metrics:  a.telemetry.Handler(),
	}
	if a.cfg.RateLimit.RPS > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), a.cfg.RateLimit.Burst)
	}
	if a.db != nil {
		opts.Health = a.db.Ping
	}

	loans := circulation.NewHandler(a.Loans)
	loans.SetClock(a.now)

	return server.NewRouter(opts, server.Resources{
		Books:     catalog.NewHandler(a.Books),
		Users:     membership.NewHandler(a.Users),
		Loans:     loans,
		Donations: donation.NewHandler(a.Donations),
	})
}

// Close releases the database and flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	errs = append(errs, a.telemetry.Shutdown(ctx))
	return errors.Join(errs...)
}

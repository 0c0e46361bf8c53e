// Package server wires the gentlepol processes together: it opens the
// database, applies migrations, builds the services and runs either the HTTP
// API or the feed poller until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/gentlepol/internal/logging"
	"github.com/dmitrijs2005/gentlepol/internal/server/config"
	"github.com/dmitrijs2005/gentlepol/internal/server/httpapi"
	"github.com/dmitrijs2005/gentlepol/internal/server/poller"
	"github.com/dmitrijs2005/gentlepol/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gentlepol/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	authService *services.AuthService
	feedService *services.FeedService
	dbWait      time.Duration
}

// NewApp opens the database handle and builds the services. No connection is
// made until the first query.
func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	return newApp(c, logger, db, repomanager.NewPostgresRepositoryManager()), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		authService: services.NewAuthService(db, rm, c, logger),
		feedService: services.NewFeedService(db, rm, logger),
		dbWait:      30 * time.Second,
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// waitForDB pings the database with exponential backoff until it answers,
// app.dbWait elapses or ctx is cancelled.
func (app *App) waitForDB(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = app.dbWait

	return backoff.RetryNotify(func() error {
		return app.db.PingContext(ctx)
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		app.logger.Warn(ctx, "database not ready", "error", err, "retry_in", next)
	})
}

func (app *App) prepareDB(ctx context.Context) error {
	if err := app.waitForDB(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config, app.logger, app.authService, app.feedService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves the HTTP API until SIGINT/SIGTERM or ctx is cancelled.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.prepareDB(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return nil
}

// RunPoller runs the feed poller with the configured interval.
func (app *App) RunPoller(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.initSignalHandler(cancelFunc)

	if err := app.prepareDB(ctx); err != nil {
		return err
	}

	p := poller.New(app.repomanager.Feeds(app.db), app.config.PollInterval, app.logger)
	return p.Run(ctx)
}

// Package server wires configuration, storage, services and the HTTP API
// into a runnable application with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/rest"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	http    *rest.Server
	sweeper *services.Sweeper
}

// openPostgres is a seam for tests.
var openPostgres = repomanager.OpenPostgres

// NewApp builds the application. An empty DatabaseDSN selects the in-memory
// store; otherwise Postgres is opened and migrated.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger := logging.New(out, "json", c.LogLevel)

	var (
		db *sql.DB
		rm repomanager.RepositoryManager
	)
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, using in-memory store")
		rm = repomanager.NewMemoryRepositoryManager()
	} else {
		var err error
		db, err = openPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	if !c.AttachmentsEnabled() {
		logger.Info(ctx, "attachments disabled, no S3 bucket configured")
	}

	issuer := auth.NewIssuer([]byte(c.SecretKey), c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	us := services.NewUserService(db, rm, issuer, logger)
	ts := services.NewTodoService(db, rm, logger)
	as := services.NewAttachmentService(db, rm, c, logger)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		http:    rest.NewServer(c, logger, us, ts, as),
		sweeper: services.NewSweeper(db, rm, c.SweepInterval, c.SweepRetention, logger.With("module", "sweeper")),
	}, nil
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or until ctx is cancelled, or
// until one of the components fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.http.Run(gctx) })
	g.Go(func() error { return app.sweeper.Run(gctx) })

	err := g.Wait()

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(ctx, "closing database", "error", cerr)
		}
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

// Main is the server entry point used by cmd/server.
func Main(ctx context.Context) int {
	cfg := config.LoadConfig()
	app, err := NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := app.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

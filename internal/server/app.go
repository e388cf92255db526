// Package server wires configuration, storage, the provider client and the
// HTTP API together and runs them until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/daleavatar/internal/logging"
	"github.com/dmitrijs2005/daleavatar/internal/server/auth"
	"github.com/dmitrijs2005/daleavatar/internal/server/config"
	"github.com/dmitrijs2005/daleavatar/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/daleavatar/internal/server/rest"
	"github.com/dmitrijs2005/daleavatar/internal/server/services"
	"github.com/dmitrijs2005/daleavatar/internal/server/streaming"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	httpServer  *rest.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(slog.LevelInfo)

	if missing := c.Missing(); len(missing) > 0 {
		logger.Warn(ctx, "Missing configuration", "keys", missing)
	}
	if c.SecretKey == config.DefaultSecretKey {
		logger.Warn(ctx, "Token secret is the development default; set JWT_SECRET")
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := services.NewS3Store(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	tokens := auth.NewTokenService([]byte(c.SecretKey), c.TokenValidityDuration)
	hasher := auth.NewPasswordHasher(c.PasswordSalt)

	us := services.NewUserService(db, rm, hasher, tokens, logger.With("module", "users"))
	rs := services.NewRecordingService(db, rm, store, logger.With("module", "recordings"))
	sc := streaming.NewClient(&http.Client{Timeout: c.ProviderTimeout}, c.HeygenBaseURL, c.HeygenAPIKey,
		logger.With("module", "streaming"))

	routerCfg := rest.DefaultRouterConfig()
	routerCfg.CORSAllowedOrigins = c.CORSAllowedOrigins

	handler := rest.NewHandler(us, rs, sc, logger.With("module", "rest"))
	router := rest.NewRouter(handler, tokens, routerCfg, logger)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: rm,
		httpServer:  rest.NewHTTPServer(c.EndpointAddrHTTP, router, logger),
	}, nil
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

// Run applies pending migrations and serves HTTP until a signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return err
	}

	app.initSignalHandler(cancelFunc)

	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}

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

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/larder/internal/account"
	"github.com/kode4food/larder/internal/archive"
	"github.com/kode4food/larder/internal/config"
	"github.com/kode4food/larder/internal/mail"
	"github.com/kode4food/larder/internal/order"
	"github.com/kode4food/larder/internal/server"
	"github.com/kode4food/larder/internal/store"
	"github.com/kode4food/larder/internal/tokens"
	"github.com/kode4food/larder/internal/vegan"
	"github.com/kode4food/larder/pkg/log"
)

type app struct {
	cfg        *config.Config
	store      *store.Store
	redis      *redis.Client
	tokens     *tokens.Store
	archive    *archive.Archive
	apiServer  *server.Server
	httpServer *http.Server
	serveErr   chan error
	quit       chan os.Signal
}

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrOpenStore     = errors.New("failed to open database")
	ErrMigrateStore  = errors.New("failed to migrate database")
	ErrConnectTokens = errors.New("failed to connect token store")
	ErrOpenArchive   = errors.New("failed to open archive bucket")
	ErrServerStopped = errors.New("HTTP server stopped unexpectedly")
)

func newApp() *app {
	return &app{
		quit:     make(chan os.Signal, 1),
		serveErr: make(chan error, 1),
	}
}

func (a *app) serve() error {
	defer a.close()

	if err := a.initializeStores(); err != nil {
		return err
	}
	a.startServer()

	signal.Notify(a.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.quit)

	select {
	case <-a.quit:
	case err := <-a.serveErr:
		return fmt.Errorf("%w: %w", ErrServerStopped, err)
	}

	a.shutdown()
	return nil
}

func (a *app) openStore(ctx context.Context) error {
	st, err := store.Open(ctx, a.cfg.DBDriver, a.cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenStore, err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return fmt.Errorf("%w: %w", ErrMigrateStore, err)
	}
	a.store = st
	return nil
}

func (a *app) initializeStores() error {
	ctx := context.Background()
	if err := a.openStore(ctx); err != nil {
		return err
	}

	client, err := tokens.Connect(ctx, &redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectTokens, err)
	}
	a.redis = client
	a.tokens = tokens.NewStore(client, a.cfg.Redis.Prefix).
		WithTTL(tokens.ConfirmEmail, a.cfg.ConfirmTokenTTL).
		WithTTL(tokens.ResetPassword, a.cfg.ResetTokenTTL)

	a.archive, err = archive.Open(
		ctx, a.cfg.ArchiveBucketURL, a.cfg.ArchivePrefix,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenArchive, err)
	}
	return nil
}

func (a *app) startServer() {
	checker := vegan.NewHTTPChecker(vegan.Options{
		URL:           a.cfg.Vegan.URL,
		Timeout:       a.cfg.Vegan.Timeout,
		CacheSize:     a.cfg.Vegan.CacheSize,
		MaxRetries:    a.cfg.Vegan.MaxRetries,
		RetryInterval: vegan.DefaultRetryInterval,
	})
	accounts := account.NewService(
		a.store, a.tokens, mail.NewLogMailer(nil), a.cfg.PublicBaseURL,
	)

	a.apiServer = server.NewServer(server.Deps{
		Store:     a.store,
		Tokens:    a.tokens,
		Sequencer: order.NewSequencer(a.cfg.ZeroPolicy),
		Accounts:  accounts,
		Vegan:     checker,
		Archive:   a.archive,
	})

	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.cfg.APIHost, a.cfg.APIPort),
		Handler: a.apiServer.SetupRoutes(),
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", a.httpServer.Addr))
		err := a.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
			a.serveErr <- err
		}
	}()
}

func (a *app) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), a.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	slog.Info("Server exited")
}

// close releases whatever initializeStores managed to open
func (a *app) close() {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			slog.Error("Archive close failed", log.Error(err))
		}
		a.archive = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Error("Database close failed", log.Error(err))
		}
		a.store = nil
	}
}

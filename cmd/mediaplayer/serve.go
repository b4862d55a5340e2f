package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mediaplayer/internal/app/library"
	"mediaplayer/internal/app/users"
	"mediaplayer/internal/auth"
	"mediaplayer/internal/blobs"
	"mediaplayer/internal/httpapi"
	"mediaplayer/internal/notices"
	"mediaplayer/internal/store"
	"mediaplayer/shared/go/config"
	"mediaplayer/shared/go/middleware"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func (app *Application) serveCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the media library HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return app.serve(ctx)
		},
	}
}

// backend bundles the persistence used by the server.
type backend struct {
	playlists library.Store
	accounts  users.Store
	close     func()
}

func (app *Application) openBackend(ctx context.Context) (backend, error) {
	switch app.Config.Database.Driver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return backend{
			playlists: store.NewMemoryStore(),
			accounts:  store.NewMemoryUsers(),
			close:     func() {},
		}, nil
	default:
		db, err := openDatabase(ctx, app.Config.Database.URL)
		if err != nil {
			return backend{}, err
		}
		pg := store.New(db)
		return backend{playlists: pg, accounts: pg, close: func() { _ = db.Close() }}, nil
	}
}

func (app *Application) blobDir() (string, error) {
	if dir := app.Config.Media.BlobDir; dir != "" {
		return dir, nil
	}
	dir, err := os.MkdirTemp("", "mediaplayer-blobs-")
	if err != nil {
		return "", fmt.Errorf("create blob dir: %w", err)
	}
	return dir, nil
}

func (app *Application) serve(ctx context.Context) error {
	be, err := app.openBackend(ctx)
	if err != nil {
		return err
	}
	defer be.close()

	dir, err := app.blobDir()
	if err != nil {
		return err
	}
	registry, err := blobs.NewRegistry(dir)
	if err != nil {
		return err
	}

	issuer := auth.NewIssuer(app.Config.Security.JWTSecret, tokenTTL)
	session := auth.NewSession(issuer)
	board := &notices.Board{}

	manager := library.New(be.playlists, session, board, registry,
		library.WithLogger(app.Logger.Component("library")),
	)
	if err := manager.Start(ctx); err != nil {
		log.Error().Err(err).Msg("initial library sync failed")
	}
	defer manager.Close()

	api := httpapi.New(users.New(be.accounts, issuer, session), manager, board, registry, app.Config.Media.MaxUploadBytes())
	handler := middleware.Chain(api.Routes(),
		middleware.Recovery(),
		middleware.RequestLogging(),
		middleware.CORS(app.Config.CORS.AllowedOrigins),
	)

	srv := &http.Server{
		Addr:              app.Config.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          stdlog.New(app.Logger.Zerolog(), "", 0),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", app.Config.Database.Driver).Str("blob_dir", dir).Msg("API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mediaplayer/shared/go/config"
	"mediaplayer/shared/go/logging"
)

// Application carries what every command needs once configuration is loaded.
type Application struct {
	Config *config.Config
	Logger *logging.Logger
}

func (app *Application) load() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	app.Config = cfg
	app.Logger = logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	logging.SetGlobalLogger(app.Logger)
	return nil
}

func (app *Application) rootCommand(ctx context.Context) *cobra.Command {
	root := &cobra.Command{
		Use:           "mediaplayer",
		Short:         "Media library server for the browser player",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return app.load()
		},
	}

	root.AddCommand(
		app.serveCommand(ctx),
		app.migrateCommand(ctx),
		app.signupCommand(ctx),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &Application{}
	if err := app.rootCommand(ctx).ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

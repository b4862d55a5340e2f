package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mediaplayer/internal/app/users"
	"mediaplayer/internal/auth"
	"mediaplayer/internal/store"
	"mediaplayer/shared/go/config"
)

func (app *Application) signupCommand(ctx context.Context) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "signup [email]",
		Short: "Create a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			accounts, closeFn, err := app.openUsers(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			issuer := auth.NewIssuer(app.Config.Security.JWTSecret, tokenTTL)
			svc := users.New(accounts, issuer, auth.NewSession(issuer))

			user, err := svc.Signup(ctx, args[0], password)
			if err != nil {
				return fmt.Errorf("signup: %w", err)
			}
			log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user created")
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (app *Application) openUsers(ctx context.Context) (users.Store, func(), error) {
	if app.Config.Database.Driver != config.DriverPostgres {
		return nil, nil, fmt.Errorf("accounts created offline would be lost; set STORE_DRIVER=%s", config.DriverPostgres)
	}
	db, err := openDatabase(ctx, app.Config.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	return store.New(db), func() { _ = db.Close() }, nil
}

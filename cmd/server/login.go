package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/jrsteele09/moto-session/internal/config"
	"github.com/jrsteele09/moto-session/server"
	"github.com/spf13/cobra"
)

// newLoginCommand signs in against the configured REST API and prints the
// resulting Session View. Useful for checking credentials and token claims
// without a browser.
func newLoginCommand(loadConfig func() (config.Config, error)) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password and print the session view",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			if password == "" {
				password = os.Getenv("MOTO_PASSWORD")
			}

			ctx := cmd.Context()
			services, cleanup, err := server.InitialiseServices(ctx, c)
			if err != nil {
				return err
			}
			defer cleanup()
			if services.JWT == nil {
				return errors.New("login needs the jwt provider")
			}

			_, view, err := services.JWT.SignIn(ctx, email, password)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password, defaults to $MOTO_PASSWORD")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

package commands

import (
	"fmt"
	"net/mail"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// LoginCmd creates the login command
func LoginCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Issue a session token to pass with --session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Sessions == nil {
				return fmt.Errorf("sessions are disabled: set session.secret in the config file")
			}

			addr, err := mail.ParseAddress(args[0])
			if err != nil {
				return fmt.Errorf("invalid email address %q: %w", args[0], err)
			}

			token, err := app.Sessions.Issue(addr.Address, app.Cfg.Session.TTL)
			if err != nil {
				return err
			}

			app.Logger.Info("Session issued", zap.String("email", addr.Address), zap.Duration("ttl", app.Cfg.Session.TTL))

			fmt.Printf("\n✓ Session issued for %s (valid for %s)\n\n", addr.Address, app.Cfg.Session.TTL)
			fmt.Printf("%s\n\n", token)
			fmt.Printf("Use it with: --session <token> or VH_SESSION=<token>\n\n")

			return nil
		},
	}
}

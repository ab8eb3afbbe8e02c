package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the record store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("migrate command", zap.String("backend", app.Cfg.Store.Backend))

			applied, err := app.Migrate(app.Ctx)
			if err != nil {
				return fmt.Errorf("failed to migrate %s store: %w", app.Cfg.Store.Backend, err)
			}

			if len(applied) == 0 {
				fmt.Printf("\n✓ %s store is up to date\n\n", app.Cfg.Store.Backend)
				return nil
			}

			fmt.Printf("\n✓ Applied %d changes to the %s store:\n", len(applied), app.Cfg.Store.Backend)
			for _, name := range applied {
				fmt.Printf("  - %s\n", name)
			}
			fmt.Println()

			return nil
		},
	}
}

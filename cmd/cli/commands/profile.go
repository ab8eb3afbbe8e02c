package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// ProfileCmd creates the profile command
func ProfileCmd(app *AppContext) *cobra.Command {
	var (
		input        services.ProfileInput
		organization bool
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create or replace your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if organization {
				input.Role = model.RoleOrganization
			}

			app.Logger.Debug("profile command",
				zap.String("role", input.Role.String()),
				zap.Strings("categories", input.Categories))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			profile, err := services.SetProfile(ctx, app.Database, app.Identity, app.Logger, input)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Profile saved!\n\n")
			fmt.Printf("Email:      %s\n", profile.EmailAddress)
			fmt.Printf("Name:       %s\n", profile.DisplayName())
			fmt.Printf("Role:       %s\n", profile.Role)
			if len(profile.Categories) > 0 {
				fmt.Printf("Categories: %s\n", strings.Join(profile.Categories, ", "))
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().StringVar(&input.FirstName, "name", "", "First name, or organization name")
	cmd.Flags().StringVar(&input.Address, "address", "", "Postal address")
	cmd.Flags().StringVar(&input.Contact, "contact", "", "Contact phone number")
	cmd.Flags().BoolVar(&organization, "organization", false, "Register as an organization that publishes events")
	cmd.Flags().StringSliceVar(&input.Categories, "category", nil, "Preferred category (repeatable)")

	return cmd
}

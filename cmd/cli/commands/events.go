package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/aggregation"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// EventsCmd creates the events command
func EventsCmd(app *AppContext) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List upcoming events in your preferred categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				from = time.Now().Format(aggregation.DateKeyLayout)
			}
			app.Logger.Debug("events command", zap.String("from", from))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			feed, err := services.ListEventFeed(ctx, app.Database, app.Identity, app.Logger, from)
			if err != nil {
				return err
			}

			if len(feed) == 0 {
				fmt.Printf("\nNo events from %s in your categories.\n\n", from)
				return nil
			}

			fmt.Printf("\nFound %d events:\n\n", len(feed))
			for _, e := range feed {
				fmt.Printf("- %s  %-5s  %-32s %6s  %s (%s)\n",
					e.Date,
					e.Time,
					model.NormalizeCategory(e.Category).Title(),
					formatHours(e.VolunteerHours),
					e.Location,
					e.ID,
				)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Earliest event date (YYYY-MM-DD, default today)")

	return cmd
}

// JoinCmd creates the join command
func JoinCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "join <event_id>",
		Short: "Ask to take part in an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID := args[0]
			app.Logger.Debug("join command", zap.String("event_id", eventID))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			result, err := services.JoinEvent(ctx, app.Database, app.Identity, app.Policy, app.Logger, eventID)
			if err != nil {
				return err
			}

			j := result.JoinEvent
			fmt.Printf("\n✓ Join request sent!\n\n")
			fmt.Printf("Request ID: %s\n", j.ID)
			fmt.Printf("Event:      %s on %s\n", model.NormalizeCategory(j.Category).Title(), j.Date)
			fmt.Printf("Status:     %s\n", j.Status)

			if result.Donation != nil {
				fmt.Printf("\nLast donation:      %s\n", result.Donation.LastDonation.Format(longDateLayout))
				fmt.Printf("Next eligible date: %s\n", result.Donation.NextEligible.Format(longDateLayout))
				if result.TooSoon {
					fmt.Printf("⚠️  This event is before your next eligible donation date\n")
				}
			}
			fmt.Println()

			return nil
		},
	}
}

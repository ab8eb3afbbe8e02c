package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

func bindEventFlags(flags *pflag.FlagSet, input *services.EventInput) {
	flags.StringVar(&input.Category, "category", "", "Event category, e.g. \"Beach Clean\"")
	flags.StringVar(&input.Description, "description", "", "What volunteers will be doing")
	flags.StringVar(&input.Date, "date", "", "Event date (YYYY-MM-DD)")
	flags.StringVar(&input.Time, "time", "", "Start time (HH:MM)")
	flags.StringVar(&input.Location, "location", "", "Where to meet")
	flags.Float64Var(&input.VolunteerHours, "hours", 0, "Volunteer hours credited on acceptance")
	flags.StringSliceVar(&input.Images, "image", nil, "Image URL (repeatable, at most 4)")
}

// CreateEventCmd creates the createEvent command
func CreateEventCmd(app *AppContext) *cobra.Command {
	var input services.EventInput

	cmd := &cobra.Command{
		Use:   "createEvent",
		Short: "Publish a new event for your organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("createEvent command",
				zap.String("category", input.Category),
				zap.String("date", input.Date))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			event, err := services.CreateEvent(ctx, app.Database, app.Identity, app.Logger, input)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Event created successfully!\n\n")
			printEvent(event)
			return nil
		},
	}

	bindEventFlags(cmd.Flags(), &input)
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("date")

	return cmd
}

// UpdateEventCmd creates the updateEvent command
func UpdateEventCmd(app *AppContext) *cobra.Command {
	var input services.EventInput

	cmd := &cobra.Command{
		Use:   "updateEvent <event_id>",
		Short: "Replace the details of one of your events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID := args[0]
			app.Logger.Debug("updateEvent command", zap.String("event_id", eventID))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			event, err := services.UpdateEvent(ctx, app.Database, app.Identity, app.Logger, eventID, input)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Event updated!\n\n")
			printEvent(event)
			return nil
		},
	}

	bindEventFlags(cmd.Flags(), &input)
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("date")

	return cmd
}

// DeleteEventCmd creates the deleteEvent command
func DeleteEventCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteEvent <event_id>",
		Short: "Delete one of your events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID := args[0]
			app.Logger.Debug("deleteEvent command", zap.String("event_id", eventID))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			if err := services.DeleteEvent(ctx, app.Database, app.Identity, app.Logger, eventID); err != nil {
				return err
			}

			fmt.Printf("\n✓ Event %s deleted\n\n", eventID)
			return nil
		},
	}
}

func printEvent(event *model.Event) {
	fmt.Printf("Event ID:  %s\n", event.ID)
	fmt.Printf("Category:  %s\n", model.NormalizeCategory(event.Category).Title())
	fmt.Printf("When:      %s %s\n", event.Date, event.Time)
	if event.Location != "" {
		fmt.Printf("Where:     %s\n", event.Location)
	}
	fmt.Printf("Hours:     %s\n", formatHours(event.VolunteerHours))
	if event.Description != "" {
		fmt.Printf("\n%s\n", event.Description)
	}
	for _, img := range event.Images {
		fmt.Printf("  🖼  %s\n", img)
	}
	fmt.Println()
}

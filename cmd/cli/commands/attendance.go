package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// PendingCmd creates the pending command
func PendingCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pending <event_id>",
		Short: "List join requests waiting for a decision on an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID := args[0]
			app.Logger.Debug("pending command", zap.String("event_id", eventID))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			result, err := services.ListPendingForEvent(ctx, app.Database, app.Logger, eventID)
			if err != nil {
				return err
			}

			fmt.Printf("\n%s on %s\n\n", model.NormalizeCategory(result.Event.Category).Title(), result.Event.Date)

			if len(result.Requests) == 0 {
				fmt.Println("No pending requests.")
				fmt.Println()
				return nil
			}

			nameWidth := 20
			for _, req := range result.Requests {
				if len(req.VolunteerDisplayName) > nameWidth {
					nameWidth = len(req.VolunteerDisplayName)
				}
			}

			for _, req := range result.Requests {
				legacy := ""
				if req.Legacy {
					legacy = colorDim + " (matched by date)" + colorReset
				}
				fmt.Printf("  %-*s  %-30s %6s  %s%s\n",
					nameWidth,
					req.VolunteerDisplayName,
					req.VolunteerEmail,
					formatHours(req.Hours),
					req.JoinEventID,
					legacy,
				)
			}
			fmt.Printf("\n%d pending, decide with: decide <request_id> accept|reject\n\n", len(result.Requests))

			return nil
		},
	}
}

// DecideCmd creates the decide command
func DecideCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "decide <request_id> <accept|reject>",
		Short: "Accept or reject a join request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID := args[0]
			decision, ok := model.ParseDecision(args[1])
			if !ok {
				return fmt.Errorf("decision must be accept or reject, got: %s", args[1])
			}

			app.Logger.Debug("decide command",
				zap.String("request_id", requestID),
				zap.String("decision", string(decision)))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			result, err := services.Decide(ctx, app.Database, app.Notifier, app.Policy, app.Logger, requestID, decision)
			if err != nil {
				var conflict *model.ConflictError
				if errors.As(err, &conflict) {
					return fmt.Errorf("request %s is already %s and cannot be %s", requestID, conflict.Current, conflict.Requested)
				}
				return err
			}

			j := result.JoinEvent
			if !result.Changed {
				fmt.Printf("\nRequest %s was already %s, nothing to do\n\n", j.ID, j.Status.Normalized())
				return nil
			}

			fmt.Printf("\n%s Request %s %s\n", statusSymbol(j.Status), j.ID, j.Status)
			fmt.Printf("Volunteer: %s\n", j.EmailAddress)

			switch {
			case result.Notified:
				fmt.Printf("✓ Volunteer notified\n")
			case result.NotifyErr != nil:
				fmt.Printf("⚠️  Status saved but the notification failed: %v\n", result.NotifyErr)
			}
			fmt.Println()

			return nil
		},
	}
}

package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// GoalsCmd creates the goals command
func GoalsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "goals",
		Short: "Show progress towards your monthly goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("goals command")

			ctx, cancel := app.StoreCtx()
			defer cancel()

			progress, err := services.ListGoals(ctx, app.Database, app.Identity, app.Logger)
			if err != nil {
				return err
			}

			if len(progress) == 0 {
				fmt.Printf("\nNo goals yet, add one with setGoal.\n\n")
				return nil
			}

			fmt.Printf("\nGoals:\n")
			printGoalProgress(progress)
			fmt.Println()

			return nil
		},
	}
}

// SetGoalCmd creates the setGoal command
func SetGoalCmd(app *AppContext) *cobra.Command {
	var input services.GoalInput

	cmd := &cobra.Command{
		Use:   "setGoal <category> <month> <target_hours>",
		Short: "Set a monthly target of hours in a category",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("target_hours must be a number, got: %s", args[2])
			}
			input.Category = args[0]
			input.Month = args[1]
			input.TargetHours = target

			app.Logger.Debug("setGoal command",
				zap.String("category", input.Category),
				zap.String("month", input.Month),
				zap.Float64("target_hours", input.TargetHours))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			goal, err := services.SetGoal(ctx, app.Database, app.Identity, app.Schedule, app.Logger, input, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Goal saved!\n\n")
			fmt.Printf("Goal ID:  %s\n", goal.ID)
			fmt.Printf("Target:   %s of %s in %s\n", formatHours(goal.TargetHours), model.NormalizeCategory(goal.Category).Title(), goal.Month)
			if goal.NextReminderAt != nil {
				fmt.Printf("Reminder: %s\n", goal.NextReminderAt.Local().Format("Mon 2 Jan 2006 15:04"))
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().BoolVar(&input.Reminders, "remind", true, "Email reminders for the goal month (a wrap-up reminder when set late)")

	return cmd
}

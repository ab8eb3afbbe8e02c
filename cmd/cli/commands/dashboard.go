package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/aggregation"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// DashboardCmd creates the dashboard command
func DashboardCmd(app *AppContext) *cobra.Command {
	var rawWindow string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your volunteering hours, skills, badges and goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := aggregation.ParseWindow(rawWindow)
			if err != nil {
				return err
			}

			app.Logger.Debug("dashboard command", zap.String("window", window.String()))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			d, err := services.ViewDashboard(ctx, app.Database, app.Identity, app.Policy, app.Logger, window)
			if err != nil {
				return err
			}

			printDashboard(d)
			return nil
		},
	}

	cmd.Flags().StringVarP(&rawWindow, "window", "w", "all", "Time window: all or YYYY-MM")

	return cmd
}

func printDashboard(d *aggregation.Dashboard) {
	fmt.Printf("\nVolunteer Dashboard (%s)\n", d.Window)
	fmt.Println(strings.Repeat("=", 40))

	fmt.Printf("\nAll time: %s across %d events\n", formatHours(d.Totals.Hours), d.Totals.Events)

	if len(d.Badges) > 0 {
		fmt.Printf("\nBadges:\n")
		for _, b := range d.Badges {
			fmt.Printf("  🏅 %s\n", b.Name)
		}
	}

	fmt.Printf("\nHours by category:\n")
	if len(d.Summary) == 0 {
		fmt.Printf("  %s\n", colorize(colorDim, "No accepted hours in this window"))
	}
	for _, row := range d.Summary {
		fmt.Printf("  %-34s %s %3d%%  %s\n",
			row.Category.Title(),
			progressBar(float64(row.PercentageOfTotal), barWidth),
			row.PercentageOfTotal,
			formatHours(row.Hours),
		)
	}

	fmt.Printf("\nSkills (overall %.0f%%):\n", d.Skills.Overall)
	for _, skill := range model.AllSkills {
		value := d.Skills.Skills[skill]
		fmt.Printf("  %-34s %s %3.0f%%\n", skillLabel(skill), progressBar(value, barWidth), value)
	}
	if d.Skills.Unmapped > 0 {
		fmt.Printf("  %s\n", colorize(colorDim, fmt.Sprintf("%d records in categories without skills", d.Skills.Unmapped)))
	}

	if len(d.Monthly) > 0 {
		fmt.Printf("\nEvents by category:\n")
		for _, row := range d.Monthly {
			fmt.Printf("  %-34s %d\n", row.Category.Title(), row.Events)
		}
	}

	if len(d.Goals) > 0 {
		fmt.Printf("\nGoals:\n")
		printGoalProgress(d.Goals)
	}

	if d.Donation != nil {
		fmt.Printf("\nBlood donation:\n")
		fmt.Printf("  Last donation:      %s\n", d.Donation.LastDonation.Format(longDateLayout))
		fmt.Printf("  Next eligible date: %s\n", d.Donation.NextEligible.Format(longDateLayout))
	}

	if len(d.Warnings) > 0 {
		fmt.Printf("\n%s\n", colorize(colorYellow, fmt.Sprintf("⚠️  %d records could not be read fully, see the log for details", len(d.Warnings))))
	}
	fmt.Println()
}

func printGoalProgress(goals []aggregation.GoalProgress) {
	for _, g := range goals {
		color := percentColor(g.Percent, colorGreen, colorYellow, colorOrange)
		mark := " "
		if g.Met {
			mark = "✓"
		}
		fmt.Printf("  %s %s %-34s %s %s\n",
			mark,
			g.Goal.Month,
			model.NormalizeCategory(g.Goal.Category).Title(),
			colorize(color, progressBar(float64(g.Percent), barWidth)),
			fmt.Sprintf("%s / %s", formatHours(g.AchievedHours), formatHours(g.Goal.TargetHours)),
		)
	}
}

package commands

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/calendarexport"
	"github.com/jakechorley/volunteer-hub/pkg/core/aggregation"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// CalendarCmd creates the calendar command
func CalendarCmd(app *AppContext) *cobra.Command {
	var icsPath string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the days you have volunteered or asked to volunteer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("calendar command", zap.String("ics", icsPath))

			ctx, cancel := app.StoreCtx()
			defer cancel()

			d, err := services.ViewDashboard(ctx, app.Database, app.Identity, app.Policy, app.Logger, aggregation.AllTime())
			if err != nil {
				return err
			}

			if icsPath != "" {
				owner, _ := app.Identity.CurrentUserEmail()
				if err := writeCalendarFile(icsPath, owner, d.Calendar); err != nil {
					return err
				}
				fmt.Printf("\n✓ Wrote %d days to %s\n\n", len(d.Calendar), icsPath)
				return nil
			}

			printCalendar(d.Calendar)
			return nil
		},
	}

	cmd.Flags().StringVar(&icsPath, "ics", "", "Write the calendar to an iCalendar (.ics) file instead of printing it")

	return cmd
}

func writeCalendarFile(path, owner string, marks map[string]aggregation.CalendarMark) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create calendar file: %w", err)
	}

	if err := calendarexport.Write(f, owner, marks, time.Now()); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close calendar file: %w", err)
	}
	return nil
}

func printCalendar(marks map[string]aggregation.CalendarMark) {
	if len(marks) == 0 {
		fmt.Printf("\nNothing on your calendar yet.\n\n")
		return
	}

	dates := make([]string, 0, len(marks))
	for date := range marks {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	fmt.Println()
	month := ""
	for _, date := range dates {
		day, _ := time.Parse(aggregation.DateKeyLayout, date)
		if m := day.Format("January 2006"); m != month {
			month = m
			fmt.Printf("%s\n", month)
		}

		mark := marks[date]
		fmt.Printf("  %s  %s %s\n",
			day.Format("Mon 02"),
			colorize(statusColor(mark.Status), statusSymbol(mark.Status)),
			mark.Category.Title(),
		)
	}
	fmt.Println()
}

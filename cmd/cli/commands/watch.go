package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/services"
)

// cronLogger adapts zap to the cron.Logger interface
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}

// WatchCmd creates the watch command
func WatchCmd(app *AppContext) *cobra.Command {
	var sendReminders bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print acceptances as they happen and send goal reminders on schedule",
		Long: `Watch streams changes to your join requests and prints a message whenever one is accepted.
With --reminders it also checks for due goal reminders on the configured sweep schedule.
Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, signedIn := app.Identity.CurrentUserEmail()
			if !signedIn && !sendReminders {
				return fmt.Errorf("nothing to watch: %w", model.ErrUnauthenticated)
			}

			ctx, stop := signal.NotifyContext(app.Ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.Logger.Info("Watching",
				zap.Bool("acceptances", signedIn),
				zap.Bool("reminders", sendReminders),
				zap.String("sweep_schedule", app.Cfg.Reminders.SweepSchedule))
			fmt.Printf("\n👀 Watching, press Ctrl+C to stop\n\n")

			g, gctx := errgroup.WithContext(ctx)

			if signedIn {
				g.Go(func() error {
					return services.WatchAcceptances(gctx, app.Database, app.Identity, app.Policy, app.Logger, printAcceptance)
				})
			}

			if sendReminders {
				g.Go(func() error {
					return runReminderSweep(gctx, app)
				})
			}

			err := g.Wait()
			if errors.Is(err, context.Canceled) {
				err = nil
			}
			fmt.Println("\n👋 Stopped watching")
			return err
		},
	}

	cmd.Flags().BoolVar(&sendReminders, "reminders", false, "Also send due goal reminders on the sweep schedule")

	return cmd
}

// runReminderSweep runs SendGoalReminders on the sweep schedule until ctx is done
func runReminderSweep(ctx context.Context, app *AppContext) error {
	logger := cronLogger{sugar: app.Logger.Sugar()}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(logger)), cron.WithLogger(logger))

	_, err := c.AddFunc(app.Cfg.Reminders.SweepSchedule, func() {
		sweepCtx, cancel := context.WithTimeout(ctx, app.Cfg.Store.Timeout)
		defer cancel()

		result, err := services.SendGoalReminders(sweepCtx, app.Database, app.Notifier, app.Schedule, app.Logger, time.Now())
		if err != nil {
			app.Logger.Error("Reminder sweep failed", zap.Error(err))
			return
		}
		if result.Sent > 0 || len(result.Failed) > 0 {
			fmt.Printf("%s  ✉️  Sent %d goal reminders", time.Now().Format("15:04"), result.Sent)
			if len(result.Failed) > 0 {
				fmt.Printf(", %d failed", len(result.Failed))
			}
			fmt.Println()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()

	return ctx.Err()
}

func printAcceptance(notice model.AcceptanceNotice) {
	fmt.Printf("%s  %s You're confirmed for %s on %s\n",
		time.Now().Format("15:04"),
		colorize(colorGreen, "✓"),
		notice.Category.Title(),
		notice.EventDate,
	)
	if notice.NextEligibleDate != nil {
		fmt.Printf("       Next eligible donation date: %s\n", notice.NextEligibleDate.Format(longDateLayout))
	}
}

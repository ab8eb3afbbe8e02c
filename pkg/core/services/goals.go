package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/aggregation"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/reminders"
	"github.com/jakechorley/volunteer-hub/pkg/db"
	"github.com/jakechorley/volunteer-hub/pkg/identity"
)

// GoalInput describes a new monthly goal
type GoalInput struct {
	Category    string
	Month       string
	TargetHours float64
	Reminders   bool
}

type GoalWriter interface {
	InsertGoal(ctx context.Context, goal *model.Goal) error
}

// SetGoal stores a goal for the signed-in volunteer and schedules its first reminder
func SetGoal(ctx context.Context, store GoalWriter, id identity.Provider, schedule *reminders.Schedule, logger *zap.Logger, input GoalInput, now time.Time) (*model.Goal, error) {
	email, err := currentUser(id)
	if err != nil {
		return nil, err
	}

	category, known := model.ParseCategory(input.Category)
	if !known {
		return nil, fmt.Errorf("unknown category %q: %w", input.Category, model.ErrValidation)
	}

	goal := &model.Goal{
		ID:               uuid.New().String(),
		EmailAddress:     email,
		Category:         string(category),
		Month:            input.Month,
		TargetHours:      input.TargetHours,
		RemindersEnabled: input.Reminders,
		CreatedAt:        now.UTC(),
	}
	if err := validate.Struct(goal); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrValidation, err)
	}

	if goal.RemindersEnabled {
		next, err := schedule.First(goal.Month, now)
		if err != nil {
			return nil, fmt.Errorf("failed to schedule reminder: %w", err)
		}
		if next == nil {
			return nil, fmt.Errorf("goal month %s has no reminders left, set it without reminders: %w", goal.Month, model.ErrValidation)
		}
		goal.NextReminderAt = next
	}

	if err := store.InsertGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to insert goal: %w", err)
	}

	fields := []zap.Field{
		zap.String("goal_id", goal.ID),
		zap.String("category", goal.Category),
		zap.String("month", goal.Month),
	}
	if goal.NextReminderAt != nil {
		fields = append(fields, zap.Time("next_reminder", *goal.NextReminderAt))
	}
	logger.Info("Goal set", fields...)
	return goal, nil
}

// ListGoals returns the signed-in volunteer's goals with progress
func ListGoals(ctx context.Context, store RecordStore, id identity.Provider, logger *zap.Logger) ([]aggregation.GoalProgress, error) {
	email, err := currentUser(id)
	if err != nil {
		return nil, err
	}

	goals, err := store.ListGoals(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goals: %w", err)
	}
	if len(goals) == 0 {
		return nil, nil
	}

	records, err := store.QueryJoinEvents(ctx, db.JoinEventFilter{EmailAddress: email, Status: model.StatusAccepted})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch join events: %w", err)
	}

	logger.Debug("Computing goal progress", zap.Int("goals", len(goals)), zap.Int("records", len(records)))
	return aggregation.BuildGoalProgress(goals, records), nil
}

// ReminderStore defines the database operations needed by the reminder sweep
type ReminderStore interface {
	ListDueGoals(ctx context.Context, before time.Time) ([]model.Goal, error)
	MarkGoalReminded(ctx context.Context, id string, next *time.Time) error
	QueryJoinEvents(ctx context.Context, filter db.JoinEventFilter) ([]model.JoinEvent, error)
}

// FailedReminder records a reminder that could not be delivered
type FailedReminder struct {
	GoalID string
	Email  string
	Error  string
}

type ReminderResult struct {
	Sent   int
	Failed []FailedReminder
}

// SendGoalReminders notifies every goal whose reminder is due at now, then advances its schedule.
// A goal whose notification fails keeps its schedule and is retried on the next sweep.
func SendGoalReminders(ctx context.Context, store ReminderStore, notifier Notifier, schedule *reminders.Schedule, logger *zap.Logger, now time.Time) (*ReminderResult, error) {
	due, err := store.ListDueGoals(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due goals: %w", err)
	}

	logger.Debug("Reminder sweep", zap.Int("due", len(due)))

	result := &ReminderResult{}
	records := make(map[string][]model.JoinEvent)
	for _, goal := range due {
		recs, ok := records[goal.EmailAddress]
		if !ok {
			recs, err = store.QueryJoinEvents(ctx, db.JoinEventFilter{EmailAddress: goal.EmailAddress, Status: model.StatusAccepted})
			if err != nil {
				return result, fmt.Errorf("failed to fetch join events for %s: %w", goal.EmailAddress, err)
			}
			records[goal.EmailAddress] = recs
		}

		progress := aggregation.BuildGoalProgress([]model.Goal{goal}, recs)[0]
		notice := model.GoalReminderNotice{
			GoalID:         goal.ID,
			VolunteerEmail: goal.EmailAddress,
			Category:       model.NormalizeCategory(goal.Category),
			Month:          goal.Month,
			TargetHours:    goal.TargetHours,
			AchievedHours:  progress.AchievedHours,
		}

		if err := notifier.NotifyGoalReminder(ctx, notice); err != nil {
			logger.Warn("Failed to send goal reminder", zap.String("goal_id", goal.ID), zap.Error(err))
			result.Failed = append(result.Failed, FailedReminder{GoalID: goal.ID, Email: goal.EmailAddress, Error: err.Error()})
			continue
		}

		next, err := schedule.Next(goal.Month, now)
		if err != nil {
			return result, fmt.Errorf("failed to schedule next reminder for %s: %w", goal.ID, err)
		}
		if err := store.MarkGoalReminded(ctx, goal.ID, next); err != nil {
			return result, fmt.Errorf("failed to mark goal %s reminded: %w", goal.ID, err)
		}
		result.Sent++
	}

	if result.Sent > 0 || len(result.Failed) > 0 {
		logger.Info("Goal reminders sent", zap.Int("sent", result.Sent), zap.Int("failed", len(result.Failed)))
	}
	return result, nil
}

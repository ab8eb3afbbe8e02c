package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/identity"
)

// Notifier delivers volunteer-facing messages
type Notifier interface {
	NotifyAccepted(ctx context.Context, notice model.AcceptanceNotice) error
	NotifyGoalReminder(ctx context.Context, notice model.GoalReminderNotice) error
}

// LogNotifier only logs notices, used when email is disabled
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) NotifyAccepted(ctx context.Context, notice model.AcceptanceNotice) error {
	fields := []zap.Field{
		zap.String("join_event_id", notice.JoinEventID),
		zap.String("volunteer", notice.VolunteerEmail),
		zap.String("category", string(notice.Category)),
		zap.String("event_date", notice.EventDate),
	}
	if notice.NextEligibleDate != nil {
		fields = append(fields, zap.Time("next_eligible", *notice.NextEligibleDate))
	}
	n.Logger.Info("Join request accepted", fields...)
	return nil
}

func (n LogNotifier) NotifyGoalReminder(ctx context.Context, notice model.GoalReminderNotice) error {
	n.Logger.Info("Goal reminder due",
		zap.String("goal_id", notice.GoalID),
		zap.String("volunteer", notice.VolunteerEmail),
		zap.String("category", string(notice.Category)),
		zap.String("month", notice.Month),
		zap.Float64("target_hours", notice.TargetHours),
		zap.Float64("achieved_hours", notice.AchievedHours))
	return nil
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// currentUser returns the signed-in email or model.ErrUnauthenticated
func currentUser(id identity.Provider) (string, error) {
	if id == nil {
		return "", model.ErrUnauthenticated
	}
	email, ok := id.CurrentUserEmail()
	email = strings.TrimSpace(email)
	if !ok || email == "" {
		return "", model.ErrUnauthenticated
	}
	return email, nil
}

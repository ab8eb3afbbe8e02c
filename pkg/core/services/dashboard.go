package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/aggregation"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/progression"
	"github.com/jakechorley/volunteer-hub/pkg/db"
	"github.com/jakechorley/volunteer-hub/pkg/identity"
)

// RecordStore defines the database operations needed to project a volunteer's records
type RecordStore interface {
	QueryJoinEvents(ctx context.Context, filter db.JoinEventFilter) ([]model.JoinEvent, error)
	ListGoals(ctx context.Context, email string) ([]model.Goal, error)
}

// ViewDashboard loads the signed-in volunteer's join requests and goals and builds every view from them
func ViewDashboard(ctx context.Context, store RecordStore, id identity.Provider, policy *progression.Policy, logger *zap.Logger, window aggregation.Window) (*aggregation.Dashboard, error) {
	email, err := currentUser(id)
	if err != nil {
		return nil, err
	}

	records, err := store.QueryJoinEvents(ctx, db.JoinEventFilter{EmailAddress: email})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch join events: %w", err)
	}

	goals, err := store.ListGoals(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goals: %w", err)
	}

	dashboard := aggregation.BuildDashboard(records, goals, policy, window)

	logger.Debug("Dashboard built",
		zap.String("email", email),
		zap.String("window", window.String()),
		zap.Int("records", len(records)),
		zap.Int("warnings", len(dashboard.Warnings)))
	for _, w := range dashboard.Warnings {
		logger.Warn("Skipped malformed record", zap.Stringer("warning", w))
	}

	return &dashboard, nil
}

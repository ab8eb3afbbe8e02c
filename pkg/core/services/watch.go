package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/progression"
	"github.com/jakechorley/volunteer-hub/pkg/db"
	"github.com/jakechorley/volunteer-hub/pkg/identity"
)

// WatchAcceptances streams the signed-in volunteer's join request changes and calls fn once per
// request that becomes accepted. It returns when ctx is cancelled.
func WatchAcceptances(ctx context.Context, feed db.ChangeFeed, id identity.Provider, policy *progression.Policy, logger *zap.Logger, fn func(model.AcceptanceNotice)) error {
	email, err := currentUser(id)
	if err != nil {
		return err
	}

	logger.Info("Watching join requests", zap.String("email", email))

	seen := make(map[string]bool)
	err = feed.SubscribeJoinEvents(ctx, func(j model.JoinEvent) {
		if !strings.EqualFold(j.EmailAddress, email) {
			return
		}
		logger.Debug("Join request changed",
			zap.String("join_event_id", j.ID),
			zap.String("status", string(j.Status)))
		if j.Status.Normalized() != model.StatusAccepted || seen[j.ID] {
			return
		}
		seen[j.ID] = true
		fn(acceptanceNotice(j, policy))
	})
	if err != nil {
		return fmt.Errorf("failed to watch join requests: %w", err)
	}
	return nil
}

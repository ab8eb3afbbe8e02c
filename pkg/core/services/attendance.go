package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/volunteer-hub/pkg/core/aggregation"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/progression"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

const (
	maxConcurrentProfileLookups = 8
	maxDecideAttempts           = 3
)

// PendingRequest is one actionable join request shown to the organizer
type PendingRequest struct {
	JoinEventID          string
	VolunteerEmail       string
	VolunteerDisplayName string
	Date                 string
	Hours                float64
	// Legacy is set when the record was matched by category and date rather than event id
	Legacy bool
}

// PendingResult lists pending requests in joined order with the profiles that were found
type PendingResult struct {
	Event    *model.Event
	Requests []PendingRequest
	Profiles map[string]*model.UserProfile
}

// PendingStore defines the database operations needed to list pending requests
type PendingStore interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	QueryJoinEvents(ctx context.Context, filter db.JoinEventFilter) ([]model.JoinEvent, error)
	GetProfileByEmail(ctx context.Context, email string) (*model.UserProfile, error)
}

// ListPendingForEvent returns every pending join request for an event.
// Records without an event id are matched on normalized category and date.
// Each distinct volunteer profile is fetched once.
func ListPendingForEvent(ctx context.Context, store PendingStore, logger *zap.Logger, eventID string) (*PendingResult, error) {
	logger.Debug("Listing pending requests", zap.String("event_id", eventID))

	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	linked, err := store.QueryJoinEvents(ctx, db.JoinEventFilter{EventID: eventID, Status: model.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to query pending requests: %w", err)
	}

	legacy, err := store.QueryJoinEvents(ctx, db.JoinEventFilter{Status: model.StatusPending, WithoutEventID: true})
	if err != nil {
		return nil, fmt.Errorf("failed to query legacy pending requests: %w", err)
	}
	legacy = matchLegacy(event, legacy)

	logger.Debug("Found pending requests",
		zap.Int("linked", len(linked)),
		zap.Int("legacy", len(legacy)))

	var emails []string
	seen := make(map[string]bool)
	for _, group := range [][]model.JoinEvent{linked, legacy} {
		for _, j := range group {
			if !seen[j.EmailAddress] {
				seen[j.EmailAddress] = true
				emails = append(emails, j.EmailAddress)
			}
		}
	}

	profiles, err := fetchProfiles(ctx, store, logger, emails)
	if err != nil {
		return nil, err
	}

	result := &PendingResult{Event: event, Profiles: profiles}
	for _, j := range linked {
		result.Requests = append(result.Requests, pendingRequest(j, profiles, false))
	}
	for _, j := range legacy {
		result.Requests = append(result.Requests, pendingRequest(j, profiles, true))
	}

	return result, nil
}

// matchLegacy keeps records whose category and date agree with the event
func matchLegacy(event *model.Event, records []model.JoinEvent) []model.JoinEvent {
	eventDate, err := aggregation.ParseDate(event.Date)
	if err != nil {
		return nil
	}
	category := model.NormalizeCategory(event.Category)

	var matched []model.JoinEvent
	for _, j := range records {
		if model.NormalizeCategory(j.Category) != category {
			continue
		}
		d, err := aggregation.ParseDate(j.Date)
		if err != nil || !d.Equal(eventDate) {
			continue
		}
		matched = append(matched, j)
	}
	return matched
}

// fetchProfiles looks up each email concurrently. A missing profile is not an error.
func fetchProfiles(ctx context.Context, store PendingStore, logger *zap.Logger, emails []string) (map[string]*model.UserProfile, error) {
	profiles := make(map[string]*model.UserProfile, len(emails))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProfileLookups)

	for _, email := range emails {
		email := email
		g.Go(func() error {
			p, err := store.GetProfileByEmail(gctx, email)
			if errors.Is(err, model.ErrNotFound) {
				logger.Debug("No profile for volunteer", zap.String("email", email))
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to fetch profile for %s: %w", email, err)
			}
			mu.Lock()
			profiles[email] = p
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func pendingRequest(j model.JoinEvent, profiles map[string]*model.UserProfile, legacy bool) PendingRequest {
	name := j.EmailAddress
	if p, ok := profiles[j.EmailAddress]; ok {
		name = p.DisplayName()
	}
	return PendingRequest{
		JoinEventID:          j.ID,
		VolunteerEmail:       j.EmailAddress,
		VolunteerDisplayName: name,
		Date:                 j.Date,
		Hours:                j.Hours,
		Legacy:               legacy,
	}
}

// DecideStore defines the database operations needed to decide a join request
type DecideStore interface {
	GetJoinEvent(ctx context.Context, id string) (*model.JoinEvent, error)
	UpdateJoinEventStatus(ctx context.Context, id string, expectedRevision int, status model.Status, decidedAt time.Time) error
}

// DecideResult reports what a decision did
type DecideResult struct {
	JoinEvent *model.JoinEvent
	// Changed is false when the request was already in the requested state
	Changed  bool
	Notified bool
	// NotifyErr is set when the status was written but the notification failed
	NotifyErr error
}

// Decide accepts or rejects a join request. Repeating the same decision is a no-op.
// The status write is a compare-and-swap on the record revision; a lost race re-reads the record.
// An acceptance notifies the volunteer once, after the write.
func Decide(
	ctx context.Context,
	store DecideStore,
	notifier Notifier,
	policy *progression.Policy,
	logger *zap.Logger,
	joinEventID string,
	decision model.Decision,
) (*DecideResult, error) {
	if !decision.Valid() {
		return nil, fmt.Errorf("unknown decision %q: %w", decision, model.ErrValidation)
	}

	for attempt := 1; attempt <= maxDecideAttempts; attempt++ {
		j, err := store.GetJoinEvent(ctx, joinEventID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch join event: %w", err)
		}

		next, changed, err := model.ApplyDecision(j.ID, j.Status, decision)
		if err != nil {
			return nil, err
		}
		if !changed {
			logger.Info("Join request already decided",
				zap.String("join_event_id", j.ID),
				zap.String("status", string(next)))
			return &DecideResult{JoinEvent: j}, nil
		}

		decidedAt := time.Now().UTC()
		err = store.UpdateJoinEventStatus(ctx, j.ID, j.Revision, next, decidedAt)
		if errors.Is(err, model.ErrConflict) {
			logger.Debug("Join request changed concurrently, re-reading",
				zap.String("join_event_id", j.ID),
				zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to update join event status: %w", err)
		}

		j.Status = next
		j.Revision++
		j.DecidedAt = &decidedAt
		logger.Info("Join request decided",
			zap.String("join_event_id", j.ID),
			zap.String("volunteer", j.EmailAddress),
			zap.String("status", string(next)))

		result := &DecideResult{JoinEvent: j, Changed: true}
		if next == model.StatusAccepted {
			if err := notifier.NotifyAccepted(ctx, acceptanceNotice(*j, policy)); err != nil {
				logger.Warn("Failed to notify volunteer", zap.String("join_event_id", j.ID), zap.Error(err))
				result.NotifyErr = err
			} else {
				result.Notified = true
			}
		}
		return result, nil
	}

	return nil, fmt.Errorf("join event %s kept changing after %d attempts: %w", joinEventID, maxDecideAttempts, model.ErrConflict)
}

// acceptanceNotice builds the notice for an accepted request; blood donations get the next eligible date
func acceptanceNotice(j model.JoinEvent, policy *progression.Policy) model.AcceptanceNotice {
	notice := model.AcceptanceNotice{
		JoinEventID:    j.ID,
		VolunteerEmail: j.EmailAddress,
		Category:       model.NormalizeCategory(j.Category),
		EventDate:      j.Date,
	}
	if notice.Category == model.CategoryBloodDonation {
		if d, err := aggregation.ParseDate(j.Date); err == nil {
			next := aggregation.ComputeNextEligibleDate(d, policy.BloodDonationCooldownDays)
			notice.NextEligibleDate = &next
		}
	}
	return notice
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/aggregation"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/core/progression"
	"github.com/jakechorley/volunteer-hub/pkg/db"
	"github.com/jakechorley/volunteer-hub/pkg/identity"
)

// EventInput holds the organizer-editable fields of an event
type EventInput struct {
	Category       string
	Description    string
	Date           string
	Time           string
	Location       string
	VolunteerHours float64
	Images         []string
}

// EventManagementStore defines the database operations needed to manage events
type EventManagementStore interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	InsertEvent(ctx context.Context, event *model.Event) error
	UpdateEvent(ctx context.Context, event *model.Event) error
	DeleteEvent(ctx context.Context, id string) error
	GetProfileByEmail(ctx context.Context, email string) (*model.UserProfile, error)
}

// CreateEvent publishes a new event owned by the signed-in organization
func CreateEvent(ctx context.Context, store EventManagementStore, id identity.Provider, logger *zap.Logger, input EventInput) (*model.Event, error) {
	email, err := requireOrganization(ctx, store, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	event := &model.Event{
		ID:             uuid.New().String(),
		OrganizerEmail: email,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := applyEventInput(event, input); err != nil {
		return nil, err
	}

	if err := store.InsertEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	logger.Info("Event created",
		zap.String("event_id", event.ID),
		zap.String("category", event.Category),
		zap.String("date", event.Date))
	return event, nil
}

// UpdateEvent overwrites an event's editable fields. Only the owning organization may edit it.
func UpdateEvent(ctx context.Context, store EventManagementStore, id identity.Provider, logger *zap.Logger, eventID string, input EventInput) (*model.Event, error) {
	event, err := ownedEvent(ctx, store, id, eventID)
	if err != nil {
		return nil, err
	}

	if err := applyEventInput(event, input); err != nil {
		return nil, err
	}
	event.UpdatedAt = time.Now().UTC()

	if err := store.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	logger.Info("Event updated", zap.String("event_id", event.ID))
	return event, nil
}

// DeleteEvent removes an event. Join requests that reference it are left in place.
func DeleteEvent(ctx context.Context, store EventManagementStore, id identity.Provider, logger *zap.Logger, eventID string) error {
	if _, err := ownedEvent(ctx, store, id, eventID); err != nil {
		return err
	}

	if err := store.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	logger.Info("Event deleted", zap.String("event_id", eventID))
	return nil
}

func requireOrganization(ctx context.Context, store EventManagementStore, id identity.Provider) (string, error) {
	email, err := currentUser(id)
	if err != nil {
		return "", err
	}

	profile, err := store.GetProfileByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return "", fmt.Errorf("%s has no organization profile: %w", email, model.ErrForbidden)
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch profile: %w", err)
	}
	if profile.Role != model.RoleOrganization {
		return "", fmt.Errorf("%s is not an organization: %w", email, model.ErrForbidden)
	}
	return email, nil
}

func ownedEvent(ctx context.Context, store EventManagementStore, id identity.Provider, eventID string) (*model.Event, error) {
	email, err := currentUser(id)
	if err != nil {
		return nil, err
	}

	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}
	if !strings.EqualFold(event.OrganizerEmail, email) {
		return nil, fmt.Errorf("event %s belongs to %s: %w", eventID, event.OrganizerEmail, model.ErrForbidden)
	}
	return event, nil
}

// applyEventInput copies input onto event, storing the canonical category, and validates the result
func applyEventInput(event *model.Event, input EventInput) error {
	category, known := model.ParseCategory(input.Category)
	if !known {
		return fmt.Errorf("unknown category %q: %w", input.Category, model.ErrValidation)
	}

	event.Category = string(category)
	event.Description = strings.TrimSpace(input.Description)
	event.Date = strings.TrimSpace(input.Date)
	event.Time = strings.TrimSpace(input.Time)
	event.Location = strings.TrimSpace(input.Location)
	event.VolunteerHours = input.VolunteerHours
	event.Images = input.Images
	if event.Images == nil {
		event.Images = []string{}
	}

	if err := validate.Struct(event); err != nil {
		return fmt.Errorf("%w: %w", model.ErrValidation, err)
	}
	return nil
}

// FeedStore defines the database operations needed for the event feed
type FeedStore interface {
	ListEvents(ctx context.Context, filter db.EventFilter) ([]model.Event, error)
	GetProfileByEmail(ctx context.Context, email string) (*model.UserProfile, error)
}

// ListEventFeed lists events from fromDate onwards in the signed-in user's preferred categories,
// or every event when no preference is set
func ListEventFeed(ctx context.Context, store FeedStore, id identity.Provider, logger *zap.Logger, fromDate string) ([]model.Event, error) {
	email, err := currentUser(id)
	if err != nil {
		return nil, err
	}

	preferred := make(map[model.Category]bool)
	profile, err := store.GetProfileByEmail(ctx, email)
	switch {
	case errors.Is(err, model.ErrNotFound):
		logger.Debug("No profile, showing all categories", zap.String("email", email))
	case err != nil:
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	default:
		for _, c := range profile.Categories {
			preferred[model.NormalizeCategory(c)] = true
		}
	}

	events, err := store.ListEvents(ctx, db.EventFilter{FromDate: fromDate})
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	if len(preferred) == 0 {
		return events, nil
	}

	var feed []model.Event
	for _, e := range events {
		if preferred[model.NormalizeCategory(e.Category)] {
			feed = append(feed, e)
		}
	}
	logger.Debug("Filtered event feed", zap.Int("events", len(events)), zap.Int("feed", len(feed)))
	return feed, nil
}

// JoinStore defines the database operations needed to join an event
type JoinStore interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	QueryJoinEvents(ctx context.Context, filter db.JoinEventFilter) ([]model.JoinEvent, error)
	InsertJoinEvent(ctx context.Context, joinEvent *model.JoinEvent) error
}

// JoinResult carries the new request and, for blood donations, the advisory eligibility
type JoinResult struct {
	JoinEvent *model.JoinEvent
	Donation  *aggregation.DonationEligibility
	// TooSoon is set when the event falls before the next eligible donation date. It does not block the join.
	TooSoon bool
}

// JoinEvent records a pending request for the signed-in volunteer, copying the event's
// category, date and hours onto the request
func JoinEvent(ctx context.Context, store JoinStore, id identity.Provider, policy *progression.Policy, logger *zap.Logger, eventID string) (*JoinResult, error) {
	email, err := currentUser(id)
	if err != nil {
		return nil, err
	}

	event, err := store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event: %w", err)
	}

	j := &model.JoinEvent{
		ID:           uuid.New().String(),
		EmailAddress: email,
		Category:     event.Category,
		Date:         event.Date,
		Hours:        event.VolunteerHours,
		Status:       model.StatusPending,
		EventID:      event.ID,
		JoinedAt:     time.Now().UTC(),
	}

	result := &JoinResult{JoinEvent: j}
	if model.NormalizeCategory(event.Category) == model.CategoryBloodDonation {
		records, err := store.QueryJoinEvents(ctx, db.JoinEventFilter{EmailAddress: email, Status: model.StatusAccepted})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch donation history: %w", err)
		}
		if donation, ok := aggregation.NextDonation(records, policy); ok {
			result.Donation = &donation
			if d, err := aggregation.ParseDate(event.Date); err == nil && d.Before(donation.NextEligible) {
				result.TooSoon = true
				logger.Warn("Donation falls inside the cooldown",
					zap.String("email", email),
					zap.Time("next_eligible", donation.NextEligible))
			}
		}
	}

	if err := store.InsertJoinEvent(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to insert join event: %w", err)
	}

	logger.Info("Joined event",
		zap.String("join_event_id", j.ID),
		zap.String("event_id", event.ID),
		zap.String("email", email))
	return result, nil
}

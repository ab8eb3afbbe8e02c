package db

import (
	"context"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// EventStore defines the interface for event database operations
type EventStore interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, error)
	InsertEvent(ctx context.Context, event *model.Event) error
	UpdateEvent(ctx context.Context, event *model.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// JoinEventStore defines the interface for join request database operations
type JoinEventStore interface {
	GetJoinEvent(ctx context.Context, id string) (*model.JoinEvent, error)
	QueryJoinEvents(ctx context.Context, filter JoinEventFilter) ([]model.JoinEvent, error)
	InsertJoinEvent(ctx context.Context, joinEvent *model.JoinEvent) error
	// UpdateJoinEventStatus writes status only if the stored revision still equals expectedRevision.
	// It returns model.ErrConflict when another writer got there first.
	UpdateJoinEventStatus(ctx context.Context, id string, expectedRevision int, status model.Status, decidedAt time.Time) error
}

// ProfileStore defines the interface for user profile database operations
type ProfileStore interface {
	GetProfileByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	UpsertProfile(ctx context.Context, profile *model.UserProfile) error
}

// GoalStore defines the interface for goal database operations
type GoalStore interface {
	ListGoals(ctx context.Context, email string) ([]model.Goal, error)
	InsertGoal(ctx context.Context, goal *model.Goal) error
	ListDueGoals(ctx context.Context, before time.Time) ([]model.Goal, error)
	MarkGoalReminded(ctx context.Context, id string, next *time.Time) error
}

// ChangeFeed pushes JoinEvent changes to fn until ctx is cancelled
type ChangeFeed interface {
	SubscribeJoinEvents(ctx context.Context, fn func(model.JoinEvent)) error
}

// Database defines the interface for all database operations.
// Both postgres.DB and mongostore.DB implement this interface.
type Database interface {
	EventStore
	JoinEventStore
	ProfileStore
	GoalStore
	ChangeFeed
	Close()
}

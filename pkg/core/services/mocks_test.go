package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

// mockStore is an in-memory db.Database
type mockStore struct {
	mu         sync.Mutex
	events     map[string]*model.Event
	joinEvents []*model.JoinEvent
	profiles   map[string]*model.UserProfile
	goals      []model.Goal

	profileLookups map[string]int
	profileErr     error
	queryErr       error
	updates        int
	// beforeUpdate runs once, before the next status update, to simulate a concurrent writer
	beforeUpdate func(s *mockStore)
	reminded     map[string]*time.Time
	changes      []model.JoinEvent
}

func newMockStore() *mockStore {
	return &mockStore{
		events:         make(map[string]*model.Event),
		profiles:       make(map[string]*model.UserProfile),
		profileLookups: make(map[string]int),
		reminded:       make(map[string]*time.Time),
	}
}

func (m *mockStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, model.ErrNotFound)
	}
	cp := *e
	return &cp, nil
}

func (m *mockStore) ListEvents(ctx context.Context, filter db.EventFilter) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Event
	for _, e := range m.events {
		if filter.OrganizerEmail != "" && e.OrganizerEmail != filter.OrganizerEmail {
			continue
		}
		if filter.FromDate != "" && e.Date < filter.FromDate {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (m *mockStore) InsertEvent(ctx context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *mockStore) UpdateEvent(ctx context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return model.ErrNotFound
	}
	cp := *event
	m.events[event.ID] = &cp
	return nil
}

func (m *mockStore) DeleteEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return model.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *mockStore) GetJoinEvent(ctx context.Context, id string) (*model.JoinEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.joinEvents {
		if j.ID == id {
			cp := *j
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("join event %s: %w", id, model.ErrNotFound)
}

func (m *mockStore) QueryJoinEvents(ctx context.Context, filter db.JoinEventFilter) ([]model.JoinEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	var out []model.JoinEvent
	for _, j := range m.joinEvents {
		if filter.EmailAddress != "" && j.EmailAddress != filter.EmailAddress {
			continue
		}
		if filter.EventID != "" && j.EventID != filter.EventID {
			continue
		}
		if filter.Status != "" && j.Status.Normalized() != filter.Status {
			continue
		}
		if filter.WithoutEventID && j.EventID != "" {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

func (m *mockStore) InsertJoinEvent(ctx context.Context, joinEvent *model.JoinEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *joinEvent
	m.joinEvents = append(m.joinEvents, &cp)
	return nil
}

func (m *mockStore) UpdateJoinEventStatus(ctx context.Context, id string, expectedRevision int, status model.Status, decidedAt time.Time) error {
	m.mu.Lock()
	hook := m.beforeUpdate
	m.beforeUpdate = nil
	m.mu.Unlock()
	if hook != nil {
		hook(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.joinEvents {
		if j.ID != id {
			continue
		}
		if j.Revision != expectedRevision {
			return fmt.Errorf("join event %s changed: %w", id, model.ErrConflict)
		}
		j.Status = status
		j.DecidedAt = &decidedAt
		j.Revision++
		m.updates++
		return nil
	}
	return fmt.Errorf("join event %s: %w", id, model.ErrNotFound)
}

// setStatus changes a record as another writer would
func (m *mockStore) setStatus(id string, status model.Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.joinEvents {
		if j.ID == id {
			j.Status = status
			j.Revision++
		}
	}
}

func (m *mockStore) GetProfileByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileLookups[email]++
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	p, ok := m.profiles[email]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", email, model.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *mockStore) UpsertProfile(ctx context.Context, profile *model.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *profile
	m.profiles[profile.EmailAddress] = &cp
	return nil
}

func (m *mockStore) ListGoals(ctx context.Context, email string) ([]model.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Goal
	for _, g := range m.goals {
		if g.EmailAddress == email {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockStore) InsertGoal(ctx context.Context, goal *model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals = append(m.goals, *goal)
	return nil
}

func (m *mockStore) ListDueGoals(ctx context.Context, before time.Time) ([]model.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Goal
	for _, g := range m.goals {
		if g.RemindersEnabled && g.NextReminderAt != nil && !g.NextReminderAt.After(before) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockStore) MarkGoalReminded(ctx context.Context, id string, next *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.goals {
		if m.goals[i].ID == id {
			m.goals[i].NextReminderAt = next
			m.reminded[id] = next
			return nil
		}
	}
	return model.ErrNotFound
}

func (m *mockStore) SubscribeJoinEvents(ctx context.Context, fn func(model.JoinEvent)) error {
	for _, j := range m.changes {
		fn(j)
	}
	return nil
}

func (m *mockStore) Close() {}

var _ db.Database = (*mockStore)(nil)

// mockNotifier records notices; err makes every call fail
type mockNotifier struct {
	accepted  []model.AcceptanceNotice
	reminders []model.GoalReminderNotice
	err       error
}

func (m *mockNotifier) NotifyAccepted(ctx context.Context, notice model.AcceptanceNotice) error {
	if m.err != nil {
		return m.err
	}
	m.accepted = append(m.accepted, notice)
	return nil
}

func (m *mockNotifier) NotifyGoalReminder(ctx context.Context, notice model.GoalReminderNotice) error {
	if m.err != nil {
		return m.err
	}
	m.reminders = append(m.reminders, notice)
	return nil
}

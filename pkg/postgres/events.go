package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

var eventColumns = []string{
	"id", "organizer_email", "category", "description", "date", "time",
	"location", "volunteer_hours", "images", "created_at", "updated_at",
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	var date time.Time
	if err := row.Scan(&e.ID, &e.OrganizerEmail, &e.Category, &e.Description, &date, &e.Time,
		&e.Location, &e.VolunteerHours, &e.Images, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Date = date.Format("2006-01-02")
	return &e, nil
}

// GetEvent retrieves one event by id
func (d *DB) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	query, args, err := psql.Select(eventColumns...).From("event").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build event query: %w", err)
	}

	e, err := scanEvent(d.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get event %s: %w", id, mapError(err))
	}
	return e, nil
}

// ListEvents retrieves events ordered by date and time
func (d *DB) ListEvents(ctx context.Context, filter db.EventFilter) ([]model.Event, error) {
	b := psql.Select(eventColumns...).From("event").OrderBy("date ASC", "time ASC", "id ASC")
	if filter.OrganizerEmail != "" {
		b = b.Where(sq.Eq{"organizer_email": filter.OrganizerEmail})
	}
	if filter.FromDate != "" {
		b = b.Where(sq.GtOrEq{"date": filter.FromDate})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build events query: %w", err)
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", mapError(err))
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", mapError(err))
	}

	return events, nil
}

// InsertEvent inserts a new event record
func (d *DB) InsertEvent(ctx context.Context, event *model.Event) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO event (id, organizer_email, category, description, date, time, location, volunteer_hours, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, event.ID, event.OrganizerEmail, event.Category, event.Description, event.Date, event.Time,
		event.Location, event.VolunteerHours, nonNil(event.Images), event.CreatedAt.UTC(), event.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", mapError(err))
	}
	return nil
}

// UpdateEvent overwrites the mutable fields of an event. Last write wins.
func (d *DB) UpdateEvent(ctx context.Context, event *model.Event) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE event
		SET category = $2, description = $3, date = $4, time = $5, location = $6,
		    volunteer_hours = $7, images = $8, updated_at = $9
		WHERE id = $1
	`, event.ID, event.Category, event.Description, event.Date, event.Time, event.Location,
		event.VolunteerHours, nonNil(event.Images), event.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to update event: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update event %s: %w", event.ID, model.ErrNotFound)
	}
	return nil
}

// DeleteEvent removes an event. Join requests referencing it are left in place.
func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM event WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete event %s: %w", id, model.ErrNotFound)
	}
	return nil
}

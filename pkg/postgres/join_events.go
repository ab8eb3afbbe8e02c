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

var joinEventColumns = []string{
	"id", "email_address", "category", "date", "hours", "status",
	"event_id", "joined_at", "decided_at", "revision",
}

func scanJoinEvent(row pgx.Row) (*model.JoinEvent, error) {
	var j model.JoinEvent
	var status string
	var eventID *string
	if err := row.Scan(&j.ID, &j.EmailAddress, &j.Category, &j.Date, &j.Hours, &status,
		&eventID, &j.JoinedAt, &j.DecidedAt, &j.Revision); err != nil {
		return nil, err
	}
	j.Status = model.Status(status)
	if eventID != nil {
		j.EventID = *eventID
	}
	return &j, nil
}

// GetJoinEvent retrieves one join request by id
func (d *DB) GetJoinEvent(ctx context.Context, id string) (*model.JoinEvent, error) {
	query, args, err := psql.Select(joinEventColumns...).From("join_event").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build join event query: %w", err)
	}

	j, err := scanJoinEvent(d.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get join event %s: %w", id, mapError(err))
	}
	return j, nil
}

// QueryJoinEvents retrieves join requests matching the filter in joined order.
// Status values are returned as stored; legacy spellings are not rewritten.
func (d *DB) QueryJoinEvents(ctx context.Context, filter db.JoinEventFilter) ([]model.JoinEvent, error) {
	b := psql.Select(joinEventColumns...).From("join_event").OrderBy("joined_at ASC", "id ASC")
	if filter.EmailAddress != "" {
		b = b.Where(sq.Eq{"email_address": filter.EmailAddress})
	}
	if filter.EventID != "" {
		b = b.Where(sq.Eq{"event_id": filter.EventID})
	}
	if filter.Status != "" {
		b = b.Where(sq.Eq{"status": db.StatusSpellings(filter.Status)})
	}
	if filter.WithoutEventID {
		b = b.Where(sq.Or{sq.Eq{"event_id": nil}, sq.Eq{"event_id": ""}})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build join events query: %w", err)
	}

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query join events: %w", mapError(err))
	}
	defer rows.Close()

	var joinEvents []model.JoinEvent
	for rows.Next() {
		j, err := scanJoinEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan join event: %w", err)
		}
		joinEvents = append(joinEvents, *j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating join events: %w", mapError(err))
	}

	return joinEvents, nil
}

// InsertJoinEvent inserts a new join request with revision 0
func (d *DB) InsertJoinEvent(ctx context.Context, j *model.JoinEvent) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO join_event (id, email_address, category, date, hours, status, event_id, joined_at, revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)
	`, j.ID, j.EmailAddress, j.Category, j.Date, j.Hours, string(j.Status), nullIfEmpty(j.EventID), j.JoinedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert join event: %w", mapError(err))
	}
	j.Revision = 0
	return nil
}

// UpdateJoinEventStatus sets the status if the stored revision still matches and bumps the revision
func (d *DB) UpdateJoinEventStatus(ctx context.Context, id string, expectedRevision int, status model.Status, decidedAt time.Time) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE join_event
		SET status = $3, decided_at = $4, revision = revision + 1
		WHERE id = $1 AND revision = $2
	`, id, expectedRevision, string(status), decidedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to update join event status: %w", mapError(err))
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Nothing matched: either the record is gone or the revision moved on
	var exists bool
	if err := d.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM join_event WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check join event %s: %w", id, mapError(err))
	}
	if !exists {
		return fmt.Errorf("failed to update join event %s: %w", id, model.ErrNotFound)
	}
	return fmt.Errorf("join event %s changed since revision %d: %w", id, expectedRevision, model.ErrConflict)
}

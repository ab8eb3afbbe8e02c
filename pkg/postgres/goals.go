package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const goalColumns = `id, email_address, category, month, target_hours, reminders_enabled, next_reminder_at, created_at`

func scanGoals(rows pgx.Rows) ([]model.Goal, error) {
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		var g model.Goal
		if err := rows.Scan(&g.ID, &g.EmailAddress, &g.Category, &g.Month, &g.TargetHours,
			&g.RemindersEnabled, &g.NextReminderAt, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", mapError(err))
	}
	return goals, nil
}

// ListGoals retrieves a volunteer's goals, most recent month first
func (d *DB) ListGoals(ctx context.Context, email string) ([]model.Goal, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+goalColumns+`
		FROM goal
		WHERE email_address = $1
		ORDER BY month DESC, category ASC
	`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", mapError(err))
	}
	return scanGoals(rows)
}

// InsertGoal inserts a new goal record
func (d *DB) InsertGoal(ctx context.Context, g *model.Goal) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO goal (id, email_address, category, month, target_hours, reminders_enabled, next_reminder_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, g.ID, g.EmailAddress, g.Category, g.Month, g.TargetHours, g.RemindersEnabled, g.NextReminderAt, g.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", mapError(err))
	}
	return nil
}

// ListDueGoals retrieves goals with reminders enabled whose next reminder is at or before the given time
func (d *DB) ListDueGoals(ctx context.Context, before time.Time) ([]model.Goal, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+goalColumns+`
		FROM goal
		WHERE reminders_enabled AND next_reminder_at IS NOT NULL AND next_reminder_at <= $1
		ORDER BY next_reminder_at ASC
	`, before.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query due goals: %w", mapError(err))
	}
	return scanGoals(rows)
}

// MarkGoalReminded moves a goal's next reminder forward, or clears it when next is nil
func (d *DB) MarkGoalReminded(ctx context.Context, id string, next *time.Time) error {
	tag, err := d.pool.Exec(ctx, `UPDATE goal SET next_reminder_at = $2 WHERE id = $1`, id, next)
	if err != nil {
		return fmt.Errorf("failed to update goal reminder: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update goal %s: %w", id, model.ErrNotFound)
	}
	return nil
}

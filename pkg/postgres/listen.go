package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

const joinEventChannel = "join_event_changes"

// joinEventPayload mirrors row_to_json(join_event) as sent by the notify trigger
type joinEventPayload struct {
	ID           string     `json:"id"`
	EmailAddress string     `json:"email_address"`
	Category     string     `json:"category"`
	Date         string     `json:"date"`
	Hours        float64    `json:"hours"`
	Status       string     `json:"status"`
	EventID      *string    `json:"event_id"`
	JoinedAt     time.Time  `json:"joined_at"`
	DecidedAt    *time.Time `json:"decided_at"`
	Revision     int        `json:"revision"`
}

func decodeJoinEventPayload(payload string) (model.JoinEvent, error) {
	var p joinEventPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return model.JoinEvent{}, fmt.Errorf("failed to decode join event notification: %w", err)
	}
	j := model.JoinEvent{
		ID:           p.ID,
		EmailAddress: p.EmailAddress,
		Category:     p.Category,
		Date:         p.Date,
		Hours:        p.Hours,
		Status:       model.Status(p.Status),
		JoinedAt:     p.JoinedAt,
		DecidedAt:    p.DecidedAt,
		Revision:     p.Revision,
	}
	if p.EventID != nil {
		j.EventID = *p.EventID
	}
	return j, nil
}

// SubscribeJoinEvents listens for join_event inserts and updates and calls fn for each one.
// It blocks until ctx is cancelled, which is not reported as an error.
func (d *DB) SubscribeJoinEvents(ctx context.Context, fn func(model.JoinEvent)) error {
	if d.listenPool == nil {
		return fmt.Errorf("change feed requires a live connection pool")
	}

	pooled, err := d.listenPool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", mapError(err))
	}
	// the connection keeps its LISTEN registration, so it never goes back to the pool
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+joinEventChannel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", joinEventChannel, mapError(err))
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed waiting for notification: %w", mapError(err))
		}
		j, err := decodeJoinEventPayload(n.Payload)
		if err != nil {
			d.logger.Warn("Skipping malformed join event notification",
				zap.String("channel", n.Channel), zap.Error(err))
			continue
		}
		fn(j)
	}
}

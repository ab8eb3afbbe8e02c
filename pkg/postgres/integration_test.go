//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

func startPostgres(t *testing.T, logger *zap.Logger) *DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	d, err := NewDB(ctx, dsn, PoolOptions{MaxConns: 4}, logger)
	require.NoError(t, err)
	t.Cleanup(d.Close)

	ran, err := d.RunMigrations(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"001_init.sql"}, ran)
	return d
}

func TestIntegration_JoinAndDecide(t *testing.T) {
	d := startPostgres(t, zap.NewNop())
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	event := &model.Event{ID: "evt-1", OrganizerEmail: "org@example.com", Category: "blood donation",
		Date: "2024-05-04", Time: "10:00", VolunteerHours: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, d.InsertEvent(ctx, event))

	got, err := d.GetEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-04", got.Date)
	assert.Empty(t, got.Images)

	require.NoError(t, d.InsertJoinEvent(ctx, &model.JoinEvent{ID: "je-1", EmailAddress: "ann@example.com",
		Category: event.Category, Date: event.Date, Hours: 1, Status: model.StatusPending, EventID: "evt-1", JoinedAt: now}))
	require.NoError(t, d.InsertJoinEvent(ctx, &model.JoinEvent{ID: "je-legacy", EmailAddress: "bob@example.com",
		Category: "blood_donation", Date: "Sat May 04 2024", Hours: 1, Status: "pendding", JoinedAt: now}))

	pending, err := d.QueryJoinEvents(ctx, db.JoinEventFilter{EventID: "evt-1", Status: model.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)

	legacy, err := d.QueryJoinEvents(ctx, db.JoinEventFilter{Status: model.StatusPending, WithoutEventID: true})
	require.NoError(t, err)
	require.Len(t, legacy, 1)
	assert.Equal(t, "je-legacy", legacy[0].ID)

	require.NoError(t, d.UpdateJoinEventStatus(ctx, "je-1", 0, model.StatusAccepted, now))
	err = d.UpdateJoinEventStatus(ctx, "je-1", 0, model.StatusRejected, now)
	assert.True(t, errors.Is(err, model.ErrConflict))

	j, err := d.GetJoinEvent(ctx, "je-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, j.Status)
	assert.Equal(t, 1, j.Revision)
	require.NotNil(t, j.DecidedAt)
}

func TestIntegration_SubscribeJoinEvents(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := startPostgres(t, zap.New(core))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan model.JoinEvent, 4)
	done := make(chan error, 1)
	go func() {
		done <- d.SubscribeJoinEvents(ctx, func(j model.JoinEvent) { changes <- j })
	}()

	// give LISTEN a moment to register
	time.Sleep(500 * time.Millisecond)
	_, err := d.pool.Exec(context.Background(), "SELECT pg_notify($1, 'not json')", joinEventChannel)
	require.NoError(t, err)
	require.NoError(t, d.InsertJoinEvent(context.Background(), &model.JoinEvent{ID: "je-9", EmailAddress: "ann@example.com",
		Category: "beach clean", Date: "2024-05-04", Hours: 2, Status: model.StatusPending, EventID: "evt-9", JoinedAt: time.Now()}))

	select {
	case j := <-changes:
		assert.Equal(t, "je-9", j.ID)
		assert.Equal(t, "evt-9", j.EventID)
	case <-time.After(10 * time.Second):
		t.Fatal("no notification received")
	}

	cancel()
	assert.NoError(t, <-done)

	assert.Equal(t, 1, logs.FilterMessage("Skipping malformed join event notification").Len())

	// the listening connection is closed rather than returned to the pool
	for i := 0; i < 4; i++ {
		var listening int
		require.NoError(t, d.pool.QueryRow(context.Background(), "SELECT count(*) FROM pg_listening_channels()").Scan(&listening))
		assert.Zero(t, listening)
	}
}

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
	"github.com/jakechorley/volunteer-hub/pkg/db"
)

func newMockDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return newWithQuerier(mock), mock
}

func strPtr(s string) *string { return &s }

var joinedAt = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func joinEventRows() *pgxmock.Rows {
	return pgxmock.NewRows(joinEventColumns)
}

func TestRunMigrations_AppliesPending(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"filename"}))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS event").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs("001_init.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	ran, err := d.RunMigrations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql"}, ran)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_SkipsApplied(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"filename"}).AddRow("001_init.sql"))

	ran, err := d.RunMigrations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ran)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_RollsBackOnFailure(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery("SELECT filename FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"filename"}))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS event").
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	_, err := d.RunMigrations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute migration 001_init.sql")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEvent(t *testing.T) {
	d, mock := newMockDB(t)
	created := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM event WHERE id = \$1`).
		WithArgs("evt-1").
		WillReturnRows(pgxmock.NewRows(eventColumns).AddRow(
			"evt-1", "org@example.com", "beach clean", "Sweep the sand",
			time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC), "10:00", "Brighton", 3.0,
			[]string{"https://img.example.com/1.jpg"}, created, created,
		))

	e, err := d.GetEvent(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-04", e.Date)
	assert.Equal(t, "org@example.com", e.OrganizerEmail)
	assert.Equal(t, 3.0, e.VolunteerHours)
	assert.Len(t, e.Images, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEvent_NotFound(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM event`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := d.GetEvent(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListEvents_Filters(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM event WHERE organizer_email = \$1 AND date >= \$2 ORDER BY date ASC, time ASC, id ASC`).
		WithArgs("org@example.com", "2024-05-01").
		WillReturnRows(pgxmock.NewRows(eventColumns))

	events, err := d.ListEvents(context.Background(), db.EventFilter{OrganizerEmail: "org@example.com", FromDate: "2024-05-01"})
	require.NoError(t, err)
	assert.Empty(t, events)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEvent_NotFound(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("UPDATE event").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := d.UpdateEvent(context.Background(), &model.Event{ID: "evt-9", Date: "2024-05-01"})
	assert.True(t, errors.Is(err, model.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEvent(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM event WHERE id = \$1`).
		WithArgs("evt-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, d.DeleteEvent(context.Background(), "evt-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryJoinEvents_PendingForEvent(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM join_event WHERE event_id = \$1 AND status IN \(\$2,\$3\) ORDER BY joined_at ASC, id ASC`).
		WithArgs("evt-1", "pending", "pendding").
		WillReturnRows(joinEventRows().
			AddRow("je-1", "ann@example.com", "Beach Clean", "2024-05-04", 3.0, "pending", strPtr("evt-1"), joinedAt, (*time.Time)(nil), 0).
			AddRow("je-2", "bob@example.com", "Beach Clean", "2024-05-04", 3.0, "pendding", strPtr("evt-1"), joinedAt, (*time.Time)(nil), 2))

	joins, err := d.QueryJoinEvents(context.Background(), db.JoinEventFilter{EventID: "evt-1", Status: model.StatusPending})
	require.NoError(t, err)
	require.Len(t, joins, 2)
	assert.Equal(t, "evt-1", joins[0].EventID)
	assert.Equal(t, model.Status("pendding"), joins[1].Status)
	assert.Equal(t, 2, joins[1].Revision)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryJoinEvents_WithoutEventID(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT (.+) FROM join_event WHERE status IN \(\$1,\$2\) AND \(event_id IS NULL OR event_id = \$3\)`).
		WithArgs("pending", "pendding", "").
		WillReturnRows(joinEventRows().
			AddRow("je-3", "cat@example.com", "beach_cleanup", "Sat May 04 2024", 3.0, "pending", (*string)(nil), joinedAt, (*time.Time)(nil), 0))

	joins, err := d.QueryJoinEvents(context.Background(), db.JoinEventFilter{Status: model.StatusPending, WithoutEventID: true})
	require.NoError(t, err)
	require.Len(t, joins, 1)
	assert.Empty(t, joins[0].EventID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertJoinEvent_NullEventID(t *testing.T) {
	d, mock := newMockDB(t)

	j := &model.JoinEvent{ID: "je-1", EmailAddress: "ann@example.com", Category: "beach clean",
		Date: "2024-05-04", Hours: 3, Status: model.StatusPending, JoinedAt: joinedAt}

	mock.ExpectExec("INSERT INTO join_event").
		WithArgs("je-1", "ann@example.com", "beach clean", "2024-05-04", 3.0, "pending", (*string)(nil), joinedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, d.InsertJoinEvent(context.Background(), j))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateJoinEventStatus(t *testing.T) {
	decidedAt := time.Date(2024, 5, 5, 8, 0, 0, 0, time.UTC)

	t.Run("revision matches", func(t *testing.T) {
		d, mock := newMockDB(t)
		mock.ExpectExec("UPDATE join_event").
			WithArgs("je-1", 0, "accepted", decidedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, d.UpdateJoinEventStatus(context.Background(), "je-1", 0, model.StatusAccepted, decidedAt))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("revision moved on", func(t *testing.T) {
		d, mock := newMockDB(t)
		mock.ExpectExec("UPDATE join_event").
			WithArgs("je-1", 0, "accepted", decidedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("je-1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		err := d.UpdateJoinEventStatus(context.Background(), "je-1", 0, model.StatusAccepted, decidedAt)
		assert.True(t, errors.Is(err, model.ErrConflict))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("record missing", func(t *testing.T) {
		d, mock := newMockDB(t)
		mock.ExpectExec("UPDATE join_event").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("je-404").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		err := d.UpdateJoinEventStatus(context.Background(), "je-404", 0, model.StatusRejected, decidedAt)
		assert.True(t, errors.Is(err, model.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetProfileByEmail(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectQuery("FROM user_profile").
		WithArgs("org@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"email_address", "first_name", "address", "contact", "role", "categories"}).
			AddRow("org@example.com", "Shore Trust", "1 Pier Rd", "0123", int16(1), []string{"beach clean"}))

	p, err := d.GetProfileByEmail(context.Background(), "org@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleOrganization, p.Role)
	assert.Equal(t, "Shore Trust", p.DisplayName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertProfile(t *testing.T) {
	d, mock := newMockDB(t)

	mock.ExpectExec("ON CONFLICT \\(email_address\\) DO UPDATE").
		WithArgs("ann@example.com", "Ann", "", "", int16(0), []string{}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, d.UpsertProfile(context.Background(), &model.UserProfile{EmailAddress: "ann@example.com", FirstName: "Ann"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDueGoals(t *testing.T) {
	d, mock := newMockDB(t)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)

	mock.ExpectQuery("FROM goal").
		WithArgs(now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email_address", "category", "month", "target_hours", "reminders_enabled", "next_reminder_at", "created_at"}).
			AddRow("g-1", "ann@example.com", "beach clean", "2024-06", 5.0, true, &due, now))

	goals, err := d.ListDueGoals(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, due, *goals[0].NextReminderAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil))
	assert.True(t, errors.Is(mapError(pgx.ErrNoRows), model.ErrNotFound))
	assert.True(t, errors.Is(mapError(context.DeadlineExceeded), model.ErrTransient))
	assert.True(t, errors.Is(mapError(&pgconn.PgError{Code: "23505"}), model.ErrConflict))
	assert.True(t, errors.Is(mapError(&pgconn.PgError{Code: "57P03"}), model.ErrTransient))

	plain := errors.New("boom")
	assert.Equal(t, plain, mapError(plain))
}

func TestDecodeJoinEventPayload(t *testing.T) {
	payload := `{"id":"je-1","email_address":"ann@example.com","category":"blood donation","date":"2024-05-04",
		"hours":1,"status":"accepted","event_id":"evt-1","joined_at":"2024-05-01T09:30:00+00:00",
		"decided_at":"2024-05-05T08:00:00.123456+00:00","revision":1}`

	j, err := decodeJoinEventPayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "je-1", j.ID)
	assert.Equal(t, model.StatusAccepted, j.Status)
	assert.Equal(t, "evt-1", j.EventID)
	assert.True(t, joinedAt.Equal(j.JoinedAt))
	require.NotNil(t, j.DecidedAt)
	assert.Equal(t, 1, j.Revision)

	_, err = decodeJoinEventPayload("not json")
	assert.Error(t, err)
}

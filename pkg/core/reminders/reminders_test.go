package reminders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const monthlyRule = "FREQ=MONTHLY;BYMONTHDAY=1;BYHOUR=9;BYMINUTE=0;BYSECOND=0"

func TestNext_MonthlyDefault(t *testing.T) {
	s, err := NewSchedule(monthlyRule)
	require.NoError(t, err)

	next, err := s.Next("2024-06", time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC), *next)

	// the July occurrence is outside the goal month
	next, err = s.Next("2024-06", time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestNext_Weekly(t *testing.T) {
	s, err := NewSchedule("FREQ=WEEKLY;BYDAY=MO;BYHOUR=8;BYMINUTE=0;BYSECOND=0")
	require.NoError(t, err)

	tests := []struct {
		name     string
		after    time.Time
		expected *time.Time
	}{
		{"first monday", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), ptr(time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC))},
		{"following monday", time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC), ptr(time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC))},
		{"last monday", time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), ptr(time.Date(2024, 6, 24, 8, 0, 0, 0, time.UTC))},
		{"month exhausted", time.Date(2024, 6, 24, 8, 0, 0, 0, time.UTC), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := s.Next("2024-06", tt.after)
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, next)
				return
			}
			require.NotNil(t, next)
			assert.Equal(t, *tt.expected, *next)
		})
	}
}

func TestFirst(t *testing.T) {
	s, err := NewSchedule(monthlyRule)
	require.NoError(t, err)

	tests := []struct {
		name     string
		after    time.Time
		expected *time.Time
	}{
		{"before the goal month", time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC), ptr(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))},
		{"during the goal month", time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC), ptr(time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC))},
		{"after the wrap-up", time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := s.First("2024-06", tt.after)
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, next)
				return
			}
			require.NotNil(t, next)
			assert.Equal(t, *tt.expected, *next)

			// nothing follows the wrap-up reminder
			if tt.expected.Month() != time.June {
				after, err := s.Next("2024-06", *next)
				require.NoError(t, err)
				assert.Nil(t, after)
			}
		})
	}
}

func TestNewSchedule_Invalid(t *testing.T) {
	_, err := NewSchedule("INVALID_RRULE_SYNTAX")
	assert.Error(t, err)
}

func TestNext_InvalidMonth(t *testing.T) {
	s, err := NewSchedule(monthlyRule)
	require.NoError(t, err)

	_, err = s.Next("June 2024", time.Now())
	assert.Error(t, err)
}

func ptr(t time.Time) *time.Time { return &t }

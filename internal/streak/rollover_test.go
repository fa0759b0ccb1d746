package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		today string
		want  string
	}{
		{"2026-10-18", "2026-10-18"}, // Sunday
		{"2026-10-19", "2026-10-18"},
		{"2026-10-24", "2026-10-18"}, // Saturday
		{"2026-10-25", "2026-10-25"},
		{"2026-01-01", "2025-12-28"},
	}
	for _, tt := range tests {
		got := WeekStart(date(t, tt.today).Add(15 * time.Hour))
		assert.Equal(t, tt.want, got.Format("2006-01-02"), "WeekStart(%s)", tt.today)
	}
}

func TestLastExpectedDay(t *testing.T) {
	wednesday := date(t, "2026-10-21")
	tests := []struct {
		name string
		days []int
		want string
	}{
		{"monday only", []int{1}, "2026-10-19"},
		{"yesterday scheduled", []int{2}, "2026-10-20"},
		{"same weekday wraps a full week", []int{3}, "2026-10-14"},
		{"wraps past sunday", []int{4, 5}, "2026-10-16"},
		{"every day", []int{0, 1, 2, 3, 4, 5, 6}, "2026-10-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LastExpectedDay(mustDays(t, tt.days...), wednesday)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}

	t.Run("empty frequency falls back to yesterday", func(t *testing.T) {
		got := LastExpectedDay(DaySet{}, wednesday)
		assert.Equal(t, "2026-10-20", got.Format("2006-01-02"))
	})
}

func TestCheckStreakBrokenOnRollover(t *testing.T) {
	wednesday := date(t, "2026-10-21")
	monday := mustDays(t, 1)

	t.Run("nine days since the last completion breaks a monday habit", func(t *testing.T) {
		last := wednesday.AddDate(0, 0, -9)
		broken, err := CheckStreakBrokenOnRollover(&last, monday, wednesday)
		require.NoError(t, err)
		assert.True(t, broken)
	})

	t.Run("completed on the expected day", func(t *testing.T) {
		last := date(t, "2026-10-19")
		broken, err := CheckStreakBrokenOnRollover(&last, monday, wednesday)
		require.NoError(t, err)
		assert.False(t, broken)
	})

	t.Run("completed after the expected day", func(t *testing.T) {
		last := date(t, "2026-10-20")
		broken, err := CheckStreakBrokenOnRollover(&last, monday, wednesday)
		require.NoError(t, err)
		assert.False(t, broken)
	})

	t.Run("clock time on the last completion is ignored", func(t *testing.T) {
		last := date(t, "2026-10-19").Add(23 * time.Hour)
		broken, err := CheckStreakBrokenOnRollover(&last, monday, wednesday.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, broken)
	})

	t.Run("never completed", func(t *testing.T) {
		broken, err := CheckStreakBrokenOnRollover(nil, monday, wednesday)
		require.NoError(t, err)
		assert.True(t, broken)
	})

	t.Run("invalid input", func(t *testing.T) {
		last := wednesday
		_, err := CheckStreakBrokenOnRollover(&last, DaySet{}, wednesday)
		assert.ErrorIs(t, err, ErrInvalidInput)

		_, err = CheckStreakBrokenOnRollover(&last, monday, time.Time{})
		assert.ErrorIs(t, err, ErrInvalidInput)

		zero := time.Time{}
		_, err = CheckStreakBrokenOnRollover(&zero, monday, wednesday)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestRolloverResetKeepsBadges(t *testing.T) {
	wednesday := date(t, "2026-10-21")
	last := wednesday.AddDate(0, 0, -9)

	broken, err := CheckStreakBrokenOnRollover(&last, mustDays(t, 1), wednesday)
	require.NoError(t, err)
	require.True(t, broken)

	d, err := ResetOnRollover(&Milestone{WeekStreak: 13, BadgesEarned: 3})
	require.NoError(t, err)
	assert.Equal(t, Milestone{WeekStreak: 0, BadgesEarned: 3}, d.Milestone)
}

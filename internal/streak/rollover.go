package streak

import (
	"fmt"
	"time"
)

// DateOnly strips the clock from t, keeping its location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns the most recent Sunday on or before today.
func WeekStart(today time.Time) time.Time {
	day := DateOnly(today)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// LastExpectedDay finds the most recent scheduled day strictly before today.
// It scans back at most one full week; with an empty frequency it falls back
// to yesterday.
func LastExpectedDay(frequency DaySet, today time.Time) time.Time {
	day := DateOnly(today)
	weekday := int(day.Weekday())
	for offset := 1; offset <= DaysInWeek; offset++ {
		candidate := (weekday - offset + DaysInWeek) % DaysInWeek
		if frequency.Has(candidate) {
			return day.AddDate(0, 0, -offset)
		}
	}
	return day.AddDate(0, 0, -1)
}

// CheckStreakBrokenOnRollover reports whether the habit missed its last
// expected day. lastCompleted is the habit's most recent completion of any
// week; nil means the habit was never completed and counts as broken.
func CheckStreakBrokenOnRollover(lastCompleted *time.Time, frequency DaySet, today time.Time) (bool, error) {
	if err := validateFrequency(frequency); err != nil {
		return false, err
	}
	if today.IsZero() {
		return false, fmt.Errorf("%w: today is unset", ErrInvalidInput)
	}
	if lastCompleted == nil {
		return true, nil
	}
	if lastCompleted.IsZero() {
		return false, fmt.Errorf("%w: last completed date is unset", ErrInvalidInput)
	}

	expected := LastExpectedDay(frequency, today)
	y, m, d := lastCompleted.Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, expected.Location())
	return last.Before(expected), nil
}

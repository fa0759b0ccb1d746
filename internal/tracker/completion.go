package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitrack/internal/logger"
	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/streak"
	"github.com/julianstephens/habitrack/internal/utils"
)

// ToggleResult describes a habit after a completion toggle
type ToggleResult struct {
	Habit         models.Habit
	Day           string
	Completed     bool
	StreakChanged bool
	BadgeEarned   bool
	Milestone     streak.Milestone
}

// ToggleCompletion marks the habit done on day, or unmarks it if it already
// was, and applies the resulting streak change. Days before the current week
// only flip the record since the streak reasons about the current week alone.
// The completion and milestone writes commit together or not at all.
func (t *Tracker) ToggleCompletion(habitID string, day time.Time) (ToggleResult, error) {
	today := t.Today()
	day = t.inLocation(day)
	if day.After(today) {
		return ToggleResult{}, ErrFutureDay
	}

	unlock := t.locks.Lock(habitID)
	defer unlock()

	habit, err := t.store.GetHabit(habitID)
	if errors.Is(err, storage.ErrNotFound) {
		return ToggleResult{}, fmt.Errorf("%w: %s", ErrHabitNotFound, habitID)
	}
	if err != nil {
		return ToggleResult{}, fmt.Errorf("failed to load habit: %w", err)
	}

	var result ToggleResult
	err = t.store.WithHabitTx(habitID, func(tx storage.HabitTx) error {
		var err error
		result, err = t.toggle(tx, habit, day, today)
		return err
	})
	if err != nil {
		return ToggleResult{}, err
	}

	logger.Info("Toggled completion",
		"habit", habit.Name,
		"day", result.Day,
		"completed", result.Completed,
		"week_streak", result.Milestone.WeekStreak,
		"badges", result.Milestone.BadgesEarned)
	return result, nil
}

func (t *Tracker) toggle(tx storage.HabitTx, habit models.Habit, day, today time.Time) (ToggleResult, error) {
	frequency, err := loadFrequency(tx, habit.ID)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("%s: %w", habit.Name, err)
	}

	dayStr := utils.FormatDate(day)
	weekStart := streak.WeekStart(today)
	inCurrentWeek := !day.Before(weekStart)

	_, err = tx.GetCompletion(habit.ID, dayStr)
	exists := err == nil
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return ToggleResult{}, fmt.Errorf("failed to load completion: %w", err)
	}

	before, err := loadMilestone(tx, habit.ID)
	if err != nil {
		return ToggleResult{}, err
	}

	result := ToggleResult{Habit: habit, Day: dayStr, Completed: !exists}
	if before != nil {
		result.Milestone = *before
	}

	var delta streak.Delta
	if inCurrentWeek {
		thisWeek, err := tx.ListCompletionDates(habit.ID, utils.FormatDate(weekStart))
		if err != nil {
			return ToggleResult{}, fmt.Errorf("failed to count completions: %w", err)
		}
		if exists {
			delta, err = streak.OnCompletionRemoved(frequency, today.Weekday(), len(thisWeek), before)
		} else {
			delta, err = streak.OnCompletionAdded(frequency, len(thisWeek)+1, before)
		}
		if err != nil {
			return ToggleResult{}, fmt.Errorf("%s: %w", habit.Name, err)
		}
	}

	if exists {
		err = tx.DeleteCompletion(habit.ID, dayStr)
	} else {
		err = tx.AddCompletion(models.Completion{
			ID:        t.newID(),
			HabitID:   habit.ID,
			Day:       dayStr,
			CreatedAt: t.now(),
		})
	}
	if err != nil {
		return ToggleResult{}, fmt.Errorf("failed to save completion: %w", err)
	}

	if err := persist(tx, habit.ID, delta); err != nil {
		return ToggleResult{}, err
	}

	if delta.Changed {
		result.StreakChanged = delta.Milestone.WeekStreak != result.Milestone.WeekStreak
		result.BadgeEarned = delta.Milestone.BadgesEarned > result.Milestone.BadgesEarned
		result.Milestone = delta.Milestone
	}
	return result, nil
}

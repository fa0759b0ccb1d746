package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitrack/internal/logger"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/streak"
	"github.com/julianstephens/habitrack/internal/utils"
)

// RolloverReport summarizes one rollover run
type RolloverReport struct {
	Day     string
	Skipped bool
	Checked int
	Reset   []string
}

// RunRollover resets the week streak of every habit that missed its last
// expected day. A run is recorded in settings and repeated runs on the same
// day do nothing unless force is set. Failures on one habit do not stop the
// others; they are joined into the returned error.
func (t *Tracker) RunRollover(force bool) (RolloverReport, error) {
	today := t.Today()
	report := RolloverReport{Day: utils.FormatDate(today)}

	settings, err := t.store.GetSettings()
	if err != nil {
		return report, fmt.Errorf("failed to load settings: %w", err)
	}
	if !force && settings.LastRollover == report.Day {
		report.Skipped = true
		logger.Debug("Rollover already ran today", "day", report.Day)
		return report, nil
	}

	milestones, err := t.store.GetAllMilestones()
	if err != nil {
		return report, fmt.Errorf("failed to load milestones: %w", err)
	}

	log := logger.With("day", report.Day)
	var errs []error
	for _, hm := range milestones {
		if hm.WeekStreak == 0 {
			continue
		}
		report.Checked++
		reset, err := t.rolloverHabit(hm.HabitID)
		if err != nil {
			log.Error("Rollover failed for habit", "habit", hm.HabitName, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", hm.HabitName, err))
			continue
		}
		if reset {
			report.Reset = append(report.Reset, hm.HabitName)
		}
	}

	if len(errs) == 0 {
		settings.LastRollover = report.Day
		if err := t.store.SaveSettings(settings); err != nil {
			errs = append(errs, fmt.Errorf("failed to record rollover: %w", err))
		}
	}

	log.Info("Rollover complete", "checked", report.Checked, "reset", len(report.Reset))
	return report, errors.Join(errs...)
}

func (t *Tracker) rolloverHabit(habitID string) (bool, error) {
	unlock := t.locks.Lock(habitID)
	defer unlock()

	var reset bool
	err := t.store.WithHabitTx(habitID, func(tx storage.HabitTx) error {
		var err error
		reset, err = t.checkHabit(tx, habitID)
		return err
	})
	return reset, err
}

// checkHabit re-reads the milestone inside the transaction; a toggle may
// have landed since the listing.
func (t *Tracker) checkHabit(tx storage.HabitTx, habitID string) (bool, error) {
	m, err := loadMilestone(tx, habitID)
	if err != nil || m == nil || m.WeekStreak == 0 {
		return false, err
	}

	frequency, err := loadFrequency(tx, habitID)
	if err != nil {
		return false, err
	}

	today := t.Today()
	var lastCompleted *time.Time
	last, err := tx.LastCompletionDate(habitID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// never completed
	case err != nil:
		return false, fmt.Errorf("failed to load last completion: %w", err)
	default:
		parsed, err := utils.ParseDateInLocation(last, t.loc)
		if err != nil {
			return false, fmt.Errorf("invalid completion date %q: %w", last, err)
		}
		lastCompleted = &parsed
	}

	broken, err := streak.CheckStreakBrokenOnRollover(lastCompleted, frequency, today)
	if err != nil || !broken {
		return false, err
	}

	delta, err := streak.ResetOnRollover(m)
	if err != nil {
		return false, err
	}
	if err := persist(tx, habitID, delta); err != nil {
		return false, err
	}
	return delta.Changed, nil
}

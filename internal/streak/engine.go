// Package streak decides how week streaks and badge tiers move when a habit's
// completions change. It performs no I/O: callers pass in data they already
// fetched and persist whatever Delta comes back.
package streak

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput is wrapped by every precondition failure in this package.
var ErrInvalidInput = errors.New("invalid streak input")

// Milestone is a habit's streak state.
// BadgesEarned is a high-water mark and may exceed TierFor(WeekStreak).
type Milestone struct {
	WeekStreak   int
	BadgesEarned int
}

// Delta is the outcome of a transition. When Changed is false the caller has
// nothing to persist and Milestone echoes the input state.
type Delta struct {
	Changed   bool
	Milestone Milestone
}

func noChange(m Milestone) Delta {
	return Delta{Milestone: m}
}

func changed(m Milestone) Delta {
	return Delta{Changed: true, Milestone: m}
}

// resolve treats a missing milestone as a fresh {0, 0} record.
func resolve(m *Milestone) (Milestone, error) {
	if m == nil {
		return Milestone{}, nil
	}
	if m.WeekStreak < 0 {
		return Milestone{}, fmt.Errorf("%w: negative week streak %d", ErrInvalidInput, m.WeekStreak)
	}
	if m.BadgesEarned < 0 || m.BadgesEarned > MaxTier {
		return Milestone{}, fmt.Errorf("%w: badges earned %d outside [0,%d]", ErrInvalidInput, m.BadgesEarned, MaxTier)
	}
	return *m, nil
}

func validateFrequency(frequency DaySet) error {
	if frequency.Empty() {
		return fmt.Errorf("%w: frequency has no days", ErrInvalidInput)
	}
	return nil
}

// crossesThreshold reports whether count is the exact completion that takes
// a week from unsatisfied to satisfied: count-1 < threshold <= count.
func crossesThreshold(count, threshold int) bool {
	return count-1 < threshold && threshold <= count
}

// OnCompletionAdded evaluates a newly recorded completion.
// completionsThisWeek counts this week's completions including the new one.
// The streak only moves on the completion that first satisfies the week;
// further completions in an already satisfied week are no-ops.
func OnCompletionAdded(frequency DaySet, completionsThisWeek int, milestone *Milestone) (Delta, error) {
	if err := validateFrequency(frequency); err != nil {
		return Delta{}, err
	}
	if completionsThisWeek < 1 {
		return Delta{}, fmt.Errorf("%w: completions after an add must be at least 1, got %d", ErrInvalidInput, completionsThisWeek)
	}
	m, err := resolve(milestone)
	if err != nil {
		return Delta{}, err
	}

	if !crossesThreshold(completionsThisWeek, frequency.Len()) {
		return noChange(m), nil
	}

	next := Milestone{WeekStreak: m.WeekStreak + 1}
	next.BadgesEarned = max(m.BadgesEarned, TierFor(next.WeekStreak))
	return changed(next), nil
}

// OnCompletionRemoved evaluates the removal of a completion.
// completionsBeforeRemoval counts this week's completions including the one
// being removed. The streak only moves when the removal un-satisfies the week
// and today is the habit's last scheduled day of the week.
func OnCompletionRemoved(frequency DaySet, today time.Weekday, completionsBeforeRemoval int, milestone *Milestone) (Delta, error) {
	if err := validateFrequency(frequency); err != nil {
		return Delta{}, err
	}
	if today < time.Sunday || today > time.Saturday {
		return Delta{}, fmt.Errorf("%w: weekday %d out of range", ErrInvalidInput, today)
	}
	if completionsBeforeRemoval < 1 {
		return Delta{}, fmt.Errorf("%w: completions before a removal must be at least 1, got %d", ErrInvalidInput, completionsBeforeRemoval)
	}
	m, err := resolve(milestone)
	if err != nil {
		return Delta{}, err
	}

	if !crossesThreshold(completionsBeforeRemoval, frequency.Len()) || int(today) != frequency.Max() {
		return noChange(m), nil
	}

	oldTier := TierFor(m.WeekStreak)
	next := Milestone{
		WeekStreak:   max(0, m.WeekStreak-1),
		BadgesEarned: m.BadgesEarned,
	}
	newTier := TierFor(next.WeekStreak)

	// A badge above oldTier was earned in an earlier run and stays.
	if oldTier != newTier && m.BadgesEarned <= oldTier {
		next.BadgesEarned = newTier
	}
	return changed(next), nil
}

// ResetOnRollover zeroes the running streak of a broken habit. Badges persist.
func ResetOnRollover(milestone *Milestone) (Delta, error) {
	m, err := resolve(milestone)
	if err != nil {
		return Delta{}, err
	}
	if m.WeekStreak == 0 {
		return noChange(m), nil
	}
	return changed(Milestone{WeekStreak: 0, BadgesEarned: m.BadgesEarned}), nil
}

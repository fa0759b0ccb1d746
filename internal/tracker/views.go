package tracker

import (
	"fmt"
	"sort"

	"github.com/julianstephens/habitrack/internal/constants"
	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/streak"
	"github.com/julianstephens/habitrack/internal/utils"
)

// TodayItem is one habit scheduled for today
type TodayItem struct {
	Habit     models.Habit
	Time      string
	Completed bool
}

// TodayHabits lists the habits with a reminder on today's weekday,
// incomplete ones first, then by reminder time and name.
func (t *Tracker) TodayHabits() ([]TodayItem, error) {
	today := t.Today()

	defaultTime := constants.DefaultReminderTime
	if settings, err := t.store.GetSettings(); err == nil && settings.DefaultReminderTime != "" {
		defaultTime = settings.DefaultReminderTime
	}

	habits, err := t.store.GetAllHabits()
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	done, err := t.store.GetCompletionsForDay(utils.FormatDate(today))
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	completed := make(map[string]bool, len(done))
	for _, c := range done {
		completed[c.HabitID] = true
	}

	var items []TodayItem
	for _, h := range habits {
		reminders, err := t.store.GetReminders(h.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load reminders: %w", err)
		}
		for _, r := range reminders {
			if r.Day != today.Weekday() {
				continue
			}
			at := r.Time
			if at == "" {
				at = defaultTime
			}
			items = append(items, TodayItem{Habit: h, Time: at, Completed: completed[h.ID]})
			break
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.Habit.Name < b.Habit.Name
	})
	return items, nil
}

// MilestoneView is one row of the milestones screen
type MilestoneView struct {
	HabitID      string
	HabitName    string
	WeekStreak   int
	BadgesEarned int
	CurrentTier  int
	Progress     [streak.MaxTier]int
}

// Milestones lists every habit's streak and badge progress
func (t *Tracker) Milestones() ([]MilestoneView, error) {
	rows, err := t.store.GetAllMilestones()
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	out := make([]MilestoneView, 0, len(rows))
	for _, m := range rows {
		out = append(out, MilestoneView{
			HabitID:      m.HabitID,
			HabitName:    m.HabitName,
			WeekStreak:   m.WeekStreak,
			BadgesEarned: m.BadgesEarned,
			CurrentTier:  streak.TierFor(m.WeekStreak),
			Progress:     streak.BadgeProgress(m.WeekStreak),
		})
	}
	return out, nil
}

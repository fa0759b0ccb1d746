package validation

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/habitrack/internal/constants"
	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/streak"
)

// MaxNameLength bounds habit names so they fit the TUI list
const MaxNameLength = 64

var (
	ErrEmptyName    = errors.New("habit name is required")
	ErrNameTooLong  = fmt.Errorf("habit name must be at most %d characters", MaxNameLength)
	ErrNoDays       = errors.New("select at least one reminder day")
	ErrInvalidTime  = errors.New("reminder time must be HH:MM (24-hour)")
	ErrInvalidDay   = errors.New("invalid day")
)

// HabitName trims and checks a habit name
func HabitName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// ReminderTime accepts "" (use the default reminder time) or HH:MM
func ReminderTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	t, err := time.Parse(constants.TimeFormat, value)
	if err != nil {
		return "", ErrInvalidTime
	}
	return t.Format(constants.TimeFormat), nil
}

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// Weekday parses a day name ("mon", "Monday") or index ("1").
func Weekday(value string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if d, ok := dayNames[v]; ok {
		return d, nil
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < streak.DaysInWeek {
		return time.Weekday(n), nil
	}
	return 0, fmt.Errorf("%w %q", ErrInvalidDay, value)
}

// Frequency parses a list like "mon,wed,fri", "weekdays", "weekends" or
// "daily" into a non-empty DaySet.
func Frequency(values []string) (streak.DaySet, error) {
	var set streak.DaySet
	for _, raw := range values {
		for _, part := range strings.Split(raw, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			switch part {
			case "":
				continue
			case "daily", "everyday", "all":
				for d := 0; d < streak.DaysInWeek; d++ {
					set = set.With(d)
				}
			case "weekdays":
				for d := time.Monday; d <= time.Friday; d++ {
					set = set.With(int(d))
				}
			case "weekends":
				set = set.With(int(time.Saturday)).With(int(time.Sunday))
			default:
				d, err := Weekday(part)
				if err != nil {
					return streak.DaySet{}, err
				}
				set = set.With(int(d))
			}
		}
	}
	if set.Empty() {
		return streak.DaySet{}, ErrNoDays
	}
	return set, nil
}

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictNoReminderDays     ConflictType = "no_reminder_days"
	ConflictInvalidReminder    ConflictType = "invalid_reminder"
	ConflictMissingMilestone   ConflictType = "missing_milestone"
	ConflictBadgesBelowTier    ConflictType = "badges_below_tier"
	ConflictFutureCompletion   ConflictType = "future_completion"
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
)

// Conflict is one inconsistency found in stored habit data
type Conflict struct {
	Type        ConflictType
	Description string
	HabitID     string
	HabitName   string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Snapshot is the stored state a Validator inspects
type Snapshot struct {
	Habits      []models.Habit
	Reminders   []models.Reminder
	Milestones  map[string]models.Milestone
	LastDayDone map[string]string
	Today       string
}

// Validator checks stored habits for states the tracker never produces
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabits reports every conflict in the snapshot, ordered by habit name
func (v *Validator) ValidateHabits(s Snapshot) ValidationResult {
	var result ValidationResult
	add := func(t ConflictType, h models.Habit, format string, args ...any) {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        t,
			Description: fmt.Sprintf("%s: %s", h.Name, fmt.Sprintf(format, args...)),
			HabitID:     h.ID,
			HabitName:   h.Name,
		})
	}

	reminders := map[string][]models.Reminder{}
	for _, r := range s.Reminders {
		reminders[r.HabitID] = append(reminders[r.HabitID], r)
	}

	habits := append([]models.Habit(nil), s.Habits...)
	sort.Slice(habits, func(i, j int) bool { return habits[i].Name < habits[j].Name })

	seen := map[string]bool{}
	for _, h := range habits {
		key := strings.ToLower(h.Name)
		if seen[key] {
			add(ConflictDuplicateHabitName, h, "name differs from another habit only by case")
		}
		seen[key] = true

		rs := reminders[h.ID]
		if len(rs) == 0 {
			add(ConflictNoReminderDays, h, "no reminder days, so no week can be completed")
		}
		for _, r := range rs {
			if r.Day < time.Sunday || r.Day > time.Saturday {
				add(ConflictInvalidReminder, h, "reminder day %d out of range", int(r.Day))
			}
			if r.Time != "" {
				if _, err := ReminderTime(r.Time); err != nil {
					add(ConflictInvalidReminder, h, "reminder time %q is not HH:MM", r.Time)
				}
			}
		}

		m, ok := s.Milestones[h.ID]
		switch {
		case !ok:
			add(ConflictMissingMilestone, h, "no milestone row")
		case m.BadgesEarned < streak.TierFor(m.WeekStreak):
			add(ConflictBadgesBelowTier, h, "%d badges earned but a %d-week streak has reached tier %d",
				m.BadgesEarned, m.WeekStreak, streak.TierFor(m.WeekStreak))
		}

		if last := s.LastDayDone[h.ID]; s.Today != "" && last > s.Today {
			add(ConflictFutureCompletion, h, "completion recorded for future day %s", last)
		}
	}

	return result
}

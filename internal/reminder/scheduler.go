// Package reminder turns habit reminder days into weekly cron jobs that
// deliver a notification at the reminder time.
package reminder

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitrack/internal/constants"
	"github.com/julianstephens/habitrack/internal/logger"
	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/notifier"
	"github.com/julianstephens/habitrack/internal/utils"
)

// Store is the persistence the scheduler reads from
type Store interface {
	GetAllHabits() ([]models.Habit, error)
	GetAllReminders() ([]models.Reminder, error)
	GetSettings() (models.Settings, error)
}

// Scheduler keeps one cron entry per reminder day, grouped by habit so a
// habit's entries can be replaced as a unit.
type Scheduler struct {
	cron     *cron.Cron
	store    Store
	notifier notifier.Notifier

	mu      sync.Mutex
	entries map[string][]cron.EntryID
}

// New registers jobs on c. The caller owns starting and stopping c.
func New(c *cron.Cron, store Store, n notifier.Notifier) *Scheduler {
	return &Scheduler{
		cron:     c,
		store:    store,
		notifier: n,
		entries:  make(map[string][]cron.EntryID),
	}
}

// Spec returns the weekly cron spec "MM HH * * D" for a reminder. An empty
// at falls back to defaultTime.
func Spec(day time.Weekday, at, defaultTime string) (string, error) {
	if at == "" {
		at = defaultTime
	}
	if at == "" {
		at = constants.DefaultReminderTime
	}
	if day < time.Sunday || day > time.Saturday {
		return "", fmt.Errorf("invalid reminder day %d", day)
	}
	t, err := utils.ParseTime(at)
	if err != nil {
		return "", fmt.Errorf("invalid reminder time %q: %w", at, err)
	}
	return fmt.Sprintf("%d %d * * %d", t.Minute(), t.Hour(), int(day)), nil
}

func (s *Scheduler) defaultTime() string {
	settings, err := s.store.GetSettings()
	if err != nil || settings.DefaultReminderTime == "" {
		return constants.DefaultReminderTime
	}
	return settings.DefaultReminderTime
}

// UpsertHabit replaces the habit's reminder jobs.
func (s *Scheduler) UpsertHabit(habit models.Habit, reminders []models.Reminder) error {
	return s.upsert(habit, reminders, s.defaultTime())
}

func (s *Scheduler) upsert(habit models.Habit, reminders []models.Reminder, defaultTime string) error {
	specs := make([]string, 0, len(reminders))
	for _, r := range reminders {
		spec, err := Spec(r.Day, r.Time, defaultTime)
		if err != nil {
			return fmt.Errorf("habit %s: %w", habit.Name, err)
		}
		specs = append(specs, spec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(habit.ID)
	ids := make([]cron.EntryID, 0, len(specs))
	for _, spec := range specs {
		id, err := s.cron.AddFunc(spec, s.job(habit))
		if err != nil {
			for _, added := range ids {
				s.cron.Remove(added)
			}
			return fmt.Errorf("failed to schedule %s (%s): %w", habit.Name, spec, err)
		}
		ids = append(ids, id)
	}
	if len(ids) > 0 {
		s.entries[habit.ID] = ids
	}
	logger.Debug("Scheduled reminders", "habit", habit.Name, "count", len(ids))
	return nil
}

// RemoveHabit drops every job of the habit
func (s *Scheduler) RemoveHabit(habitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(habitID)
}

func (s *Scheduler) removeLocked(habitID string) {
	for _, id := range s.entries[habitID] {
		s.cron.Remove(id)
	}
	delete(s.entries, habitID)
}

// RegenerateAll rebuilds every reminder job from storage. Habits whose
// reminders cannot be scheduled are skipped and reported in the error.
func (s *Scheduler) RegenerateAll() error {
	habits, err := s.store.GetAllHabits()
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	reminders, err := s.store.GetAllReminders()
	if err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}

	byHabit := make(map[string][]models.Reminder)
	for _, r := range reminders {
		byHabit[r.HabitID] = append(byHabit[r.HabitID], r)
	}

	s.mu.Lock()
	for id := range s.entries {
		s.removeLocked(id)
	}
	s.mu.Unlock()

	defaultTime := s.defaultTime()
	var errs []error
	for _, h := range habits {
		if err := s.upsert(h, byHabit[h.ID], defaultTime); err != nil {
			errs = append(errs, err)
		}
	}
	logger.Info("Reminders regenerated", "habits", len(habits), "jobs", s.Count())
	return errors.Join(errs...)
}

// Count returns the number of scheduled reminder jobs
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ids := range s.entries {
		n += len(ids)
	}
	return n
}

// Upcoming lists the next delivery of every job, soonest first
func (s *Scheduler) Upcoming(after time.Time) []Upcoming {
	s.mu.Lock()
	byEntry := make(map[cron.EntryID]string)
	for habitID, ids := range s.entries {
		for _, id := range ids {
			byEntry[id] = habitID
		}
	}
	s.mu.Unlock()

	var out []Upcoming
	for id, habitID := range byEntry {
		e := s.cron.Entry(id)
		if !e.Valid() {
			continue
		}
		out = append(out, Upcoming{HabitID: habitID, At: e.Schedule.Next(after)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// Upcoming is one future reminder delivery
type Upcoming struct {
	HabitID string
	At      time.Time
}

func (s *Scheduler) job(habit models.Habit) func() {
	return func() {
		if err := s.deliver(habit); err != nil {
			logger.Error("Failed to deliver reminder", "habit", habit.Name, "error", err)
		}
	}
}

func (s *Scheduler) deliver(habit models.Habit) error {
	settings, err := s.store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		logger.Debug("Notifications disabled, skipping reminder", "habit", habit.Name)
		return nil
	}
	return s.notifier.Notify(habit.Name, habit.Description)
}

// HabitSaved reschedules a created or edited habit
func (s *Scheduler) HabitSaved(habit models.Habit, reminders []models.Reminder) {
	if err := s.UpsertHabit(habit, reminders); err != nil {
		logger.Error("Failed to reschedule reminders", "habit", habit.Name, "error", err)
	}
}

// HabitDeleted unschedules a deleted habit
func (s *Scheduler) HabitDeleted(habitID string) {
	s.RemoveHabit(habitID)
}

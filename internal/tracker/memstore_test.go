package tracker

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/storage/sqlbase"
)

// memStore is an in-memory Store for tests
type memStore struct {
	txMu        sync.Mutex
	mu          sync.Mutex
	settings    models.Settings
	habits      map[string]models.Habit
	reminders   map[string][]models.Reminder
	completions map[string]map[string]models.Completion
	milestones  map[string]models.Milestone
	upserts     int
	// failUpserts makes the next n UpsertMilestone calls fail
	failUpserts int
}

func newMemStore() *memStore {
	return &memStore{
		settings:    sqlbase.DefaultSettings(),
		habits:      map[string]models.Habit{},
		reminders:   map[string][]models.Reminder{},
		completions: map[string]map[string]models.Completion{},
		milestones:  map[string]models.Milestone{},
	}
}

func missing(what string) error {
	return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
}

func (s *memStore) ListCompletionDates(habitID, sinceDay string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var days []string
	for day := range s.completions[habitID] {
		if day >= sinceDay {
			days = append(days, day)
		}
	}
	sort.Strings(days)
	return days, nil
}

func (s *memStore) ListReminderDays(habitID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var days []int
	for _, r := range s.reminders[habitID] {
		days = append(days, int(r.Day))
	}
	sort.Ints(days)
	return days, nil
}

func (s *memStore) GetMilestone(habitID string) (models.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.milestones[habitID]
	if !ok {
		return models.Milestone{}, missing("milestone")
	}
	return m, nil
}

func (s *memStore) UpsertMilestone(habitID string, weekStreak, badgesEarned int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpserts > 0 {
		s.failUpserts--
		return errors.New("disk I/O error")
	}
	s.upserts++
	s.milestones[habitID] = models.Milestone{HabitID: habitID, WeekStreak: weekStreak, BadgesEarned: badgesEarned}
	return nil
}

func (s *memStore) AddCompletion(c models.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[c.HabitID]; !ok {
		return fmt.Errorf("foreign key: unknown habit %s", c.HabitID)
	}
	if s.completions[c.HabitID] == nil {
		s.completions[c.HabitID] = map[string]models.Completion{}
	}
	if _, ok := s.completions[c.HabitID][c.Day]; ok {
		return fmt.Errorf("unique constraint: %s %s", c.HabitID, c.Day)
	}
	s.completions[c.HabitID][c.Day] = c
	return nil
}

func (s *memStore) GetCompletion(habitID, day string) (models.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.completions[habitID][day]
	if !ok {
		return models.Completion{}, missing("completion")
	}
	return c, nil
}

func (s *memStore) DeleteCompletion(habitID, day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.completions[habitID][day]; !ok {
		return missing("completion")
	}
	delete(s.completions[habitID], day)
	return nil
}

func (s *memStore) LastCompletionDate(habitID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := ""
	for day := range s.completions[habitID] {
		if day > last {
			last = day
		}
	}
	if last == "" {
		return "", missing("completion")
	}
	return last, nil
}

func (s *memStore) GetCompletionsForDay(day string) ([]models.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Completion
	for _, byDay := range s.completions {
		if c, ok := byDay[day]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) AddHabit(h models.Habit, reminders []models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits[h.ID] = h
	s.reminders[h.ID] = reminders
	s.milestones[h.ID] = models.Milestone{HabitID: h.ID}
	return nil
}

func (s *memStore) GetHabit(id string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[id]
	if !ok {
		return models.Habit{}, missing("habit")
	}
	return h, nil
}

func (s *memStore) GetHabitByName(name string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.habits {
		if h.Name == name {
			return h, nil
		}
	}
	return models.Habit{}, missing("habit")
}

func (s *memStore) GetAllHabits() ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Habit
	for _, h := range s.habits {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *memStore) UpdateHabit(h models.Habit, reminders []models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[h.ID]; !ok {
		return missing("habit")
	}
	s.habits[h.ID] = h
	s.reminders[h.ID] = reminders
	return nil
}

func (s *memStore) DeleteHabit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[id]; !ok {
		return missing("habit")
	}
	delete(s.habits, id)
	delete(s.reminders, id)
	delete(s.completions, id)
	delete(s.milestones, id)
	return nil
}

func (s *memStore) GetReminders(habitID string) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Reminder(nil), s.reminders[habitID]...), nil
}

func (s *memStore) GetAllMilestones() ([]models.HabitMilestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.HabitMilestone
	for id, h := range s.habits {
		out = append(out, models.HabitMilestone{Milestone: s.milestones[id], HabitName: h.Name})
		out[len(out)-1].HabitID = id
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HabitName < out[j].HabitName })
	return out, nil
}

func (s *memStore) GetSettings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *memStore) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

// WithHabitTx serializes habit transactions and restores the habit's
// completions and milestone when fn fails.
func (s *memStore) WithHabitTx(habitID string, fn func(storage.HabitTx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	completions := maps.Clone(s.completions[habitID])
	m, hadMilestone := s.milestones[habitID]
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if completions == nil {
			delete(s.completions, habitID)
		} else {
			s.completions[habitID] = completions
		}
		if hadMilestone {
			s.milestones[habitID] = m
		} else {
			delete(s.milestones, habitID)
		}
		return err
	}
	return nil
}

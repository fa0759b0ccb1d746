// Package tracker runs the read, compute and write sequence around the
// streak engine: completion toggles, the daily rollover check and the habit
// lifecycle. Every sequence that touches a habit's milestone runs in one
// storage transaction holding that habit's write lock, and in-process callers
// also queue on a per-habit mutex before opening it.
package tracker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/streak"
)

var (
	ErrFutureDay      = errors.New("cannot mark a day in the future")
	ErrHabitNotFound  = errors.New("habit not found")
	ErrDuplicateName  = errors.New("a habit with that name already exists")
	ErrNoReminderDays = errors.New("habit has no reminder days")
)

// Store is the persistence the tracker needs. storage.Provider satisfies it.
type Store interface {
	ListCompletionDates(habitID, sinceDay string) ([]string, error)
	ListReminderDays(habitID string) ([]int, error)
	GetMilestone(habitID string) (models.Milestone, error)
	UpsertMilestone(habitID string, weekStreak, badgesEarned int) error

	AddCompletion(models.Completion) error
	GetCompletion(habitID, day string) (models.Completion, error)
	DeleteCompletion(habitID, day string) error
	LastCompletionDate(habitID string) (string, error)
	GetCompletionsForDay(day string) ([]models.Completion, error)

	AddHabit(models.Habit, []models.Reminder) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits() ([]models.Habit, error)
	UpdateHabit(models.Habit, []models.Reminder) error
	DeleteHabit(id string) error
	GetReminders(habitID string) ([]models.Reminder, error)
	GetAllMilestones() ([]models.HabitMilestone, error)

	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	WithHabitTx(habitID string, fn func(storage.HabitTx) error) error
}

// Observer hears about habit changes so reminders can be rescheduled
type Observer interface {
	HabitSaved(habit models.Habit, reminders []models.Reminder)
	HabitDeleted(habitID string)
}

type Option func(*Tracker)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLocation sets the location that decides which calendar day "today" is
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithObserver registers an observer for habit changes
func WithObserver(o Observer) Option {
	return func(t *Tracker) { t.observers = append(t.observers, o) }
}

type Tracker struct {
	store     Store
	now       func() time.Time
	loc       *time.Location
	newID     func() string
	observers []Observer
	locks     *keyedMutex
}

func New(store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		now:   time.Now,
		loc:   time.Local,
		newID: uuid.NewString,
		locks: newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Today is the current calendar date in the tracker's location
func (t *Tracker) Today() time.Time {
	return streak.DateOnly(t.now().In(t.loc))
}

// Location returns the tracker's location
func (t *Tracker) Location() *time.Location {
	return t.loc
}

func (t *Tracker) inLocation(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.loc)
}

func loadFrequency(src storage.HabitTx, habitID string) (streak.DaySet, error) {
	days, err := src.ListReminderDays(habitID)
	if err != nil {
		return streak.DaySet{}, fmt.Errorf("failed to load reminder days: %w", err)
	}
	set, err := streak.NewDaySet(days...)
	if err != nil {
		return streak.DaySet{}, err
	}
	if set.Empty() {
		return streak.DaySet{}, ErrNoReminderDays
	}
	return set, nil
}

// milestone returns nil when the habit has no milestone row yet
func loadMilestone(src storage.HabitTx, habitID string) (*streak.Milestone, error) {
	m, err := src.GetMilestone(habitID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load milestone: %w", err)
	}
	return &streak.Milestone{WeekStreak: m.WeekStreak, BadgesEarned: m.BadgesEarned}, nil
}

func persist(tx storage.HabitTx, habitID string, d streak.Delta) error {
	if !d.Changed {
		return nil
	}
	if err := tx.UpsertMilestone(habitID, d.Milestone.WeekStreak, d.Milestone.BadgesEarned); err != nil {
		return fmt.Errorf("failed to save milestone: %w", err)
	}
	return nil
}

// keyedMutex hands out one mutex per habit id and drops it once unused
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

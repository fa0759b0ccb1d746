package storage

import (
	"errors"
	"strings"

	"github.com/julianstephens/habitrack/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned by Load when storage has never been set up
	ErrNotInitialized = errors.New("storage not initialized, run 'habitrack init' first")
)

// HabitTx is the part of storage a single habit's streak update reads and
// writes. Obtained from WithHabitTx, every call runs in that transaction.
type HabitTx interface {
	ListCompletionDates(habitID, sinceDay string) ([]string, error)
	ListReminderDays(habitID string) ([]int, error)
	LastCompletionDate(habitID string) (string, error)
	GetCompletion(habitID, day string) (models.Completion, error)
	AddCompletion(models.Completion) error
	DeleteCompletion(habitID, day string) error
	GetMilestone(habitID string) (models.Milestone, error)
	UpsertMilestone(habitID string, weekStreak, badgesEarned int) error
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits. AddHabit also creates the habit's reminders and its initial
	// milestone; UpdateHabit replaces the reminders wholesale.
	AddHabit(models.Habit, []models.Reminder) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits() ([]models.Habit, error)
	UpdateHabit(models.Habit, []models.Reminder) error
	// DeleteHabit removes the habit with its reminders, completions and milestone.
	DeleteHabit(id string) error

	// Reminders
	GetReminders(habitID string) ([]models.Reminder, error)
	GetAllReminders() ([]models.Reminder, error)
	ListReminderDays(habitID string) ([]int, error)

	// Completions
	AddCompletion(models.Completion) error
	GetCompletion(habitID, day string) (models.Completion, error)
	DeleteCompletion(habitID, day string) error
	// ListCompletionDates returns the habit's completion days on or after sinceDay, ascending.
	ListCompletionDates(habitID, sinceDay string) ([]string, error)
	// LastCompletionDate returns the most recent completion day or ErrNotFound.
	LastCompletionDate(habitID string) (string, error)
	GetCompletionsForDay(day string) ([]models.Completion, error)

	// Milestones
	GetMilestone(habitID string) (models.Milestone, error)
	UpsertMilestone(habitID string, weekStreak, badgesEarned int) error
	GetAllMilestones() ([]models.HabitMilestone, error)

	// WithHabitTx runs fn in a transaction that holds the habit's write lock
	// across processes, committing only when fn succeeds.
	WithHabitTx(habitID string, fn func(HabitTx) error) error

	// Utils
	GetConfigPath() string
}

// IsPostgresConnString reports whether a --config value names a PostgreSQL
// database rather than a SQLite file path.
func IsPostgresConnString(config string) bool {
	return strings.HasPrefix(config, "postgres://") ||
		strings.HasPrefix(config, "postgresql://") ||
		strings.Contains(config, "host=")
}

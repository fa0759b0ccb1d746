package sqlbase

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/habitrack/internal/models"
)

const habitColumns = "id, name, description, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var createdAt string
	if err := row.Scan(&h.ID, &h.Name, &h.Description, &createdAt); err != nil {
		return models.Habit{}, err
	}
	t, err := parseTime("created_at", createdAt)
	if err != nil {
		return models.Habit{}, err
	}
	h.CreatedAt = t
	return h, nil
}

func (s *Store) AddHabit(habit models.Habit, reminders []models.Reminder) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := s.txExec(tx,
			"INSERT INTO habits (id, name, description, created_at) VALUES (?, ?, ?, ?)",
			habit.ID, habit.Name, habit.Description, formatTime(habit.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert habit: %w", err)
		}
		if err := s.insertReminders(tx, reminders); err != nil {
			return err
		}
		_, err = s.txExec(tx,
			"INSERT INTO milestones (habit_id, week_streak, badges_earned, updated_at) VALUES (?, 0, 0, ?)",
			habit.ID, formatTime(habit.CreatedAt))
		if err != nil {
			return fmt.Errorf("failed to create milestone: %w", err)
		}
		return nil
	})
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	h, err := scanHabit(s.queryRow("SELECT "+habitColumns+" FROM habits WHERE id = ?", id))
	if err != nil {
		return models.Habit{}, notFound(err, "habit "+id)
	}
	return h, nil
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	h, err := scanHabit(s.queryRow("SELECT "+habitColumns+" FROM habits WHERE name = ?", name))
	if err != nil {
		return models.Habit{}, notFound(err, "habit "+name)
	}
	return h, nil
}

func (s *Store) GetAllHabits() ([]models.Habit, error) {
	rows, err := s.query("SELECT " + habitColumns + " FROM habits ORDER BY created_at, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit, reminders []models.Reminder) error {
	return s.withTx(func(tx *sql.Tx) error {
		res, err := s.txExec(tx,
			"UPDATE habits SET name = ?, description = ? WHERE id = ?",
			habit.Name, habit.Description, habit.ID)
		if err != nil {
			return fmt.Errorf("failed to update habit: %w", err)
		}
		if err := requireAffected(res, "habit "+habit.ID); err != nil {
			return err
		}
		if _, err := s.txExec(tx, "DELETE FROM reminders WHERE habit_id = ?", habit.ID); err != nil {
			return fmt.Errorf("failed to clear reminders: %w", err)
		}
		return s.insertReminders(tx, reminders)
	})
}

// DeleteHabit removes dependents explicitly as well, so the cascade holds
// even on a connection opened without foreign key enforcement.
func (s *Store) DeleteHabit(id string) error {
	return s.withTx(func(tx *sql.Tx) error {
		for _, table := range []string{"reminders", "completions", "milestones"} {
			if _, err := s.txExec(tx, "DELETE FROM "+table+" WHERE habit_id = ?", id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", table, err)
			}
		}
		res, err := s.txExec(tx, "DELETE FROM habits WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
		return requireAffected(res, "habit "+id)
	})
}

func (s *Store) insertReminders(tx *sql.Tx, reminders []models.Reminder) error {
	for _, r := range reminders {
		_, err := s.txExec(tx,
			"INSERT INTO reminders (id, habit_id, day, time) VALUES (?, ?, ?, ?)",
			r.ID, r.HabitID, int(r.Day), r.Time)
		if err != nil {
			return fmt.Errorf("failed to insert reminder for %s: %w", r.Day, err)
		}
	}
	return nil
}

func (s *Store) scanReminders(rows *sql.Rows) ([]models.Reminder, error) {
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		var r models.Reminder
		var day int
		if err := rows.Scan(&r.ID, &r.HabitID, &day, &r.Time); err != nil {
			return nil, err
		}
		r.Day = time.Weekday(day)
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

func (s *Store) GetReminders(habitID string) ([]models.Reminder, error) {
	rows, err := s.query("SELECT id, habit_id, day, time FROM reminders WHERE habit_id = ? ORDER BY day", habitID)
	if err != nil {
		return nil, err
	}
	return s.scanReminders(rows)
}

func (s *Store) GetAllReminders() ([]models.Reminder, error) {
	rows, err := s.query("SELECT id, habit_id, day, time FROM reminders ORDER BY habit_id, day")
	if err != nil {
		return nil, err
	}
	return s.scanReminders(rows)
}

func (s *Store) ListReminderDays(habitID string) ([]int, error) {
	rows, err := s.query("SELECT day FROM reminders WHERE habit_id = ? ORDER BY day", habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []int
	for rows.Next() {
		var day int
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

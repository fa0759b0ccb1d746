package sqlbase

import (
	"database/sql"
	"fmt"

	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/storage"
)

func scanCompletion(row scanner) (models.Completion, error) {
	var c models.Completion
	var createdAt string
	if err := row.Scan(&c.ID, &c.HabitID, &c.Day, &createdAt); err != nil {
		return models.Completion{}, err
	}
	t, err := parseTime("created_at", createdAt)
	if err != nil {
		return models.Completion{}, err
	}
	c.CreatedAt = t
	return c, nil
}

func (s *Store) AddCompletion(c models.Completion) error {
	_, err := s.exec(
		"INSERT INTO completions (id, habit_id, day, created_at) VALUES (?, ?, ?, ?)",
		c.ID, c.HabitID, c.Day, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert completion: %w", err)
	}
	return nil
}

func (s *Store) GetCompletion(habitID, day string) (models.Completion, error) {
	c, err := scanCompletion(s.queryRow(
		"SELECT id, habit_id, day, created_at FROM completions WHERE habit_id = ? AND day = ?",
		habitID, day))
	if err != nil {
		return models.Completion{}, notFound(err, "completion "+day)
	}
	return c, nil
}

func (s *Store) DeleteCompletion(habitID, day string) error {
	res, err := s.exec("DELETE FROM completions WHERE habit_id = ? AND day = ?", habitID, day)
	if err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	return requireAffected(res, "completion "+day)
}

func (s *Store) ListCompletionDates(habitID, sinceDay string) ([]string, error) {
	rows, err := s.query(
		"SELECT day FROM completions WHERE habit_id = ? AND day >= ? ORDER BY day",
		habitID, sinceDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (s *Store) LastCompletionDate(habitID string) (string, error) {
	var day sql.NullString
	if err := s.queryRow("SELECT MAX(day) FROM completions WHERE habit_id = ?", habitID).Scan(&day); err != nil {
		return "", err
	}
	if !day.Valid {
		return "", fmt.Errorf("completions for %s: %w", habitID, storage.ErrNotFound)
	}
	return day.String, nil
}

func (s *Store) GetCompletionsForDay(day string) ([]models.Completion, error) {
	rows, err := s.query("SELECT id, habit_id, day, created_at FROM completions WHERE day = ?", day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

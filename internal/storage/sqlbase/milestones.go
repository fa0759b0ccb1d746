package sqlbase

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitrack/internal/models"
)

func (s *Store) GetMilestone(habitID string) (models.Milestone, error) {
	var m models.Milestone
	var updatedAt string
	err := s.queryRow(
		"SELECT habit_id, week_streak, badges_earned, updated_at FROM milestones WHERE habit_id = ?",
		habitID).Scan(&m.HabitID, &m.WeekStreak, &m.BadgesEarned, &updatedAt)
	if err != nil {
		return models.Milestone{}, notFound(err, "milestone "+habitID)
	}
	if m.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return models.Milestone{}, err
	}
	return m, nil
}

func (s *Store) UpsertMilestone(habitID string, weekStreak, badgesEarned int) error {
	_, err := s.exec(`
		INSERT INTO milestones (habit_id, week_streak, badges_earned, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (habit_id) DO UPDATE SET
			week_streak = excluded.week_streak,
			badges_earned = excluded.badges_earned,
			updated_at = excluded.updated_at`,
		habitID, weekStreak, badgesEarned, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save milestone: %w", err)
	}
	return nil
}

// GetAllMilestones lists every habit with its milestone. Habits missing a
// milestone row are reported with a zero streak.
func (s *Store) GetAllMilestones() ([]models.HabitMilestone, error) {
	rows, err := s.query(`
		SELECT h.id, h.name, COALESCE(m.week_streak, 0), COALESCE(m.badges_earned, 0), COALESCE(m.updated_at, h.created_at)
		FROM habits h
		LEFT JOIN milestones m ON m.habit_id = h.id
		ORDER BY h.created_at, h.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.HabitMilestone
	for rows.Next() {
		var hm models.HabitMilestone
		var updatedAt string
		if err := rows.Scan(&hm.HabitID, &hm.HabitName, &hm.WeekStreak, &hm.BadgesEarned, &updatedAt); err != nil {
			return nil, err
		}
		if hm.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return nil, err
		}
		out = append(out, hm)
	}
	return out, rows.Err()
}

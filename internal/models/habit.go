package models

import "time"

// Habit represents a recurring practice to track
type Habit struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Reminder is one scheduled day of a habit's week
type Reminder struct {
	ID      string       `json:"id"`
	HabitID string       `json:"habit_id"`
	Day     time.Weekday `json:"day"`            // 0 = Sunday .. 6 = Saturday
	Time    string       `json:"time,omitempty"` // HH:MM format, empty for the default reminder time
}

// Completion records that a habit was done on a day
type Completion struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	Day       string    `json:"day"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at"`
}

// Milestone holds a habit's week streak and the highest badge tier it has reached
type Milestone struct {
	HabitID      string    `json:"habit_id"`
	WeekStreak   int       `json:"week_streak"`
	BadgesEarned int       `json:"badges_earned"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HabitMilestone is a milestone joined with its habit's name, for listing
type HabitMilestone struct {
	Milestone
	HabitName string `json:"habit_name"`
}

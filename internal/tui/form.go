package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitrack/internal/streak"
	"github.com/julianstephens/habitrack/internal/tracker"
	"github.com/julianstephens/habitrack/internal/validation"
)

// HabitFormModel backs the add and edit habit form
type HabitFormModel struct {
	Name        string
	Description string
	Days        []time.Weekday
	Time        string
}

func (f *HabitFormModel) input() tracker.HabitInput {
	return tracker.HabitInput{
		Name:        f.Name,
		Description: f.Description,
		Days:        streak.DaySetOf(f.Days...),
		Time:        f.Time,
	}
}

func formFromDetail(d tracker.HabitDetail) *HabitFormModel {
	return &HabitFormModel{
		Name:        d.Habit.Name,
		Description: d.Habit.Description,
		Days:        d.Frequency.Weekdays(),
		Time:        d.Time,
	}
}

// weekOrder lists days Monday first, the way people plan a week
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// NewHabitForm creates a form for adding or editing a habit
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	dayOptions := make([]huh.Option[time.Weekday], len(weekOrder))
	for i, d := range weekOrder {
		dayOptions[i] = huh.NewOption(d.String(), d)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					_, err := validation.HabitName(s)
					return err
				}),
			huh.NewText().
				Title("Description").
				Description("Shown in reminders").
				Value(&fm.Description),
			huh.NewMultiSelect[time.Weekday]().
				Title("Days").
				Options(dayOptions...).
				Value(&fm.Days).
				Validate(func(days []time.Weekday) error {
					if len(days) == 0 {
						return errors.New("pick at least one day")
					}
					return nil
				}),
			huh.NewInput().
				Title("Reminder time (HH:MM)").
				Description("Leave empty for the default reminder time").
				Value(&fm.Time).
				Validate(func(s string) error {
					_, err := validation.ReminderTime(s)
					return err
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

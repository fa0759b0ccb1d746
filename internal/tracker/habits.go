package tracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitrack/internal/logger"
	"github.com/julianstephens/habitrack/internal/models"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/streak"
	"github.com/julianstephens/habitrack/internal/utils"
	"github.com/julianstephens/habitrack/internal/validation"
)

// HabitInput is the editable part of a habit
type HabitInput struct {
	Name        string
	Description string
	Days        streak.DaySet
	// Time is HH:MM or empty for the default reminder time
	Time string
}

func (in HabitInput) normalize() (HabitInput, error) {
	name, err := validation.HabitName(in.Name)
	if err != nil {
		return HabitInput{}, err
	}
	at, err := validation.ReminderTime(in.Time)
	if err != nil {
		return HabitInput{}, err
	}
	if in.Days.Empty() {
		return HabitInput{}, validation.ErrNoDays
	}
	return HabitInput{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Days:        in.Days,
		Time:        at,
	}, nil
}

func (t *Tracker) reminders(habitID string, in HabitInput) []models.Reminder {
	var out []models.Reminder
	for _, d := range in.Days.Weekdays() {
		out = append(out, models.Reminder{ID: t.newID(), HabitID: habitID, Day: d, Time: in.Time})
	}
	return out
}

func (t *Tracker) checkNameFree(name, selfID string) error {
	existing, err := t.store.GetHabitByName(name)
	if err == nil && existing.ID != selfID {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

// CreateHabit stores a new habit with its reminders and a zero milestone
func (t *Tracker) CreateHabit(in HabitInput) (models.Habit, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Habit{}, err
	}
	if err := t.checkNameFree(in.Name, ""); err != nil {
		return models.Habit{}, err
	}

	habit := models.Habit{
		ID:          t.newID(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   t.now(),
	}
	reminders := t.reminders(habit.ID, in)
	if err := t.store.AddHabit(habit, reminders); err != nil {
		return models.Habit{}, fmt.Errorf("failed to add habit: %w", err)
	}

	logger.Info("Created habit", "habit", habit.Name, "days", in.Days.String())
	for _, o := range t.observers {
		o.HabitSaved(habit, reminders)
	}
	return habit, nil
}

// UpdateHabit edits a habit and replaces its reminders wholesale. The
// milestone is left alone even when the frequency changes.
func (t *Tracker) UpdateHabit(habitID string, in HabitInput) (models.Habit, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Habit{}, err
	}

	unlock := t.locks.Lock(habitID)
	defer unlock()

	habit, err := t.getHabit(habitID)
	if err != nil {
		return models.Habit{}, err
	}
	if err := t.checkNameFree(in.Name, habitID); err != nil {
		return models.Habit{}, err
	}

	habit.Name = in.Name
	habit.Description = in.Description
	reminders := t.reminders(habitID, in)
	if err := t.store.UpdateHabit(habit, reminders); err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}

	logger.Info("Updated habit", "habit", habit.Name, "days", in.Days.String())
	for _, o := range t.observers {
		o.HabitSaved(habit, reminders)
	}
	return habit, nil
}

// DeleteHabit removes a habit with its reminders, completions and milestone
func (t *Tracker) DeleteHabit(habitID string) error {
	unlock := t.locks.Lock(habitID)
	defer unlock()

	if err := t.store.DeleteHabit(habitID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrHabitNotFound, habitID)
		}
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	logger.Info("Deleted habit", "habit_id", habitID)
	for _, o := range t.observers {
		o.HabitDeleted(habitID)
	}
	return nil
}

func (t *Tracker) getHabit(id string) (models.Habit, error) {
	h, err := t.store.GetHabit(id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}
	return h, err
}

// FindHabit looks a habit up by id, then by exact name, then by
// case-insensitive name.
func (t *Tracker) FindHabit(ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if h, err := t.store.GetHabit(ref); err == nil {
		return h, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, err
	}
	if h, err := t.store.GetHabitByName(ref); err == nil {
		return h, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, err
	}

	habits, err := t.store.GetAllHabits()
	if err != nil {
		return models.Habit{}, err
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			return h, nil
		}
	}
	return models.Habit{}, fmt.Errorf("%w: %s", ErrHabitNotFound, ref)
}

// HabitDetail is a habit with its schedule, current week and milestone
type HabitDetail struct {
	models.Habit
	Frequency       streak.DaySet
	Time            string
	WeekCompletions int
	Milestone       streak.Milestone
}

// WeekDone reports whether this week's target has been met
func (d HabitDetail) WeekDone() bool {
	return !d.Frequency.Empty() && d.WeekCompletions >= d.Frequency.Len()
}

// Detail loads everything shown for one habit
func (t *Tracker) Detail(habitID string) (HabitDetail, error) {
	habit, err := t.getHabit(habitID)
	if err != nil {
		return HabitDetail{}, err
	}
	return t.detail(habit)
}

func (t *Tracker) detail(habit models.Habit) (HabitDetail, error) {
	d := HabitDetail{Habit: habit}

	reminders, err := t.store.GetReminders(habit.ID)
	if err != nil {
		return HabitDetail{}, fmt.Errorf("failed to load reminders: %w", err)
	}
	for _, r := range reminders {
		d.Frequency = d.Frequency.With(int(r.Day))
		if r.Time != "" {
			d.Time = r.Time
		}
	}

	weekStart := streak.WeekStart(t.Today())
	dates, err := t.store.ListCompletionDates(habit.ID, utils.FormatDate(weekStart))
	if err != nil {
		return HabitDetail{}, fmt.Errorf("failed to load completions: %w", err)
	}
	d.WeekCompletions = len(dates)

	m, err := loadMilestone(t.store, habit.ID)
	if err != nil {
		return HabitDetail{}, err
	}
	if m != nil {
		d.Milestone = *m
	}
	return d, nil
}

// ListHabits returns every habit with its details, in creation order
func (t *Tracker) ListHabits() ([]HabitDetail, error) {
	habits, err := t.store.GetAllHabits()
	if err != nil {
		return nil, fmt.Errorf("failed to load habits: %w", err)
	}
	out := make([]HabitDetail, 0, len(habits))
	for _, h := range habits {
		d, err := t.detail(h)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

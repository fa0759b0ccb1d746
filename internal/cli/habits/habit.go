package habits

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/streak"
	"github.com/julianstephens/habitrack/internal/tracker"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	Edit   HabitEditCmd   `cmd:"" help:"Edit a habit's name, description, days or reminder time."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Show   HabitShowCmd   `cmd:"" help:"Show a habit with its streak and badges."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit with its completions and milestone."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Days        string `help:"Reminder days: comma-separated names (mon,wed,fri), daily, weekdays or weekends." default:"daily"`
	Time        string `help:"Reminder time in HH:MM format (default: settings default reminder time)."`
	Description string `help:"Free-text description shown in reminders." short:"d"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	days, err := cli.ParseDays(c.Days)
	if err != nil {
		return err
	}

	habit, err := t.CreateHabit(tracker.HabitInput{
		Name:        c.Name,
		Description: c.Description,
		Days:        days,
		Time:        c.Time,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added habit: %s (%s at %s)\n", habit.Name, cli.FormatDays(days), cli.FormatTime(c.Time))
	return nil
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit name or ID."`
	Name        *string `help:"New name."`
	Days        *string `help:"New reminder days."`
	Time        *string `help:"New reminder time in HH:MM format; empty for the default."`
	Description *string `help:"New description." short:"d"`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	detail, err := t.Detail(habit.ID)
	if err != nil {
		return err
	}

	in := tracker.HabitInput{
		Name:        detail.Name,
		Description: detail.Description,
		Days:        detail.Frequency,
		Time:        detail.Time,
	}
	updated := false
	if c.Name != nil {
		in.Name = *c.Name
		updated = true
	}
	if c.Description != nil {
		in.Description = *c.Description
		updated = true
	}
	if c.Days != nil {
		days, err := cli.ParseDays(*c.Days)
		if err != nil {
			return err
		}
		in.Days = days
		updated = true
	}
	if c.Time != nil {
		in.Time = *c.Time
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --name, --days, --time or --description.")
		return nil
	}

	if _, err := t.UpdateHabit(habit.ID, in); err != nil {
		return err
	}
	fmt.Printf("Updated habit: %s\n", in.Name)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habits, err := t.ListHabits()
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	fmt.Printf("%-24s %-20s %-14s %-8s %s\n", "NAME", "DAYS", "TIME", "WEEK", "STREAK")
	for _, h := range habits {
		week := fmt.Sprintf("%d/%d", h.WeekCompletions, h.Frequency.Len())
		if h.WeekDone() {
			week += " ✓"
		}
		fmt.Printf("%-24s %-20s %-14s %-8s %d\n", h.Name, cli.FormatDays(h.Frequency), cli.FormatTime(h.Time), week, h.Milestone.WeekStreak)
	}

	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	d, err := t.Detail(habit.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", d.Name)
	if d.Description != "" {
		fmt.Printf("  %s\n", d.Description)
	}
	fmt.Printf("\n  ID:            %s\n", d.ID)
	fmt.Printf("  Days:          %s\n", cli.FormatDays(d.Frequency))
	fmt.Printf("  Reminder:      %s\n", cli.FormatTime(d.Time))
	fmt.Printf("  This week:     %d/%d\n", d.WeekCompletions, d.Frequency.Len())
	fmt.Printf("  Week streak:   %d\n", d.Milestone.WeekStreak)
	fmt.Printf("  Badges earned: %d/%d\n", d.Milestone.BadgesEarned, streak.MaxTier)

	fmt.Println("\n  Badges:")
	for i, pct := range streak.BadgeProgress(d.Milestone.WeekStreak) {
		tier := i + 1
		mark := " "
		if tier <= d.Milestone.BadgesEarned {
			mark = "★"
		}
		fmt.Printf("  %s %-9s %s %3d%%\n", mark, cli.BadgeLabel(tier), cli.ProgressBar(pct, 20), pct)
	}
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := t.FindHabit(c.Habit)
	if err != nil {
		if errors.Is(err, tracker.ErrHabitNotFound) {
			return fmt.Errorf("habit %q not found", c.Habit)
		}
		return err
	}

	if err := t.DeleteHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", habit.Name)
	return nil
}

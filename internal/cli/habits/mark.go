package habits

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitrack/internal/cli"
	apperrors "github.com/julianstephens/habitrack/internal/errors"
	"github.com/julianstephens/habitrack/internal/tracker"
	"github.com/julianstephens/habitrack/internal/utils"
)

type MarkCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Date  string `help:"Day to toggle: today, yesterday or YYYY-MM-DD (default: today)." default:""`
}

func (c *MarkCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	habit, err := t.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	day, err := utils.ResolveDay(c.Date, t.Today())
	if err != nil {
		return apperrors.Usage(err)
	}

	res, err := t.ToggleCompletion(habit.ID, day)
	if errors.Is(err, tracker.ErrFutureDay) {
		return apperrors.Usage(err)
	}
	if err != nil {
		return err
	}

	if res.Completed {
		fmt.Printf("Marked %q done for %s\n", res.Habit.Name, res.Day)
	} else {
		fmt.Printf("Unmarked %q for %s\n", res.Habit.Name, res.Day)
	}
	if res.StreakChanged {
		fmt.Printf("Week streak: %d\n", res.Milestone.WeekStreak)
	}
	if res.BadgeEarned {
		fmt.Printf("★ New badge: %s streak!\n", cli.BadgeLabel(res.Milestone.BadgesEarned))
	}
	return nil
}

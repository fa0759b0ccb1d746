package habits

import (
	"fmt"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/utils"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	items, err := t.TodayHabits()
	if err != nil {
		return err
	}

	today := t.Today()
	fmt.Printf("Habits for %s %s:\n\n", today.Weekday(), utils.FormatDate(today))
	if len(items) == 0 {
		fmt.Println("Nothing scheduled today.")
		return nil
	}

	done := 0
	for _, item := range items {
		status := "[ ]"
		if item.Completed {
			status = "[x]"
			done++
		}
		fmt.Printf("%s %s  %s\n", status, item.Time, item.Habit.Name)
	}

	fmt.Printf("\nDone: %d/%d\n", done, len(items))
	return nil
}

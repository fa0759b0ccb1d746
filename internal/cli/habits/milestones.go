package habits

import (
	"fmt"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/streak"
)

type MilestonesCmd struct{}

func (c *MilestonesCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	rows, err := t.Milestones()
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		fmt.Println("No habits yet. Create one with 'habitrack habit add'.")
		return nil
	}

	for i, m := range rows {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("%s: %d week streak, %d/%d badges\n", m.HabitName, m.WeekStreak, m.BadgesEarned, streak.MaxTier)
		for j, pct := range m.Progress {
			fmt.Printf("  %-9s %s %3d%%\n", cli.BadgeLabel(j+1), cli.ProgressBar(pct, 20), pct)
		}
	}
	return nil
}

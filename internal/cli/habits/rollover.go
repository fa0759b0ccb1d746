package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitrack/internal/cli"
)

type RolloverCmd struct {
	Force bool `help:"Run even if today's check already ran."`
}

func (c *RolloverCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	report, err := t.RunRollover(c.Force)
	if report.Skipped {
		fmt.Printf("Rollover already ran for %s. Use --force to run it again.\n", report.Day)
		return err
	}

	fmt.Printf("Checked %d habit(s) for %s\n", report.Checked, report.Day)
	if len(report.Reset) > 0 {
		fmt.Printf("Streak reset: %s\n", strings.Join(report.Reset, ", "))
	}
	return err
}

package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(t), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/constants"
	"github.com/julianstephens/habitrack/internal/tracker"
	"github.com/julianstephens/habitrack/internal/tui/components/milestones"
	"github.com/julianstephens/habitrack/internal/tui/components/today"
)

// tabs are the top-level screens, in display order
var tabs = []struct {
	state constants.SessionState
	title string
}{
	{constants.StateToday, "Today"},
	{constants.StateMilestones, "Milestones"},
}

type Model struct {
	tracker         *tracker.Tracker
	state           constants.SessionState
	previousState   constants.SessionState
	keys            KeyMap
	help            help.Model
	todayModel      today.Model
	milestonesModel milestones.Model
	form            *huh.Form
	habitForm       *HabitFormModel
	editingID       string
	habitToDelete   string
	deleteName      string
	status          string
	err             error
	quitting        bool
	width           int
	height          int
}

func NewModel(t *tracker.Tracker) Model {
	m := Model{
		tracker:         t,
		state:           constants.StateToday,
		keys:            DefaultKeyMap(),
		help:            help.New(),
		todayModel:      today.New(0, 0),
		milestonesModel: milestones.New(0, 0),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh reloads both lists from storage
func (m *Model) refresh() {
	views, err := m.tracker.Milestones()
	if err != nil {
		m.err = fmt.Errorf("failed to load milestones: %w", err)
		return
	}
	streaks := make(map[string]int, len(views))
	for _, v := range views {
		streaks[v.HabitID] = v.WeekStreak
	}
	m.milestonesModel.SetMilestones(views)

	items, err := m.tracker.TodayHabits()
	if err != nil {
		m.err = fmt.Errorf("failed to load today's habits: %w", err)
		return
	}
	m.todayModel.SetItems(items, streaks)
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.err = nil
}

func (m *Model) setError(err error) {
	m.status = ""
	m.err = err
}

func (m Model) toggleResult(res tracker.ToggleResult) string {
	if !res.Completed {
		return fmt.Sprintf("○ %s unmarked for %s", res.Habit.Name, res.Day)
	}
	msg := fmt.Sprintf("✓ %s done for %s", res.Habit.Name, res.Day)
	if res.BadgeEarned {
		msg += fmt.Sprintf(" | new badge: %s streak!", cli.BadgeLabel(res.Milestone.BadgesEarned))
	} else if res.StreakChanged {
		msg += fmt.Sprintf(" | week streak %d", res.Milestone.WeekStreak)
	}
	return msg
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case constants.StateToday:
		k := today.DefaultKeyMap()
		actions = []key.Binding{k.Toggle, k.Add, k.Edit, k.Delete}
	case constants.StateMilestones:
		k := milestones.DefaultKeyMap()
		actions = []key.Binding{k.Add, k.Edit, k.Delete}
	}

	return [][]key.Binding{global, navigation, actions}
}

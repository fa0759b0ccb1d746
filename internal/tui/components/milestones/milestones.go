package milestones

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/streak"
	"github.com/julianstephens/habitrack/internal/tracker"
	"github.com/julianstephens/habitrack/internal/tui/components"
)

var (
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type Item struct {
	tracker.MilestoneView
}

func (i Item) Title() string {
	return i.HabitName + "  " + Badges(i.BadgesEarned)
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%d week streak", i.WeekStreak)
	if i.CurrentTier >= streak.MaxTier {
		return desc + " | all badges earned"
	}
	next := i.CurrentTier
	return fmt.Sprintf("%s | next %s %s %d%%",
		desc, cli.BadgeLabel(next+1), cli.ProgressBar(i.Progress[next], 10), i.Progress[next])
}

func (i Item) FilterValue() string { return i.HabitName }

// Badges renders earned badges as filled stars out of the five tiers
func Badges(earned int) string {
	earned = max(0, min(streak.MaxTier, earned))
	return badgeStyle.Render(strings.Repeat("★", earned)) +
		dimStyle.Render(strings.Repeat("☆", streak.MaxTier-earned))
}

type KeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Milestones"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func (m *Model) SetMilestones(views []tracker.MilestoneView) {
	items := make([]list.Item, len(views))
	for i, v := range views {
		items[i] = Item{MilestoneView: v}
	}
	m.list.SetItems(items)
}

func (m Model) Items() []Item {
	out := make([]Item, 0, len(m.list.Items()))
	for _, li := range m.list.Items() {
		if it, ok := li.(Item); ok {
			out = append(out, it)
		}
	}
	return out
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return components.AddHabitMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return components.EditHabitMsg{ID: i.HabitID} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return components.DeleteHabitMsg{ID: i.HabitID, Name: i.HabitName} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

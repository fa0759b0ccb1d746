package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitrack/internal/constants"
	"github.com/julianstephens/habitrack/internal/tui/components"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		// tabs, status line and help
		m.todayModel.SetSize(msg.Width-h, msg.Height-v-4)
		m.milestonesModel.SetSize(msg.Width-h, msg.Height-v-4)
		return m, nil

	case components.AddHabitMsg:
		m.editingID = ""
		m.habitForm = &HabitFormModel{}
		return m.openForm(constants.StateAddHabit)

	case components.EditHabitMsg:
		d, err := m.tracker.Detail(msg.ID)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.editingID = msg.ID
		m.habitForm = formFromDetail(d)
		return m.openForm(constants.StateEditHabit)

	case components.ToggleHabitMsg:
		res, err := m.tracker.ToggleCompletion(msg.ID, m.tracker.Today())
		if err != nil {
			m.setError(err)
		} else {
			m.setStatus("%s", m.toggleResult(res))
		}
		m.refresh()
		return m, nil

	case components.DeleteHabitMsg:
		m.habitToDelete = msg.ID
		m.deleteName = msg.Name
		m.previousState = m.state
		m.state = constants.StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case constants.StateAddHabit, constants.StateEditHabit:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.filtering() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = m.nextTab(1)
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = m.nextTab(-1)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateToday:
		m.todayModel, cmd = m.todayModel.Update(msg)
	case constants.StateMilestones:
		m.milestonesModel, cmd = m.milestonesModel.Update(msg)
	}
	return m, cmd
}

func (m Model) filtering() bool {
	switch m.state {
	case constants.StateToday:
		return m.todayModel.Filtering()
	case constants.StateMilestones:
		return m.milestonesModel.Filtering()
	}
	return false
}

func (m Model) nextTab(step int) constants.SessionState {
	for i, t := range tabs {
		if t.state == m.state {
			return tabs[(i+step+len(tabs))%len(tabs)].state
		}
	}
	return tabs[0].state
}

func (m Model) openForm(state constants.SessionState) (tea.Model, tea.Cmd) {
	if m.state == constants.StateToday || m.state == constants.StateMilestones {
		m.previousState = m.state
	}
	m.form = NewHabitForm(m.habitForm)
	m.state = state
	return m, m.form.Init()
}

func (m Model) closeForm() Model {
	m.form = nil
	m.habitForm = nil
	m.editingID = ""
	m.state = m.previousState
	return m
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		return m.closeForm(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.saveHabitForm(); err != nil {
			// stay in the form so the user can fix the input or cancel
			m.setError(err)
			m.form.State = huh.StateNormal
			return m, cmd
		}
		m.refresh()
		return m.closeForm(), nil
	case huh.StateAborted:
		return m.closeForm(), nil
	}
	return m, cmd
}

// saveHabitForm creates or updates the habit from the form values
func (m *Model) saveHabitForm() error {
	in := m.habitForm.input()
	if m.editingID == "" {
		habit, err := m.tracker.CreateHabit(in)
		if err != nil {
			return err
		}
		m.setStatus("Added habit %s", habit.Name)
		return nil
	}

	habit, err := m.tracker.UpdateHabit(m.editingID, in)
	if err != nil {
		return err
	}
	m.setStatus("Updated habit %s", habit.Name)
	return nil
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if err := m.tracker.DeleteHabit(m.habitToDelete); err != nil {
			m.setError(err)
		} else {
			m.setStatus("Deleted habit %s", m.deleteName)
		}
		m.refresh()
	case key.Matches(keyMsg, m.keys.Cancel):
	default:
		return m, nil
	}

	m.habitToDelete = ""
	m.deleteName = ""
	m.state = m.previousState
	return m, nil
}

// Package components holds the list views of the TUI and the messages they
// send to the main model.
package components

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID string
}

type EditHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID   string
	Name string
}

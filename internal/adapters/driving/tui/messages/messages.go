// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

// ReplyReceived carries a completed dialogue turn back to the model.
type ReplyReceived struct {
	Reply string
	Err   error
}

// PersonaReloaded signals that the persona file changed on disk and the
// active profile was swapped.
type PersonaReloaded struct {
	Name string
}

// Package tui provides an interactive chat terminal interface for gumshoe.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"fmt"

	"github.com/wastelandworks/gumshoe/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Dialogue produces in-character replies.
	Dialogue driving.DialogueService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(dialogue driving.DialogueService) *Ports {
	return &Ports{Dialogue: dialogue}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Dialogue == nil {
		return fmt.Errorf("%w: %v", ErrInvalidPorts, ErrMissingDialogueService)
	}
	return nil
}

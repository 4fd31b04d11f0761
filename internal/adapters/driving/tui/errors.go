package tui

import "errors"

// ErrMissingDialogueService is returned when the dialogue service is not provided.
var ErrMissingDialogueService = errors.New("tui: dialogue service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

package driven

import (
	"context"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
)

// CorpusLoader parses a raw dialogue source into typed entries.
//
// A structurally unusable source (missing required columns) fails with
// domain.ErrCorpusFormat - no partial corpus is accepted. Individually
// malformed rows are skipped with a recorded warning, not fatal.
type CorpusLoader interface {
	// Load returns the ordered, validated entry sequence.
	Load(ctx context.Context) ([]domain.DialogueEntry, error)
}

// PersonaStore loads the character profile.
type PersonaStore interface {
	// Load returns the persona profile, creating defaults on first use.
	Load() (*domain.PersonaProfile, error)

	// Reload discards any cached profile, forcing a fresh load.
	Reload()
}

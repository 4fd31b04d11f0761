package driving

import (
	"context"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
)

// DialogueService is the caller boundary of the engine: one persona,
// one conversation at a time. The caller owns persisting state across
// calls and owns UI concerns entirely.
type DialogueService interface {
	// HandleTurn produces a validated in-character reply to userInput.
	// The engine reads a bounded window of state and appends nothing;
	// the caller commits both turns after a successful exchange.
	HandleTurn(ctx context.Context, userInput, contextTag, emotionTag string, state *domain.ConversationState) (string, error)

	// RebuildIndex forces a full re-embed of the corpus.
	RebuildIndex(ctx context.Context) error

	// IndexStatus reports the index entry count and freshness against
	// the currently loaded corpus.
	IndexStatus(ctx context.Context) (count int, fresh bool, err error)

	// Persona returns the active character profile.
	Persona() *domain.PersonaProfile
}

package cli

import (
	"context"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driven"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driving"
)

// Ensure the stub satisfies the port.
var _ driving.DialogueService = (*stubDialogue)(nil)

// stubDialogue is a canned dialogue service for command tests.
type stubDialogue struct {
	reply      string
	err        error
	count      int
	fresh      bool
	rebuildErr error
	rebuilds   int

	lastInput   string
	lastContext string
	lastEmotion string
}

func (s *stubDialogue) HandleTurn(_ context.Context, userInput, contextTag, emotionTag string, _ *domain.ConversationState) (string, error) {
	s.lastInput = userInput
	s.lastContext = contextTag
	s.lastEmotion = emotionTag
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubDialogue) RebuildIndex(context.Context) error {
	s.rebuilds++
	return s.rebuildErr
}

func (s *stubDialogue) IndexStatus(context.Context) (int, bool, error) {
	return s.count, s.fresh, nil
}

func (s *stubDialogue) Persona() *domain.PersonaProfile {
	return &domain.PersonaProfile{
		Name:         "Nick Valentine",
		Style:        "Noir detective.",
		Examples:     []string{"Hell of a game."},
		FallbackLine: "That's a puzzle, pal.",
	}
}

// Ensure the stub satisfies the port.
var _ driven.GenerationBackend = (*stubBackend)(nil)

// stubBackend is a named no-op backend for registry-facing tests.
type stubBackend struct{ name string }

func (b *stubBackend) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return "", nil
}
func (b *stubBackend) Name() string               { return b.name }
func (b *stubBackend) Ping(context.Context) error { return nil }
func (b *stubBackend) Close() error               { return nil }

// withServices swaps the package service globals for a test and
// restores them afterwards.
func withServices(t interface{ Cleanup(func()) }, s Services) {
	origDialogue := dialogueService
	origRegistry := backendRegistry
	origSettings := settingsStore
	origPersona := personaStore
	SetServices(s)
	t.Cleanup(func() {
		dialogueService = origDialogue
		backendRegistry = origRegistry
		settingsStore = origSettings
		personaStore = origPersona
	})
}

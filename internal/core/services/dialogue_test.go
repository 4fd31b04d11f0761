package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	localembed "github.com/wastelandworks/gumshoe/internal/adapters/driven/embedding/local"
	sqliteindex "github.com/wastelandworks/gumshoe/internal/adapters/driven/index/sqlite"
	"github.com/wastelandworks/gumshoe/internal/core/domain"
)

func newTestService(t *testing.T, backend *stubBackend) (*DialogueService, *stubCorpus, *stubEmbedder, *stubIndex) {
	t.Helper()

	corpus := &stubCorpus{entries: []domain.DialogueEntry{
		{ID: "pair_0", PromptText: "Hello", ResponseText: "Hello. What can I do for you?", Category: domain.CategoryExchange},
		{ID: "pair_1", PromptText: "Who hired you?", ResponseText: "Client privilege, pal.", Mood: domain.MoodStern, SceneTag: "CaseFiles", Category: domain.CategoryExchange},
		{ID: "pair_2", ResponseText: "Hell of a game.", Category: domain.CategoryStandalone},
	}}

	embedder := newStubEmbedder()
	embedder.vecs["Hello"] = []float32{1, 0, 0}
	embedder.vecs["Who hired you?"] = []float32{0, 1, 0}
	embedder.vecs["Hell of a game."] = []float32{0, 0, 1}

	index := &stubIndex{}
	registry := NewBackendRegistry()
	registry.Register(backend)

	svc := NewDialogueService(corpus, embedder, index, registry, testPersona(), DialogueConfig{
		TopK:     3,
		MinScore: 0.25,
	})
	return svc, corpus, embedder, index
}

func TestHandleTurn_HappyPath(t *testing.T) {
	backend := &stubBackend{reply: "Evening, pal. What brings you to my office?"}
	svc, _, embedder, index := newTestService(t, backend)
	embedder.vecs["Hello there"] = []float32{1, 0, 0}

	state := domain.NewConversationState("s")
	reply, err := svc.HandleTurn(context.Background(), "Hello there", "", "", state)

	require.NoError(t, err)
	assert.Equal(t, "Evening, pal. What brings you to my office?", reply)
	assert.Equal(t, 1, index.builds, "first turn builds the index lazily")

	// The prompt carried the retrieved exchange and ends with the
	// unanswered turn.
	assert.Contains(t, backend.lastPrompt, "Hello. What can I do for you?")
	assert.Contains(t, backend.lastPrompt, "User: Hello there")
}

func TestHandleTurn_EmptyInput(t *testing.T) {
	backend := &stubBackend{reply: "irrelevant"}
	svc, _, _, _ := newTestService(t, backend)

	_, err := svc.HandleTurn(context.Background(), "   ", "", "", domain.NewConversationState("s"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, backend.calls)
}

func TestHandleTurn_IndexBuiltOnce(t *testing.T) {
	backend := &stubBackend{reply: "Sure thing."}
	svc, corpus, _, index := newTestService(t, backend)

	ctx := context.Background()
	state := domain.NewConversationState("s")
	_, err := svc.HandleTurn(ctx, "Hello", "", "", state)
	require.NoError(t, err)
	_, err = svc.HandleTurn(ctx, "Hello", "", "", state)
	require.NoError(t, err)

	assert.Equal(t, 1, index.builds, "fresh index must not be rebuilt")
	assert.Equal(t, 1, corpus.loads, "corpus is parsed once and cached")
}

func TestHandleTurn_GenerationFailureFallsBackToRetrieved(t *testing.T) {
	backend := &stubBackend{err: errBackendDown}
	svc, _, embedder, _ := newTestService(t, backend)
	embedder.vecs["Hello again"] = []float32{1, 0, 0}

	reply, err := svc.HandleTurn(context.Background(), "Hello again", "", "", domain.NewConversationState("s"))

	require.NoError(t, err, "generation failure is absorbed by the fallback, not surfaced")
	assert.Equal(t, "Hello. What can I do for you?", reply, "fallback is the best retrieved line")
}

func TestHandleTurn_GenerationFailureWithTagsUsesMatchingLine(t *testing.T) {
	backend := &stubBackend{err: errBackendDown}
	svc, _, embedder, _ := newTestService(t, backend)
	embedder.vecs["Spill it"] = []float32{0.5, 0.5, 0}

	reply, err := svc.HandleTurn(context.Background(), "Spill it", "casefiles", "stern", domain.NewConversationState("s"))

	require.NoError(t, err)
	assert.Equal(t, "Client privilege, pal.", reply)
}

func TestHandleTurn_GenerationFailureNoRetrievalUsesPersonaLine(t *testing.T) {
	backend := &stubBackend{err: errBackendDown}
	svc, _, embedder, _ := newTestService(t, backend)
	// Orthogonal to everything: retrieval comes back empty.
	embedder.vecs["Unrelated"] = []float32{0, 0, 0}

	reply, err := svc.HandleTurn(context.Background(), "Unrelated", "", "", domain.NewConversationState("s"))

	require.NoError(t, err)
	assert.Equal(t, "That's a puzzle, pal.", reply)
}

func TestHandleTurn_EmptyOutputFallsBack(t *testing.T) {
	backend := &stubBackend{reply: "[shrugs]"}
	svc, _, embedder, _ := newTestService(t, backend)
	embedder.vecs["Hello"] = []float32{1, 0, 0}

	reply, err := svc.HandleTurn(context.Background(), "Hello", "", "", domain.NewConversationState("s"))

	require.NoError(t, err)
	assert.Equal(t, "Hello. What can I do for you?", reply)
}

func TestHandleTurn_CorpusErrorPropagates(t *testing.T) {
	backend := &stubBackend{reply: "irrelevant"}
	svc, corpus, _, _ := newTestService(t, backend)
	corpus.err = domain.ErrCorpusFormat

	_, err := svc.HandleTurn(context.Background(), "Hello", "", "", domain.NewConversationState("s"))

	assert.ErrorIs(t, err, domain.ErrCorpusFormat)
}

func TestHandleTurn_StopWordsForwarded(t *testing.T) {
	backend := &stubBackend{reply: "Fine."}
	svc, _, _, _ := newTestService(t, backend)

	_, err := svc.HandleTurn(context.Background(), "Hello", "", "", domain.NewConversationState("s"))

	require.NoError(t, err)
	assert.Contains(t, backend.lastOpts.StopWords, "\nUser:")
}

func TestRebuildIndex_ForcesReEmbed(t *testing.T) {
	backend := &stubBackend{reply: "Fine."}
	svc, _, _, index := newTestService(t, backend)

	ctx := context.Background()
	require.NoError(t, svc.RebuildIndex(ctx))
	require.NoError(t, svc.RebuildIndex(ctx))

	assert.Equal(t, 2, index.builds, "rebuild is unconditional")
}

func TestIndexStatus(t *testing.T) {
	backend := &stubBackend{reply: "Fine."}
	svc, _, _, _ := newTestService(t, backend)

	ctx := context.Background()
	count, fresh, err := svc.IndexStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.False(t, fresh, "nothing persisted yet")

	require.NoError(t, svc.RebuildIndex(ctx))

	count, fresh, err = svc.IndexStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.True(t, fresh)
}

func TestHandleTurn_NoBackendRegisteredFallsBack(t *testing.T) {
	corpus := &stubCorpus{entries: []domain.DialogueEntry{
		{ID: "pair_0", PromptText: "Hello", ResponseText: "Hello. What can I do for you?"},
	}}
	embedder := newStubEmbedder()
	embedder.vecs["Hello"] = []float32{1, 0, 0}

	svc := NewDialogueService(corpus, embedder, &stubIndex{}, NewBackendRegistry(), testPersona(), DialogueConfig{})

	reply, err := svc.HandleTurn(context.Background(), "Hello", "", "", domain.NewConversationState("s"))

	require.NoError(t, err)
	assert.Equal(t, "Hello. What can I do for you?", reply)
}

func TestDialogueConfig_Defaults(t *testing.T) {
	cfg := DialogueConfig{}.withDefaults()

	assert.Equal(t, DefaultTopK, cfg.TopK)
	assert.InDelta(t, DefaultMinScore, cfg.MinScore, 1e-9)
	assert.Equal(t, DefaultGenerateTimeout, cfg.GenerateTimeout)
}

func TestHandleTurn_ValidatorError(t *testing.T) {
	// Non-generation, non-empty errors must propagate; only generation
	// and empty-output errors are absorbed. Echo counts as empty.
	backend := &stubBackend{reply: "Hello"}
	svc, _, embedder, _ := newTestService(t, backend)
	embedder.vecs["Hello"] = []float32{1, 0, 0}

	reply, err := svc.HandleTurn(context.Background(), "Hello", "", "", domain.NewConversationState("s"))

	require.NoError(t, err)
	assert.Equal(t, "Hello. What can I do for you?", reply, "echoed output falls back to retrieval")
}

func TestHandleTurn_EndToEndWithPersistedIndex(t *testing.T) {
	corpus := &stubCorpus{entries: []domain.DialogueEntry{
		{ID: "pair_0", PromptText: "Hello", ResponseText: "Hello. What can I do for you?", Category: domain.CategoryExchange},
	}}
	embedder := localembed.NewEmbeddingService(0)
	index, err := sqliteindex.Open(t.TempDir())
	require.NoError(t, err)
	defer index.Close() //nolint:errcheck

	backend := &stubBackend{reply: "Evening, pal."}
	registry := NewBackendRegistry()
	registry.Register(backend)

	svc := NewDialogueService(corpus, embedder, index, registry, testPersona(), DialogueConfig{
		TopK:     3,
		MinScore: 0.02,
	})

	reply, err := svc.HandleTurn(context.Background(), "Hi there", "", "", domain.NewConversationState("s"))

	require.NoError(t, err)
	assert.Equal(t, "Evening, pal.", reply, "valid backend output passes through unchanged")
	assert.Contains(t, backend.lastPrompt, "Hello. What can I do for you?",
		"the paraphrased greeting retrieves the corpus exchange above a low threshold")
}

func TestHandleTurn_ConcurrentWithPersonaSwap(t *testing.T) {
	backend := &stubBackend{reply: "Evening, pal. Take a seat."}
	svc, _, embedder, _ := newTestService(t, backend)
	embedder.vecs["Hello there"] = []float32{1, 0, 0}

	other := &domain.PersonaProfile{
		Name:         "Ellie Perkins",
		Style:        "Practical secretary.",
		FallbackLine: "Nick's out on a case.",
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_, err := svc.HandleTurn(context.Background(), "Hello there", "", "", domain.NewConversationState("s"))
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			svc.SetPersona(other)
			svc.SetPersona(testPersona())
		}
	}()
	wg.Wait()
}

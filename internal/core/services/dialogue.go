package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driven"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driving"
	"github.com/wastelandworks/gumshoe/internal/logger"
)

// Ensure DialogueService implements the interface.
var _ driving.DialogueService = (*DialogueService)(nil)

// DefaultGenerateTimeout bounds a single backend call. Timeouts are
// mandatory; there is no retry inside the engine.
const DefaultGenerateTimeout = 30 * time.Second

// DialogueConfig tunes the engine pipeline.
type DialogueConfig struct {
	// TopK is the raw match count requested from the index.
	TopK int

	// MinScore filters retrieval results below this similarity.
	MinScore float64

	// GenerateTimeout bounds each backend call.
	GenerateTimeout time.Duration

	// Assembler bounds the assembled prompt.
	Assembler AssemblerConfig

	// MaxSentences caps validated replies.
	MaxSentences int
}

// withDefaults fills unset fields.
func (c DialogueConfig) withDefaults() DialogueConfig {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	if c.MinScore <= 0 {
		c.MinScore = DefaultMinScore
	}
	if c.GenerateTimeout <= 0 {
		c.GenerateTimeout = DefaultGenerateTimeout
	}
	return c
}

// DialogueService orchestrates the pipeline: ensure index, retrieve,
// assemble, generate, validate. It is the single place fallback policy
// is decided - internal components surface typed errors instead of
// substituting fake successes.
//
// Designed for single-conversation, single-request-at-a-time use: one
// request in flight per session, state mutated only by the caller after
// a request completes.
type DialogueService struct {
	corpus    driven.CorpusLoader
	embedder  driven.EmbeddingService
	index     driven.DialogueIndex
	registry  *BackendRegistry
	retriever *Retriever
	assembler *PromptAssembler
	validator *ResponseValidator
	cfg       DialogueConfig

	// persona is swapped live by the reload watcher while turns are
	// in flight on other goroutines; each turn snapshots it once.
	persona atomic.Pointer[domain.PersonaProfile]

	// buildMu makes index builds exclusive; entries caches the loaded
	// corpus so freshness checks do not reparse the source.
	buildMu sync.Mutex
	entries []domain.DialogueEntry
}

// NewDialogueService wires the pipeline.
func NewDialogueService(
	corpus driven.CorpusLoader,
	embedder driven.EmbeddingService,
	index driven.DialogueIndex,
	registry *BackendRegistry,
	persona *domain.PersonaProfile,
	cfg DialogueConfig,
) *DialogueService {
	cfg = cfg.withDefaults()
	s := &DialogueService{
		corpus:    corpus,
		embedder:  embedder,
		index:     index,
		registry:  registry,
		retriever: NewRetriever(embedder, index),
		assembler: NewPromptAssembler(cfg.Assembler),
		validator: NewResponseValidator(cfg.MaxSentences),
		cfg:       cfg,
	}
	s.persona.Store(persona)
	return s
}

// Persona returns the active character profile.
func (s *DialogueService) Persona() *domain.PersonaProfile {
	return s.persona.Load()
}

// SetPersona swaps the active profile (used for live persona reload).
// Safe to call while turns are in flight; a turn already started keeps
// the profile it snapshotted.
func (s *DialogueService) SetPersona(p *domain.PersonaProfile) {
	s.persona.Store(p)
}

// HandleTurn produces a validated in-character reply to userInput.
// Generation or validation failure triggers the deterministic fallback:
// the highest-scoring retrieved example matching the requested tags,
// else the persona fallback line. Only corpus and input errors
// propagate to the caller.
func (s *DialogueService) HandleTurn(ctx context.Context, userInput, contextTag, emotionTag string, state *domain.ConversationState) (string, error) {
	userInput = strings.TrimSpace(userInput)
	if userInput == "" {
		return "", fmt.Errorf("%w: empty user input", domain.ErrInvalidInput)
	}

	if err := s.ensureIndex(ctx); err != nil {
		if !errors.Is(err, domain.ErrIndexUnavailable) {
			return "", err
		}
		// No index is "empty retrieval", never a crash.
		logger.Warn("Index unavailable, continuing without retrieval: %v", err)
	}

	retrieval, err := s.retriever.Retrieve(ctx, userInput, s.cfg.TopK, s.cfg.MinScore)
	if err != nil {
		return "", err
	}

	persona := s.persona.Load()
	request := s.assembler.Assemble(userInput, contextTag, emotionTag, retrieval, state, persona)

	clean, err := s.generateAndValidate(ctx, request, userInput, persona)
	if err == nil {
		return clean, nil
	}
	if !errors.Is(err, domain.ErrGeneration) && !errors.Is(err, domain.ErrEmptyResponse) {
		return "", err
	}

	logger.Warn("Generation failed, applying deterministic fallback: %v", err)
	return fallbackLine(retrieval, contextTag, emotionTag, persona), nil
}

// generateAndValidate dispatches the request to the current backend
// under a mandatory timeout and validates the raw output. Pure
// dispatch: no backend-specific logic lives here.
func (s *DialogueService) generateAndValidate(ctx context.Context, request domain.GenerationRequest, userInput string, persona *domain.PersonaProfile) (string, error) {
	backend, err := s.registry.Current()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrGeneration, err)
	}

	logger.Section("Generation")
	logger.Debug("Backend: %s, max tokens: %d, temperature: %.2f",
		backend.Name(), request.MaxTokens, request.Temperature)

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	raw, err := backend.Generate(genCtx, request.Prompt, driven.GenerateOptions{
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
		StopWords:   []string{"\nUser:", "\nYou:"},
	})
	if err != nil {
		return "", fmt.Errorf("%w: backend %s: %v", domain.ErrGeneration, backend.Name(), err)
	}

	return s.validator.Validate(raw, persona.Name, userInput)
}

// fallbackLine implements the single fallback policy: the best
// retrieved example for the requested tags, else the persona default.
// Never an unconstrained random choice.
func fallbackLine(retrieval domain.RetrievalResult, contextTag, emotionTag string, persona *domain.PersonaProfile) string {
	if best, ok := retrieval.BestFor(contextTag, domain.Mood(strings.ToLower(emotionTag))); ok {
		logger.Debug("Fallback from corpus entry %s (score %.2f)", best.Entry.ID, best.Score)
		return best.Entry.ResponseText
	}
	logger.Debug("Fallback to persona default line")
	return persona.FallbackLine
}

// RebuildIndex forces a full re-embed of the corpus.
func (s *DialogueService) RebuildIndex(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	entries, err := s.loadCorpus(ctx)
	if err != nil {
		return err
	}
	return s.build(ctx, entries)
}

// IndexStatus reports the index entry count and freshness against the
// currently loaded corpus.
func (s *DialogueService) IndexStatus(ctx context.Context) (int, bool, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	entries, err := s.loadCorpus(ctx)
	if err != nil {
		return 0, false, err
	}
	count, err := s.index.Count(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	fresh := s.index.IsFresh(ctx, domain.Fingerprint(entries), s.embedder.ModelName())
	return count, fresh, nil
}

// ensureIndex lazily builds the index on first use when the persisted
// artifact is missing, corrupt, or keyed to a different corpus version.
// The build is exclusive and never interrupted to serve a partial view.
func (s *DialogueService) ensureIndex(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	entries, err := s.loadCorpus(ctx)
	if err != nil {
		return err
	}

	if s.index.IsFresh(ctx, domain.Fingerprint(entries), s.embedder.ModelName()) {
		return nil
	}

	logger.Info("Index stale or missing, rebuilding over %d entries", len(entries))
	return s.build(ctx, entries)
}

// loadCorpus parses the corpus once and caches the entries.
func (s *DialogueService) loadCorpus(ctx context.Context) ([]domain.DialogueEntry, error) {
	if s.entries != nil {
		return s.entries, nil
	}
	entries, err := s.corpus.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.entries = entries
	return entries, nil
}

// build embeds every entry and replaces the persisted index.
func (s *DialogueService) build(ctx context.Context, entries []domain.DialogueEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: corpus is empty", domain.ErrIndexUnavailable)
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.EmbeddingText()
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: embedding corpus: %v", domain.ErrIndexUnavailable, err)
	}

	if err := s.index.Build(ctx, entries, vectors, s.embedder.ModelName()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	logger.Info("Index built: %d entries, embedder %s", len(entries), s.embedder.ModelName())
	return nil
}

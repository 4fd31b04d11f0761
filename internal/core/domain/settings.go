package domain

import "fmt"

// BackendKind identifies a text generation provider.
type BackendKind string

// Available generation backends.
const (
	// BackendOllama is a local Ollama instance.
	BackendOllama BackendKind = "ollama"

	// BackendOpenAI is the OpenAI cloud API.
	BackendOpenAI BackendKind = "openai"

	// BackendAnthropic is the Anthropic cloud API.
	BackendAnthropic BackendKind = "anthropic"
)

// IsValid returns true if the backend kind is recognised.
func (b BackendKind) IsValid() bool {
	switch b {
	case BackendOllama, BackendOpenAI, BackendAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this backend needs an API key.
func (b BackendKind) RequiresAPIKey() bool {
	return b == BackendOpenAI || b == BackendAnthropic
}

// String returns the string representation.
func (b BackendKind) String() string {
	return string(b)
}

// EmbedderKind identifies an embedding provider.
type EmbedderKind string

// Available embedding providers.
const (
	// EmbedderLocal is the built-in deterministic embedder.
	EmbedderLocal EmbedderKind = "local"

	// EmbedderOllama is a local Ollama instance.
	EmbedderOllama EmbedderKind = "ollama"

	// EmbedderOpenAI is the OpenAI embeddings API.
	EmbedderOpenAI EmbedderKind = "openai"
)

// IsValid returns true if the embedder kind is recognised.
func (e EmbedderKind) IsValid() bool {
	switch e {
	case EmbedderLocal, EmbedderOllama, EmbedderOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (e EmbedderKind) String() string {
	return string(e)
}

// Settings is the persisted engine configuration. Field names double as
// the TOML keys in settings.toml.
type Settings struct {
	// CorpusPath locates the dialogue CSV export.
	CorpusPath string `toml:"corpus_path"`

	// DataDir holds the persisted index; empty selects the default
	// under the user home directory.
	DataDir string `toml:"data_dir"`

	// Backend selects the active generation provider.
	Backend BackendKind `toml:"backend"`

	// BackendModel overrides the provider's default model when set.
	BackendModel string `toml:"backend_model"`

	// BackendEndpoint overrides the provider's base URL when set.
	BackendEndpoint string `toml:"backend_endpoint"`

	// Embedder selects the embedding provider for index builds and
	// query vectors.
	Embedder EmbedderKind `toml:"embedder"`

	// EmbedderModel overrides the embedder's default model when set.
	EmbedderModel string `toml:"embedder_model"`

	// OpenAIKey and AnthropicKey authenticate the hosted providers.
	OpenAIKey    string `toml:"openai_api_key"`
	AnthropicKey string `toml:"anthropic_api_key"`

	// TopK is the raw match count requested from the index.
	TopK int `toml:"top_k"`

	// MinScore filters retrieval results below this similarity.
	MinScore float64 `toml:"min_score"`

	// MaxPromptChars bounds the assembled prompt.
	MaxPromptChars int `toml:"max_prompt_chars"`

	// MaxExamples caps retrieved examples in the prompt.
	MaxExamples int `toml:"max_examples"`

	// HistoryTurns caps conversation turns included in the prompt.
	HistoryTurns int `toml:"history_turns"`

	// MaxSentences caps validated replies.
	MaxSentences int `toml:"max_sentences"`

	// MaxTokens bounds each generation call.
	MaxTokens int `toml:"max_tokens"`

	// Temperature is the generation sampling temperature.
	Temperature float64 `toml:"temperature"`
}

// DefaultSettings returns the out-of-the-box configuration: local
// embedder, local Ollama backend, engine defaults.
func DefaultSettings() Settings {
	return Settings{
		CorpusPath:     "dialogue.csv",
		Backend:        BackendOllama,
		Embedder:       EmbedderLocal,
		TopK:           5,
		MinScore:       0.25,
		MaxPromptChars: 4000,
		MaxExamples:    3,
		HistoryTurns:   6,
		MaxSentences:   3,
		MaxTokens:      80,
		Temperature:    0.75,
	}
}

// Validate reports whether the settings are internally consistent.
func (s Settings) Validate() error {
	if !s.Backend.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}
	if !s.Embedder.IsValid() {
		return fmt.Errorf("unknown embedder %q", s.Embedder)
	}
	if s.Backend == BackendOpenAI && s.OpenAIKey == "" {
		return fmt.Errorf("backend %q requires an API key", s.Backend)
	}
	if s.Backend == BackendAnthropic && s.AnthropicKey == "" {
		return fmt.Errorf("backend %q requires an API key", s.Backend)
	}
	if s.Embedder == EmbedderOpenAI && s.OpenAIKey == "" {
		return fmt.Errorf("embedder %q requires an API key", s.Embedder)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", s.TopK)
	}
	if s.MinScore < 0 || s.MinScore > 1 {
		return fmt.Errorf("min_score must be in [0, 1], got %g", s.MinScore)
	}
	return nil
}

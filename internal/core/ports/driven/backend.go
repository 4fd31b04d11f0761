package driven

import "context"

// GenerationBackend is any component that can turn an assembled prompt
// into raw text. The engine is agnostic to which variant is active and
// never depends on a backend's authentication, rate limits, or cost
// model - those are the backend's concern.
//
// Implementations may include:
//   - Ollama (locally-hosted small model)
//   - OpenAI (hosted API model)
type GenerationBackend interface {
	// Generate produces raw text completion from a prompt.
	// Implementations must honour ctx cancellation; the dispatcher
	// applies a mandatory timeout through it.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Name returns the registry identifier for this backend.
	Name() string

	// Ping validates the backend is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

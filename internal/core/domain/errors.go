package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrCorpusFormat indicates the dialogue corpus is missing required
	// columns or is otherwise unreadable. Fatal at load time - no partial
	// corpus is ever accepted.
	ErrCorpusFormat = errors.New("corpus format invalid")

	// ErrIndexUnavailable indicates the embedding index could not be built
	// or opened. Recoverable - the retriever degrades to empty retrieval.
	ErrIndexUnavailable = errors.New("embedding index unavailable")

	// ErrGeneration indicates the active generation backend failed or
	// timed out. Recoverable - the dialogue service applies the
	// deterministic fallback policy.
	ErrGeneration = errors.New("generation failed")

	// ErrEmptyResponse indicates generated output was empty after
	// cleaning, or a pure echo of the input. Same fallback path as
	// ErrGeneration.
	ErrEmptyResponse = errors.New("empty or echoed response")

	// ErrUnknownBackend indicates a backend name is not registered.
	ErrUnknownBackend = errors.New("unknown generation backend")

	// ErrPersonaUnavailable indicates the persona profile could not be
	// loaded or failed validation.
	ErrPersonaUnavailable = errors.New("persona profile unavailable")

	// ErrInvalidInput indicates malformed or empty user input.
	ErrInvalidInput = errors.New("invalid input")
)

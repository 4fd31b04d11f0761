// Package domain defines the core business entities for Gumshoe.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - DialogueEntry: One line of corpus dialogue, optionally paired with
//     the utterance that provoked it
//   - PersonaProfile: The static character-voice configuration
//   - ConversationState: The bounded per-session turn history
//   - RetrievalResult: Scored corpus entries returned by the retriever
//   - GenerationRequest: A fully assembled, bounded generation prompt
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

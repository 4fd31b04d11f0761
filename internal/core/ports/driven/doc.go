// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CorpusLoader: Parses the raw dialogue corpus into typed entries
//   - EmbeddingService: Generates vector embeddings for corpus and queries
//   - DialogueIndex: Persists and searches embedding vectors
//   - PersonaStore: Loads the character profile
//   - GenerationBackend: Produces raw text from an assembled prompt
//
// # Degradation Rules
//
// The engine never crashes on a missing index: an unavailable
// DialogueIndex means retrieval returns empty results and the prompt
// assembler falls back to the persona's canonical examples. A failed
// GenerationBackend surfaces a typed error; fallback policy belongs to
// the dialogue service alone.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

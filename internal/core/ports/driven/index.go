package driven

import (
	"context"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
)

// DialogueIndex persists embedding vectors over the dialogue corpus so
// repeated process starts do not re-embed unchanged data.
//
// The index is keyed to the exact corpus version through a content
// fingerprint: consumers must treat any fingerprint mismatch as
// "stale, rebuild" - the index is never partially patched.
//
// Concurrency: Build is exclusive; Query calls may run concurrently
// with each other. A query never observes a partially built index.
type DialogueIndex interface {
	// Build replaces the index contents with one vector per entry.
	// vectors[i] belongs to entries[i]. The stored fingerprint,
	// embedder model name, and dimensions are recorded alongside.
	Build(ctx context.Context, entries []domain.DialogueEntry, vectors [][]float32, embedder string) error

	// IsFresh reports whether the persisted index matches the given
	// corpus fingerprint and embedder identity.
	IsFresh(ctx context.Context, fingerprint, embedder string) bool

	// Query returns the k nearest stored vectors by cosine similarity,
	// ties broken by original corpus order.
	Query(ctx context.Context, vector []float32, k int) ([]IndexHit, error)

	// Count returns the number of indexed entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// IndexHit is a similarity search result.
type IndexHit struct {
	// Entry is the matched corpus record.
	Entry domain.DialogueEntry

	// Similarity is the cosine similarity clamped to [0, 1].
	Similarity float64
}

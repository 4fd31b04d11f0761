package services

import (
	"context"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driven"
	"github.com/wastelandworks/gumshoe/internal/logger"
)

// Default retrieval parameters.
const (
	DefaultTopK     = 5
	DefaultMinScore = 0.25
)

// Retriever ranks and filters corpus entries by relevance to a query.
// It embeds the query with the same embedding function the index was
// built with and filters raw matches below a minimum score.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.DialogueIndex
}

// NewRetriever creates a retriever over an index and its embedder.
// Either may be nil; retrieval then degrades to empty results.
func NewRetriever(embedder driven.EmbeddingService, index driven.DialogueIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve returns up to k entries scoring at least minScore against
// queryText, descending by score. "No index" and "nothing relevant"
// are both empty results, never errors.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, k int, minScore float64) (domain.RetrievalResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", queryText)

	if k <= 0 {
		k = DefaultTopK
	}
	if r.embedder == nil || r.index == nil {
		logger.Warn("Retrieval degraded: embedder or index unavailable")
		return domain.RetrievalResult{}, nil
	}

	vector, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		logger.Warn("Query embedding failed, returning empty retrieval: %v", err)
		return domain.RetrievalResult{}, nil
	}

	hits, err := r.index.Query(ctx, vector, k)
	if err != nil {
		logger.Warn("Index query failed, returning empty retrieval: %v", err)
		return domain.RetrievalResult{}, nil
	}

	result := make(domain.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity < minScore {
			continue
		}
		result = append(result, domain.RetrievedExample{Entry: hit.Entry, Score: hit.Similarity})
	}

	logger.Debug("Raw hits: %d, above min score %.2f: %d", len(hits), minScore, len(result))
	return result, nil
}

// Package local provides a deterministic, dependency-free embedding
// service based on feature hashing. It trades semantic quality for
// zero setup: no model download, no network, identical vectors for
// identical text on every run. Suitable for offline use and tests;
// any fixed text-to-vector mapping with stable dimensionality
// satisfies the index contract.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/wastelandworks/gumshoe/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 256
	ModelName         = "feature-hash-v2"
)

// Feature weights. Words dominate; sub-word grams only break ties and
// give paraphrases a non-zero floor.
const (
	wordWeight     = 1.0
	wordPairWeight = 0.5
	charGramWeight = 0.25
)

// EmbeddingService hashes word unigrams, word bigrams and sub-word
// character n-grams into a fixed number of buckets and L2-normalises
// the result, so cosine similarity degrades to weighted token overlap.
// The character n-grams keep paraphrases with no shared words ("Hi
// there" against "Hello") at a small positive similarity instead of
// exactly zero.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a local embedder; dims <= 0 selects
// DefaultDimensions.
func NewEmbeddingService(dims int) *EmbeddingService {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dims}
}

// Embed generates a deterministic vector embedding for the given text.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)
	tokens := tokenise(text)

	for i, tok := range tokens {
		vec[s.bucket(tok)] += wordWeight
		if i+1 < len(tokens) {
			// Word pairs keep some word-order signal.
			vec[s.bucket(tok+" "+tokens[i+1])] += wordPairWeight
		}
		for _, gram := range charGrams(tok) {
			vec[s.bucket(gram)] += charGramWeight
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the fixed identifier for this mapping. Bumping the
// version invalidates persisted indexes built with the old mapping.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds; there is nothing to reach.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// bucket maps a token to a vector index via FNV-1a.
func (s *EmbeddingService) bucket(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token)) //nolint:errcheck // hash writes never fail
	return int(h.Sum32() % uint32(s.dimensions))
}

// tokenise lowercases and splits on anything that is not a letter or digit.
func tokenise(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// charGrams returns the character bigrams and trigrams of the token
// padded with boundary markers. The "c:" prefix keeps them in a
// separate hash namespace from whole words.
func charGrams(tok string) []string {
	runes := []rune("^" + tok + "$")
	grams := make([]string, 0, 2*len(runes))
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(runes); i++ {
			grams = append(grams, "c:"+string(runes[i:i+n]))
		}
	}
	return grams
}

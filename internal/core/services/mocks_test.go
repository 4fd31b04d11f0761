package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driven"
)

// stubCorpus returns a fixed entry set.
type stubCorpus struct {
	entries []domain.DialogueEntry
	err     error
	loads   int
}

func (c *stubCorpus) Load(context.Context) ([]domain.DialogueEntry, error) {
	c.loads++
	if c.err != nil {
		return nil, c.err
	}
	return c.entries, nil
}

// stubEmbedder maps known texts to fixed vectors. Unknown texts embed
// to the zero-adjacent default vector.
type stubEmbedder struct {
	vecs     map[string][]float32
	fallback []float32
	name     string
	err      error
}

func newStubEmbedder() *stubEmbedder {
	return &stubEmbedder{
		vecs:     make(map[string][]float32),
		fallback: []float32{0, 0, 1},
		name:     "stub-embedder",
	}
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vecs[text]; ok {
		return v, nil
	}
	return e.fallback, nil
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int          { return 3 }
func (e *stubEmbedder) ModelName() string        { return e.name }
func (e *stubEmbedder) Ping(context.Context) error { return nil }
func (e *stubEmbedder) Close() error             { return nil }

// stubIndex is an in-memory index with real cosine ranking, so service
// tests exercise the same build/query contract the persisted index
// honours.
type stubIndex struct {
	mu          sync.Mutex
	entries     []domain.DialogueEntry
	vectors     [][]float32
	fingerprint string
	embedder    string
	buildErr    error
	queryErr    error
	builds      int
}

func (x *stubIndex) Build(_ context.Context, entries []domain.DialogueEntry, vectors [][]float32, embedder string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.buildErr != nil {
		return x.buildErr
	}
	x.builds++
	x.entries = entries
	x.vectors = vectors
	x.fingerprint = domain.Fingerprint(entries)
	x.embedder = embedder
	return nil
}

func (x *stubIndex) IsFresh(_ context.Context, fingerprint, embedder string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.fingerprint == fingerprint && x.embedder == embedder
}

func (x *stubIndex) Count(context.Context) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.entries), nil
}

func (x *stubIndex) Query(_ context.Context, vector []float32, k int) ([]driven.IndexHit, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.queryErr != nil {
		return nil, x.queryErr
	}
	hits := make([]driven.IndexHit, 0, len(x.entries))
	for i, e := range x.entries {
		hits = append(hits, driven.IndexHit{Entry: e, Similarity: cosine(vector, x.vectors[i])})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (x *stubIndex) Close() error { return nil }

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	c := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if c < 0 {
		return 0
	}
	return c
}

// stubBackend returns a canned reply and records the prompt it saw.
type stubBackend struct {
	mu         sync.Mutex
	name       string
	reply      string
	err        error
	lastPrompt string
	lastOpts   driven.GenerateOptions
	calls      int
}

func (b *stubBackend) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.lastPrompt = prompt
	b.lastOpts = opts
	if b.err != nil {
		return "", b.err
	}
	return b.reply, nil
}

func (b *stubBackend) Name() string {
	if b.name == "" {
		return "stub"
	}
	return b.name
}

func (b *stubBackend) Ping(context.Context) error { return nil }
func (b *stubBackend) Close() error               { return nil }

var errBackendDown = errors.New("backend down")

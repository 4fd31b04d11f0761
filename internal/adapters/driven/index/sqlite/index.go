// Package sqlite persists the dialogue embedding index in a single
// SQLite file so repeated process starts do not re-embed unchanged data.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/wastelandworks/gumshoe/internal/core/domain"
	"github.com/wastelandworks/gumshoe/internal/core/ports/driven"
	"github.com/wastelandworks/gumshoe/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.DialogueIndex = (*Index)(nil)

// schema holds one metadata row plus one row per indexed entry.
// The vector column stores float32 values little-endian.
const schema = `
CREATE TABLE IF NOT EXISTS index_meta (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	fingerprint TEXT NOT NULL,
	embedder TEXT NOT NULL,
	dims INTEGER NOT NULL,
	built_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS entries (
	pos INTEGER PRIMARY KEY,
	id TEXT NOT NULL,
	prompt TEXT NOT NULL,
	response TEXT NOT NULL,
	mood TEXT NOT NULL,
	scene TEXT NOT NULL,
	category TEXT NOT NULL,
	vector BLOB NOT NULL
);
`

// Index is the persisted embedding index. Build is exclusive; queries
// may run concurrently with each other and never observe a partially
// built view.
type Index struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// Open creates or opens the index database at dataDir. If dataDir is
// empty, defaults to ~/.gumshoe/data/index.db. A corrupt existing file
// is discarded: the index falls back to an empty, stale state and the
// caller's freshness check triggers a rebuild from source entries.
func Open(dataDir string) (*Index, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".gumshoe", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "index.db")

	db, err := openAndMigrate(dbPath)
	if err != nil {
		// Corrupt or unreadable artifact: discard and start empty.
		logger.Warn("Persisted index unusable (%v), discarding %s", err, dbPath)
		if rmErr := os.Remove(dbPath); rmErr != nil {
			return nil, fmt.Errorf("removing corrupt index: %w", rmErr)
		}
		db, err = openAndMigrate(dbPath)
		if err != nil {
			return nil, fmt.Errorf("recreating index: %w", err)
		}
	}

	return &Index{db: db, path: dbPath}, nil
}

// openAndMigrate opens the database and applies the schema.
func openAndMigrate(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

// Path returns the database file path.
func (x *Index) Path() string {
	return x.path
}

// Build replaces the index contents in one transaction. vectors[i]
// belongs to entries[i]; all vectors must share one dimensionality.
func (x *Index) Build(ctx context.Context, entries []domain.DialogueEntry, vectors [][]float32, embedder string) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries to index", domain.ErrIndexUnavailable)
	}
	if len(entries) != len(vectors) {
		return fmt.Errorf("%w: %d entries but %d vectors", domain.ErrIndexUnavailable, len(entries), len(vectors))
	}
	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dims {
			return fmt.Errorf("%w: vector %d has %d dims, want %d", domain.ErrIndexUnavailable, i, len(v), dims)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin build transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return fmt.Errorf("clearing metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (pos, id, prompt, response, mood, scene, category, vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, i, e.ID, e.PromptText, e.ResponseText,
			string(e.Mood), e.SceneTag, string(e.Category), float32SliceToBytes(vectors[i])); err != nil {
			return fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO index_meta (id, fingerprint, embedder, dims) VALUES (1, ?, ?, ?)",
		domain.Fingerprint(entries), embedder, dims); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing build: %w", err)
	}
	return nil
}

// IsFresh reports whether the persisted index matches the corpus
// fingerprint and embedder identity. Any mismatch means stale, rebuild.
func (x *Index) IsFresh(ctx context.Context, fingerprint, embedder string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var storedFingerprint, storedEmbedder string
	err := x.db.QueryRowContext(ctx,
		"SELECT fingerprint, embedder FROM index_meta WHERE id = 1").
		Scan(&storedFingerprint, &storedEmbedder)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		logger.Warn("Reading index metadata failed, treating as stale: %v", err)
		return false
	}
	return storedFingerprint == fingerprint && storedEmbedder == embedder
}

// Count returns the number of indexed entries.
func (x *Index) Count(ctx context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var count int
	if err := x.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return count, nil
}

// Query returns the k nearest stored vectors by cosine similarity,
// clamped to [0, 1], ties broken by original corpus position.
func (x *Index) Query(ctx context.Context, vector []float32, k int) ([]driven.IndexHit, error) {
	if k <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	rows, err := x.db.QueryContext(ctx,
		"SELECT pos, id, prompt, response, mood, scene, category, vector FROM entries ORDER BY pos")
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	type scored struct {
		hit driven.IndexHit
		pos int
	}
	var candidates []scored

	for rows.Next() {
		var pos int
		var id, prompt, response, mood, scene, cat string
		var blob []byte
		if err := rows.Scan(&pos, &id, &prompt, &response, &mood, &scene, &cat, &blob); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		candidates = append(candidates, scored{
			pos: pos,
			hit: driven.IndexHit{
				Entry: domain.DialogueEntry{
					ID:           id,
					PromptText:   prompt,
					ResponseText: response,
					Mood:         domain.Mood(mood),
					SceneTag:     scene,
					Category:     domain.Category(cat),
				},
				Similarity: cosineSimilarity(vector, bytesToFloat32Slice(blob)),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].hit.Similarity != candidates[j].hit.Similarity {
			return candidates[i].hit.Similarity > candidates[j].hit.Similarity
		}
		return candidates[i].pos < candidates[j].pos
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	hits := make([]driven.IndexHit, len(candidates))
	for i, c := range candidates {
		hits[i] = c.hit
	}
	return hits, nil
}

// cosineSimilarity computes the cosine of two vectors, clamped to
// [0, 1]: identical direction scores 1, anti-correlated scores 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

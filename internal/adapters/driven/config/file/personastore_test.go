package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wastelandworks/gumshoe/internal/core/domain"
)

func TestPersonaStore_CreatesDefaultOnFirstLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPersonaStore(dir)
	require.NoError(t, err)

	profile, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "Nick Valentine", profile.Name)
	assert.NoError(t, profile.Validate())
	assert.NotEmpty(t, profile.Tones["casual"])
	assert.NotEmpty(t, profile.FallbackLine)

	_, err = os.Stat(filepath.Join(dir, "persona.toml"))
	assert.NoError(t, err, "default profile is written to disk")
}

func TestPersonaStore_LazyConstruction(t *testing.T) {
	dir := t.TempDir()
	_, err := NewPersonaStore(dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "persona.toml"))
	assert.True(t, os.IsNotExist(err), "constructor must not touch the filesystem")
}

func TestPersonaStore_LoadCachesUntilReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPersonaStore(dir)
	require.NoError(t, err)

	first, err := store.Load()
	require.NoError(t, err)

	custom := `name = "Ellie Perkins"
style = "Practical, loyal office assistant."
examples = ["The agency's still standing, somehow."]
fallback_line = "Let me check the files."

[tones]
casual = "Friendly and direct."
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "persona.toml"), []byte(custom), 0600))

	cached, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, first.Name, cached.Name, "load returns the cached profile")

	store.Reload()
	fresh, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Ellie Perkins", fresh.Name)
	assert.Equal(t, "Let me check the files.", fresh.FallbackLine)
}

func TestPersonaStore_InvalidProfileRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "persona.toml"),
		[]byte("name = \"\"\nstyle = \"\"\n"), 0600))

	store, err := NewPersonaStore(dir)
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, domain.ErrPersonaUnavailable)
}

func TestPersonaStore_MalformedTOMLRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "persona.toml"),
		[]byte("name = = broken"), 0600))

	store, err := NewPersonaStore(dir)
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, domain.ErrPersonaUnavailable)
}

func TestPersonaStore_WatchDetectsRewrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPersonaStore(dir)
	require.NoError(t, err)

	_, err = store.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	require.NoError(t, store.Watch(ctx, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}))

	custom := `name = "Ellie Perkins"
style = "Practical, loyal office assistant."
examples = ["Still standing."]
fallback_line = "Let me check the files."
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "persona.toml"), []byte(custom), 0600))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the rewrite")
	}

	fresh, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Ellie Perkins", fresh.Name, "watch invalidates the cache before the callback")
}

package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "Hello. What can I do for you?")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "Hello. What can I do for you?")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbed_UnitNorm(t *testing.T) {
	svc := NewEmbeddingService(0)

	vec, err := svc.Embed(context.Background(), "a dame walked into my office")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestEmbed_SelfSimilarityIsOne(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "Who hired you?")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "Who hired you?")
	require.NoError(t, err)

	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	assert.InDelta(t, 1.0, dot, 1e-5)
}

func TestEmbed_SharedTokensScoreHigherThanDisjoint(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	query, err := svc.Embed(ctx, "who hired you for the case")
	require.NoError(t, err)
	related, err := svc.Embed(ctx, "who hired you")
	require.NoError(t, err)
	unrelated, err := svc.Embed(ctx, "synth prototype junk pile")
	require.NoError(t, err)

	dot := func(a, b []float32) float64 {
		var d float64
		for i := range a {
			d += float64(a[i]) * float64(b[i])
		}
		return d
	}

	assert.Greater(t, dot(query, related), dot(query, unrelated))
}

func TestEmbed_CaseAndPunctuationInsensitive(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "Hello, pal!")
	require.NoError(t, err)
	b, err := svc.Embed(ctx, "hello pal")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	svc := NewEmbeddingService(0)

	vec, err := svc.Embed(context.Background(), "")
	require.NoError(t, err)

	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	texts := []string{"first line", "second line", "third line"}
	batch, err := svc.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for i, text := range texts {
		single, err := svc.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

func TestDimensions(t *testing.T) {
	assert.Equal(t, DefaultDimensions, NewEmbeddingService(0).Dimensions())
	assert.Equal(t, 64, NewEmbeddingService(64).Dimensions())
}

func TestModelName_Stable(t *testing.T) {
	assert.Equal(t, ModelName, NewEmbeddingService(0).ModelName())
}

func TestPing_AlwaysSucceeds(t *testing.T) {
	assert.NoError(t, NewEmbeddingService(0).Ping(context.Background()))
}

func TestEmbed_ParaphraseScoresAboveZero(t *testing.T) {
	svc := NewEmbeddingService(0)
	ctx := context.Background()

	greeting, err := svc.Embed(ctx, "Hello")
	require.NoError(t, err)
	paraphrase, err := svc.Embed(ctx, "Hi there")
	require.NoError(t, err)

	// Vectors are unit length, so the dot product is the cosine.
	var dot float64
	for i := range greeting {
		dot += float64(greeting[i]) * float64(paraphrase[i])
	}
	assert.Greater(t, dot, 0.0,
		"paraphrases with no shared words must not score exactly zero")
}

package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshavrajbux/AgentTube/pkg/repository"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical direction", a: []float32{1, 0, 0}, b: []float32{1, 0, 0}, want: 0},
		{name: "scaled copy", a: []float32{1, 2, 3}, b: []float32{2, 4, 6}, want: 0},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 1},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: 2},
		{name: "mismatched lengths", a: []float32{1, 0}, b: []float32{1, 0, 0}, want: 2},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 2},
		{name: "both empty", a: nil, b: nil, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, repository.CosineDistance(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNearest_OrdersByDistance(t *testing.T) {
	pool := []*repository.Content{
		{ID: "far", Embedding: []float32{0, 1}},
		{ID: "near", Embedding: []float32{1, 0.1}},
		{ID: "exact", Embedding: []float32{1, 0}},
	}

	results := repository.Nearest(pool, []float32{1, 0}, 0)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].ID)
	assert.Equal(t, "near", results[1].ID)
	assert.Equal(t, "far", results[2].ID)

	// Distance is populated on every result, exact matches included.
	for i, result := range results {
		require.NotNil(t, result.Distance)
		if i > 0 {
			assert.LessOrEqual(t, *results[i-1].Distance, *result.Distance)
		}
	}
	assert.InDelta(t, 0, *results[0].Distance, 1e-9)
}

func TestNearest_SkipsMissingEmbeddings(t *testing.T) {
	pool := []*repository.Content{
		{ID: "blank"},
		{ID: "embedded", Embedding: []float32{1, 0}},
	}

	results := repository.Nearest(pool, []float32{1, 0}, 0)
	require.Len(t, results, 1)
	assert.Equal(t, "embedded", results[0].ID)
}

func TestNearest_TiesKeepInsertionOrder(t *testing.T) {
	pool := []*repository.Content{
		{ID: "first", Embedding: []float32{1, 0}},
		{ID: "second", Embedding: []float32{2, 0}},
		{ID: "third", Embedding: []float32{3, 0}},
	}

	results := repository.Nearest(pool, []float32{1, 0}, 0)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].ID)
	assert.Equal(t, "second", results[1].ID)
	assert.Equal(t, "third", results[2].ID)
}

func TestNearest_TruncatesToK(t *testing.T) {
	pool := []*repository.Content{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0.9, 0.1}},
		{ID: "c", Embedding: []float32{0, 1}},
	}

	results := repository.Nearest(pool, []float32{1, 0}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)

	results = repository.Nearest(pool, []float32{1, 0}, 10)
	assert.Len(t, results, 3)
}

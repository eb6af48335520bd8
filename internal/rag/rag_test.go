package rag

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.5, 0.5, 0.5},
		{-3, 2, 7, 0.1},
	}
	for _, v := range vectors {
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 2}, []float32{-1, -2}), 1e-9)
}

func TestCosineSimilarity_ZeroVectorIsNaN(t *testing.T) {
	assert.True(t, math.IsNaN(CosineSimilarity([]float32{0, 0}, []float32{1, 1})))
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: 1, Vector: []float32{0, 1}},   // orthogonal
		{ID: 2, Vector: []float32{1, 0}},   // identical
		{ID: 3, Vector: []float32{1, 1}},   // 45 degrees
		{ID: 4, Vector: []float32{-1, 0}},  // opposite
	}

	ranked := Rank(query, candidates, 10)
	require.Len(t, ranked, 4)
	assert.Equal(t, uint(2), ranked[0].ID)
	assert.Equal(t, uint(3), ranked[1].ID)
	assert.Equal(t, uint(1), ranked[2].ID)
	assert.Equal(t, uint(4), ranked[3].ID)
}

func TestRank_RespectsTopK(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: 1, Vector: []float32{1, 0}},
		{ID: 2, Vector: []float32{1, 1}},
		{ID: 3, Vector: []float32{0, 1}},
	}

	ranked := Rank(query, candidates, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, uint(1), ranked[0].ID)
}

func TestRank_SkipsCandidatesWithoutVector(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: 1},
		{ID: 2, Vector: []float32{1, 0}},
		{ID: 3, Vector: nil},
	}

	ranked := Rank(query, candidates, 5)
	require.Len(t, ranked, 1)
	assert.Equal(t, uint(2), ranked[0].ID)
}

func TestRank_SkipsDimensionMismatch(t *testing.T) {
	query := []float32{1, 0, 0}
	candidates := []Candidate{
		{ID: 1, Vector: []float32{1, 0}},
		{ID: 2, Vector: []float32{1, 0, 0}},
	}

	ranked := Rank(query, candidates, 5)
	require.Len(t, ranked, 1)
	assert.Equal(t, uint(2), ranked[0].ID)
}

func TestRank_SkipsZeroVectors(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: 1, Vector: []float32{0, 0}},
		{ID: 2, Vector: []float32{0.1, 0.2}},
	}

	ranked := Rank(query, candidates, 5)
	require.Len(t, ranked, 1)
	assert.Equal(t, uint(2), ranked[0].ID)
}

func TestRank_EmptyInputs(t *testing.T) {
	assert.Empty(t, Rank([]float32{1, 0}, nil, 3))
	assert.Empty(t, Rank([]float32{1, 0}, []Candidate{{ID: 1, Vector: []float32{1, 0}}}, 0))
	assert.Empty(t, Rank([]float32{1, 0}, []Candidate{{ID: 1, Vector: []float32{1, 0}}}, -1))
	assert.Empty(t, Rank(nil, []Candidate{{ID: 1, Vector: []float32{1, 0}}}, 3))
}

func TestRank_TiesKeepCorpusOrder(t *testing.T) {
	query := []float32{1, 0}
	// Same angle to the query, different magnitudes: identical scores.
	candidates := []Candidate{
		{ID: 7, Vector: []float32{2, 0}},
		{ID: 8, Vector: []float32{1, 0}},
		{ID: 9, Vector: []float32{4, 0}},
	}

	ranked := Rank(query, candidates, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, []uint{7, 8, 9}, []uint{ranked[0].ID, ranked[1].ID, ranked[2].ID})
}

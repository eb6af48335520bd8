// Package rag holds the pure retrieval primitives: cosine similarity over
// fixed-dimension embeddings and top-K ranking of corpus candidates.
package rag

import (
	"math"
	"sort"
)

// Candidate pairs a corpus item ID with its embedding vector. A nil or
// mismatched vector disqualifies the candidate from ranking.
type Candidate struct {
	ID     uint
	Vector []float32
}

// Scored is a ranked candidate.
type Scored struct {
	ID    uint
	Score float64
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|) in [-1, 1]. The result is NaN
// when either vector has zero magnitude; callers exclude such pairs.
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every qualifying candidate against the query vector and returns
// at most topK results, best first. Candidates without a vector, with a vector
// of a different dimension, or scoring NaN are skipped. Ties keep the
// candidates' original order, so identical inputs rank identically.
func Rank(query []float32, candidates []Candidate, topK int) []Scored {
	if topK <= 0 || len(query) == 0 {
		return nil
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) != len(query) {
			continue
		}
		score := CosineSimilarity(query, c.Vector)
		if math.IsNaN(score) {
			continue
		}
		scored = append(scored, Scored{ID: c.ID, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

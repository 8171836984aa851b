package repository

import (
	"math"
	"sort"
)

// CosineDistance returns the cosine distance between two vectors.
//
// The result is 1 - cosine similarity, so it falls in [0, 2] where 0 means
// identical direction. Mismatched lengths and zero vectors yield the maximum
// distance, keeping such candidates at the end of any nearest ordering.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 2
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// Nearest returns up to k candidates from pool ordered by ascending cosine
// distance to the query vector, with each result's Distance populated.
//
// Candidates without an embedding are skipped. Distance ties keep the pool's
// natural order, so results are deterministic for fixed inputs. Backends
// without native vector search (SQLite, MySQL) build their nearest queries
// on this helper.
func Nearest(pool []*Content, query []float32, k int) []*Content {
	results := make([]*Content, 0, len(pool))
	for _, candidate := range pool {
		if candidate.Embedding == nil {
			continue
		}
		distance := CosineDistance(query, candidate.Embedding)
		candidate.Distance = &distance
		results = append(results, candidate)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].Distance < *results[j].Distance
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}

	return results
}

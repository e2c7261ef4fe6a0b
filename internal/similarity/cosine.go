package similarity

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// CosineSimilarity calculates the cosine similarity between two profile
// vectors. Returns 0 for mismatched or zero-magnitude vectors.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	dot := floats.Dot(a, b)
	magA := math.Sqrt(floats.Dot(a, a))
	magB := math.Sqrt(floats.Dot(b, b))
	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (magA * magB)
}

// SimilarPair represents two profiles with their similarity score.
type SimilarPair struct {
	Idx1       int
	Idx2       int
	Similarity float64
}

// DefaultThreshold is the minimum similarity reported by
// FindSimilarPairs when no threshold is given.
const DefaultThreshold = 0.6

// FindSimilarPairs finds all profile pairs with similarity at or above
// the threshold. Only the upper triangle is examined, so each unordered
// pair appears once. Results sort by similarity descending with index
// tie-breaks for deterministic output.
func FindSimilarPairs(profiles [][]float64, threshold float64) []SimilarPair {
	if len(profiles) == 0 {
		return []SimilarPair{}
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	var pairs []SimilarPair
	for i := 0; i < len(profiles); i++ {
		for j := i + 1; j < len(profiles); j++ {
			sim := CosineSimilarity(profiles[i], profiles[j])
			if sim >= threshold {
				pairs = append(pairs, SimilarPair{Idx1: i, Idx2: j, Similarity: sim})
			}
		}
	}

	sort.Slice(pairs, func(a, b int) bool {
		if pairs[a].Similarity != pairs[b].Similarity {
			return pairs[a].Similarity > pairs[b].Similarity
		}
		if pairs[a].Idx1 != pairs[b].Idx1 {
			return pairs[a].Idx1 < pairs[b].Idx1
		}
		return pairs[a].Idx2 < pairs[b].Idx2
	})

	return pairs
}

package similarity

import (
	"math"
	"sort"
)

const (
	// RelevanceThreshold is the minimum cosine similarity a candidate must
	// exceed to count as relevant.
	RelevanceThreshold = 0.3

	// TopK is the maximum number of ranked candidates returned.
	TopK = 3
)

// Candidate pairs an identifier with its stored embedding vector.
type Candidate struct {
	ID     string
	Vector []float32
}

// Match is a candidate that survived thresholding, with its score.
type Match struct {
	ID    string
	Score float64
}

// Cosine computes cosine similarity between two vectors. Vectors of different
// lengths and vectors with zero magnitude score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
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

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores each candidate against the query vector, keeps those strictly
// above threshold, sorts descending by score (ties keep input order), and
// truncates to at most topK results.
func Rank(query []float32, candidates []Candidate, threshold float64, topK int) []Match {
	var matches []Match
	for _, c := range candidates {
		score := Cosine(query, c.Vector)
		if score > threshold {
			matches = append(matches, Match{ID: c.ID, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK >= 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

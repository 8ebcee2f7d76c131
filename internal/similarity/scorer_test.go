package similarity

import (
	"math"
	"testing"
)

// TestCosine_SelfSimilarity verifies sim(v, v) == 1 within floating tolerance.
func TestCosine_SelfSimilarity(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}
	got := Cosine(v, v)
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("Expected self-similarity 1.0, got %v", got)
	}
}

// TestCosine_Symmetric verifies sim(a, b) == sim(b, a).
func TestCosine_Symmetric(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-2, 0.5, 7}
	if Cosine(a, b) != Cosine(b, a) {
		t.Errorf("Cosine not symmetric: %v vs %v", Cosine(a, b), Cosine(b, a))
	}
}

// TestCosine_ZeroVector verifies zero-magnitude vectors score 0, not NaN.
func TestCosine_ZeroVector(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}
	if got := Cosine(zero, v); got != 0 {
		t.Errorf("Expected 0 for zero vector, got %v", got)
	}
	if got := Cosine(v, zero); got != 0 {
		t.Errorf("Expected 0 for zero vector, got %v", got)
	}
	if got := Cosine(zero, zero); got != 0 {
		t.Errorf("Expected 0 for two zero vectors, got %v", got)
	}
}

// TestCosine_DimensionMismatch verifies mismatched lengths score 0.
func TestCosine_DimensionMismatch(t *testing.T) {
	if got := Cosine([]float32{1, 2}, []float32{1, 2, 3}); got != 0 {
		t.Errorf("Expected 0 for mismatched dimensions, got %v", got)
	}
}

// TestCosine_OppositeVectors verifies antiparallel vectors score -1.
func TestCosine_OppositeVectors(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{-1, 0}
	if got := Cosine(a, b); math.Abs(got+1.0) > 1e-9 {
		t.Errorf("Expected -1.0, got %v", got)
	}
}

// TestRank_ThresholdAndTopK verifies the threshold is strict and no more than
// topK results come back, in descending score order.
func TestRank_ThresholdAndTopK(t *testing.T) {
	query := []float32{1, 0, 0}
	candidates := []Candidate{
		{ID: "exact", Vector: []float32{2, 0, 0}},       // score 1.0
		{ID: "close", Vector: []float32{1, 0.5, 0}},     // ~0.894
		{ID: "mid", Vector: []float32{1, 1, 1}},         // ~0.577
		{ID: "weak", Vector: []float32{1, 2, 2}},        // ~0.333
		{ID: "orthogonal", Vector: []float32{0, 1, 0}},  // 0
		{ID: "opposite", Vector: []float32{-1, 0, 0}},   // -1
	}

	matches := Rank(query, candidates, RelevanceThreshold, TopK)

	if len(matches) > TopK {
		t.Fatalf("Expected at most %d matches, got %d", TopK, len(matches))
	}
	for i, m := range matches {
		if m.Score <= RelevanceThreshold {
			t.Errorf("Match %d score %v not above threshold", i, m.Score)
		}
		if i > 0 && matches[i-1].Score < m.Score {
			t.Errorf("Matches not sorted descending at %d", i)
		}
	}
	if matches[0].ID != "exact" || matches[1].ID != "close" || matches[2].ID != "mid" {
		t.Errorf("Unexpected ranking: %+v", matches)
	}
}

// TestRank_ExactThresholdExcluded verifies a score equal to the threshold is
// filtered out.
func TestRank_ExactThresholdExcluded(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: "at-threshold", Vector: []float32{0.3, float32(math.Sqrt(1 - 0.09))}}, // score 0.3
	}

	matches := Rank(query, candidates, 0.3, TopK)
	for _, m := range matches {
		if m.Score <= 0.3 {
			t.Errorf("Score %v at or below threshold survived: %+v", m.Score, m)
		}
	}
}

// TestRank_StableTies verifies equal scores keep input order.
func TestRank_StableTies(t *testing.T) {
	query := []float32{1, 0}
	candidates := []Candidate{
		{ID: "first", Vector: []float32{2, 0}},
		{ID: "second", Vector: []float32{3, 0}},
		{ID: "third", Vector: []float32{0.5, 0}},
	}

	matches := Rank(query, candidates, 0.3, 3)
	if len(matches) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(matches))
	}
	want := []string{"first", "second", "third"}
	for i, id := range want {
		if matches[i].ID != id {
			t.Errorf("Position %d: expected %q, got %q", i, id, matches[i].ID)
		}
	}
}

// TestRank_NoCandidates verifies an empty candidate set yields no matches.
func TestRank_NoCandidates(t *testing.T) {
	if matches := Rank([]float32{1}, nil, RelevanceThreshold, TopK); len(matches) != 0 {
		t.Errorf("Expected no matches, got %d", len(matches))
	}
}

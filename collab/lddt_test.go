package collab

import "testing"

func TestLDDTScorePerfectMatch(t *testing.T) {
	coords := [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	got := DefaultLDDTScorer.Score(coords, coords)
	if got != 1 {
		t.Fatalf("identical structures should score 1.0 LDDT, got %f", got)
	}
}

func TestLDDTScoreDegradesWithDisplacement(t *testing.T) {
	reference := [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}
	candidate := [][3]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {10, 0, 0}}
	got := DefaultLDDTScorer.Score(reference, candidate)
	if got <= 0 || got >= 1 {
		t.Fatalf("expected a partial score in (0,1), got %f", got)
	}
}

func TestLDDTScoreTooFewColumns(t *testing.T) {
	if got := DefaultLDDTScorer.Score([][3]float64{{0, 0, 0}}, [][3]float64{{0, 0, 0}}); got != 0 {
		t.Fatalf("expected 0 for a single-column comparison, got %f", got)
	}
}

package collab

import "testing"

func TestLocalAlignerFindsDiagonalMatch(t *testing.T) {
	scores := [][]int32{
		{5, -5, -5},
		{-5, 5, -5},
		{-5, -5, 5},
	}
	res := LocalAligner{}.Align(scores, -10, -1)
	if res.Score != 15 {
		t.Fatalf("Score = %d, want 15", res.Score)
	}
	if res.Backtrace != "MMM" {
		t.Fatalf("Backtrace = %q, want MMM", res.Backtrace)
	}
	if res.QStart != 0 || res.QEnd != 3 || res.DBStart != 0 || res.DBEnd != 3 {
		t.Fatalf("unexpected span: %+v", res)
	}
}

func TestLocalAlignerEmptyOnAllNegative(t *testing.T) {
	scores := [][]int32{{-1, -2}, {-3, -4}}
	res := LocalAligner{}.Align(scores, -10, -1)
	if !res.Empty() {
		t.Fatalf("expected empty result for all-negative matrix, got %+v", res)
	}
}

func TestLocalAlignerOpensGapAcrossMismatch(t *testing.T) {
	// A gap in the middle is cheaper than forcing a mismatch through it.
	scores := [][]int32{
		{10, -100, -100},
		{-100, -100, 10},
	}
	res := LocalAligner{}.Align(scores, -2, -1)
	if res.Score <= 0 {
		t.Fatalf("expected a positive local alignment score, got %d", res.Score)
	}
}

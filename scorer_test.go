package foldalign

import (
	"testing"

	"github.com/ndaniels/foldalign/subst"
)

// fakeAligner is a minimal DPAligner double: it reports the full extent of
// the score matrix as one run of matches, which is enough to exercise
// GappedAlign's matrix construction without depending on a real DP kernel.
type fakeAligner struct{ lastScores [][]int32 }

func (f *fakeAligner) Align(scores [][]int32, gapOpen, gapExtend int32) AlignResult {
	f.lastScores = scores
	n := len(scores)
	var total int32
	for i := 0; i < n && i < len(scores[0]); i++ {
		total += scores[i][i]
	}
	return AlignResult{QStart: 0, QEnd: n, DBStart: 0, DBEnd: len(scores[0]), Backtrace: bt(n), Score: total}
}

func bt(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'M'
	}
	return string(b)
}

func TestUngappedScoreIdenticalSequences(t *testing.T) {
	sc := NewScorer(&fakeAligner{})
	aa := []byte("ACDEFGHIKL")
	tdi := []byte("ACDEFGHIKL")
	q := RawOperandOf(aa, tdi)
	got := sc.UngappedScore(q, aa, tdi)
	if got <= 0 {
		t.Fatalf("expected positive self-score, got %d", got)
	}
	// Identical sequences aligned at offset 0 should be the best diagonal.
	var wantSum int32
	for i := range aa {
		wantSum += sc.MatAA.Score(subst.AAAlphabet, aa[i], aa[i]) + sc.Mat3Di.Score(subst.TDIAlphabet, tdi[i], tdi[i])
	}
	if got != wantSum {
		t.Fatalf("UngappedScore = %d, want %d (best diagonal is offset 0)", got, wantSum)
	}
}

func TestGappedAlignBuildsCombinedMatrix(t *testing.T) {
	fa := &fakeAligner{}
	sc := NewScorer(fa)
	q := RawOperandOf([]byte("ACDE"), []byte("ACDE"))
	tgt := RawOperandOf([]byte("ACDF"), []byte("ACDF"))
	res := sc.GappedAlign(q, tgt, -10, -1)
	if len(fa.lastScores) != 4 || len(fa.lastScores[0]) != 4 {
		t.Fatalf("expected a 4x4 combined matrix, got %dx%d", len(fa.lastScores), len(fa.lastScores[0]))
	}
	if res.QEnd != 4 || res.DBEnd != 4 {
		t.Fatalf("unexpected alignment span: %+v", res)
	}
}

func TestGappedAlignProfileQuery(t *testing.T) {
	fa := &fakeAligner{}
	sc := NewScorer(fa)
	// Scores rows are indexed by alphabet position, so each row spans the
	// whole alphabet: +5 for the consensus letter, -5 for every other one.
	pssmFor := func(alpha *subst.Alphabet) *PSSM {
		p := &PSSM{Consensus: []byte{'A', 'C'}, Neff: []float64{1, 1}}
		for _, c := range p.Consensus {
			row := make([]int32, alpha.Size())
			for k := range row {
				row[k] = -5
			}
			row[alpha.Index(c)] = 5
			p.Scores = append(p.Scores, row)
		}
		return p
	}
	q := ProfileOperandOf(pssmFor(subst.AAAlphabet), pssmFor(subst.TDIAlphabet))
	tgt := RawOperandOf([]byte("AC"), []byte("AC"))
	res := sc.GappedAlign(q, tgt, -10, -1)
	if res.Score == 0 {
		t.Fatalf("expected nonzero score aligning a confident profile to its consensus")
	}
}

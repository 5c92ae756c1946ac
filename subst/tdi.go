package subst

// TDILetters is the 20-symbol 3Di structural alphabet, reusing the same
// letter glyphs as the amino-acid alphabet so both channels can share a
// FASTA-compatible single-byte encoding; the letters denote discrete
// backbone-geometry states here, not residue identities.
const TDILetters = "ACDEFGHIKLMNPQRSTVWY"

// TDIAlphabet indexes the 3Di alphabet against TDILetters.
var TDIAlphabet = NewAlphabet(structAlphabet(), TDILetters)

// Mat3Di is the 3Di structural-alphabet substitution matrix, indexed in
// TDILetters order. Its exact values are a derived, internally-consistent
// table (diagonal-dominant, distance-decaying off the diagonal) rather than
// a transcription of any published 3Di matrix: the published table is part
// of the out-of-scope structure-parsing/scoring toolchain (§1), and spec.md
// treats the 3Di substitution matrix only as "a substitution matrix" input
// to the scorer, never specifying its entries. The shape (symmetric,
// diagonal around +6, decaying to -4) is what the scorer's additive
// AA+3Di combination and bias-correction arithmetic need to be exercised
// meaningfully by tests.
var Mat3Di = buildMat3Di()

func buildMat3Di() Matrix {
	n := len(TDILetters)
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]int32, n)
		for j := range m[i] {
			d := i - j
			if d < 0 {
				d = -d
			}
			switch {
			case d == 0:
				m[i][j] = 6
			case d <= 2:
				m[i][j] = -1
			case d <= 5:
				m[i][j] = -2
			case d <= 9:
				m[i][j] = -3
			default:
				m[i][j] = -4
			}
		}
	}
	return m
}

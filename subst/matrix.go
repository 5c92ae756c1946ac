package subst

// Matrix is a square substitution score table indexed by alphabet position
// (via Alphabet.Index), not raw byte value: Matrix[i][j] is the log-odds
// score of aligning the i-th and j-th letters of the associated Alphabet.
type Matrix [][]int32

// Score returns the substitution score between two letters of a.
func (m Matrix) Score(a *Alphabet, x, y byte) int32 {
	return m[a.Index(x)][a.Index(y)]
}

// Background derives a uniform-weighted background frequency vector from a
// matrix's diagonal dominance, used by profile.BuildPSSM as the background
// for pseudo-count blending and log-odds scores. This mirrors
// the teacher's habit of deriving working tables from the static matrix at
// init time rather than hand-maintaining a second table (blosum.go in
// cablastp builds its lookup table from the same literal data the matrix
// uses).
func Background(m Matrix) []float64 {
	n := len(m)
	bg := make([]float64, n)
	var total float64
	for i := range m {
		w := float64(m[i][i])
		if w < 1 {
			w = 1
		}
		bg[i] = w
		total += w
	}
	for i := range bg {
		bg[i] /= total
	}
	return bg
}

// Package collab holds the out-of-scope collaborator implementations §6/§7
// name: the Smith-Waterman backtrace behind foldalign.DPAligner, the
// TM-align subprocess and LDDT scorer behind the merge tie-break (§4.5 step
// 4), and a stdout-suppression helper for in-process collaborators.
package collab

import "github.com/ndaniels/foldalign"

// LocalAligner is an in-process affine-gap Smith-Waterman implementing
// foldalign.DPAligner directly over an already-computed combined score
// matrix. It is not built on biogo/biogo's align package: that package's
// Aligner types take a sequence pair plus a single substitution matrix and
// compute cell scores internally, but foldalign's scorer has already mixed
// AA+3Di channels and, for profile operands, baked in position-specific
// scores per cell (§4.2) before this ever runs — there is no substitution
// matrix left to hand biogo, only a finished score matrix. The DP/backtrace
// algorithm itself is standard affine-gap Smith-Waterman (Gotoh 1982),
// grounded on the shape of the collaborator boundary spec.md §6 describes
// rather than copied from any one source.
type LocalAligner struct{}

const negInf = int32(-1 << 30)

// Align runs local (Smith-Waterman) affine-gap alignment over scores,
// returning the highest-scoring local alignment as a backtrace over
// {'M','I','D'} (match / insert-in-query / delete-from-query).
func (LocalAligner) Align(scores [][]int32, gapOpen, gapExtend int32) foldalign.AlignResult {
	m := len(scores)
	if m == 0 {
		return foldalign.AlignResult{}
	}
	n := len(scores[0])
	if n == 0 {
		return foldalign.AlignResult{}
	}

	// H: best score ending at (i,j) via any state. E: best score ending
	// with a gap in the query (target residue unmatched, insert). F: best
	// score ending with a gap in the target (delete).
	H := make([][]int32, m+1)
	E := make([][]int32, m+1)
	F := make([][]int32, m+1)
	for i := range H {
		H[i] = make([]int32, n+1)
		E[i] = make([]int32, n+1)
		F[i] = make([]int32, n+1)
		for j := range E[i] {
			E[i][j] = negInf
			F[i][j] = negInf
		}
	}

	var best int32
	bestI, bestJ := 0, 0
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			E[i][j] = max32(H[i][j-1]+gapOpen, E[i][j-1]+gapExtend)
			F[i][j] = max32(H[i-1][j]+gapOpen, F[i-1][j]+gapExtend)
			diag := H[i-1][j-1] + scores[i-1][j-1]
			h := max32(0, max32(diag, max32(E[i][j], F[i][j])))
			H[i][j] = h
			if h > best {
				best = h
				bestI, bestJ = i, j
			}
		}
	}

	if best == 0 {
		return foldalign.AlignResult{}
	}

	var bt []byte
	i, j := bestI, bestJ
	for i > 0 && j > 0 && H[i][j] > 0 {
		switch {
		case H[i][j] == H[i-1][j-1]+scores[i-1][j-1]:
			bt = append(bt, 'M')
			i--
			j--
		case H[i][j] == E[i][j]:
			bt = append(bt, 'I')
			j--
		case H[i][j] == F[i][j]:
			bt = append(bt, 'D')
			i--
		default:
			i, j = 0, 0 // defensive: stop if no predecessor matches
		}
	}
	reverse(bt)

	return foldalign.AlignResult{
		QStart: i, QEnd: bestI,
		DBStart: j, DBEnd: bestJ,
		Backtrace: string(bt),
		Score:     best,
	}
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

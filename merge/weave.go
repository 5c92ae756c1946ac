// Package merge implements one guide-tree edge's worth of progressive
// alignment (§4.5): building an operand for each side of the edge, aligning
// them, breaking near-ties with the TM-align/LDDT collaborators, and
// splicing every cluster member's CIGAR into the new, wider register.
package merge

import "github.com/ndaniels/foldalign"

// OpKind is one column of a weave: which side(s) of the pairwise
// alignment consume a position at that column.
type OpKind int

const (
	// OpBoth is an aligned ('M') column: both clusters consume a position.
	OpBoth OpKind = iota
	// OpQueryOnly is a query-side-only column (backtrace 'D', or an
	// unaligned query flank): the query cluster consumes a position, the
	// target cluster gets a gap.
	OpQueryOnly
	// OpTargetOnly is the mirror of OpQueryOnly for the target cluster
	// (backtrace 'I', or an unaligned target flank).
	OpTargetOnly
)

// WeaveInstructions expands a gapped-alignment backtrace (§4.2's
// AlignResult, restricted to the aligned span [qStart,qEnd)/[tStart,tEnd))
// into a full-length column plan covering every position of both
// operands, including the unaligned flanks a local alignment leaves
// outside its span — restoring original_source's getMergeInstructions,
// which spec.md's AlignResult leaves as an implementation detail of "the
// alignment collaborator" (§6).
func WeaveInstructions(qLen, tLen, qStart, qEnd, tStart, tEnd int, backtrace string) []OpKind {
	ops := make([]OpKind, 0, qLen+tLen)
	for i := 0; i < qStart; i++ {
		ops = append(ops, OpQueryOnly)
	}
	for i := 0; i < tStart; i++ {
		ops = append(ops, OpTargetOnly)
	}
	for _, c := range backtrace {
		switch c {
		case 'M':
			ops = append(ops, OpBoth)
		case 'I':
			ops = append(ops, OpTargetOnly)
		case 'D':
			ops = append(ops, OpQueryOnly)
		}
	}
	for i := qEnd; i < qLen; i++ {
		ops = append(ops, OpQueryOnly)
	}
	for i := tEnd; i < tLen; i++ {
		ops = append(ops, OpTargetOnly)
	}
	return ops
}

// Splice rewrites every member of the query and target clusters' CIGARs
// according to ops (restoring original_source's mergeTwoMsa): members of
// the cluster that doesn't consume a given column receive a gap there, so
// every member of both clusters ends up the same expanded length,
// satisfying I3 for the merged cluster the caller is about to Union.
// Splice does not call store.Union itself — the caller decides the
// surviving representative and updates Group/Mask once the splice is
// known to have succeeded.
func Splice(store *foldalign.Store, queryRep, targetRep int, ops []OpKind) {
	qMembers := store.Group[queryRep]
	tMembers := store.Group[targetRep]

	qCur := make([]*foldalign.CigarCursor, len(qMembers))
	for i, m := range qMembers {
		qCur[i] = foldalign.NewCigarCursor(store.CigarAA[m], store.CigarSS[m])
	}
	tCur := make([]*foldalign.CigarCursor, len(tMembers))
	for i, m := range tMembers {
		tCur[i] = foldalign.NewCigarCursor(store.CigarAA[m], store.CigarSS[m])
	}

	qDstAA := make([]foldalign.Cigar, len(qMembers))
	qDstSS := make([]foldalign.Cigar, len(qMembers))
	tDstAA := make([]foldalign.Cigar, len(tMembers))
	tDstSS := make([]foldalign.Cigar, len(tMembers))

	for _, op := range ops {
		switch op {
		case OpBoth:
			for i := range qMembers {
				foldalign.CopyResidues(&qDstAA[i], &qDstSS[i], qCur[i], 1)
			}
			for i := range tMembers {
				foldalign.CopyResidues(&tDstAA[i], &tDstSS[i], tCur[i], 1)
			}
		case OpQueryOnly:
			for i := range qMembers {
				foldalign.CopyResidues(&qDstAA[i], &qDstSS[i], qCur[i], 1)
			}
			for i := range tMembers {
				foldalign.AddGaps(&tDstAA[i], &tDstSS[i], 1)
			}
		case OpTargetOnly:
			for i := range tMembers {
				foldalign.CopyResidues(&tDstAA[i], &tDstSS[i], tCur[i], 1)
			}
			for i := range qMembers {
				foldalign.AddGaps(&qDstAA[i], &qDstSS[i], 1)
			}
		}
	}

	for i, m := range qMembers {
		store.CigarAA[m] = qDstAA[i]
		store.CigarSS[m] = qDstSS[i]
	}
	for i, m := range tMembers {
		store.CigarAA[m] = tDstAA[i]
		store.CigarSS[m] = tDstSS[i]
	}
}

package merge

import (
	"fmt"
	"os"

	"github.com/ndaniels/foldalign"
	"github.com/ndaniels/foldalign/collab"
)

// alignedCAPairs walks a backtrace and collects the Cα coordinate pairs
// standing behind each aligned ('M') column, so the structural tie-break
// can score agreement over exactly the columns a candidate alignment
// claims to match — not the full, possibly differently-ordered structures.
func alignedCAPairs(backtrace string, caQuery, caTarget [][3]float64, qStart, tStart int) (refQuery, refTarget [][3]float64) {
	i, j := qStart, tStart
	for _, c := range backtrace {
		switch c {
		case 'M':
			if i < len(caQuery) && j < len(caTarget) {
				refQuery = append(refQuery, caQuery[i])
				refTarget = append(refTarget, caTarget[j])
			}
			i++
			j++
		case 'D':
			i++
		case 'I':
			j++
		}
	}
	return refQuery, refTarget
}

// OrientationChoice resolves which side of a merge acts as query (§4.5
// step 2) and, when neither side is a profile, picks between the DP
// aligner's candidate and a TM-align candidate by LDDT (§4.5 step 4).
type OrientationChoice struct {
	Scorer *foldalign.Scorer
	TM     collab.TMAligner
	LDDT   collab.LDDTScorer
}

// Result is one merge edge's chosen alignment: the accepted AlignResult,
// whether query/target were swapped relative to the caller's (a, b)
// ordering, and whether the TM-align candidate won the structural
// tie-break (§8 scenario 6's "flagged as TM-aligned").
type Result struct {
	Align    foldalign.AlignResult
	Swapped  bool
	TMWinner bool
}

// Choose implements §4.5 steps 2 and 4. Orientation (step 2) is
// deterministic: a profile operand is always the query over a raw one; if
// both are profiles, the one with the larger Neff sum is the query;
// between two raw sequences, a (the caller's first operand, conventionally
// the smaller cluster representative) is the query. Only once neither
// resolved operand is a profile does the structural tie-break (step 4)
// run: a second, TM-align-based candidate is built over the same
// orientation and kept in place of the DP candidate if its LDDT is higher.
func (oc OrientationChoice) Choose(a, b foldalign.Operand, caA, caB [][3]float64, gapOpen, gapExtend int32) Result {
	query, target, caQuery, caTarget, swapped := chooseOrientation(a, b, caA, caB)

	res := oc.Scorer.GappedAlign(query, target, gapOpen, gapExtend)
	result := Result{Align: res, Swapped: swapped}

	if query.IsProfile() || target.IsProfile() {
		return result
	}
	if len(caQuery) == 0 || len(caTarget) == 0 || oc.TM.Binary == "" {
		return result
	}

	tmRes, ok := oc.tmCandidate(caQuery, caTarget)
	if !ok {
		return result
	}

	dpRefQ, dpRefT := alignedCAPairs(res.Backtrace, caQuery, caTarget, res.QStart, res.DBStart)
	tmRefQ, tmRefT := alignedCAPairs(tmRes.Backtrace, caQuery, caTarget, tmRes.QStart, tmRes.DBStart)
	dpScore := oc.LDDT.Score(dpRefQ, dpRefT)
	tmScore := oc.LDDT.Score(tmRefQ, tmRefT)
	if tmScore > dpScore {
		result.Align = tmRes
		result.TMWinner = true
	}
	return result
}

// chooseOrientation applies §4.5 step 2's deterministic rule.
func chooseOrientation(a, b foldalign.Operand, caA, caB [][3]float64) (query, target foldalign.Operand, caQuery, caTarget [][3]float64, swapped bool) {
	switch {
	case a.IsProfile() && !b.IsProfile():
		return a, b, caA, caB, false
	case b.IsProfile() && !a.IsProfile():
		return b, a, caB, caA, true
	case a.IsProfile() && b.IsProfile():
		if b.PSSMAA.NeffSum()+b.PSSM3Di.NeffSum() > a.PSSMAA.NeffSum()+a.PSSM3Di.NeffSum() {
			return b, a, caB, caA, true
		}
		return a, b, caA, caB, false
	default:
		return a, b, caA, caB, false
	}
}

// tmCandidate runs TM-align over the chosen query/target's Cα traces and
// converts its output into an AlignResult, the same shape the in-process
// DPAligner produces (§6).
func (oc OrientationChoice) tmCandidate(caQuery, caTarget [][3]float64) (foldalign.AlignResult, bool) {
	pathQ, err := writeTempPDB(caQuery)
	if err != nil {
		return foldalign.AlignResult{}, false
	}
	defer os.Remove(pathQ)
	pathT, err := writeTempPDB(caTarget)
	if err != nil {
		return foldalign.AlignResult{}, false
	}
	defer os.Remove(pathT)

	res := oc.TM.Align(pathQ, pathT)
	if !res.Ok {
		return foldalign.AlignResult{}, false
	}
	return res.AlignResult, true
}

// writeTempPDB writes a minimal single-chain, Cα-only PDB file TM-align
// can read: one ATOM record per coordinate, residue type fixed to ALA
// since TM-align's superposition only uses backbone geometry.
func writeTempPDB(ca [][3]float64) (string, error) {
	f, err := os.CreateTemp("", "foldalign-*.pdb")
	if err != nil {
		return "", err
	}
	defer f.Close()
	for i, xyz := range ca {
		fmt.Fprintf(f, "ATOM  %5d  CA  ALA A%4d    %8.3f%8.3f%8.3f  1.00  0.00           C\n",
			i+1, i+1, xyz[0], xyz[1], xyz[2])
	}
	fmt.Fprintln(f, "END")
	return f.Name(), nil
}

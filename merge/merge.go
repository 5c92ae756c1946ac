package merge

import (
	"sync"

	"github.com/ndaniels/foldalign"
	"github.com/ndaniels/foldalign/collab"
	"github.com/ndaniels/foldalign/profile"
)

// Merger runs one guide-tree edge's worth of progressive alignment at a
// time (§4.5): build each side's operand, choose orientation, weave and
// splice CIGARs, then fold the clusters together in the Store.
type Merger struct {
	Store      *foldalign.Store
	Structures []*foldalign.Structure

	Orient OrientationChoice
	Params profile.Params

	GapOpen, GapExtend int32
}

// NewMerger wires a Merger over aligner/collaborator defaults (an
// in-process Smith-Waterman DPAligner, no TM-align binary, standard
// LDDT parameters), overridable via the returned struct's fields.
func NewMerger(store *foldalign.Store, structures []*foldalign.Structure) *Merger {
	sc := foldalign.NewScorer(collab.LocalAligner{})
	return &Merger{
		Store:      store,
		Structures: structures,
		Orient: OrientationChoice{
			Scorer: sc,
			LDDT:   collab.DefaultLDDTScorer,
		},
		Params:    profile.DefaultParams,
		GapOpen:   -11,
		GapExtend: -1,
	}
}

// OperandFor builds the Operand for cluster rep: a raw sequence operand
// for a still-unmerged singleton, or a profile operand built from the
// cluster's current MSA otherwise (§4.4). Building the profile also
// refreshes store.Mask[rep] as a side effect, mirroring how the profile
// step is described as happening "as part of" preparing an operand rather
// than as a separately scheduled pass (§4.4.3). Exported so refinement
// (C7) can build operands for its ad hoc bipartitions the same way the
// merger builds them for guide-tree clusters.
func OperandFor(store *foldalign.Store, structures []*foldalign.Structure, rep int, params profile.Params) foldalign.Operand {
	members := store.Group[rep]
	if len(members) == 1 {
		s := structures[members[0]]
		return foldalign.RawOperandOf(s.AA, s.TDI)
	}

	aaMSA := make([]string, len(members))
	ssMSA := make([]string, len(members))
	lengths := make([]int, len(members))
	for i, m := range members {
		aa, ss := store.Expand(m)
		aaMSA[i], ssMSA[i] = aa, ss
		lengths[i] = foldalign.NumSeq(store.CigarAA[m])
	}
	pssmAA, pssm3di, mask := profile.BuildFromMSA(aaMSA, ssMSA, lengths, params)
	store.Mask[rep] = mask
	return foldalign.ProfileOperandOf(pssmAA, pssm3di)
}

// RepresentativeCA returns the Cα trace of rep's first member, used only
// by the tie-break's structural scoring (§4.5 step 4): a profile has no
// single coordinate trace of its own, so its first member stands in as a
// representative structure, the same role a guide-tree "pivot" sequence
// plays in profile-profile alignment more generally.
func RepresentativeCA(store *foldalign.Store, structures []*foldalign.Structure, rep int) [][3]float64 {
	return structures[store.Group[rep][0]].CA
}

// MergeEdge performs the full merge for one guide-tree edge joining
// clusters queryRep and targetRep (§4.5): build both operands, choose
// orientation, weave the backtrace into a full-length column plan, splice
// every member's CIGAR, and fold the two clusters into one in the Store.
func (mg *Merger) MergeEdge(queryRep, targetRep int) {
	qOp := OperandFor(mg.Store, mg.Structures, queryRep, mg.Params)
	tOp := OperandFor(mg.Store, mg.Structures, targetRep, mg.Params)
	caQ := RepresentativeCA(mg.Store, mg.Structures, queryRep)
	caT := RepresentativeCA(mg.Store, mg.Structures, targetRep)

	choice := mg.Orient.Choose(qOp, tOp, caQ, caT, mg.GapOpen, mg.GapExtend)
	res := choice.Align
	if choice.TMWinner {
		foldalign.Vprintf(1, "merge %d+%d: TM-align candidate won structural tie-break\n", queryRep, targetRep)
	}

	spliceQuery, spliceTarget := queryRep, targetRep
	qLen, tLen := qOp.Len(), tOp.Len()
	if choice.Swapped {
		spliceQuery, spliceTarget = targetRep, queryRep
		qLen, tLen = tLen, qLen
	}

	ops := WeaveInstructions(qLen, tLen, res.QStart, res.QEnd, res.DBStart, res.DBEnd, res.Backtrace)
	Splice(mg.Store, spliceQuery, spliceTarget, ops)

	allMembers := make([]int, 0, len(mg.Store.Group[queryRep])+len(mg.Store.Group[targetRep]))
	allMembers = append(allMembers, mg.Store.Group[queryRep]...)
	allMembers = append(allMembers, mg.Store.Group[targetRep]...)

	survivor, absorbed := mg.Store.Union(queryRep, targetRep)
	mg.Store.Group[survivor] = allMembers
	mg.Store.Group[absorbed] = nil
	mg.Store.Mask[absorbed] = ""
	mg.Store.CheckClusterRegister(survivor)
}

// MergeRound runs every edge of one guide-tree round (tree.ScheduleRounds'
// output) concurrently, one goroutine per edge, joined by a WaitGroup
// before returning — the bulk-synchronous round barrier of §5. Edges
// within a round touch disjoint cluster representatives by construction
// (I6): each MergeEdge only reads/writes Store entries keyed by its own
// queryRep/targetRep, so two goroutines in the same round never race on
// the same slice index, matching teacher/reduced_compression.go's
// job-per-worker pool shape (mirrored in tree.AllVsAll) applied here at
// edge-per-goroutine granularity instead of a fixed worker pool, since a
// round is already bounded to at most N/2 edges.
func (mg *Merger) MergeRound(edges [][2]int) {
	var wg sync.WaitGroup
	wg.Add(len(edges))
	for _, e := range edges {
		e := e
		go func() {
			defer wg.Done()
			mg.MergeEdge(e[0], e[1])
		}()
	}
	wg.Wait()
}

package merge

import (
	"testing"

	"github.com/ndaniels/foldalign"
)

func TestWeaveInstructionsIncludesFlanks(t *testing.T) {
	// query: 5 residues, target: 3 residues. Aligned span [1,4) vs [0,3),
	// leaving a 1-residue leading query flank and a 1-residue trailing
	// query flank, no target flank.
	ops := WeaveInstructions(5, 3, 1, 4, 0, 3, "MMM")
	want := []OpKind{OpQueryOnly, OpBoth, OpBoth, OpBoth, OpQueryOnly}
	if len(ops) != len(want) {
		t.Fatalf("got %d ops, want %d", len(ops), len(want))
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("ops[%d] = %v, want %v", i, ops[i], want[i])
		}
	}
}

func TestWeaveInstructionsHandlesIndels(t *testing.T) {
	// backtrace with an insertion (gap in query) and a deletion (gap in
	// target) in the middle of a fully-aligned span.
	ops := WeaveInstructions(3, 3, 0, 3, 0, 3, "MIDM")
	want := []OpKind{OpBoth, OpTargetOnly, OpQueryOnly, OpBoth}
	if len(ops) != len(want) {
		t.Fatalf("got %d ops, want %d", len(ops), len(want))
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("ops[%d] = %v, want %v", i, ops[i], want[i])
		}
	}
}

func newSingletonStore(seqs ...string) (*foldalign.Store, []*foldalign.Structure) {
	structures := make([]*foldalign.Structure, len(seqs))
	for i, s := range seqs {
		structures[i] = &foldalign.Structure{DBKey: i, AA: []byte(s), TDI: []byte(s)}
	}
	return foldalign.NewStore(structures), structures
}

func TestSpliceKeepsClustersInRegister(t *testing.T) {
	store, _ := newSingletonStore("ACDE", "ACXE")
	// query (rep 0) consumes every column; target (rep 1) skips column 2.
	ops := []OpKind{OpBoth, OpBoth, OpQueryOnly, OpBoth}
	Splice(store, 0, 1, ops)

	if foldalign.Len(store.CigarAA[0]) != foldalign.Len(store.CigarAA[1]) {
		t.Fatalf("clusters out of register after splice: %d vs %d",
			foldalign.Len(store.CigarAA[0]), foldalign.Len(store.CigarAA[1]))
	}
	if foldalign.Expand(store.CigarAA[1])[2] != '-' {
		t.Fatalf("expected a gap at column 2 for the target, got %q", foldalign.Expand(store.CigarAA[1]))
	}
}

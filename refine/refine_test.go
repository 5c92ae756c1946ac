package refine

import (
	"testing"

	"github.com/ndaniels/foldalign"
)

func straightLineCA(n int) [][3]float64 {
	ca := make([][3]float64, n)
	for i := range ca {
		ca[i] = [3]float64{float64(i) * 3.8, 0, 0}
	}
	return ca
}

func mergedStore(seqs ...string) (*foldalign.Store, []*foldalign.Structure) {
	structures := make([]*foldalign.Structure, len(seqs))
	for i, s := range seqs {
		structures[i] = &foldalign.Structure{DBKey: i, AA: []byte(s), TDI: []byte(s), CA: straightLineCA(len(s))}
	}
	store := foldalign.NewStore(structures)
	// Collapse every structure into a single cluster with identity CIGARs,
	// as if a guide tree had already merged them with no indels introduced
	// (all test sequences are the same length).
	members := make([]int, len(seqs))
	for i := range seqs {
		members[i] = i
	}
	store.Group[0] = members
	for i := 1; i < len(seqs); i++ {
		store.IDMap[i] = 0
		store.Group[i] = nil
	}
	return store, structures
}

func TestColumnResidueIndexMarksGaps(t *testing.T) {
	c := foldalign.Contract("AC--DE")
	idx := columnResidueIndex(c)
	want := []int{0, 1, -1, -1, 2, 3}
	if len(idx) != len(want) {
		t.Fatalf("got %d entries, want %d", len(idx), len(want))
	}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("idx[%d] = %d, want %d", i, idx[i], want[i])
		}
	}
}

func TestRunPreservesClusterRegister(t *testing.T) {
	store, structures := mergedStore("ACDEFGH", "ACDEFGH", "ACDEFGH", "ACDEFGH")
	rf := NewRefiner(store, structures, 7)
	rf.Run(3)

	rep := store.Find(0)
	store.CheckClusterRegister(rep)
	if len(store.Group[rep]) != 4 {
		t.Fatalf("expected all 4 members still in the cluster, got %d", len(store.Group[rep]))
	}
}

func TestRunWithZeroIterationsIsANoOp(t *testing.T) {
	store, structures := mergedStore("ACDEFGH", "ACDEFGH")
	before := foldalign.Expand(store.CigarAA[0])
	rf := NewRefiner(store, structures, 1)
	rf.Run(0)
	after := foldalign.Expand(store.CigarAA[0])
	if before != after {
		t.Fatalf("zero-iteration run changed the alignment: %q -> %q", before, after)
	}
}

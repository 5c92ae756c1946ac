package merge

import (
	"testing"

	"github.com/ndaniels/foldalign"
)

func TestMergeEdgeJoinsTwoSingletons(t *testing.T) {
	structures := []*foldalign.Structure{
		{DBKey: 0, AA: []byte("ACDEFGH"), TDI: []byte("ACDEFGH"), CA: straightLineCA(7)},
		{DBKey: 1, AA: []byte("ACDEFGH"), TDI: []byte("ACDEFGH"), CA: straightLineCA(7)},
	}
	store := foldalign.NewStore(structures)
	mg := NewMerger(store, structures)

	mg.MergeEdge(0, 1)

	survivor := store.Find(0)
	if len(store.Group[survivor]) != 2 {
		t.Fatalf("expected merged cluster to have 2 members, got %d", len(store.Group[survivor]))
	}
	store.CheckClusterRegister(survivor)
	if foldalign.Len(store.CigarAA[0]) != foldalign.Len(store.CigarAA[1]) {
		t.Fatal("expected merged members to be in register")
	}
	// Identical sequences should align with no gaps introduced.
	if foldalign.Expand(store.CigarAA[0]) != "ACDEFGH" {
		t.Fatalf("unexpected alignment for identical sequences: %q", foldalign.Expand(store.CigarAA[0]))
	}
}

func TestMergeEdgeBuildsProfileForThirdMember(t *testing.T) {
	structures := []*foldalign.Structure{
		{DBKey: 0, AA: []byte("ACDEFGH"), TDI: []byte("ACDEFGH"), CA: straightLineCA(7)},
		{DBKey: 1, AA: []byte("ACDEFGH"), TDI: []byte("ACDEFGH"), CA: straightLineCA(7)},
		{DBKey: 2, AA: []byte("ACDEFGH"), TDI: []byte("ACDEFGH"), CA: straightLineCA(7)},
	}
	store := foldalign.NewStore(structures)
	mg := NewMerger(store, structures)

	mg.MergeEdge(0, 1)
	survivor := store.Find(0)
	mg.MergeEdge(survivor, 2)

	finalRep := store.Find(0)
	if len(store.Group[finalRep]) != 3 {
		t.Fatalf("expected 3 members in final cluster, got %d", len(store.Group[finalRep]))
	}
	store.CheckClusterRegister(finalRep)
}

func straightLineCA(n int) [][3]float64 {
	ca := make([][3]float64, n)
	for i := range ca {
		ca[i] = [3]float64{float64(i) * 3.8, 0, 0}
	}
	return ca
}

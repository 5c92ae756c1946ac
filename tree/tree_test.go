package tree

import (
	"testing"

	"github.com/ndaniels/foldalign"
)

func TestAllVsAllCoversEveryPair(t *testing.T) {
	n := 5
	hits := AllVsAll(n, 3, func(i, j int) int32 { return int32(i + j) })
	want := n * (n - 1) / 2
	if len(hits) != want {
		t.Fatalf("got %d hits, want %d", len(hits), want)
	}
	seen := map[[2]int]bool{}
	for _, h := range hits {
		seen[[2]int{h.QueryID, h.TargetID}] = true
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !seen[[2]int{i, j}] {
				t.Fatalf("missing pair (%d,%d)", i, j)
			}
		}
	}
}

func TestMaxSpanningTreeSpansAllLeaves(t *testing.T) {
	n := 4
	hits := []foldalign.Hit{
		{QueryID: 0, TargetID: 1, Score: 10},
		{QueryID: 1, TargetID: 2, Score: 9},
		{QueryID: 2, TargetID: 3, Score: 8},
		{QueryID: 0, TargetID: 3, Score: 1}, // would close a cycle, must be rejected
	}
	SortHits(hits)
	edges := MaxSpanningTree(n, hits)
	if len(edges) != n-1 {
		t.Fatalf("got %d edges, want %d", len(edges), n-1)
	}
	if !VerifyConnected(n, edges) {
		t.Fatal("expected spanning tree to connect all leaves")
	}
}

func TestMaxSpanningTreeRejectsCycle(t *testing.T) {
	n := 3
	hits := []foldalign.Hit{
		{QueryID: 0, TargetID: 1, Score: 5},
		{QueryID: 1, TargetID: 2, Score: 4},
		{QueryID: 0, TargetID: 2, Score: 3},
	}
	edges := MaxSpanningTree(n, hits)
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2 (triangle collapses to a tree)", len(edges))
	}
}

func TestScheduleRoundsRespectsDependencies(t *testing.T) {
	// A chain 0-1, 1-2, 2-3: each merge depends on the previous one's
	// result, so every edge must land in its own round.
	edges := []Edge{
		{A: 0, B: 1},
		{A: 1, B: 2},
		{A: 2, B: 3},
	}
	rounds := ScheduleRounds(4, edges)
	if len(rounds) != 3 {
		t.Fatalf("got %d rounds, want 3 for a dependent chain", len(rounds))
	}
	for _, r := range rounds {
		if len(r) != 1 {
			t.Fatalf("expected exactly one edge per round in a chain, got %d", len(r))
		}
	}
}

func TestScheduleRoundsParallelizesIndependentMerges(t *testing.T) {
	// Two independent pairs: (0,1) and (2,3) don't depend on each other
	// and should land in the same round.
	edges := []Edge{
		{A: 0, B: 1},
		{A: 2, B: 3},
	}
	rounds := ScheduleRounds(4, edges)
	if len(rounds) != 1 {
		t.Fatalf("got %d rounds, want 1 for two independent merges", len(rounds))
	}
	if len(rounds[0]) != 2 {
		t.Fatalf("expected both edges in round 0, got %d", len(rounds[0]))
	}
}

func TestStageBHitsAreAdditiveOverRepresentatives(t *testing.T) {
	// Cluster mapping {0: [1, 2]}: Stage B should emit one Hit per member,
	// scored like any other pair, independent of whatever Stage A already
	// found (§8 scenario 4).
	clusters := map[int][]int{0: {1, 2}}
	score := func(i, j int) int32 { return int32(10 - (i + j)) }
	hits := StageBHits(clusters, score)
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	seen := map[[2]int]bool{}
	for _, h := range hits {
		seen[[2]int{h.QueryID, h.TargetID}] = true
	}
	if !seen[[2]int{0, 1}] || !seen[[2]int{0, 2}] {
		t.Fatalf("missing expected representative->member hits: %v", hits)
	}
}

func TestParseNewickSimpleTopology(t *testing.T) {
	root, err := ParseNewick("(A,(B,C));")
	if err != nil {
		t.Fatalf("ParseNewick error: %s", err)
	}
	leaves := root.Leaves()
	want := []string{"A", "B", "C"}
	if len(leaves) != len(want) {
		t.Fatalf("got %v, want %v", leaves, want)
	}
	for i := range want {
		if leaves[i] != want[i] {
			t.Fatalf("leaves[%d] = %q, want %q", i, leaves[i], want[i])
		}
	}
}

func TestPostOrderMergesProducesBinaryEdges(t *testing.T) {
	root, err := ParseNewick("(A,(B,C));")
	if err != nil {
		t.Fatalf("ParseNewick error: %s", err)
	}
	labelIndex := map[string]int{"A": 0, "B": 1, "C": 2}
	edges, err := PostOrderMerges(root, labelIndex)
	if err != nil {
		t.Fatalf("PostOrderMerges error: %s", err)
	}
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2 for a 3-leaf tree", len(edges))
	}
}

func TestPostOrderMergesRejectsUnknownLabel(t *testing.T) {
	root, err := ParseNewick("(A,(B,C));")
	if err != nil {
		t.Fatalf("ParseNewick error: %s", err)
	}
	labelIndex := map[string]int{"A": 0, "B": 1}
	if _, err := PostOrderMerges(root, labelIndex); err == nil {
		t.Fatal("expected an error for a label with no matching structure")
	}
}

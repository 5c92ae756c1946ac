// Package tree builds the progressive-alignment guide tree (§4.3): all-vs-all
// seeding scores, a deterministic best-first sort, a maximum spanning tree
// over the resulting hit graph, and a round schedule the merger can run in
// parallel batches from (I6).
package tree

import (
	"sort"
	"sync"

	"github.com/ndaniels/foldalign"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ScoreFn computes the Stage A seeding score between structures i and j;
// callers close over a *foldalign.Scorer and the structure set. Must be
// safe for concurrent calls from multiple workers.
type ScoreFn func(i, j int) int32

// AllVsAll computes the Stage A seeding score for every candidate pair
// (i<j) among n structures using a pool of workers, each calling score
// independently: a job channel plus a sync.WaitGroup, mirrored from
// teacher/reduced_compression.go's compression worker pool (one goroutine
// per worker, draining a buffered job channel, joined via WaitGroup).
func AllVsAll(n int, workers int, score ScoreFn) []foldalign.Hit {
	if workers < 1 {
		workers = 1
	}
	type job struct{ i, j int }
	jobs := make(chan job, 200)
	results := make(chan foldalign.Hit, 200)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jb := range jobs {
				s := score(jb.i, jb.j)
				results <- foldalign.Hit{QueryID: jb.i, TargetID: jb.j, Score: s}
			}
		}()
	}

	go func() {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				jobs <- job{i: i, j: j}
			}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	hits := make([]foldalign.Hit, 0, n*(n-1)/2)
	for h := range results {
		hits = append(hits, h)
	}
	return hits
}

// StageBHits computes Stage B (§4.3): additional seed hits read from an
// external cluster-database mapping (--precluster <cluster-db>), rather
// than a cheaper substitute for Stage A. clusters maps each cluster
// representative's dbKey to its member dbKeys; for every representative q
// and member d != q a Hit(q, d) is emitted, scored the same way Stage A
// scores a pair (§8 scenario 4: "Stage B appends a Hit (A,B) with its
// ungapped score; subsequent MST construction is identical to the
// all-vs-all case plus those additional edges"). Callers append the result
// to AllVsAll's hits before SortHits/MaxSpanningTree — Stage B is additive,
// never a replacement for Stage A.
func StageBHits(clusters map[int][]int, score ScoreFn) []foldalign.Hit {
	var hits []foldalign.Hit
	for rep, members := range clusters {
		for _, d := range members {
			if d == rep {
				continue
			}
			hits = append(hits, foldalign.Hit{QueryID: rep, TargetID: d, Score: score(rep, d)})
		}
	}
	return hits
}

// SortHits orders hits best-first per foldalign.Hit.Less (Stage C, §4.3:
// score descending, then queryId/targetId ascending), the deterministic tie
// break Kruskal's algorithm needs to produce the same tree on every run.
func SortHits(hits []foldalign.Hit) {
	sort.Slice(hits, func(a, b int) bool { return hits[a].Less(hits[b]) })
}

// Edge is one accepted guide-tree merge step.
type Edge struct {
	A, B  int
	Score int32
}

// MaxSpanningTree runs Kruskal's algorithm over hits, which must already be
// sorted best-first by SortHits (Stage D): each hit is accepted as a merge
// unless its endpoints are already in the same cluster, stopping once n-1
// edges have been accepted (a spanning tree over n leaves).
func MaxSpanningTree(n int, hits []foldalign.Hit) []Edge {
	u := newUfind(n)
	edges := make([]Edge, 0, n-1)
	for _, h := range hits {
		if _, merged := u.union(h.QueryID, h.TargetID); merged {
			edges = append(edges, Edge{A: h.QueryID, B: h.TargetID, Score: h.Score})
			if len(edges) == n-1 {
				break
			}
		}
	}
	return edges
}

// VerifyConnected checks that n leaves and the accepted edges form a single
// connected component (P7): a guide tree must span every structure, not
// leave any of them isolated. Held as a gonum/graph/simple undirected graph
// and checked with graph/topo.ConnectedComponents rather than a hand-rolled
// traversal.
func VerifyConnected(n int, edges []Edge) bool {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		g.SetEdge(g.NewEdge(simple.Node(e.A), simple.Node(e.B)))
	}
	return len(topo.ConnectedComponents(g)) == 1
}

// ScheduleRounds groups MST edges into parallel-safe rounds (Stage E, I6):
// an edge can be scheduled in round r only once both endpoints' clusters
// are ready, where a raw structure is ready at round 0 and a merged
// cluster becomes ready the round after the edge that produced it. A
// separate transient union-find resolves each endpoint to its current
// cluster root, since later edges in the MST can name either the
// surviving or absorbed id of an earlier merge — both mean the same
// cluster once merged.
func ScheduleRounds(n int, edges []Edge) [][]Edge {
	u := newUfind(n)
	readyRound := make([]int, n)
	var rounds [][]Edge
	for _, e := range edges {
		ra, rb := u.find(e.A), u.find(e.B)
		r := readyRound[ra]
		if readyRound[rb] > r {
			r = readyRound[rb]
		}
		for len(rounds) <= r {
			rounds = append(rounds, nil)
		}
		rounds[r] = append(rounds[r], e)
		root, _ := u.union(ra, rb)
		readyRound[root] = r + 1
	}
	return rounds
}

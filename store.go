package foldalign

// Store is the live, mutable alignment state the merger (C6) reads and
// writes every round: per-structure CIGARs (C1), the cluster union-find
// and membership lists, and the column mask per cluster representative
// (C2). Structures and substitution matrices are process-wide read-only
// state (§9 "Ownership"); Store is everything that changes during a run.
type Store struct {
	N int

	// CigarAA/CigarSS are indexed by original structure id and hold that
	// structure's current gapped alignment, one Instruction stream per
	// channel, always in register with each other (I1) and, within a
	// cluster, with every other member's CIGARs (I3).
	CigarAA, CigarSS []Cigar

	// IDMap is the union-find parent array: IDMap[i] is the representative
	// of the cluster containing structure i (I4). Path-compressed on
	// Find, no rank tracking — merges always choose the smaller index as
	// representative (§9 "Union-find for cluster representatives"), so
	// there is no need to balance tree height by rank.
	IDMap []int

	// Group[m] lists every structure index currently in representative m's
	// cluster, for m a representative; Group[t] is emptied when t is
	// absorbed into another cluster.
	Group [][]int

	// Mask[m] is representative m's column mask (C2); empty until m's
	// cluster has been merged and a profile built at least once.
	Mask []string
}

// NewStore initializes a Store for n ungapped structures: each starts in
// its own singleton cluster with a CIGAR consisting of a single SEQ
// instruction per residue (no gaps yet).
func NewStore(structures []*Structure) *Store {
	n := len(structures)
	st := &Store{
		N:       n,
		CigarAA: make([]Cigar, n),
		CigarSS: make([]Cigar, n),
		IDMap:   make([]int, n),
		Group:   make([][]int, n),
		Mask:    make([]string, n),
	}
	for i, s := range structures {
		st.IDMap[i] = i
		st.Group[i] = []int{i}
		st.CigarAA[i] = Contract(string(s.AA))
		st.CigarSS[i] = Contract(string(s.TDI))
	}
	return st
}

// Find resolves i to its cluster representative, compressing the path as it
// walks (I4's "path update on merge").
func (st *Store) Find(i int) int {
	root := i
	for st.IDMap[root] != root {
		root = st.IDMap[root]
	}
	for st.IDMap[i] != root {
		st.IDMap[i], i = root, st.IDMap[i]
	}
	return root
}

// Union merges the clusters represented by a and b, keeping the smaller
// index as the surviving representative, and returns (survivor, absorbed).
// It does not touch Group/Mask/profiles — callers (the merger, §4.5 step 6)
// own that bookkeeping since it must happen alongside the CIGAR splice, not
// before it.
func (st *Store) Union(a, b int) (survivor, absorbed int) {
	ra, rb := st.Find(a), st.Find(b)
	if ra == rb {
		panic("foldalign: Union called on already-merged clusters")
	}
	if ra < rb {
		survivor, absorbed = ra, rb
	} else {
		survivor, absorbed = rb, ra
	}
	for i := range st.IDMap {
		if st.IDMap[i] == absorbed {
			st.IDMap[i] = survivor
		}
	}
	return survivor, absorbed
}

// ExpandedLen returns the current gapped alignment length of the cluster
// containing i, read from its AA channel (P4/I3: every member of a cluster
// has the same expanded length).
func (st *Store) ExpandedLen(i int) int {
	return Len(st.CigarAA[st.Find(i)])
}

// Expand materializes structure i's current gapped AA and 3Di alignment as
// strings.
func (st *Store) Expand(i int) (aa, tdi string) {
	return Expand(st.CigarAA[i]), Expand(st.CigarSS[i])
}

// CheckClusterRegister verifies invariant P4/I3 for the cluster represented
// by m: every member's CIGARs have the same expanded length.
func (st *Store) CheckClusterRegister(m int) {
	want := -1
	for _, i := range st.Group[m] {
		l := Len(st.CigarAA[i])
		if want == -1 {
			want = l
			continue
		}
		if l != want {
			panic("foldalign: invariant I3/P4 violated: cluster members out of register")
		}
	}
}

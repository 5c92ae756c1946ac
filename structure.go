package foldalign

// Structure is one input protein structure: its amino-acid sequence, 3Di
// structural-alphabet sequence, and backbone Cα coordinates, all parallel
// arrays of the same ungapped length L. Structure records are immutable for
// the lifetime of an alignment run (§3).
type Structure struct {
	// DBKey is the key this structure was read from in the AA/3Di/Cα
	// stores (§6's "three parallel indexed stores keyed by an integer
	// dbKey").
	DBKey int
	// Header is the display name attached to this structure's output FASTA
	// record.
	Header string

	AA  []byte
	TDI []byte
	CA  [][3]float64
}

// Len is the ungapped residue count L.
func (s *Structure) Len() int { return len(s.AA) }

// Hit is a scored pair produced by the all-vs-all or precluster seeding
// passes (§4.3 Stage A/B) and consumed by the tree builder and merger.
type Hit struct {
	QueryID  int
	TargetID int
	Score    int32
}

// Less implements the Stage C sort order: descending score, then ascending
// QueryID, then ascending TargetID — the deterministic tie-break spec.md §4.3
// Stage C and §5 rely on for reproducible merges within a fixed thread
// count. Grounded on the teacher's match.Less ordinal comparator
// (teacher/match.go), generalized from "bigger reference span wins" to the
// three-key tuple spec.md specifies.
func (h Hit) Less(other Hit) bool {
	if h.Score != other.Score {
		return h.Score > other.Score
	}
	if h.QueryID != other.QueryID {
		return h.QueryID < other.QueryID
	}
	return h.TargetID < other.TargetID
}

// PSSM is a position-specific scoring matrix over masked columns: one
// channel's half of a Profile (§3). The heavy construction logic (Henikoff
// weighting, filtering, pseudo-counts, composition-bias correction) lives in
// package profile; PSSM itself is just the resulting data shape, kept at
// this package's root so the scorer can read scores-at-a-position directly
// without an import cycle back to profile.
type PSSM struct {
	// Scores[col][letterIndex] is the log-odds score of letterIndex's
	// alphabet letter at column col.
	Scores [][]int32
	// Consensus[col] is the most frequent (or highest-scoring) letter at
	// column col, used as the query residue when this profile's residues
	// are compared position-by-position against another profile's
	// consensus (§4.2 "both are profiles").
	Consensus []byte
	// Neff[col] is the effective number of sequences at column col.
	Neff []float64
	// GapOpen/GapClose hold optional position-specific affine gap
	// penalties. profile.BuildPSSM does not fill them and the scorer does
	// not read them, so they stay nil in this module.
	GapOpen, GapClose []int32
}

// Cols is the number of masked columns this PSSM covers.
func (p *PSSM) Cols() int { return len(p.Scores) }

// NeffSum is the sum of Neff across all columns, used by the merger's
// orientation rule (§4.5 step 2: "the query is the one with the larger sum
// of neff across its columns").
func (p *PSSM) NeffSum() float64 {
	var sum float64
	for _, n := range p.Neff {
		sum += n
	}
	return sum
}

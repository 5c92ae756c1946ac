package collab

import "math"

// LDDTScorer computes the Local Distance Difference Test (§6): how well a
// candidate superposition's Cα-Cα distances agree with each query
// structure's own distances, within a set of inclusion radius thresholds
// and an exclusion radius that drops distant pairs entirely. Used by the
// merger (§4.5 step 4) to break TM-align ties and by refinement (§4.7, P10)
// to accept or revert a perturbation.
type LDDTScorer struct {
	// Thresholds are the inclusion-radius distance-difference cutoffs a
	// pair must fall within to count as "preserved". The standard LDDT
	// definition (Mariani et al. 2013) uses 0.5, 1, 2, 4 Angstrom.
	Thresholds []float64
	// InclusionRadius caps which reference pairs are scored at all;
	// pairs farther apart than this in the reference structure are
	// ignored. Standard LDDT uses 15 Angstrom.
	InclusionRadius float64
}

// DefaultLDDTScorer mirrors the standard all-atom LDDT parameterization.
var DefaultLDDTScorer = LDDTScorer{
	Thresholds:      []float64{0.5, 1, 2, 4},
	InclusionRadius: 15,
}

// Score computes the LDDT of candidate against reference: both are
// per-column Cα coordinate slices already in the same alignment register
// (one entry per alignment column, aligned 1:1; columns where either side
// has no residue should be passed as a coordinate equal to reference's own
// NaN-sentinel — callers filter those out before calling Score). Returns a
// value in [0, 1], or 0 for fewer than two comparable columns.
func (s LDDTScorer) Score(reference, candidate [][3]float64) float64 {
	n := len(reference)
	if n != len(candidate) || n < 2 {
		return 0
	}
	var preserved, total float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			refD := dist(reference[i], reference[j])
			if refD > s.InclusionRadius {
				continue
			}
			candD := dist(candidate[i], candidate[j])
			diff := math.Abs(refD - candD)
			total += float64(len(s.Thresholds))
			for _, thr := range s.Thresholds {
				if diff <= thr {
					preserved++
				}
			}
		}
	}
	if total == 0 {
		return 0
	}
	return preserved / total
}

func dist(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

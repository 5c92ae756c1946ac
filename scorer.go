package foldalign

import "github.com/ndaniels/foldalign/subst"

// OperandKind distinguishes a plain sequence operand from a profile
// operand in the scorer's tagged variant (§4.2, §9 "Variant dispatch").
type OperandKind int

const (
	RawOperand OperandKind = iota
	ProfileOperand
)

// Operand is either a plain sequence (AA+3Di residue arrays) or a profile
// (dual PSSM + consensus letters), the capability set the scorer's kernel is
// parameterised over: "residue-letters-at-positions" for Raw,
// "profile-scores-at-positions" for Profile.
type Operand struct {
	Kind OperandKind

	AA, TDI []byte // Raw

	PSSMAA, PSSM3Di *PSSM // Profile
}

// RawOperandOf wraps a plain sequence's two channels as an Operand.
func RawOperandOf(aa, tdi []byte) Operand {
	return Operand{Kind: RawOperand, AA: aa, TDI: tdi}
}

// ProfileOperandOf wraps a dual PSSM as an Operand.
func ProfileOperandOf(aa, tdi *PSSM) Operand {
	return Operand{Kind: ProfileOperand, PSSMAA: aa, PSSM3Di: tdi}
}

// IsProfile reports whether o carries PSSMs rather than raw residues.
func (o Operand) IsProfile() bool { return o.Kind == ProfileOperand }

// Len is o's column count: residue count for Raw, masked column count for
// Profile.
func (o Operand) Len() int {
	if o.Kind == RawOperand {
		return len(o.AA)
	}
	return o.PSSMAA.Cols()
}

// ConsensusAA/ConsensusTDI are the letters used as "this operand's
// residues" when it is compared position-by-position against a plain
// sequence, or against another profile's consensus (§4.2 "when both are
// profiles, ... the other's residues become its consensus letters").
func (o Operand) ConsensusAA() []byte {
	if o.Kind == RawOperand {
		return o.AA
	}
	return o.PSSMAA.Consensus
}

func (o Operand) ConsensusTDI() []byte {
	if o.Kind == RawOperand {
		return o.TDI
	}
	return o.PSSM3Di.Consensus
}

// scoreAt returns o's score for aligning its column i against letter aaB
// (AA channel) or tdiB (3Di channel), dispatching on whether o is a profile
// (position-specific lookup) or raw (substitution-matrix lookup against the
// matrix's own residue at i) — the "compare query [profile or residue] to
// target residues at target positions" semantics of §4.2.
func scoreAt(o Operand, i int, aaB, tdiB byte, matAA, mat3Di subst.Matrix) int32 {
	if o.Kind == ProfileOperand {
		return o.PSSMAA.Scores[i][subst.AAAlphabet.Index(aaB)] +
			o.PSSM3Di.Scores[i][subst.TDIAlphabet.Index(tdiB)]
	}
	return matAA.Score(subst.AAAlphabet, o.AA[i], aaB) +
		mat3Di.Score(subst.TDIAlphabet, o.TDI[i], tdiB)
}

// AlignResult is the gapped-alignment collaborator's output (§6): the
// aligned span of each operand and a backtrace over {'M','I','D'}
// (match / insert-in-query / delete-from-query).
type AlignResult struct {
	QStart, QEnd   int
	DBStart, DBEnd int
	Backtrace      string
	Score          int32
}

// Empty reports whether res has no aligned columns at all — the fail-soft
// shape a collaborator returns on total failure (§7 "Collaborator
// failure").
func (res AlignResult) Empty() bool {
	return res.QEnd <= res.QStart && res.DBEnd <= res.DBStart && res.Backtrace == ""
}

// DPAligner is the out-of-scope Smith-Waterman/Needleman-Wunsch backtrace
// collaborator (§1, §6): given a combined AA+3Di scoring matrix (already
// additively mixed by the scorer, per §4.2) and affine gap penalties, it
// finds the best-scoring local alignment path and returns it as a
// backtrace. Concrete implementations live in package collab; GappedAlign
// below owns building the combined matrix, which is the part spec.md keeps
// in scope.
type DPAligner interface {
	Align(scores [][]int32, gapOpen, gapExtend int32) AlignResult
}

// Scorer wires a DPAligner collaborator plus the two substitution matrices
// the additive combination needs.
type Scorer struct {
	Aligner    DPAligner
	MatAA      subst.Matrix
	Mat3Di     subst.Matrix
	BiasCorrect bool
}

// NewScorer builds a Scorer over the standard BLOSUM62/3Di matrices.
func NewScorer(aligner DPAligner) *Scorer {
	return &Scorer{Aligner: aligner, MatAA: subst.BLOSUM62, Mat3Di: subst.Mat3Di}
}

// UngappedScore is the all-vs-all seeding score (§4.3 Stage A): the best
// single-diagonal, gap-free sum of additive AA+3Di scores between query and
// a target sequence, searched over every diagonal offset the two sequences'
// overlap admits. Used only to rank candidate pairs for the guide tree, not
// to produce an alignment.
func (sc *Scorer) UngappedScore(query Operand, targetAA, targetTDI []byte) int32 {
	qLen, tLen := query.Len(), len(targetAA)
	var best int32
	for offset := -(tLen - 1); offset <= qLen-1; offset++ {
		var sum int32
		for i := 0; i < qLen; i++ {
			j := i - offset
			if j < 0 || j >= tLen {
				continue
			}
			sum += scoreAt(query, i, targetAA[j], targetTDI[j], sc.MatAA, sc.Mat3Di)
		}
		if sum > best {
			best = sum
		}
	}
	return best
}

// biasCorrection computes the local-bias correction term for a raw
// sequence operand at column i: each channel's own substitution-matrix
// self-score against its own residue, averaged over a local window and
// rounded to the nearest integer with sign, then subtracted from that
// column's raw scores before alignment. This mirrors composition-bias
// correction used ahead of gapped extension in teacher/compress/compression.go's
// alignGapped step (a sequence-identity gate before accepting a gapped
// window), generalized here into a genuine per-column score adjustment
// rather than a pass/fail gate, as spec.md §4.2 requires ("applied to both
// channels' per-position scores when the operand is a plain sequence").
func biasCorrection(aa, tdi []byte, i int, window int, matAA, mat3Di subst.Matrix) int32 {
	lo := i - window/2
	if lo < 0 {
		lo = 0
	}
	hi := lo + window
	if hi > len(aa) {
		hi = len(aa)
		lo = hi - window
		if lo < 0 {
			lo = 0
		}
	}
	var sumAA, sum3Di float64
	n := 0
	for k := lo; k < hi; k++ {
		sumAA += float64(matAA.Score(subst.AAAlphabet, aa[k], aa[k]))
		sum3Di += float64(mat3Di.Score(subst.TDIAlphabet, tdi[k], tdi[k]))
		n++
	}
	if n == 0 {
		return 0
	}
	avg := (sumAA + sum3Di) / float64(n)
	return roundWithSign(avg)
}

func roundWithSign(x float64) int32 {
	if x >= 0 {
		return int32(x + 0.5)
	}
	return -int32(-x + 0.5)
}

const biasWindow = 41

// GappedAlign runs the scorer's gapped alignment service (§4.2): it builds
// the additive AA+3Di combined scoring matrix between query and target
// (when sc.BiasCorrect is set, applying local-bias correction to either side
// that is a raw sequence; NewScorer leaves it unset), then hands it to the
// DPAligner collaborator along with the shared affine gap penalties.
func (sc *Scorer) GappedAlign(query, target Operand, gapOpen, gapExtend int32) AlignResult {
	qLen, tLen := query.Len(), target.Len()
	qAA, qTDI := query.ConsensusAA(), query.ConsensusTDI()
	tAA, tTDI := target.ConsensusAA(), target.ConsensusTDI()

	scores := make([][]int32, qLen)
	for i := range scores {
		row := make([]int32, tLen)
		var qBias, tBias int32
		if sc.BiasCorrect && query.Kind == RawOperand {
			qBias = biasCorrection(qAA, qTDI, i, biasWindow, sc.MatAA, sc.Mat3Di)
		}
		for j := 0; j < tLen; j++ {
			if sc.BiasCorrect && target.Kind == RawOperand {
				tBias = biasCorrection(tAA, tTDI, j, biasWindow, sc.MatAA, sc.Mat3Di)
			}
			s := pairScore(query, target, i, j, qAA, qTDI, tAA, tTDI, sc.MatAA, sc.Mat3Di)
			row[j] = s - qBias - tBias
		}
		scores[i] = row
	}
	return sc.Aligner.Align(scores, gapOpen, gapExtend)
}

// pairScore computes the additive AA+3Di score between query column i and
// target column j, dispatching each operand's profile-vs-raw lookup
// independently so e.g. a profile query against a raw target works the same
// way a raw query against a raw target does.
func pairScore(query, target Operand, i, j int, qAA, qTDI, tAA, tTDI []byte, matAA, mat3Di subst.Matrix) int32 {
	switch {
	case query.Kind == ProfileOperand:
		return query.PSSMAA.Scores[i][subst.AAAlphabet.Index(tAA[j])] +
			query.PSSM3Di.Scores[i][subst.TDIAlphabet.Index(tTDI[j])]
	case target.Kind == ProfileOperand:
		return target.PSSMAA.Scores[j][subst.AAAlphabet.Index(qAA[i])] +
			target.PSSM3Di.Scores[j][subst.TDIAlphabet.Index(qTDI[i])]
	default:
		return matAA.Score(subst.AAAlphabet, qAA[i], tAA[j]) +
			mat3Di.Score(subst.TDIAlphabet, qTDI[i], tTDI[j])
	}
}

package foldalign

// MaskToMapping returns, in ascending order, the column indices i where
// mask[i] == '0'. '0' means "included" (unmasked); '1' means "excluded from
// profile construction" (dominated by gaps per the Henikoff weighting, see
// profile.Mask). This is the coordinate translator from a cluster's masked
// column space back to its full gapped alignment column space, used by the
// merger (§4.5) to translate a scorer backtrace, which runs over masked
// positions, back into real CIGAR splice offsets.
//
// The convention is easy to get backwards (it reads as though '1' should
// mean "yes, keep column 1"); spec §9 flags this explicitly, so keep it
// consistent everywhere a mask string is consumed.
func MaskToMapping(mask string) []int {
	idx := make([]int, 0, len(mask))
	for i := 0; i < len(mask); i++ {
		if mask[i] == '0' {
			idx = append(idx, i)
		}
	}
	return idx
}

// AddGaps appends n GAP positions to both the AA and 3Di channels in
// lock-step, preserving invariant I1 (identical gap structure across
// channels).
func AddGaps(dstAA, dstSS *Cigar, n int) {
	if n <= 0 {
		return
	}
	dstAA.AppendGap(n)
	dstSS.AppendGap(n)
}

// CigarCursor tracks a read position within a pair of in-register Cigars
// (the AA and 3Di channels of one source sequence), so CopyResidues can
// resume mid-run across repeated calls during a single merge splice.
type CigarCursor struct {
	aa, ss   Cigar
	idx      int // index of the next unconsumed Instruction
	consumed int // positions already taken from a partially-consumed GAP run
}

// NewCigarCursor creates a cursor positioned at the start of the given
// in-register AA/3Di Cigars.
func NewCigarCursor(aa, ss Cigar) *CigarCursor {
	if !SameGapStructure(aa, ss) {
		panic("foldalign: invariant I1 violated: AA/3Di cigars not in register")
	}
	return &CigarCursor{aa: aa, ss: ss}
}

// Done reports whether the cursor has consumed its entire source Cigar.
func (cur *CigarCursor) Done() bool { return cur.idx >= len(cur.aa) }

// CopyResidues copies n expanded positions from cur's source Cigars into
// dstAA/dstSS, starting at cur's current read offset. A source position may
// be a SEQ residue (copied to both channels) or part of a GAP run; a GAP run
// is split when fewer than its remaining count positions are requested.
// Advances cur past the copied positions.
func CopyResidues(dstAA, dstSS *Cigar, cur *CigarCursor, n int) {
	for n > 0 {
		if cur.Done() {
			panic("foldalign: CopyResidues read past the end of the source cigar")
		}
		inAA, inSS := cur.aa[cur.idx], cur.ss[cur.idx]
		if inAA.State() != inSS.State() {
			panic("foldalign: invariant I1 violated: AA/3Di state mismatch mid-copy")
		}
		switch inAA.State() {
		case SEQ:
			dstAA.AppendResidue(inAA.Residue())
			dstSS.AppendResidue(inSS.Residue())
			cur.idx++
			n--
		case GAP:
			remaining := int(inAA.Count()) - cur.consumed
			take := min(remaining, n)
			dstAA.AppendGap(take)
			dstSS.AppendGap(take)
			cur.consumed += take
			n -= take
			if cur.consumed == int(inAA.Count()) {
				cur.idx++
				cur.consumed = 0
			}
		default:
			panic("foldalign: unknown state in source cigar")
		}
	}
}

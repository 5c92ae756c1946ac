package foldalign

import "strings"

// State is one bit of an Instruction: whether it encodes a run of gap
// columns or a single aligned residue.
type State uint8

const (
	// SEQ marks a single aligned residue; the Instruction's count field is
	// reinterpreted as that residue's character code.
	SEQ State = 0
	// GAP marks a run of 1..127 gap columns.
	GAP State = 1
)

func (s State) String() string {
	if s == SEQ {
		return "SEQ"
	}
	return "GAP"
}

// Instruction is a single run-length element of a CIGAR: one bit of State in
// the high bit, a seven-bit count in the rest. When State is SEQ the count
// field holds the residue letter for that position rather than a run
// length, since a SEQ Instruction always encodes exactly one residue.
//
// This is the same bit-field shape as the original implementation's packed
// Instruction (state:1, count:7), kept here as a distinct byte type instead
// of Go's unexported-bitfield-via-struct idiom because splicing needs cheap
// copies and comparisons of whole Instructions.
type Instruction uint8

const maxRunLength = 127

// NewInstruction builds an Instruction from a state and count. count must
// fit in seven bits (0..127); callers that need longer gap runs must split
// them across multiple Instructions themselves (Cigar.appendGap does this).
func NewInstruction(state State, count byte) Instruction {
	if count > maxRunLength {
		panic("foldalign: instruction count exceeds 127")
	}
	return Instruction(uint8(state)<<7 | count)
}

// State reports whether in is a SEQ or GAP instruction.
func (in Instruction) State() State { return State(in >> 7) }

// Count returns the seven-bit count field: a gap run length for GAP, or the
// residue character code for SEQ.
func (in Instruction) Count() byte { return byte(in) & maxRunLength }

// Residue returns the residue letter of a SEQ instruction. Callers must not
// call this on a GAP instruction.
func (in Instruction) Residue() byte {
	if in.State() != SEQ {
		panic("foldalign: Residue called on a GAP instruction")
	}
	return in.Count()
}

// Cigar is an ordered run-length encoding of one channel (AA or 3Di) of a
// sequence's gapped alignment.
type Cigar []Instruction

// Append extends c with count elements of state. For GAP, count gap columns
// are appended, coalescing into the tail Instruction when it is already a
// GAP run with room (up to 127) and splitting across additional
// Instructions past that cap. For SEQ, residues must supply exactly count
// residue letters: one SEQ Instruction is pushed per residue, since a SEQ
// Instruction can never be coalesced with a neighbor (each encodes a single,
// possibly distinct, residue).
func (c *Cigar) Append(state State, count int, residues ...byte) {
	switch state {
	case GAP:
		if len(residues) != 0 {
			panic("foldalign: Append(GAP, ...) takes no residues")
		}
		c.appendGap(count)
	case SEQ:
		if len(residues) != count {
			panic("foldalign: Append(SEQ, count) requires exactly count residues")
		}
		for _, r := range residues {
			*c = append(*c, NewInstruction(SEQ, r))
		}
	default:
		panic("foldalign: unknown state")
	}
}

func (c *Cigar) appendGap(n int) {
	if n <= 0 {
		return
	}
	if len(*c) > 0 {
		tail := (*c)[len(*c)-1]
		if tail.State() == GAP {
			free := maxRunLength - int(tail.Count())
			if free > 0 {
				take := min(free, n)
				(*c)[len(*c)-1] = NewInstruction(GAP, tail.Count()+byte(take))
				n -= take
			}
		}
	}
	for n > 0 {
		take := min(n, maxRunLength)
		*c = append(*c, NewInstruction(GAP, byte(take)))
		n -= take
	}
}

// AppendResidue is a convenience wrapper for Append(SEQ, 1, r).
func (c *Cigar) AppendResidue(r byte) {
	*c = append(*c, NewInstruction(SEQ, r))
}

// AppendGap is a convenience wrapper for Append(GAP, n).
func (c *Cigar) AppendGap(n int) {
	c.appendGap(n)
}

// Expand materializes c as a gapped string, using '-' for GAP runs.
func Expand(c Cigar) string {
	var b strings.Builder
	for _, in := range c {
		switch in.State() {
		case SEQ:
			b.WriteByte(in.Residue())
		case GAP:
			b.WriteString(strings.Repeat("-", int(in.Count())))
		}
	}
	return b.String()
}

// Contract is the inverse of Expand: it builds a Cigar from a gapped string,
// splitting any gap run longer than 127 columns across multiple GAP
// Instructions and emitting one SEQ Instruction per non-gap character.
func Contract(s string) Cigar {
	c := make(Cigar, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '-' {
			j := i
			for j < len(s) && s[j] == '-' {
				j++
			}
			c.appendGap(j - i)
			i = j
			continue
		}
		c.AppendResidue(s[i])
		i++
	}
	return c
}

// NumSeq counts the SEQ instructions in c, i.e. the ungapped residue count
// (invariant I2 checks this against a structure's true length).
func NumSeq(c Cigar) int {
	n := 0
	for _, in := range c {
		if in.State() == SEQ {
			n++
		}
	}
	return n
}

// Len returns the expanded (gapped) length of c without materializing the
// string.
func Len(c Cigar) int {
	n := 0
	for _, in := range c {
		if in.State() == SEQ {
			n++
		} else {
			n += int(in.Count())
		}
	}
	return n
}

// SameGapStructure reports whether a and b have identical state and count
// at every GAP index and matching SEQ positions — invariant I1/P2's
// per-channel register check. It does not compare SEQ residue letters,
// since the AA and 3Di channels legitimately carry different letters at
// the same backbone position.
func SameGapStructure(a, b Cigar) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].State() != b[i].State() {
			return false
		}
		if a[i].State() == GAP && a[i].Count() != b[i].Count() {
			return false
		}
	}
	return true
}

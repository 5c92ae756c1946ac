package foldalign

import "testing"

// TestCigarRoundTrip checks P1: expand(contract(s)) == s, for strings not
// starting or ending with a gap run longer than 127.
func TestCigarRoundTrip(t *testing.T) {
	tests := []string{
		"ACDEFGHIKL",
		"AC--DE---FG",
		"--ACDEF",
		"ACDEF--",
		"A",
		"-",
		"",
		"ACD--EFG----HIKL",
	}
	for _, s := range tests {
		got := Expand(Contract(s))
		if got != s {
			t.Errorf("round-trip mismatch: Expand(Contract(%q)) = %q", s, got)
		}
	}
}

// TestCigarRoundTripLongGap checks the long-run split/coalesce path: a gap
// run far longer than 127 columns must still round-trip, split across
// multiple GAP Instructions transparently.
func TestCigarRoundTripLongGap(t *testing.T) {
	n := 300
	s := "A" + repeat('-', n) + "C"
	got := Expand(Contract(s))
	if got != s {
		t.Fatalf("long gap round-trip: got length %d, want %d", len(got), len(s))
	}
	c := Contract(s)
	gapInstrs := 0
	for _, in := range c {
		if in.State() == GAP {
			gapInstrs++
			if in.Count() > maxRunLength {
				t.Fatalf("GAP instruction count %d exceeds 127", in.Count())
			}
		}
	}
	if gapInstrs < 3 {
		t.Fatalf("expected a %d-column gap to split across >=3 Instructions, got %d", n, gapInstrs)
	}
}

func repeat(b byte, n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return string(out)
}

// TestAppendCoalescesGaps checks that consecutive GAP appends within the
// 127 cap coalesce into a single Instruction rather than pushing a new one
// each time.
func TestAppendCoalescesGaps(t *testing.T) {
	var c Cigar
	c.AppendGap(10)
	c.AppendGap(20)
	if len(c) != 1 {
		t.Fatalf("expected coalesced single GAP instruction, got %d instructions", len(c))
	}
	if c[0].Count() != 30 {
		t.Fatalf("expected count 30, got %d", c[0].Count())
	}
}

// TestAppendSplitsLongGap checks that a single gap run longer than 127
// splits across multiple Instructions, each capped at 127.
func TestAppendSplitsLongGap(t *testing.T) {
	var c Cigar
	c.AppendGap(300)
	total := 0
	for _, in := range c {
		if in.State() != GAP {
			t.Fatalf("expected all-GAP cigar, found %v", in.State())
		}
		if in.Count() > maxRunLength {
			t.Fatalf("instruction count %d exceeds cap", in.Count())
		}
		total += int(in.Count())
	}
	if total != 300 {
		t.Fatalf("total gap length = %d, want 300", total)
	}
}

// TestSeqNeverCoalesces checks that two adjacent SEQ instructions always
// stay distinct Instructions, since each encodes exactly one residue.
func TestSeqNeverCoalesces(t *testing.T) {
	var c Cigar
	c.AppendResidue('A')
	c.AppendResidue('C')
	if len(c) != 2 {
		t.Fatalf("expected 2 distinct SEQ instructions, got %d", len(c))
	}
	if c[0].Residue() != 'A' || c[1].Residue() != 'C' {
		t.Fatalf("residues not preserved: %c %c", c[0].Residue(), c[1].Residue())
	}
}

// TestNumSeqIsUngappedLength checks P3: the SEQ instruction count equals
// the ungapped residue count.
func TestNumSeqIsUngappedLength(t *testing.T) {
	s := "AC--DEF-GH"
	c := Contract(s)
	want := 0
	for _, b := range s {
		if b != '-' {
			want++
		}
	}
	if got := NumSeq(c); got != want {
		t.Fatalf("NumSeq = %d, want %d", got, want)
	}
}

func TestSameGapStructure(t *testing.T) {
	aa := Contract("AC--DE")
	ss := Contract("XY--ZW")
	if !SameGapStructure(aa, ss) {
		t.Fatal("expected matching gap structure across channels with different residues")
	}
	other := Contract("AC---DE")
	if SameGapStructure(aa, other) {
		t.Fatal("expected mismatched gap structure to be detected")
	}
}

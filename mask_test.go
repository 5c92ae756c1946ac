package foldalign

import (
	"reflect"
	"testing"
)

func TestMaskToMapping(t *testing.T) {
	mask := "0011000"
	got := MaskToMapping(mask)
	want := []int{0, 1, 4, 5, 6}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MaskToMapping(%q) = %v, want %v", mask, got, want)
	}
}

func TestAddGapsKeepsChannelsInRegister(t *testing.T) {
	var aa, ss Cigar
	AddGaps(&aa, &ss, 5)
	if !SameGapStructure(aa, ss) {
		t.Fatal("AddGaps left channels out of register")
	}
	if Len(aa) != 5 {
		t.Fatalf("Len(aa) = %d, want 5", Len(aa))
	}
}

func TestCopyResiduesAcrossGapSplit(t *testing.T) {
	srcAA := Contract("AC----DE")
	srcSS := Contract("XY----ZW")
	cur := NewCigarCursor(srcAA, srcSS)

	var dstAA, dstSS Cigar
	// Copy "AC--" (2 seq + 2 of the gap run), leaving "--DE" unconsumed.
	CopyResidues(&dstAA, &dstSS, cur, 4)
	if Expand(dstAA) != "AC--" {
		t.Fatalf("first copy AA = %q, want %q", Expand(dstAA), "AC--")
	}
	if Expand(dstSS) != "XY--" {
		t.Fatalf("first copy SS = %q, want %q", Expand(dstSS), "XY--")
	}

	// Copy the rest; must resume mid-gap-run correctly.
	CopyResidues(&dstAA, &dstSS, cur, 4)
	if Expand(dstAA) != Expand(srcAA) {
		t.Fatalf("after full copy AA = %q, want %q", Expand(dstAA), Expand(srcAA))
	}
	if Expand(dstSS) != Expand(srcSS) {
		t.Fatalf("after full copy SS = %q, want %q", Expand(dstSS), Expand(srcSS))
	}
	if !cur.Done() {
		t.Fatal("cursor should be exhausted after copying the full source length")
	}
}

func TestCopyResiduesPanicsOnOverrun(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic reading past end of source cigar")
		}
	}()
	srcAA := Contract("AC")
	srcSS := Contract("XY")
	cur := NewCigarCursor(srcAA, srcSS)
	var dstAA, dstSS Cigar
	CopyResidues(&dstAA, &dstSS, cur, 3)
}

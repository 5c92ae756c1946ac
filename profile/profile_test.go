package profile

import (
	"testing"

	"github.com/ndaniels/foldalign/subst"
)

func TestMaskMarksConservedGapColumn(t *testing.T) {
	// Column 2 is a gap in every member but one: should mask.
	// Column 0 is never a gap: should not mask.
	gapped := []string{
		"AC-DE",
		"AC-DE",
		"ACADE",
	}
	lengths := []int{4, 4, 5}
	mask := Mask(gapped, lengths, 0.51)
	if len(mask) != 5 {
		t.Fatalf("mask length = %d, want 5", len(mask))
	}
	if mask[0] != '0' {
		t.Fatalf("column 0 should not be masked, got %c", mask[0])
	}
	if mask[2] != '1' {
		t.Fatalf("column 2 should be masked (2/3 gap), got %c", mask[2])
	}
}

func TestMaskExcludesEndGaps(t *testing.T) {
	// Column 0 is a leading gap for one member, a real residue for the
	// other two: end gaps should not inflate its gap fraction.
	gapped := []string{
		"-BCDE",
		"ABCDE",
		"ABCDE",
	}
	lengths := []int{4, 5, 5}
	mask := Mask(gapped, lengths, 0.51)
	if mask[0] != '0' {
		t.Fatalf("leading end-gap column should not be masked on its own, got %c", mask[0])
	}
}

func TestReduceColumnsDropsMaskedColumns(t *testing.T) {
	msa := []string{"ABCDE", "FGHIJ"}
	mask := "00100"
	got := ReduceColumns(msa, mask)
	want := []string{"ABDE", "FGIJ"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReduceColumns[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFilterDropsNearDuplicates(t *testing.T) {
	msa := []string{
		"ACDEFGHIKL",
		"ACDEFGHIKL", // identical to row 0, should be dropped
		"ACDEFGHIKM", // differs in one column, still very similar
		"YYYYYYYYYY", // dissimilar, should survive
	}
	p := DefaultParams
	p.FilterMaxSeqID = 0.95
	keep := Filter(msa, p)
	found := map[int]bool{}
	for _, k := range keep {
		found[k] = true
	}
	if !found[0] {
		t.Fatal("expected first occurrence to be retained")
	}
	if found[1] {
		t.Fatal("expected exact duplicate to be filtered out")
	}
	if !found[3] {
		t.Fatal("expected dissimilar sequence to be retained")
	}
}

func TestFilterDisabledKeepsEverything(t *testing.T) {
	msa := []string{"ACDEFGHIKL", "ACDEFGHIKL"}
	p := DefaultParams
	p.FilterMSA = false
	keep := Filter(msa, p)
	if len(keep) != 2 {
		t.Fatalf("expected all rows kept when filtering disabled, got %d", len(keep))
	}
}

func TestFilterQidDropsLowIdentityMembers(t *testing.T) {
	msa := []string{
		"ACDEFGHIKL",
		"ACDEFGHIKL", // identical to query, passes any qid
		"YYYYYYYYYY", // 0% identity to query, should fail a strict qid
	}
	p := DefaultParams
	p.FilterMaxSeqID = 1.1 // disable the dedup step so qid is isolated
	p.Qid = []float64{0.9}
	keep := Filter(msa, p)
	found := map[int]bool{}
	for _, k := range keep {
		found[k] = true
	}
	if !found[1] {
		t.Fatal("expected identical-to-query row to pass a 0.9 qid threshold")
	}
	if found[2] {
		t.Fatal("expected a fully dissimilar row to fail a 0.9 qid threshold")
	}
}

func TestFilterNdiffCapsRetainedCount(t *testing.T) {
	msa := []string{
		"ACDEFGHIKL",
		"ACDEFGHIKM",
		"ACDEFGHIKN",
		"YYYYYYYYYY",
	}
	p := DefaultParams
	p.FilterMaxSeqID = 1.1 // keep every row through dedup
	p.Ndiff = 2
	keep := Filter(msa, p)
	if len(keep) != 2 {
		t.Fatalf("got %d retained rows, want 2 (Ndiff cap)", len(keep))
	}
}

func TestBuildPSSMConsensusMatchesUniformColumn(t *testing.T) {
	msa := []string{"AAA", "AAA", "AAA", "ACA"}
	p := DefaultParams
	pssm := BuildPSSM(msa, subst.AAAlphabet, subst.BLOSUM62, p)
	if pssm.Cols() != 3 {
		t.Fatalf("Cols() = %d, want 3", pssm.Cols())
	}
	if pssm.Consensus[0] != 'A' {
		t.Fatalf("column 0 consensus = %c, want A (4/4 sequences agree)", pssm.Consensus[0])
	}
	if pssm.Consensus[2] != 'A' {
		t.Fatalf("column 2 consensus = %c, want A", pssm.Consensus[2])
	}
}

func TestBuildFromMSARoundTrip(t *testing.T) {
	msaAA := []string{
		"ACDEFG",
		"AC-EFG",
		"ACDE-G",
	}
	msa3Di := []string{
		"ACDEFG",
		"AC-EFG",
		"ACDE-G",
	}
	lengths := []int{6, 5, 5}
	pssmAA, pssm3di, mask := BuildFromMSA(msaAA, msa3Di, lengths, DefaultParams)
	if len(mask) != 6 {
		t.Fatalf("mask length = %d, want 6", len(mask))
	}
	if pssmAA.Cols() != pssm3di.Cols() {
		t.Fatalf("AA/3Di profile column counts differ: %d vs %d", pssmAA.Cols(), pssm3di.Cols())
	}
	if pssmAA.Cols() == 0 {
		t.Fatal("expected at least one retained column")
	}
}

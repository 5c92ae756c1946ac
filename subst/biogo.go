package subst

import "github.com/biogo/biogo/alphabet"

// proteinAlphabet returns biogo's standard protein alphabet.Alphabet, used
// by AAAlphabet for FASTA encoding (store package) and letter validation at
// the structure-parsing boundary (§6's "AA sequences" store).
func proteinAlphabet() alphabet.Alphabet {
	return alphabet.Protein
}

// tdiAlphabetLetters is reused by structAlphabet below; defined here so both
// the alphabet.General construction and the AALetters-style constant sit
// next to the rest of the biogo wiring.
const tdiAlphabetLetters = TDILetters

// structAlphabet builds a biogo alphabet.Alphabet over the 3Di letters.
// biogo has no built-in structural alphabet (it predates structural
// alphabets entirely), so this is the one place a custom alphabet.General
// is assembled rather than reusing a pack-provided value — still the same
// library's construction path the pack uses elsewhere for anything that
// isn't DNA/RNA/protein.
func structAlphabet() alphabet.Alphabet {
	a, err := alphabet.NewGeneral("3di", tdiAlphabetLetters, "", '-', '*', false)
	if err != nil {
		panic("foldalign/subst: building 3Di alphabet: " + err.Error())
	}
	return a
}

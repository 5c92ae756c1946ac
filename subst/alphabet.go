// Package subst holds the two substitution matrices the scorer mixes
// additively (§4.2): a standard amino-acid BLOSUM62 table and a 3Di
// structural-alphabet table, plus the letter-to-index mapping each is keyed
// by.
package subst

import "github.com/biogo/biogo/alphabet"

// Alphabet pairs a biogo alphabet.Alphabet — used for FASTA encoding and
// membership checks at the I/O boundary — with a byte-to-index table for
// fast matrix lookups in the scorer's hot path. This generalizes the
// teacher's aminoValue/alphaNums fixed base-20 table (kmer_hash.go) from "20
// amino acids, panics on anything else" to an arbitrary small alphabet, so
// the same type serves both the AA and the 3Di channel.
type Alphabet struct {
	Alpha   alphabet.Alphabet
	Letters string
	index   [256]int8
}

// NewAlphabet builds an Alphabet over letters, in the order Matrix rows and
// columns are indexed.
func NewAlphabet(a alphabet.Alphabet, letters string) *Alphabet {
	al := &Alphabet{Alpha: a, Letters: letters}
	for i := range al.index {
		al.index[i] = -1
	}
	for i := 0; i < len(letters); i++ {
		al.index[letters[i]] = int8(i)
	}
	return al
}

// Size is the number of letters in the alphabet.
func (a *Alphabet) Size() int { return len(a.Letters) }

// Index returns letter's row/column position in a Matrix built over a. It
// panics on an out-of-alphabet letter, the same fail-fast contract as the
// teacher's aminoValue (kmer_hash.go) — an invalid residue byte reaching the
// scorer is a bug in an upstream collaborator (structure parsing), not a
// recoverable condition here.
func (a *Alphabet) Index(letter byte) int {
	v := a.index[letter]
	if v < 0 {
		panic("foldalign/subst: letter out of alphabet: " + string(letter))
	}
	return int(v)
}

// Valid reports whether letter belongs to the alphabet, without panicking.
func (a *Alphabet) Valid(letter byte) bool {
	return a.index[letter] >= 0
}

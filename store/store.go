// Package store handles the on-disk side of a run (§5): reading input
// structures (AA sequence, 3Di sequence, Cα coordinates), a header/dbKey
// lookup table for Newick leaf attachment, and writing the final aligned
// FASTA and Newick outputs. It is the only package that touches the
// filesystem directly; everything else operates on in-memory foldalign
// types.
package store

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/ndaniels/foldalign"
)

// HeaderStore is the bidirectional name<->dbKey lookup table a run needs to
// attach Newick leaf labels back to loaded structures (§5 "Header
// tracking").
type HeaderStore struct {
	headers []string
	byName  map[string]int
}

// NewHeaderStore builds an empty HeaderStore.
func NewHeaderStore() *HeaderStore {
	return &HeaderStore{byName: make(map[string]int)}
}

// Add registers header under the next available dbKey and returns it. A
// header seen twice keeps its first dbKey (structure lists are expected to
// have unique headers; a repeat likely means a duplicated input file).
func (h *HeaderStore) Add(header string) int {
	if id, ok := h.byName[header]; ok {
		return id
	}
	id := len(h.headers)
	h.headers = append(h.headers, header)
	h.byName[header] = id
	return id
}

// Lookup resolves a header back to its dbKey.
func (h *HeaderStore) Lookup(header string) (int, bool) {
	id, ok := h.byName[header]
	return id, ok
}

// Header returns the header registered for dbKey.
func (h *HeaderStore) Header(dbKey int) string { return h.headers[dbKey] }

// LoadStructures reads matched AA and 3Di multi-FASTA files plus one Cα
// coordinate file per structure (named <caDir>/<header>.ca, one residue's
// "x y z" per line) and builds the process-wide, read-only structure set
// §9's "Ownership" note describes. Both FASTA files must list structures
// in the same order with matching headers and lengths (I3's register
// requirement starts at load time, not just after merges). maxSeqLen, when
// positive, drops any structure longer than it (--max-seq-len, §6) before
// it is ever registered with headers, so dbKeys stay dense over exactly
// the structures the run will actually use.
func LoadStructures(aaPath, tdiPath, caDir string, headers *HeaderStore, maxSeqLen int) ([]*foldalign.Structure, error) {
	aaIdx, err := BuildIndexFile(aaPath)
	if err != nil {
		return nil, fmt.Errorf("store: indexing %s: %w", aaPath, err)
	}
	defer aaIdx.Remove()
	tdiIdx, err := BuildIndexFile(tdiPath)
	if err != nil {
		return nil, fmt.Errorf("store: indexing %s: %w", tdiPath, err)
	}
	defer tdiIdx.Remove()

	aaSeqs, aaNames, err := readFasta(aaPath, alphabet.Protein)
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %w", aaPath, err)
	}
	tdiSeqs, tdiNames, err := readFasta(tdiPath, alphabet.Protein)
	if err != nil {
		return nil, fmt.Errorf("store: reading %s: %w", tdiPath, err)
	}
	if len(aaSeqs) != len(tdiSeqs) {
		return nil, fmt.Errorf("store: %s has %d sequences, %s has %d", aaPath, len(aaSeqs), tdiPath, len(tdiSeqs))
	}

	structures := make([]*foldalign.Structure, 0, len(aaSeqs))
	for i := range aaSeqs {
		if aaNames[i] != tdiNames[i] {
			return nil, fmt.Errorf("store: header mismatch at record %d: %q vs %q", i, aaNames[i], tdiNames[i])
		}
		if len(aaSeqs[i]) != len(tdiSeqs[i]) {
			return nil, fmt.Errorf("store: %q has mismatched AA/3Di length (%d vs %d)", aaNames[i], len(aaSeqs[i]), len(tdiSeqs[i]))
		}
		if maxSeqLen > 0 && len(aaSeqs[i]) > maxSeqLen {
			foldalign.Vprintf(1, "store: dropping %q (%d residues exceeds --max-seq-len %d)\n", aaNames[i], len(aaSeqs[i]), maxSeqLen)
			continue
		}
		ca, err := loadCA(caDir, aaNames[i], len(aaSeqs[i]))
		if err != nil {
			return nil, err
		}
		dbKey := headers.Add(aaNames[i])
		structures = append(structures, &foldalign.Structure{
			DBKey:  dbKey,
			Header: aaNames[i],
			AA:     aaSeqs[i],
			TDI:    tdiSeqs[i],
			CA:     ca,
		})
	}
	return structures, nil
}

func readFasta(path string, alpha alphabet.Alphabet) (seqs [][]byte, names []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := fasta.NewReader(f, linear.NewSeq("", nil, alpha))
	sc := seqio.NewScanner(r)
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		names = append(names, s.Name())
		b := make([]byte, s.Len())
		for i := 0; i < s.Len(); i++ {
			b[i] = byte(s.At(i).L)
		}
		seqs = append(seqs, b)
	}
	return seqs, names, sc.Error()
}

func loadCA(dir, header string, n int) ([][3]float64, error) {
	path := dir + "/" + sanitize(header) + ".ca"
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: reading Cα coordinates for %q: %w", header, err)
	}
	defer f.Close()

	ca := make([][3]float64, 0, n)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 {
			continue
		}
		var xyz [3]float64
		for k, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("store: parsing coordinate in %s: %w", path, err)
			}
			xyz[k] = v
		}
		ca = append(ca, xyz)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(ca) != n {
		return nil, fmt.Errorf("store: %s has %d coordinates, want %d", path, len(ca), n)
	}
	return ca, nil
}

func sanitize(header string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', ' ', '\t':
			return '_'
		}
		return r
	}, header)
}

// ParseClusterDB reads a cluster-database mapping file for Stage B seeding
// (--precluster <cluster-db>, §4.3): each non-blank, non-comment line lists
// a cluster representative's display name followed by its member display
// names, whitespace-separated ("repHeader member1 member2 ..."). A
// representative named on more than one line accumulates members across
// every line it appears on.
func ParseClusterDB(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: reading cluster database %s: %w", path, err)
	}
	defer f.Close()

	clusters := make(map[string][]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		rep := fields[0]
		clusters[rep] = append(clusters[rep], fields[1:]...)
	}
	return clusters, sc.Err()
}

// WriteFasta writes headers[i]/seqs[i] pairs to path using biogo's fasta
// writer, the final "_aa.fa"/"_3di.fa" outputs (§5).
func WriteFasta(path string, headers, seqs []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := fasta.NewWriter(f, 60)
	for i := range headers {
		s := linear.NewSeq(headers[i], alphabet.BytesToLetters([]byte(seqs[i])), alphabet.Protein)
		if _, err := w.Write(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteNewick writes a guide tree's Newick string to path (§5's ".nw"
// output).
func WriteNewick(path, newick string) error {
	return os.WriteFile(path, []byte(strings.TrimSuffix(newick, "\n")+"\n"), 0644)
}

// IndexFile is the transient per-run index the loader builds while
// scanning a FASTA file, mapping each structure to its byte offset so a
// long run can reopen the file and seek directly to one record instead of
// rescanning — the same byte-offset index teacher/io.go's saveFasta builds
// for the coarse database, but written to its own small file next to the
// input (<path>.index) and removed once the run that built it exits,
// since nothing outside a single run needs it.
type IndexFile struct {
	path    string
	offsets []int64
}

// BuildIndexFile scans path's FASTA records and writes path+".index" as
// one decimal byte offset per line.
func BuildIndexFile(path string) (*IndexFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx := &IndexFile{path: path + ".index"}
	var off int64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ">") {
			idx.offsets = append(idx.offsets, off)
		}
		off += int64(len(line)) + 1
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	out, err := os.Create(idx.path)
	if err != nil {
		return nil, err
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	for _, o := range idx.offsets {
		fmt.Fprintln(w, o)
	}
	return idx, w.Flush()
}

// Remove deletes the index file from disk. Callers defer this right after
// BuildIndexFile succeeds, so the index never outlives the run that built
// it.
func (idx *IndexFile) Remove() error {
	if idx == nil {
		return nil
	}
	return os.Remove(idx.path)
}

// Offset returns the byte offset of record i.
func (idx *IndexFile) Offset(i int) int64 { return idx.offsets[i] }

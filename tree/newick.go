package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Node is a guide tree node parsed from a Newick string (--guide-tree):
// a leaf has a non-empty Label and no Children; an internal node has
// Children and an empty Label.
type Node struct {
	Label    string
	Length   float64
	Children []*Node
}

// IsLeaf reports whether n is a tree leaf.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// ParseNewick parses a single Newick tree string (e.g. "(A,(B,C));"),
// supporting branch lengths and unquoted labels. It does not support
// quoted labels with embedded punctuation or NHX comments, since
// spec.md's guide-tree input is tree topology only.
func ParseNewick(s string) (*Node, error) {
	p := &newickParser{s: s}
	p.skipSpace()
	n, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == ';' {
		p.pos++
	}
	return n, nil
}

type newickParser struct {
	s   string
	pos int
}

func (p *newickParser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n') {
		p.pos++
	}
}

func (p *newickParser) parseNode() (*Node, error) {
	p.skipSpace()
	n := &Node{}
	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		p.pos++
		for {
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
			p.skipSpace()
			if p.pos >= len(p.s) {
				return nil, fmt.Errorf("tree: unexpected end of input inside group")
			}
			if p.s[p.pos] == ',' {
				p.pos++
				continue
			}
			if p.s[p.pos] == ')' {
				p.pos++
				break
			}
			return nil, fmt.Errorf("tree: expected ',' or ')' at position %d", p.pos)
		}
	}
	label, length := p.parseLabelAndLength()
	n.Label = label
	n.Length = length
	return n, nil
}

func (p *newickParser) parseLabelAndLength() (string, float64) {
	start := p.pos
	for p.pos < len(p.s) && !strings.ContainsRune(",():;", rune(p.s[p.pos])) {
		p.pos++
	}
	token := p.s[start:p.pos]
	label, lenStr, hasLen := strings.Cut(token, ":")
	var length float64
	if hasLen {
		length, _ = strconv.ParseFloat(strings.TrimSpace(lenStr), 64)
	}
	return strings.TrimSpace(label), length
}

// Leaves returns n's leaf labels in left-to-right order.
func (n *Node) Leaves() []string {
	if n.IsLeaf() {
		return []string{n.Label}
	}
	var out []string
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

// PostOrderMerges walks n post-order and emits one Edge per internal node,
// joining its first two children's representative leaf index (the
// smallest labelIndex value among the leaves under each child) in
// visitation order — the
// shape a Newick-supplied guide tree needs to drive the same round
// scheduling MaxSpanningTree's output does (§4.3 "guide tree from an
// external source"). Internal nodes with more than two children are
// resolved as a left-deep cascade of binary merges. Returns an error
// naming the offending label if a leaf's label has no entry in
// labelIndex (§7 "Input-not-found": a structure named in a user-supplied
// Newick tree has no matching entry in the headers lookup), since a
// missing-key lookup would otherwise silently resolve to index 0.
func PostOrderMerges(n *Node, labelIndex map[string]int) ([]Edge, error) {
	var edges []Edge
	var walkErr error
	var walk func(*Node) int
	walk = func(node *Node) int {
		if node.IsLeaf() {
			idx, ok := labelIndex[node.Label]
			if !ok && walkErr == nil {
				walkErr = fmt.Errorf("guide tree: label %q has no matching structure", node.Label)
			}
			return idx
		}
		rep := walk(node.Children[0])
		for _, child := range node.Children[1:] {
			other := walk(child)
			edges = append(edges, Edge{A: rep, B: other})
			if other < rep {
				rep = other
			}
		}
		return rep
	}
	walk(n)
	if walkErr != nil {
		return nil, walkErr
	}
	return edges, nil
}

// Package graph implements the variant-graph data model: nodes carrying
// sequence and per-sample membership, a shared immutable node pool, forward
// and reverse adjacency, an explicit topological order, and the three
// derivation modes (population filter, reference-only, maximum-allele-
// frequency projection).
//
// Grounded on original_source/include/graph.h's vargas::Graph::Node and
// vargas::Graph, reworked from a shared_ptr<unordered_map> pool into an
// arena-style pool (per spec.md §9's "arena + index" recommendation): ids
// are issued by a pool-owned generator rather than a single process-wide
// static counter, which is what makes independent pools safe in tests.
package graph

import (
	"fmt"

	"vargo/bitset"
	"vargo/seqcode"
)

// RefFrequency is the sentinel allele frequency recorded for reference
// nodes; any value >= 1 means "this is a reference allele, not a variant
// with a measured population frequency".
const RefFrequency = 1.0

// Node is a single fragment of sequence in the variant graph: a run of
// bases that is either on the linear reference or is one alternate allele
// of a variant, tagged with the cohort chromosomes that carry it.
type Node struct {
	id         int64
	seq        []seqcode.Base
	rawAllele  string // verbatim ALT token for opaque structural-variant symbols, e.g. "<CN2>"
	endPos     int    // 1-based inclusive end position in reference coordinates
	isRef      bool
	af         float64
	membership *bitset.Set
}

// NewNode constructs a Node from text sequence. popSize is 2*S (S = number
// of diploid samples); membership starts all-clear. The id is issued by
// pool's generator.
func NewNode(pool *Pool, text string, popSize int) *Node {
	return &Node{
		id:         pool.nextID(),
		seq:        seqcode.Encode(text),
		af:         RefFrequency,
		membership: bitset.New(popSize),
	}
}

// ID returns the node's stable numeric identifier.
func (n *Node) ID() int64 { return n.id }

// SetID overrides the id explicitly, advancing the owning pool's generator
// if necessary so future auto-issued ids never collide with it.
func (n *Node) SetID(pool *Pool, id int64) {
	n.id = id
	pool.observeID(id)
}

// Len returns the length of the node's encoded sequence.
func (n *Node) Len() int { return len(n.seq) }

// Seq returns the node's sequence in numeric form.
func (n *Node) Seq() []seqcode.Base { return n.seq }

// SeqString returns the node's sequence as canonical uppercase text, or the
// verbatim structural-variant token if one was set with SetRawAllele.
func (n *Node) SeqString() string {
	if n.rawAllele != "" {
		return n.rawAllele
	}
	return seqcode.Decode(n.seq)
}

// SetSeq replaces the node's sequence from text.
func (n *Node) SetSeq(text string) { n.seq = seqcode.Encode(text) }

// SetRawAllele marks this node as carrying an opaque structural-variant ALT
// token (e.g. "<CN2>"). The token participates in topology but has no
// meaningful bases: the aligner must treat it as unmatchable. See spec.md
// §4.5's edge case and §9's open question — this behaviour is preserved
// verbatim, not resolved.
func (n *Node) SetRawAllele(token string) {
	n.rawAllele = token
	n.seq = nil
}

// IsStructural reports whether this node carries an opaque SV token instead
// of real sequence.
func (n *Node) IsStructural() bool { return n.rawAllele != "" }

// End returns the 1-based inclusive end position in reference coordinates.
func (n *Node) End() int { return n.endPos }

// SetEnd sets the end position.
func (n *Node) SetEnd(pos int) { n.endPos = pos }

// IsRef reports whether this is a reference node.
func (n *Node) IsRef() bool { return n.isRef }

// SetAsRef marks the node as a reference node. Membership queries on a
// reference node always report "present" regardless of the bitset.
func (n *Node) SetAsRef() {
	n.isRef = true
	if n.af >= 1 {
		n.af = RefFrequency
	}
}

// SetNotRef marks the node as a non-reference (variant) node.
func (n *Node) SetNotRef() { n.isRef = false }

// Freq returns the allele frequency; RefFrequency (or any value >= 1) means
// "this is the reference allele".
func (n *Node) Freq() float64 { return n.af }

// SetFreq sets the allele frequency. Variant nodes must have one supplied
// explicitly by the builder; it is an error for a non-reference node to
// carry a frequency >= 1 (that would make it indistinguishable from a
// reference allele during MAXAF derivation).
func (n *Node) SetFreq(af float64) error {
	if !n.isRef && af >= 1 {
		return fmt.Errorf("graph: variant node %d must have allele frequency < 1, got %v", n.id, af)
	}
	n.af = af
	return nil
}

// Membership returns the node's sample-membership bitset.
func (n *Node) Membership() *bitset.Set { return n.membership }

// SetMembership replaces the node's membership bitset.
func (n *Node) SetMembership(m *bitset.Set) { n.membership = m }

// Belongs reports whether chromosome i carries this node's allele. A
// reference node always reports present; membership semantics per
// spec.md §3.2.
func (n *Node) Belongs(i int) bool {
	if n.isRef {
		return true
	}
	return n.membership.Get(i)
}

// Overlaps reports whether a reference node should be kept by
// derive_by_filter (always true) or whether a non-reference node shares any
// set bit with the population filter p.
func (n *Node) Overlaps(p *bitset.Set) bool {
	if n.isRef {
		return true
	}
	return n.membership.Intersects(p)
}

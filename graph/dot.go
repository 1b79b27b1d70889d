package graph

import (
	"fmt"
	"strings"
)

// ToDOT renders g as a Graphviz DOT string for debugging. Not part of any
// correctness contract (spec.md §4.4). Label format follows
// original_source/include/graph.h's to_DOT: "seq\nend,freq" per node.
func (g *Graph) ToDOT(name string) string {
	var b strings.Builder
	b.WriteString("// Each node has the sequence, followed by end_pos,allele_freq\n")
	fmt.Fprintf(&b, "digraph %s {\n", name)
	for _, id := range g.insertion {
		n := g.pool.Get(id)
		fmt.Fprintf(&b, "%d[label=\"%s\n%d,%v\"];\n", id, n.SeqString(), n.End(), n.Freq())
	}
	for a, succs := range g.next {
		for _, bID := range succs {
			fmt.Fprintf(&b, "%d -> %d;\n", a, bID)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

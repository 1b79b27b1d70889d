package builder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"vargo/external"
)

// emptyVariantStream yields no records; used for the linear-graph scenario.
type emptyVariantStream struct {
	samples int
}

func (e *emptyVariantStream) Next() bool                 { return false }
func (e *emptyVariantStream) Record() external.VariantRecord { return external.VariantRecord{} }
func (e *emptyVariantStream) Err() error                  { return nil }
func (e *emptyVariantStream) NumSamples() int             { return e.samples }
func (e *emptyVariantStream) Close() error                { return nil }

func TestLinearGraphFromEmptyVCF(t *testing.T) {
	// spec.md §8 scenario 1: 560bp chromosome, empty VCF, region x:0-560,
	// node-length 80 -> 7 reference nodes of length 80 each.
	seq := strings.Repeat("ACGT", 140) // 560 bases
	ref := external.NewInMemoryReference([]string{"x"}, map[string]string{"x": seq})

	g, err := Build(ref, &emptyVariantStream{samples: 0}, Options{
		Region:     external.Region{Chrom: "x", Lower: 0, Upper: 560},
		MaxNodeLen: 80,
	})
	require.NoError(t, err)

	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Len(t, order, 7)
	for _, id := range order {
		require.Equal(t, 80, g.Node(id).Len())
	}

	d, err := g.DeriveReference()
	require.NoError(t, err)
	dOrder, err := d.TopologicalOrder()
	require.NoError(t, err)
	require.Equal(t, order, dOrder)
}

// fixedVariantStream yields one hardcoded VariantRecord for the node-split
// scenario in spec.md §8 scenario 5.
type fixedVariantStream struct {
	recs    []external.VariantRecord
	idx     int
	samples int
}

func (f *fixedVariantStream) Next() bool {
	if f.idx >= len(f.recs) {
		return false
	}
	f.idx++
	return true
}
func (f *fixedVariantStream) Record() external.VariantRecord { return f.recs[f.idx-1] }
func (f *fixedVariantStream) Err() error                      { return nil }
func (f *fixedVariantStream) NumSamples() int                  { return f.samples }
func (f *fixedVariantStream) Close() error                     { return nil }

func TestNodeSplitAroundVariant(t *testing.T) {
	// spec.md §8 scenario 5: region x:0-15, node-length 5, variant at
	// 1-based position 9 (Pos 8, 0-based), G -> {A,C,T} with AFs
	// (0.01, 0.6, 0.1). Reference text is built so the first 8 bases split
	// into a 5-base chunk then a 3-base chunk ("CAAAT" then "AAG", as given
	// in the scenario).
	seq := "CAAATAAGGTTTTTT" // 15 bases: CAAAT|AAG|G(ref allele)|TTTTTT(tail)
	ref := external.NewInMemoryReference([]string{"x"}, map[string]string{"x": seq})

	rec := external.VariantRecord{
		Pos: 8,
		Ref: "G",
		Alt: []string{"A", "C", "T"},
		AF:  []float64{0.29, 0.01, 0.6, 0.1},
		Allele: func(i int) []bool {
			return []bool{}
		},
	}

	g, err := Build(ref, &fixedVariantStream{recs: []external.VariantRecord{rec}, samples: 0}, Options{
		Region:     external.Region{Chrom: "x", Lower: 0, Upper: 15},
		MaxNodeLen: 5,
	})
	require.NoError(t, err)

	order, err := g.TopologicalOrder()
	require.NoError(t, err)

	require.Equal(t, "CAAAT", g.Node(order[0]).SeqString())
	require.Equal(t, "AAG", g.Node(order[1]).SeqString())
	// Followed by 4 one-base nodes: ref G, then alts A, C, T. The
	// topological order does not fix the order of sibling nodes, so the
	// four are checked in the order the builder emitted them.
	emitted := g.InsertionOrder()
	require.Equal(t, "G", g.Node(emitted[2]).SeqString())
	require.True(t, g.Node(emitted[2]).IsRef())
	require.Equal(t, "A", g.Node(emitted[3]).SeqString())
	require.Equal(t, "C", g.Node(emitted[4]).SeqString())
	require.Equal(t, "T", g.Node(emitted[5]).SeqString())
}

func TestStructuralVariantTokenCarriedVerbatim(t *testing.T) {
	seq := "AAAAAAAAAA"
	ref := external.NewInMemoryReference([]string{"x"}, map[string]string{"x": seq})
	rec := external.VariantRecord{
		Pos: 5,
		Ref: "A",
		Alt: []string{"<CN2>"},
		AF:  []float64{0.9, 0.1},
		Allele: func(i int) []bool { return []bool{} },
	}
	g, err := Build(ref, &fixedVariantStream{recs: []external.VariantRecord{rec}, samples: 0}, Options{
		Region:     external.Region{Chrom: "x", Lower: 0, Upper: 10},
		MaxNodeLen: 5,
	})
	require.NoError(t, err)
	order, err := g.TopologicalOrder()
	require.NoError(t, err)

	var found bool
	for _, id := range order {
		n := g.Node(id)
		if n.IsStructural() {
			found = true
			require.Equal(t, "<CN2>", n.SeqString())
		}
	}
	require.True(t, found)
}

func TestRejectsInvalidIngroup(t *testing.T) {
	ref := external.NewInMemoryReference([]string{"x"}, map[string]string{"x": "AAAA"})
	_, err := Build(ref, &emptyVariantStream{}, Options{
		Region:     external.Region{Chrom: "x", Lower: 0, Upper: 4},
		MaxNodeLen: 5,
		IngroupPct: 150,
	})
	require.Error(t, err)
}

package sim

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"vargo/graph"
)

func buildLinear(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewBase()
	g.SetPopSize(0)
	var prev int64
	pos := 0
	for i, s := range []string{"AAAAAAAAAA", "CCCCCCCCCC", "GGGGGGGGGG"} {
		n := graph.NewNode(g.Pool(), s, 0)
		n.SetAsRef()
		pos += len(s)
		n.SetEnd(pos)
		id := g.AddNode(n)
		if i > 0 {
			require.NoError(t, g.AddEdge(prev, id))
		}
		prev = id
	}
	require.NoError(t, g.Finalize())
	return g
}

func TestGenerateProducesRequestedLength(t *testing.T) {
	g := buildLinear(t)
	rng := rand.New(rand.NewSource(1))
	profile := Profile{
		ReadLen:                 10,
		SubCount:                0,
		IndCount:                0,
		MinVariantNodeCrossings: -1,
		MaxVariantNodeCrossings: -1,
		MinVariantBaseCoverage:  -1,
		MaxVariantBaseCoverage:  -1,
	}
	r, err := Generate(g, profile, rng, 1000)
	require.NoError(t, err)
	require.Len(t, r.Seq, 10)
	require.Equal(t, 0, r.Sub)
	require.Equal(t, 0, r.Ind)
}

func TestGenerateRejectsWhenVariantFilterUnsatisfiable(t *testing.T) {
	g := buildLinear(t) // pure reference graph: no node is ever a variant
	rng := rand.New(rand.NewSource(2))
	profile := Profile{
		ReadLen:                 5,
		SubCount:                0,
		IndCount:                0,
		MinVariantNodeCrossings: 1,
		MaxVariantNodeCrossings: -1,
		MinVariantBaseCoverage:  -1,
		MaxVariantBaseCoverage:  -1,
	}
	_, err := Generate(g, profile, rng, 50)
	require.Error(t, err)
}

func TestWriteFASTAFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFASTA(&buf, Read{Seq: "ACGT", Pos: 4, Sub: 1, Ind: 0, Vnd: 0, Vbs: 0}))
	require.Equal(t, ">pos=4;sub=1;ind=0;vnd=0;vbs=0\nACGT\n", buf.String())
}

package align

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"vargo/bitset"
	"vargo/gdef"
	"vargo/graph"
	"vargo/seqcode"
)

// buildDiamond constructs spec.md §8 scenario 2's 4-node diamond with
// absolute reference coordinates: AAA ends at 3, CCC and GGG both end at 6
// (alternate alleles of the same variant), TTT ends at 9.
func buildDiamond(t *testing.T) (g *graph.Graph, ttt int64) {
	t.Helper()
	g = graph.NewBase()
	g.SetPopSize(0)

	mk := func(seq string, end int, ref bool) *graph.Node {
		n := graph.NewNode(g.Pool(), seq, 0)
		if ref {
			n.SetAsRef()
		} else {
			n.SetNotRef()
			require.NoError(t, n.SetFreq(0.6))
		}
		n.SetEnd(end)
		return n
	}

	aaa := g.AddNode(mk("AAA", 3, true))
	ccc := g.AddNode(mk("CCC", 6, true))
	ggg := g.AddNode(mk("GGG", 6, false))
	tttNode := mk("TTT", 9, true)
	ttt = g.AddNode(tttNode)

	require.NoError(t, g.AddEdge(aaa, ccc))
	require.NoError(t, g.AddEdge(aaa, ggg))
	require.NoError(t, g.AddEdge(ccc, ttt))
	require.NoError(t, g.AddEdge(ggg, ttt))
	require.NoError(t, g.Finalize())
	return g, ttt
}

func mustRead(id, text string) Read {
	return Read{ID: id, Seq: seqcode.Encode(text), TruthPos: 9, HasTruth: true}
}

func TestAlignLocalExactMatchOnRefPath(t *testing.T) {
	g, _ := buildDiamond(t)
	params := Params{Match: 2, Mismatch: 2, GapOpen: 3, GapExtend: 1, Mode: Local}

	res, err := AlignOne(g, mustRead("r1", "AAACCCTTT"), params)
	require.NoError(t, err)
	require.Equal(t, byte(18), res.BestScore)
	require.Equal(t, 9, res.BestPos)
	require.Equal(t, 1, res.BestCount)
	require.Equal(t, 2, res.Correctness)
}

func TestAlignLocalExactMatchOnAltPath(t *testing.T) {
	g, _ := buildDiamond(t)
	params := Params{Match: 2, Mismatch: 2, GapOpen: 3, GapExtend: 1, Mode: Local}

	res, err := AlignOne(g, mustRead("r2", "AAAGGGTTT"), params)
	require.NoError(t, err)
	require.Equal(t, byte(18), res.BestScore)
	require.Equal(t, 9, res.BestPos)
}

func TestAlignEndToEndOnlyScoresAtSink(t *testing.T) {
	g, _ := buildDiamond(t)
	params := Params{Match: 2, Mismatch: 2, GapOpen: 3, GapExtend: 1, Mode: EndToEnd}

	res, err := AlignOne(g, mustRead("r3", "AAACCCTTT"), params)
	require.NoError(t, err)
	require.Equal(t, byte(18), res.BestScore)
	require.Equal(t, 9, res.BestPos)
}

func TestAlignBatchOrderMatchesInput(t *testing.T) {
	g, _ := buildDiamond(t)
	params := Params{Match: 2, Mismatch: 2, GapOpen: 3, GapExtend: 1, Mode: Local}

	reads := []Read{mustRead("a", "AAACCCTTT"), mustRead("b", "AAAGGGTTT")}
	results, err := AlignBatch(g, reads, params)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "a", results[0].ReadID)
	require.Equal(t, "b", results[1].ReadID)
}

func TestValidateScoringRejectsOverflow(t *testing.T) {
	require.Error(t, ValidateScoring(200, 2))
	require.NoError(t, ValidateScoring(100, 2))
}

func TestStructuralNodeIsUnmatchableButPassthrough(t *testing.T) {
	g := graph.NewBase()
	g.SetPopSize(0)
	a := graph.NewNode(g.Pool(), "AAA", 0)
	a.SetAsRef()
	a.SetEnd(3)
	aID := g.AddNode(a)

	sv := graph.NewNode(g.Pool(), "", 0)
	sv.SetRawAllele("<CN2>")
	sv.SetNotRef()
	require.NoError(t, sv.SetFreq(0.1))
	sv.SetEnd(3)
	svID := g.AddNode(sv)

	c := graph.NewNode(g.Pool(), "CCC", 0)
	c.SetAsRef()
	c.SetEnd(6)
	cID := g.AddNode(c)

	require.NoError(t, g.AddEdge(aID, svID))
	require.NoError(t, g.AddEdge(svID, cID))
	require.NoError(t, g.Finalize())

	params := Params{Match: 2, Mismatch: 2, GapOpen: 3, GapExtend: 1, Mode: Local}
	res, err := AlignOne(g, mustRead("r", "AAACCC"), params)
	require.NoError(t, err)
	require.Equal(t, byte(12), res.BestScore)
}

func TestDriverRunsTasksAcrossSubgraphs(t *testing.T) {
	g, _ := buildDiamond(t)
	def := gdef.Definition{}
	bits, _ := bitset.FromString("")
	mgr := gdef.NewManager(def, g, map[string]*bitset.Set{gdef.BaseLabel: bits})

	d := &Driver{Manager: mgr, Params: Params{Match: 2, Mismatch: 2, GapOpen: 3, GapExtend: 1, Mode: Local}}
	results, err := d.Run(context.Background(), []Task{
		{Label: "", Reads: []Read{mustRead("x", "AAACCCTTT")}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, byte(18), results[0].Results[0].BestScore)
}

func TestDriverDropsTaskWithUnknownLabel(t *testing.T) {
	g, _ := buildDiamond(t)
	def := gdef.Definition{}
	bits, _ := bitset.FromString("")
	mgr := gdef.NewManager(def, g, map[string]*bitset.Set{gdef.BaseLabel: bits})

	d := &Driver{Manager: mgr, Params: Params{Match: 2, Mismatch: 2, GapOpen: 3, GapExtend: 1, Mode: Local}}
	results, err := d.Run(context.Background(), []Task{
		{Label: "no-such-subgraph", Reads: []Read{mustRead("x", "AAACCCTTT")}},
		{Label: "", Reads: []Read{mustRead("y", "AAACCCTTT")}},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "", results[0].Label)
}

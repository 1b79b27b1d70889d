package align

import (
	"fmt"

	"vargo/graph"
)

// AlignOne aligns a single read against g, which must already be finalised.
func AlignOne(g *graph.Graph, read Read, params Params) (Result, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return Result{}, fmt.Errorf("align: %w", err)
	}
	rMax := len(read.Seq)
	if err := ValidateScoring(rMax, params.Match); err != nil {
		return Result{}, err
	}

	seq := make([]int, rMax)
	for i, b := range read.Seq {
		seq[i] = int(b)
	}

	tracker := newCellTracker(rMax)
	carry := make(map[int64]laneState, len(order))

	for _, id := range order {
		n := g.Node(id)
		preds := g.Prev(id)

		var entry laneState
		if len(preds) == 0 {
			entry = rootEntry(rMax, int(params.GapOpen), int(params.GapExtend))
		} else {
			states := make([]laneState, len(preds))
			for i, p := range preds {
				states[i] = carry[p]
			}
			entry = mergeEntry(states, rMax)
		}

		out := walkNode(n, entry, seq, rMax, params, tracker)
		carry[id] = out

		if params.Mode == EndToEnd && len(g.Next(id)) == 0 {
			tracker.observe(out.m[rMax], n.End())
		}
	}

	res := Result{
		ReadID:    read.ID,
		BestScore: saturateByte(tracker.bestScore),
		BestPos:   tracker.bestPos,
		BestCount: tracker.bestCount,
		SubScore:  saturateByte(tracker.subScore),
		SubPos:    tracker.subPos,
		SubCount:  tracker.subCount,
	}
	res.Correctness = correctness(res, read, params.tolerance(rMax))
	return res, nil
}

// correctness computes spec.md §6.3's 0/1/2 flag: 2 for a unique best
// within tolerance of the read's truth position, 1 for within tolerance but
// tied with another equally-scoring position, 0 otherwise (or when the read
// carries no truth).
func correctness(res Result, read Read, tol int) int {
	if !read.HasTruth {
		return 0
	}
	if absDiff(res.BestPos, read.TruthPos) > tol {
		return 0
	}
	if res.BestCount == 1 {
		return 2
	}
	return 1
}

// AlignBatch aligns every read in reads against g, walking them in chunks
// of params' lane width to mirror spec.md §4.7's batching contract. The
// chunking changes neither memory use nor results: each read is still
// aligned independently and sequentially (see the align package doc
// comment), so results are identical regardless of chunk size or read
// order.
func AlignBatch(g *graph.Graph, reads []Read, params Params) ([]Result, error) {
	w := params.laneWidth()
	out := make([]Result, 0, len(reads))
	for start := 0; start < len(reads); start += w {
		end := start + w
		if end > len(reads) {
			end = len(reads)
		}
		for _, r := range reads[start:end] {
			res, err := AlignOne(g, r, params)
			if err != nil {
				return nil, err
			}
			out = append(out, res)
		}
	}
	return out, nil
}

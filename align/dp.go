package align

import "vargo/graph"

// negInf stands in for "this state is unreachable". It is kept far enough
// from zero that DefaultLaneWidth rounds of gap_extend subtraction cannot
// walk it back into the representable range.
const negInf = -(1 << 30)

// laneState is the per-lane affine-gap triple (match, read-gap, ref-gap)
// carried across a node boundary: spec.md §4.7's "last column" handoff,
// generalised to vg/GSSW's predecessor-merge rule (max across every
// predecessor's carried triple, lane by lane).
type laneState struct {
	m, ins, del []int // indexed by read row, length rMax+1
}

func rootEntry(rMax int, gapOpen, gapExtend int) laneState {
	m := make([]int, rMax+1)
	ins := make([]int, rMax+1)
	del := make([]int, rMax+1)
	m[0] = 0
	for i := 1; i <= rMax; i++ {
		m[i] = negInf
		del[i] = negInf
	}
	del[0] = negInf
	ins[0] = negInf
	for i := 1; i <= rMax; i++ {
		ins[i] = maxInt(ins[i-1]-gapExtend, m[i-1]-gapOpen)
	}
	return laneState{m: m, ins: ins, del: del}
}

func mergeEntry(preds []laneState, rMax int) laneState {
	m := make([]int, rMax+1)
	ins := make([]int, rMax+1)
	del := make([]int, rMax+1)
	for i := 0; i <= rMax; i++ {
		mm, ii, dd := negInf, negInf, negInf
		for _, p := range preds {
			mm = maxInt(mm, p.m[i])
			ii = maxInt(ii, p.ins[i])
			dd = maxInt(dd, p.del[i])
		}
		m[i], ins[i], del[i] = mm, ii, dd
	}
	return laneState{m: m, ins: ins, del: del}
}

// walkNode sweeps n's columns left to right, one column (reference base) at
// a time, applying the Gotoh affine-gap recurrence: M follows the best of
// the predecessor column's M/Ins/Del one row up; Ins extends within the
// current column (a gap consuming read only); Del extends from the
// previous column at the same row (a gap consuming reference only). Local
// mode resets every state to zero wherever it would go negative, matching
// Smith-Waterman's free restart; end-to-end never resets, and the caller
// is expected to read trackers only at sink nodes.
func walkNode(n *graph.Node, entry laneState, seq []int, rMax int, p Params, tr *cellTracker) laneState {
	nodeLen := n.Len()
	if nodeLen == 0 {
		return entry
	}
	match, mismatch := int(p.Match), int(p.Mismatch)
	gapOpen, gapExtend := int(p.GapOpen), int(p.GapExtend)
	local := p.Mode == Local
	base0 := n.End() - nodeLen // 1-based coordinate of the column before the node's first base

	prev := entry
	nseq := n.Seq()
	var cur laneState
	for j := 1; j <= nodeLen; j++ {
		cur = laneState{m: make([]int, rMax+1), ins: make([]int, rMax+1), del: make([]int, rMax+1)}
		nb := nseq[j-1]

		cur.m[0] = negInf
		cur.ins[0] = negInf
		cur.del[0] = maxInt(prev.del[0]-gapExtend, prev.m[0]-gapOpen)
		if local {
			cur.del[0] = maxInt(cur.del[0], 0)
		}

		for i := 1; i <= rMax; i++ {
			var sc int
			if seq[i-1] == int(nb) {
				sc = match
			} else {
				sc = -mismatch
			}
			diag := maxInt(prev.m[i-1], maxInt(prev.ins[i-1], prev.del[i-1]))
			m := diag + sc
			ins := maxInt(cur.ins[i-1]-gapExtend, cur.m[i-1]-gapOpen)
			del := maxInt(prev.del[i]-gapExtend, prev.m[i]-gapOpen)
			if local {
				m = maxInt(m, 0)
				ins = maxInt(ins, 0)
				del = maxInt(del, 0)
			}
			cur.m[i], cur.ins[i], cur.del[i] = m, ins, del

			if local {
				tr.observe(m, base0+j)
			}
		}
		prev = cur
	}
	return cur
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

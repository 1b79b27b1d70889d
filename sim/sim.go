// Package sim implements the weighted-random read simulator: pick a start
// node proportional to its sequence length, walk the graph forward
// choosing successors uniformly, extract a read, apply substitution/indel
// errors, and reject candidates that violate the caller's profile filters,
// retrying up to N_abort times.
//
// Grounded on original_source's readfile.cpp/sim.h abort-after-N-attempts
// loop and its per-profile sub/ind/vnd/vbs counters (spec.md §4.8, §6.3),
// reworked around this repository's graph.Graph instead of the original's
// raw node-pointer walk, in the teacher's procedural, one-function-
// per-step style.
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"vargo/graph"
	"vargo/internal/config"
	"vargo/seqcode"
)

// Profile configures one Generate call (spec.md §4.8). A negative bound
// field (the Min/Max pairs) means "unconstrained"; SubCount/IndCount < 0
// means "derive the count from the paired rate instead of a fixed count".
type Profile struct {
	ReadLen int

	SubCount int
	SubRate  float64

	IndCount int
	IndRate  float64

	MinVariantNodeCrossings int
	MaxVariantNodeCrossings int
	MinVariantBaseCoverage  int
	MaxVariantBaseCoverage  int
}

func (p Profile) subCount() int {
	if p.SubCount >= 0 {
		return p.SubCount
	}
	return int(math.Round(p.SubRate * float64(p.ReadLen)))
}

func (p Profile) indCount() int {
	if p.IndCount >= 0 {
		return p.IndCount
	}
	return int(math.Round(p.IndRate * float64(p.ReadLen)))
}

func (p Profile) accepts(vnd, vbs int) bool {
	if p.MinVariantNodeCrossings >= 0 && vnd < p.MinVariantNodeCrossings {
		return false
	}
	if p.MaxVariantNodeCrossings >= 0 && vnd > p.MaxVariantNodeCrossings {
		return false
	}
	if p.MinVariantBaseCoverage >= 0 && vbs < p.MinVariantBaseCoverage {
		return false
	}
	if p.MaxVariantBaseCoverage >= 0 && vbs > p.MaxVariantBaseCoverage {
		return false
	}
	return true
}

// Read is one simulated read plus the bookkeeping spec.md §6.3's FASTA meta
// line carries: the 1-based reference end-position of the walk, and the
// sub/ind/vnd/vbs counters a Profile was judged against.
type Read struct {
	Seq string
	Pos int
	Sub int
	Ind int
	Vnd int
	Vbs int
}

// slot is one output base's provenance: which graph node (if any) it came
// from, and whether that node was a variant (non-reference) node.
type slot struct {
	base    seqcode.Base
	nodeID  int64
	pos     int // 1-based reference coordinate; meaningless for a synthetic (inserted) base
	variant bool
	fromRaw bool
}

// Generate draws reads from g until one satisfies profile's variant-node
// and variant-base filters, giving up after nAbort rejected attempts
// (default config.DefaultNAbort).
func Generate(g *graph.Graph, profile Profile, rng *rand.Rand, nAbort int) (Read, error) {
	if nAbort <= 0 {
		nAbort = config.DefaultNAbort
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		return Read{}, fmt.Errorf("sim: %w", err)
	}
	if len(order) == 0 {
		return Read{}, fmt.Errorf("sim: graph has no nodes")
	}

	for attempt := 0; attempt < nAbort; attempt++ {
		raw, err := walk(g, order, profile.ReadLen+profile.indCount(), rng)
		if err != nil {
			continue
		}
		read, ok := assemble(raw, profile, rng)
		if !ok {
			continue
		}
		return read, nil
	}
	return Read{}, fmt.Errorf("sim: no read satisfying profile after %d attempts", nAbort)
}

// walk performs one weighted-random traversal, collecting n raw bases.
func walk(g *graph.Graph, order []int64, n int, rng *rand.Rand) ([]slot, error) {
	total := 0
	for _, id := range order {
		total += g.Node(id).Len()
	}
	if total == 0 {
		return nil, fmt.Errorf("sim: graph has no sequence")
	}

	target := rng.Intn(total)
	var curID int64
	var offset int
	cum := 0
	for _, id := range order {
		l := g.Node(id).Len()
		if target < cum+l {
			curID = id
			offset = target - cum
			break
		}
		cum += l
	}

	raw := make([]slot, 0, n)
	for len(raw) < n {
		node := g.Node(curID)
		seq := node.Seq()
		nodeStart := node.End() - node.Len() + 1
		for offset < len(seq) && len(raw) < n {
			raw = append(raw, slot{
				base:    seq[offset],
				nodeID:  curID,
				pos:     nodeStart + offset,
				variant: !node.IsRef(),
				fromRaw: true,
			})
			offset++
		}
		if len(raw) >= n {
			break
		}
		succ := g.Next(curID)
		if len(succ) == 0 {
			return nil, fmt.Errorf("sim: walk reached a sink before collecting %d bases", n)
		}
		curID = succ[rng.Intn(len(succ))]
		offset = 0
	}
	return raw, nil
}

// assemble applies profile's substitution/indel error budget to raw,
// producing a fixed-length read, then reports whether the result's
// variant-node/variant-base counts fall within the profile's filters.
func assemble(raw []slot, profile Profile, rng *rand.Rand) (Read, bool) {
	nInd := profile.indCount()
	out := make([]slot, 0, profile.ReadLen)

	indelAt := make(map[int]bool, nInd)
	for len(indelAt) < nInd && len(indelAt) < profile.ReadLen {
		indelAt[rng.Intn(profile.ReadLen)] = true
	}

	rawIdx := 0
	for len(out) < profile.ReadLen {
		if indelAt[len(out)] && rng.Intn(2) == 0 {
			// Insertion: a synthetic base not drawn from the graph.
			out = append(out, slot{base: seqcode.Base(rng.Intn(4)), fromRaw: false})
			continue
		}
		if indelAt[len(out)] {
			// Deletion: skip one reference base before taking the next.
			rawIdx++
		}
		if rawIdx >= len(raw) {
			return Read{}, false
		}
		out = append(out, raw[rawIdx])
		rawIdx++
	}

	nSub := profile.subCount()
	subAt := make(map[int]bool, nSub)
	for len(subAt) < nSub && len(subAt) < profile.ReadLen {
		subAt[rng.Intn(profile.ReadLen)] = true
	}
	for pos := range subAt {
		cur := out[pos].base
		var repl seqcode.Base
		for {
			repl = seqcode.Base(rng.Intn(4))
			if repl != cur {
				break
			}
		}
		out[pos].base = repl
	}

	vndSet := make(map[int64]bool)
	vbs := 0
	endPos := 0
	for _, s := range out {
		if s.variant {
			vbs++
			vndSet[s.nodeID] = true
		}
		if s.fromRaw {
			endPos = s.pos
		}
	}

	if !profile.accepts(len(vndSet), vbs) {
		return Read{}, false
	}

	seq := make([]byte, len(out))
	for i, s := range out {
		seq[i] = seqcode.ToChar(s.base)
	}

	return Read{
		Seq: string(seq),
		Pos: endPos,
		Sub: len(subAt),
		Ind: len(indelAt),
		Vnd: len(vndSet),
		Vbs: vbs,
	}, true
}

package graph

import (
	"fmt"

	"vargo/bitset"
	"vargo/internal/errs"
)

// DeriveByFilter constructs a view of g that keeps node n iff n.IsRef() or
// n's membership shares a set bit with p, then retains edges whose
// endpoints are both kept, restricts insertion order to the surviving ids,
// and finalises. Fails if the base root does not survive the filter
// (spec.md §3.2's derivation-closure invariant).
func (g *Graph) DeriveByFilter(p *bitset.Set) (*Graph, error) {
	keep := make(map[int64]bool)
	for _, id := range g.insertion {
		if g.pool.Get(id).Overlaps(p) {
			keep[id] = true
		}
	}
	d, err := g.buildDerived(keep)
	if err != nil {
		return nil, err
	}
	d.desc = g.desc + "\nfilter: " + p.String()
	return d, nil
}

// DeriveReference keeps only nodes with IsRef() == true.
func (g *Graph) DeriveReference() (*Graph, error) {
	keep := make(map[int64]bool)
	for _, id := range g.insertion {
		if g.pool.Get(id).IsRef() {
			keep[id] = true
		}
	}
	d, err := g.buildDerived(keep)
	if err != nil {
		return nil, err
	}
	d.desc = g.desc + "\nfilter: REF"
	return d, nil
}

// DeriveMaxAF walks from the root, at each step following the successor
// with the greatest allele frequency (ties broken by first-in-adjacency
// order), until a sink is reached. The result is a simple path.
func (g *Graph) DeriveMaxAF() (*Graph, error) {
	if !g.hasRoot {
		return nil, fmt.Errorf("%w: %w: base graph has no root", errs.ErrInvariant, ErrRootNotPreserved)
	}
	keep := make(map[int64]bool)
	curr := g.root
	for {
		keep[curr] = true
		succ := g.next[curr]
		if len(succ) == 0 {
			break
		}
		best := succ[0]
		bestFreq := g.pool.Get(best).Freq()
		for _, cand := range succ[1:] {
			f := g.pool.Get(cand).Freq()
			if f > bestFreq {
				best, bestFreq = cand, f
			}
		}
		curr = best
	}
	d, err := g.buildDerived(keep)
	if err != nil {
		return nil, err
	}
	d.desc = g.desc + "\nfilter: MAXAF"
	return d, nil
}

// buildDerived shares the parent's pool and population size, rebuilds
// adjacency restricted to the kept id set, restricts insertion order, and
// finalises. The parent's root must be in keep.
func (g *Graph) buildDerived(keep map[int64]bool) (*Graph, error) {
	if !keep[g.root] {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvariant, ErrRootNotPreserved)
	}
	d := &Graph{
		pool:    g.pool,
		next:    make(map[int64][]int64),
		prev:    make(map[int64][]int64),
		root:    g.root,
		hasRoot: true,
		popSize: g.popSize,
		st:      stateBuilding,
	}
	for _, id := range g.insertion {
		if keep[id] {
			d.insertion = append(d.insertion, id)
		}
	}
	for _, a := range d.insertion {
		for _, b := range g.next[a] {
			if keep[b] {
				d.next[a] = append(d.next[a], b)
				d.prev[b] = append(d.prev[b], a)
			}
		}
	}
	if err := d.Finalize(); err != nil {
		return nil, err
	}
	return d, nil
}

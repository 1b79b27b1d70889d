package external

import (
	"fmt"

	"vargo/internal/errs"
)

// InMemoryReference is a trivial ReferenceProvider backed by a map of
// chromosome name to sequence, held entirely in memory. It exists so the
// core and its tests have a concrete, minimal ReferenceProvider to run
// against without depending on a real FASTA-indexer library; a production
// deployment would supply one (spec.md §1 treats the FASTA indexer as an
// external collaborator with a minimal interface contract, not a component
// of this system).
type InMemoryReference struct {
	order []string
	seqs  map[string]string
}

// NewInMemoryReference builds a reference from chromosome name -> sequence
// pairs, preserving iteration order.
func NewInMemoryReference(order []string, seqs map[string]string) *InMemoryReference {
	return &InMemoryReference{order: order, seqs: seqs}
}

func (r *InMemoryReference) SeqLen(chrom string) (int, error) {
	s, ok := r.seqs[chrom]
	if !ok {
		return 0, fmt.Errorf("external: %w: unknown chromosome %q", errs.ErrInvalidInput, chrom)
	}
	return len(s), nil
}

func (r *InMemoryReference) Subseq(chrom string, lower, upper int) (string, error) {
	s, ok := r.seqs[chrom]
	if !ok {
		return "", fmt.Errorf("external: unknown chromosome %q", chrom)
	}
	if lower < 0 || upper > len(s) || lower > upper {
		return "", fmt.Errorf("external: %w: region [%d,%d) out of bounds for %q (len %d)", errs.ErrInvalidInput, lower, upper, chrom, len(s))
	}
	return s[lower:upper], nil
}

func (r *InMemoryReference) Sequences() []string { return r.order }

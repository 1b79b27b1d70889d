package align

import "vargo/seqcode"

// Read is one query sequence in an alignment batch (spec.md §4.7). Each
// read's R_max is its own length; AlignOne sizes its DP lanes per read, so
// reads in the same batch need not share a length.
type Read struct {
	ID   string
	Seq  []seqcode.Base
	// TruthPos is the expected 1-based reference end coordinate, used to
	// compute Result.Correctness. HasTruth false means "unknown", in which
	// case Correctness is always reported as 0.
	TruthPos int
	HasTruth bool
}

// Result is the outcome of aligning one Read against a graph (spec.md §4.7,
// §6.3's correctness flag).
type Result struct {
	ReadID string

	BestScore byte
	BestPos   int
	BestCount int

	SubScore byte
	SubPos   int
	SubCount int

	// Correctness is 2 (best is unique and within tolerance of truth), 1
	// (within tolerance but tied with another best position), or 0
	// (neither, or truth unknown).
	Correctness int
}

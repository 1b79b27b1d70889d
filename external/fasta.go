// Package external declares the minimal interface contracts this core
// consumes from its out-of-scope collaborators: a FASTA indexer, a VCF/BCF
// parser, and a SAM record codec (spec.md §1, §6). Only the shape of what
// the core consumes or emits is specified here; a full FASTA/VCF/SAM
// implementation is not part of this system.
//
// The interface shapes are grounded on other_examples/grailbio-bio__singleton.go
// (github.com/grailbio/bio/encoding/fasta) and
// other_examples/ExaScience-elprep__assemble-reads.go
// (github.com/exascience/elprep/v5/fasta), both of which expose
// region-indexed random access over a reference, and on
// other_examples/inodb-vibe-vep__variant.go for the VCF record shape.
package external

import "fmt"

// Region names a half-open interval in a chromosome: [Lower, Upper). An
// Upper <= 0 means "to the end of the chromosome" (spec.md §4.5).
type Region struct {
	Chrom string
	Lower int
	Upper int
}

func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Chrom, r.Lower, r.Upper)
}

// ReferenceProvider is a random-access FASTA-like reference: callers ask
// for a substring of a named chromosome by 0-based, half-open coordinates.
type ReferenceProvider interface {
	// SeqLen returns the length of chrom, or an error if chrom is unknown.
	SeqLen(chrom string) (int, error)
	// Subseq returns the bases in [lower, upper) of chrom, upper-exclusive.
	Subseq(chrom string, lower, upper int) (string, error)
	// Sequences lists the chromosome names present, in file order.
	Sequences() []string
}

// VariantRecord is one row of a VCF/BCF record as the builder consumes it:
// a position, a reference allele, one or more alternate alleles, their
// frequencies, and, per alternate allele, the bitset of sample chromosomes
// that carry it.
type VariantRecord struct {
	Pos    int // 0-based position of the first reference base
	Ref    string
	Alt    []string  // alternate alleles, parallel to AF[1:]
	AF     []float64 // AF[0] is the reference allele's frequency, AF[i>0] alt i's
	Allele func(alleleIdx int) []bool // per-sample-chromosome carriage of allele i
}

// VariantStream iterates VariantRecord in ascending genomic order, already
// filtered to the region of interest and to the configured ingroup.
type VariantStream interface {
	// Next advances to the next record; returns false when exhausted.
	Next() bool
	// Record returns the current record. Valid only after Next returns true.
	Record() VariantRecord
	// Err returns any error encountered during iteration.
	Err() error
	// NumSamples returns the number of diploid samples in the cohort.
	NumSamples() int
	// Close releases underlying resources.
	Close() error
}

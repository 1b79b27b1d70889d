// Package errs declares the five error kinds spec.md §7 classifies
// failures into. They are sentinels, not types: callers wrap a concrete
// error with one of these via fmt.Errorf("...: %w", errs.ErrInvariant) (or
// chain it alongside a more specific sentinel with a second %w) so the task
// orchestrator can classify a failure with errors.Is without parsing
// messages.
package errs

import "errors"

var (
	// ErrInvalidInput covers a missing or malformed FASTA/VCF/definition/
	// reads file. Fatal at open.
	ErrInvalidInput = errors.New("invalid input file")

	// ErrMalformedRecord covers a variant or SAM record that violates
	// format. Fatal for the current task only.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrInvariant covers a violated structural invariant: a cycle
	// discovered at finalisation, a derived root missing, a duplicate
	// subgraph name, a population-bitstring length mismatch, an add-edge
	// with an unknown endpoint. Fatal.
	ErrInvariant = errors.New("invariant violation")

	// ErrConfiguration covers a score overflow, an ingroup percentage
	// outside [0,100], or a read exceeding the configured maximum length.
	// Fatal before any work starts.
	ErrConfiguration = errors.New("configuration error")

	// ErrResource covers an allocation or I/O failure. Propagated to the
	// orchestrator; the task is abandoned and reported.
	ErrResource = errors.New("resource error")
)

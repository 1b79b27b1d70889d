// Package config collects the tunables the teacher scatters as package-level
// constants (dna_aligner/config/config.go's MinMatchLength, LowGCKValues,
// etc.) into one grouped block: the score-overflow bound, the default
// correctness-tolerance divisor, the default simulator abort count, and the
// default SIMD lane width.
package config

const (
	// MaxScoreByte is the largest value a u8 alignment score can hold
	// (spec.md §6.4).
	MaxScoreByte = 255

	// DefaultToleranceDivisor yields tau = ceil(RMax/DefaultToleranceDivisor)
	// when a caller does not supply an explicit correctness tolerance
	// (spec.md §4.7).
	DefaultToleranceDivisor = 4

	// DefaultLaneWidth is the SIMD lane count used when a caller does not
	// override it (spec.md §4.7's "W").
	DefaultLaneWidth = 32

	// DefaultNAbort is the number of rejected candidate reads the simulator
	// will draw before giving up on a profile it cannot satisfy
	// (spec.md §4.8).
	DefaultNAbort = 1_000_000
)

// Package align implements the multi-read aligner core: given a graph and
// a batch of reads, it traverses the graph in topological order and
// computes the best and second-best scoring alignment for every read under
// affine-gap scoring, flagging agreement with a supplied truth position.
//
// Each read is aligned on its own, with scalar int arithmetic, one read
// after another; reads are not packed into SIMD vector lanes, and reads in
// one batch need not share a length.
//
// No dedicated DP-kernel source survives in original_source/ (align_main.cpp
// is the CLI driver, not the kernel); this package is built fresh from
// spec.md §4.7's recurrence, resolving its row/column ambiguity as the
// standard Gotoh affine-gap DAG alignment vg/GSSW implement (see DESIGN.md),
// in the teacher's plain-struct, one-concern-per-file style.
package align

import (
	"fmt"

	"vargo/internal/config"
	"vargo/internal/errs"
)

// Mode selects local (Smith-Waterman) or end-to-end (Needleman-Wunsch-like)
// scoring (spec.md §4.7).
type Mode int

const (
	Local Mode = iota
	EndToEnd
)

// Params holds the affine-gap scoring parameters and mode for one
// AlignBatch call (spec.md §4.7).
type Params struct {
	Match, Mismatch, GapOpen, GapExtend byte
	Mode                                Mode
	LaneWidth                           int // 0 means config.DefaultLaneWidth
	Tolerance                           int // 0 means ceil(RMax/config.DefaultToleranceDivisor)
}

func (p Params) laneWidth() int {
	if p.LaneWidth > 0 {
		return p.LaneWidth
	}
	return config.DefaultLaneWidth
}

func (p Params) tolerance(rMax int) int {
	if p.Tolerance > 0 {
		return p.Tolerance
	}
	return (rMax + config.DefaultToleranceDivisor - 1) / config.DefaultToleranceDivisor
}

// ValidateScoring rejects a configuration where rMax*match cannot fit in a
// u8 (spec.md §6.4's configuration error).
func ValidateScoring(rMax int, match byte) error {
	if rMax*int(match) > config.MaxScoreByte {
		return fmt.Errorf("align: %w: R_max*match = %d exceeds u8 range (%d)", errs.ErrConfiguration, rMax*int(match), config.MaxScoreByte)
	}
	return nil
}

// Package seqcode maps DNA bases to small integers and back. Grounded on
// original_source/include/utils.h's base_to_num/num_to_seq, and written in
// the style of the teacher's dna_aligner/sequence package: small, pure,
// O(length) string/slice transforms with no external state.
package seqcode

// Base is the small-integer encoding of a DNA symbol.
type Base byte

// The five-symbol alphabet. N absorbs every non-canonical input character.
const (
	A Base = 0
	C Base = 1
	G Base = 2
	T Base = 3
	N Base = 4
)

// ToBase converts a single character to its Base, case-insensitively.
// Anything outside {A,C,G,T,a,c,g,t} becomes N.
func ToBase(c byte) Base {
	switch c {
	case 'A', 'a':
		return A
	case 'C', 'c':
		return C
	case 'G', 'g':
		return G
	case 'T', 't':
		return T
	default:
		return N
	}
}

// ToChar converts a Base back to its canonical uppercase character.
func ToChar(b Base) byte {
	switch b {
	case A:
		return 'A'
	case C:
		return 'C'
	case G:
		return 'G'
	case T:
		return 'T'
	default:
		return 'N'
	}
}

// Encode converts a text sequence into its numeric form.
func Encode(seq string) []Base {
	out := make([]Base, len(seq))
	for i := 0; i < len(seq); i++ {
		out[i] = ToBase(seq[i])
	}
	return out
}

// Decode converts a numeric sequence back to canonical uppercase text.
func Decode(num []Base) string {
	buf := make([]byte, len(num))
	for i, b := range num {
		buf[i] = ToChar(b)
	}
	return string(buf)
}

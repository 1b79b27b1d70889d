package external

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fourSampleVCF = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	s1	s2	s3	s4
x	100	.	A	G	.	.	.	GT	1|1	0|0	0|0	0|0
`

func TestNewTextVCFStreamFullIngroup(t *testing.T) {
	s, err := NewTextVCFStream(strings.NewReader(fourSampleVCF), Region{}, 100)
	require.NoError(t, err)
	require.Equal(t, 4, s.NumSamples())
	require.True(t, s.Next())
	rec := s.Record()
	carriers := rec.Allele(1)
	require.Len(t, carriers, 8)
	require.True(t, carriers[0])
	require.True(t, carriers[1])
	require.False(t, carriers[2])
}

func TestNewTextVCFStreamPartialIngroupSubsetsMembership(t *testing.T) {
	// 50% of 4 samples selects 2, at even stride: indices 0 and 2 -> samples s1,s3.
	s, err := NewTextVCFStream(strings.NewReader(fourSampleVCF), Region{}, 50)
	require.NoError(t, err)
	require.Equal(t, 2, s.NumSamples())
	require.True(t, s.Next())
	rec := s.Record()
	carriers := rec.Allele(1)
	require.Len(t, carriers, 4, "bitset width must match the reduced NumSamples, not the full cohort")
	require.True(t, carriers[0], "s1 is in the ingroup and carries the alt allele")
	require.True(t, carriers[1])
	require.False(t, carriers[2], "s3 is in the ingroup but is homozygous reference")
	require.False(t, carriers[3])
}

func TestNewTextVCFStreamZeroIngroupMaterialisesNoSamples(t *testing.T) {
	s, err := NewTextVCFStream(strings.NewReader(fourSampleVCF), Region{}, 0)
	require.NoError(t, err)
	require.Equal(t, 0, s.NumSamples())
	require.True(t, s.Next())
	require.Empty(t, s.Record().Allele(0))
}

func TestSelectIngroup(t *testing.T) {
	require.Equal(t, []int{0, 1, 2, 3}, selectIngroup(4, 100))
	require.Nil(t, selectIngroup(4, 0))
	require.Nil(t, selectIngroup(0, 50))
	require.Equal(t, []int{0, 2}, selectIngroup(4, 50))
	require.Equal(t, 1, len(selectIngroup(4, 25)))
}

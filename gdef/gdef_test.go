package gdef

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"vargo/bitset"
	"vargo/external"
)

func TestBuildFiltersPercentSplit(t *testing.T) {
	// spec.md §8 scenario 6: child=50% of a 200-bit parent -> exactly 100
	// set bits in child and in its implicit complement, disjoint, union
	// equal to the parent.
	rng := rand.New(rand.NewSource(1))
	pops, err := BuildFilters(200, []SubgraphSpec{
		{Name: "child", Percent: 50, IsPercent: true},
	}, rng)
	require.NoError(t, err)

	child := pops["base/child"]
	negChild := pops["base/~child"]
	require.Equal(t, 100, child.Count())
	require.Equal(t, 100, negChild.Count())
	require.False(t, child.Intersects(negChild))
	require.True(t, child.Or(negChild).Equal(pops["base"]))
}

func TestBuildFiltersLiteralCount(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pops, err := BuildFilters(20, []SubgraphSpec{
		{Name: "a", Count: 5},
	}, rng)
	require.NoError(t, err)
	require.Equal(t, 5, pops["base/a"].Count())
}

func TestBuildFiltersHierarchical(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pops, err := BuildFilters(20, []SubgraphSpec{
		{Name: "a", Count: 10},
		{Name: "a/b", Count: 4},
	}, rng)
	require.NoError(t, err)
	require.Equal(t, 10, pops["base/a"].Count())
	require.Equal(t, 4, pops["base/a/b"].Count())

	// b's members must be a subset of a's members.
	require.True(t, pops["base/a/b"].And(pops["base/a"]).Equal(pops["base/a/b"]))
}

func TestBuildFiltersDuplicateNameRejected(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	_, err := BuildFilters(10, []SubgraphSpec{
		{Name: "a", Count: 1},
		{Name: "a", Count: 1},
	}, rng)
	require.Error(t, err)
}

func TestBuildFiltersRejectsExplicitNegation(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	_, err := BuildFilters(10, []SubgraphSpec{
		{Name: "~a", Count: 1},
	}, rng)
	require.Error(t, err)
}

func TestParseRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	def := Definition{RefPath: "ref.fa", VCFPath: "v.vcf", Region: external.Region{Chrom: "x", Lower: 0, Upper: 100}, NodeLength: 50}
	require.NoError(t, WriteHeader(&buf, def))

	rng := rand.New(rand.NewSource(6))
	pops, err := BuildFilters(4, []SubgraphSpec{{Name: "kid", Count: 2}}, rng)
	require.NoError(t, err)
	require.NoError(t, WriteFilters(&buf, pops))

	m, err := Parse(&buf, nil)
	require.NoError(t, err)
	require.Equal(t, "ref.fa", m.Definition().RefPath)
	require.Equal(t, 50, m.Definition().NodeLength)

	f, err := m.Filter("kid")
	require.NoError(t, err)
	require.Equal(t, 2, f.Count())
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, err := Parse(bytes.NewBufferString("NOT-A-GDEF\nref=x;vcf=y;region=a:0-1;nodelen=5\n"), nil)
	require.Error(t, err)
}

func TestParseRejectsDuplicateLabel(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(Magic + "\n")
	buf.WriteString("ref=r;vcf=v;region=x:0-1;nodelen=5\n")
	buf.WriteString("base/a=10\n")
	buf.WriteString("base/a=01\n")
	_, err := Parse(&buf, nil)
	require.Error(t, err)
}

var _ = bitset.New

// Package builder fuses a linear reference with a variant catalogue into a
// variant graph, streaming reference chunks and variant records in genomic
// order and splitting reference runs under a maximum-node-length bound.
//
// Grounded on original_source/src/graph.cpp's GraphBuilder::build /
// _build_linear_ref / _build_edges, reworked to consume the external.
// ReferenceProvider / external.VariantStream interfaces (spec.md §4.5, §6)
// instead of owning FASTA/VCF parsing itself, in the teacher's style of one
// small, mostly-procedural function per concern
// (dna_aligner/graph/builder.go).
package builder

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"vargo/bitset"
	"vargo/external"
	"vargo/graph"
	"vargo/internal/errs"
	"vargo/internal/logging"
)

var log = logging.For("builder")

// Options configures a Build call (spec.md §4.5).
type Options struct {
	Region        external.Region
	IngroupPct    int // [0,100]; validated and recorded in the description only; the sample count comes from the VariantStream
	MaxNodeLen    int // > 0; caps every reference chunk; alleles are never split
	ReferencePath string
	VariantPath   string
}

// Validate rejects configuration errors before any work starts
// (spec.md §7's "Configuration error" kind).
func (o Options) Validate() error {
	if o.IngroupPct < 0 || o.IngroupPct > 100 {
		return fmt.Errorf("builder: %w: ingroup percentage %d outside [0,100]", errs.ErrConfiguration, o.IngroupPct)
	}
	if o.MaxNodeLen <= 0 {
		return fmt.Errorf("builder: %w: max node length must be > 0, got %d", errs.ErrConfiguration, o.MaxNodeLen)
	}
	return nil
}

// Build streams ref and variants in genomic order and emits a finalised
// base Graph, per the frontier-wiring algorithm in spec.md §4.5.
func Build(ref external.ReferenceProvider, variants external.VariantStream, opt Options) (*graph.Graph, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	g := graph.NewBase()
	popSize := 2 * variants.NumSamples()
	g.SetPopSize(popSize)

	pos := opt.Region.Lower
	var prevUnconnected, currUnconnected []int64

	region := opt.Region
	upper := region.Upper
	if upper <= 0 {
		sl, err := ref.SeqLen(region.Chrom)
		if err != nil {
			return nil, fmt.Errorf("builder: %w", err)
		}
		upper = sl
	}

	nVariants := 0
	for variants.Next() {
		rec := variants.Record()
		if rec.Pos < pos {
			// Variants must arrive in ascending position order; one behind
			// the builder's cursor is a malformed record (spec.md §7).
			return nil, fmt.Errorf("builder: variant at %d precedes cursor at %d: %w", rec.Pos, pos, errMalformedOrder)
		}
		nVariants++

		var err error
		pos, prevUnconnected, currUnconnected, err = emitLinearRef(g, ref, region.Chrom, pos, rec.Pos, opt.MaxNodeLen, prevUnconnected, currUnconnected, popSize)
		if err != nil {
			return nil, err
		}

		pos += len(rec.Ref)

		// Reference-allele node: always present in every sample.
		refNode := graph.NewNode(g.Pool(), "", popSize)
		setRefAlleleSeq(refNode, rec.Ref)
		refNode.SetEnd(pos)
		refNode.SetAsRef()
		if err := refNode.SetFreq(normalizeAF(rec.AF, 0)); err != nil {
			return nil, err
		}
		allOnes := bitset.New(popSize)
		for i := 0; i < popSize; i++ {
			allOnes.SetBit(i)
		}
		refNode.SetMembership(allOnes)
		currUnconnected = append(currUnconnected, g.AddNode(refNode))

		for i, alt := range rec.Alt {
			altNode := graph.NewNode(g.Pool(), "", popSize)
			setAltAlleleSeq(altNode, alt)
			altNode.SetEnd(pos)
			altNode.SetNotRef()
			if err := altNode.SetFreq(normalizeAF(rec.AF, i+1)); err != nil {
				return nil, err
			}
			carriers := rec.Allele(i + 1)
			mem := bitset.New(popSize)
			for bit, has := range carriers {
				if has {
					mem.SetBit(bit)
				}
			}
			altNode.SetMembership(mem)
			currUnconnected = append(currUnconnected, g.AddNode(altNode))
		}

		wireFrontier(g, prevUnconnected, currUnconnected)
		prevUnconnected, currUnconnected = currUnconnected, nil
	}
	if err := variants.Err(); err != nil {
		return nil, fmt.Errorf("builder: %w", err)
	}

	var err error
	_, prevUnconnected, currUnconnected, err = emitLinearRef(g, ref, region.Chrom, pos, upper, opt.MaxNodeLen, prevUnconnected, currUnconnected, popSize)
	if err != nil {
		return nil, err
	}
	_ = currUnconnected // tail has no successor frontier to wire

	if err := g.Finalize(); err != nil {
		return nil, err
	}
	g.SetDesc(describe(opt, nVariants))
	log.WithFields(logrus.Fields{
		"region":   region.String(),
		"variants": nVariants,
		"nodes":    g.Pool().Size(),
	}).Info("built variant graph")
	return g, nil
}

var errMalformedOrder = fmt.Errorf("%w: variant records must be in ascending position order", errs.ErrMalformedRecord)

// emitLinearRef creates reference nodes covering [pos, target), each no
// longer than maxLen, wiring prev -> curr edges as it advances. Returns the
// advanced cursor and the new prev/curr frontiers.
func emitLinearRef(g *graph.Graph, ref external.ReferenceProvider, chrom string, pos, target, maxLen int, prev, curr []int64, popSize int) (int, []int64, []int64, error) {
	for pos < target {
		chunkEnd := pos + maxLen
		if chunkEnd > target {
			chunkEnd = target
		}
		text, err := ref.Subseq(chrom, pos, chunkEnd)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("builder: %w", err)
		}
		n := graph.NewNode(g.Pool(), text, popSize)
		n.SetAsRef()
		allOnes := bitset.New(popSize)
		for i := 0; i < popSize; i++ {
			allOnes.SetBit(i)
		}
		n.SetMembership(allOnes)
		pos = chunkEnd
		n.SetEnd(pos) // pos is 0-based exclusive, i.e. the 1-based position of the last base
		curr = append(curr, g.AddNode(n))
		wireFrontier(g, prev, curr)
		prev, curr = curr, nil
	}
	return pos, prev, curr, nil
}

// wireFrontier connects every node in prev to every node in curr.
func wireFrontier(g *graph.Graph, prev, curr []int64) {
	for _, p := range prev {
		for _, c := range curr {
			// errors are impossible here: both ids were just returned by AddNode.
			_ = g.AddEdge(p, c)
		}
	}
}

// setRefAlleleSeq and setAltAlleleSeq route angle-bracketed structural
// variant tokens (e.g. "<CN2>") to the opaque raw-allele path instead of
// sequence encoding, per spec.md §4.5's edge case.
func setRefAlleleSeq(n *graph.Node, allele string) {
	if isStructural(allele) {
		n.SetRawAllele(allele)
		return
	}
	n.SetSeq(allele)
}

func setAltAlleleSeq(n *graph.Node, allele string) {
	if isStructural(allele) {
		n.SetRawAllele(allele)
		return
	}
	n.SetSeq(allele)
}

func isStructural(allele string) bool {
	return strings.HasPrefix(allele, "<") && strings.HasSuffix(allele, ">")
}

// normalizeAF returns af[idx] if present, else the reference sentinel for
// idx==0 or 0 otherwise; a VariantStream implementation that cannot compute
// AF should prefer leaving it absent over guessing.
func normalizeAF(af []float64, idx int) float64 {
	if idx < len(af) {
		return af[idx]
	}
	if idx == 0 {
		return graph.RefFrequency
	}
	return 0
}

func describe(opt Options, nVariants int) string {
	return fmt.Sprintf("REF: %s\nVCF: %s\nRegion: %s\nIngroup: %d\nMaxNodeLen: %d\nVariants: %d",
		opt.ReferencePath, opt.VariantPath, opt.Region.String(), opt.IngroupPct, opt.MaxNodeLen, nVariants)
}

package external

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vargo/internal/errs"
)

// TextVCFStream is a minimal, in-memory VCF reader sufficient to drive the
// builder: it understands the eight mandatory columns plus FORMAT/sample
// genotype columns, computes per-allele frequency from INFO's AF= field
// when present (falling back to a genotype count), and derives each
// alternate allele's membership bitset directly from genotypes.
//
// Record struct shape grounded on other_examples/inodb-vibe-vep__variant.go
// (Variant{Chrom,Pos,ID,Ref,Alt,Qual,Filter,Info}) and
// other_examples/nvnieuwk-svync__structs.go's VCF{Header,Variants} sample
// list. Full BCF/tabix support is out of scope (spec.md §1); this is the
// "minimal interface contract" implementation the core needs to run at all.
type TextVCFStream struct {
	scanner *bufio.Scanner
	samples []string
	ingroup []int // indices into samples materialised by this stream
	region  Region
	cur     VariantRecord
	err     error
	closer  io.Closer
}

// NewTextVCFStream parses the header (samples) from r and returns a stream
// that yields only records within region (region.Upper<=0 means unbounded),
// restricted to an ingroup of ingroupPct percent of the file's samples
// (spec.md §4.5). ingroupPct>=100 materialises every sample; ingroupPct<=0
// materialises none.
//
// Selection is a deterministic even stride across the sample list (grounded
// on original_source/src/graph.cpp's GraphBuilder::build, which filters
// _vf.samples() to an ingroup before the builder ever sees a sample count;
// that filtering lives in a VariantFile helper not present in this pack, so
// the stride here is this stream's own reconstruction of "a representative
// P% of the cohort" without threading an RNG through the builder).
func NewTextVCFStream(r io.Reader, region Region, ingroupPct int) (*TextVCFStream, error) {
	rc, _ := r.(io.Closer)
	s := &TextVCFStream{scanner: bufio.NewScanner(r), region: region, closer: rc}
	s.scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if strings.HasPrefix(line, "##") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			cols := strings.Split(line, "\t")
			if len(cols) > 9 {
				s.samples = cols[9:]
			}
			s.ingroup = selectIngroup(len(s.samples), ingroupPct)
			return s, nil
		}
		return nil, fmt.Errorf("external: %w: missing #CHROM header", errs.ErrInvalidInput)
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("external: %w: %w", errs.ErrResource, err)
	}
	return nil, fmt.Errorf("external: %w: empty VCF stream", errs.ErrInvalidInput)
}

// selectIngroup picks which of n sample indices to materialise for pct
// percent: count = ceil(pct*n/100) samples, chosen at an even stride across
// [0,n) so a partial ingroup still spans the whole cohort. pct>=100
// materialises every sample; pct<=0 materialises none.
func selectIngroup(n, pct int) []int {
	if pct >= 100 {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	if n == 0 || pct <= 0 {
		return nil
	}
	count := (n*pct + 99) / 100
	if count > n {
		count = n
	}
	out := make([]int, count)
	for i := range out {
		out[i] = i * n / count
	}
	return out
}

func (s *TextVCFStream) NumSamples() int { return len(s.ingroup) }

// Next advances to the next in-region record.
func (s *TextVCFStream) Next() bool {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if line == "" {
			continue
		}
		rec, chrom, err := s.parseLine(line)
		if err != nil {
			s.err = err
			return false
		}
		if s.region.Chrom != "" && chrom != s.region.Chrom {
			continue
		}
		if rec.Pos < s.region.Lower {
			continue
		}
		if s.region.Upper > 0 && rec.Pos >= s.region.Upper {
			continue
		}
		s.cur = rec
		return true
	}
	s.err = s.scanner.Err()
	return false
}

func (s *TextVCFStream) Record() VariantRecord { return s.cur }
func (s *TextVCFStream) Err() error             { return s.err }

func (s *TextVCFStream) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *TextVCFStream) parseLine(line string) (VariantRecord, string, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < 8 {
		return VariantRecord{}, "", fmt.Errorf("external: %w: malformed VCF record: %q", errs.ErrMalformedRecord, line)
	}
	chrom := cols[0]
	pos1, err := strconv.Atoi(cols[1])
	if err != nil {
		return VariantRecord{}, "", fmt.Errorf("external: %w: malformed VCF position: %q", errs.ErrMalformedRecord, cols[1])
	}
	pos0 := pos1 - 1 // VCF POS is 1-based; the builder works in 0-based coordinates
	ref := cols[3]
	alts := strings.Split(cols[4], ",")
	info := cols[7]

	af := parseAFFromInfo(info, len(alts))

	var genotypes [][2]int // per-sample [hapA,hapB] allele index, -1 if missing
	if len(cols) > 9 {
		formatKeys := strings.Split(cols[8], ":")
		gtIdx := -1
		for i, k := range formatKeys {
			if k == "GT" {
				gtIdx = i
				break
			}
		}
		for _, sampleCol := range cols[9:] {
			fields := strings.Split(sampleCol, ":")
			gt := [2]int{-1, -1}
			if gtIdx >= 0 && gtIdx < len(fields) {
				gt = parseGT(fields[gtIdx])
			}
			genotypes = append(genotypes, gt)
		}
	}

	// Subset to the stream's ingroup before AF fallback and membership are
	// computed, so both line up with NumSamples() (spec.md §4.5): a sample
	// excluded from the ingroup must not contribute to allele frequency or
	// appear in any node's membership bitset.
	ingroup := make([][2]int, len(s.ingroup))
	for i, sampleIdx := range s.ingroup {
		if sampleIdx < len(genotypes) {
			ingroup[i] = genotypes[sampleIdx]
		} else {
			ingroup[i] = [2]int{-1, -1}
		}
	}

	if af == nil {
		af = afFromGenotypes(ingroup, len(alts))
	}

	rec := VariantRecord{
		Pos: pos0,
		Ref: ref,
		Alt: alts,
		AF:  af,
		Allele: func(alleleIdx int) []bool {
			carriers := make([]bool, 2*len(ingroup))
			for i, gt := range ingroup {
				if gt[0] == alleleIdx {
					carriers[2*i] = true
				}
				if gt[1] == alleleIdx {
					carriers[2*i+1] = true
				}
			}
			return carriers
		},
	}
	return rec, chrom, nil
}

func parseGT(field string) [2]int {
	sep := "/"
	if strings.Contains(field, "|") {
		sep = "|"
	}
	parts := strings.SplitN(field, sep, 2)
	out := [2]int{-1, -1}
	if len(parts) < 2 {
		return out
	}
	if v, err := strconv.Atoi(parts[0]); err == nil {
		out[0] = v
	}
	if v, err := strconv.Atoi(parts[1]); err == nil {
		out[1] = v
	}
	return out
}

func parseAFFromInfo(info string, numAlts int) []float64 {
	for _, kv := range strings.Split(info, ";") {
		if !strings.HasPrefix(kv, "AF=") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(kv, "AF="), ",")
		altAF := make([]float64, numAlts)
		for i := 0; i < numAlts && i < len(parts); i++ {
			v, err := strconv.ParseFloat(parts[i], 64)
			if err != nil {
				return nil
			}
			altAF[i] = v
		}
		refAF := 1.0
		for _, a := range altAF {
			refAF -= a
		}
		return append([]float64{refAF}, altAF...)
	}
	return nil
}

func afFromGenotypes(genotypes [][2]int, numAlts int) []float64 {
	counts := make([]int, numAlts+1)
	total := 0
	for _, gt := range genotypes {
		for _, a := range gt {
			if a >= 0 && a <= numAlts {
				counts[a]++
				total++
			}
		}
	}
	af := make([]float64, numAlts+1)
	if total == 0 {
		af[0] = 1
		return af
	}
	for i, c := range counts {
		af[i] = float64(c) / float64(total)
	}
	return af
}

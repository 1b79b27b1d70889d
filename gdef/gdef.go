// Package gdef implements the graph-definition file format (spec.md §6.1)
// and the subgraph registry / manager (spec.md §4.6): it holds the base
// graph, the named population filters, and lazily-constructed derived
// graphs, serialised to and from the hierarchical scope-delimited text
// format.
//
// Grounded on original_source/src/gdef.cpp's GraphManager::open/write/
// make_subgraph; the coarse cache-map mutex and the scope/negation naming
// scheme are carried over unchanged (spec.md §4.6, §5, §9).
package gdef

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"

	"vargo/bitset"
	"vargo/external"
	"vargo/graph"
	"vargo/internal/errs"
	"vargo/internal/logging"
)

var log = logging.For("gdef")

// Magic is the fixed first-line token identifying a graph-definition file.
const Magic = "VARGO-GDEF-1"

const (
	keyRef        = "ref"
	keyVCF        = "vcf"
	keyRegion     = "region"
	keyNodeLen    = "nodelen"
	keyIngroupPct = "ingroup"

	// BaseLabel is the root scope name; every subgraph path is rooted here.
	BaseLabel = "base"
	scopeSep  = "/"
	negatePfx = "~"
)

// Definition is the parsed header of a graph-definition file.
type Definition struct {
	RefPath    string
	VCFPath    string
	Region     external.Region
	NodeLength int
	// IngroupPct is the percentage of VCF samples the base graph was built
	// from (spec.md §4.5); re-deriving the base graph from this Definition
	// must reuse it so the rebuilt graph's population size matches the one
	// the stored filters were computed against.
	IngroupPct int
}

// Manager holds the base graph, the named population filters, and
// lazily-constructed derived graphs, materialised via graph.DeriveByFilter
// and cached. MakeSubgraph is safe for concurrent use from multiple
// goroutines: a single mutex guards the cache map (spec.md §4.6, §5).
type Manager struct {
	def     Definition
	base    *graph.Graph
	filters map[string]*bitset.Set // full path (e.g. "base/child") -> filter

	mu    sync.Mutex
	cache map[string]*graph.Graph
}

// NewManager wraps an already-built base graph and a set of full-path ->
// filter definitions (as produced by Parse or BuildFilters).
func NewManager(def Definition, base *graph.Graph, filters map[string]*bitset.Set) *Manager {
	return &Manager{
		def:     def,
		base:    base,
		filters: filters,
		cache:   make(map[string]*graph.Graph),
	}
}

// Base returns the base graph. Panics if no base graph was built; callers
// that Parse with a nil buildBase must not call this.
func (m *Manager) Base() *graph.Graph {
	if m.base == nil {
		panic("gdef: no base graph built")
	}
	return m.base
}

// Definition returns the parsed header.
func (m *Manager) Definition() Definition { return m.def }

// Filter returns the population filter for label (without the "base/"
// prefix; pass "" or "base" for the whole-cohort filter implied by the
// base graph itself).
func (m *Manager) Filter(label string) (*bitset.Set, error) {
	full := fullPath(label)
	f, ok := m.filters[full]
	if !ok {
		return nil, fmt.Errorf("gdef: label %q does not exist", label)
	}
	return f, nil
}

func fullPath(label string) string {
	if label == "" || label == BaseLabel {
		return BaseLabel
	}
	return BaseLabel + scopeSep + label
}

// MakeSubgraph materialises (and caches) the derived graph for label.
// label == "" or "base" returns the base graph itself. Safe for concurrent
// use: insertion/lookup in the cache is serialised by a single mutex, which
// is acceptable because derivation is O(|nodes|+|edges|) and amortises
// across many alignment tasks (spec.md §9).
func (m *Manager) MakeSubgraph(label string) (*graph.Graph, error) {
	if label == "" || label == BaseLabel {
		return m.Base(), nil
	}
	full := fullPath(label)

	m.mu.Lock()
	if g, ok := m.cache[full]; ok {
		m.mu.Unlock()
		return g, nil
	}
	m.mu.Unlock()

	filter, ok := m.filters[full]
	if !ok {
		return nil, fmt.Errorf("gdef: label %q does not exist", label)
	}
	derived, err := m.Base().DeriveByFilter(filter)
	if err != nil {
		return nil, fmt.Errorf("gdef: deriving %q: %w", label, err)
	}
	log.WithField("label", label).Debug("materialised subgraph")

	m.mu.Lock()
	if existing, ok := m.cache[full]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.cache[full] = derived
	m.mu.Unlock()
	return derived, nil
}

// Parse reads a graph-definition file: the magic line, the ';'-delimited
// header, and one "path=bitstring" line per named population. buildBase, if
// non-nil, is invoked to construct the base graph from the parsed
// Definition; pass nil to parse definitions only (e.g. inspecting a gdef
// file without touching the reference/VCF files it names).
func Parse(r io.Reader, buildBase func(Definition) (*graph.Graph, error)) (*Manager, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("gdef: %w: empty file", errs.ErrInvalidInput)
	}
	if scanner.Text() != Magic {
		return nil, fmt.Errorf("gdef: %w: not a graph-definition file (bad magic)", errs.ErrInvalidInput)
	}
	if !scanner.Scan() {
		return nil, fmt.Errorf("gdef: %w: missing header line", errs.ErrInvalidInput)
	}
	def, err := parseHeader(scanner.Text())
	if err != nil {
		return nil, err
	}

	var base *graph.Graph
	if buildBase != nil {
		base, err = buildBase(def)
		if err != nil {
			return nil, err
		}
	}

	var nsamp int
	if base != nil {
		nsamp = base.PopSize()
	}

	filters := make(map[string]*bitset.Set)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("gdef: %w: invalid token %q", errs.ErrInvalidInput, line)
		}
		path, bits := parts[0], parts[1]
		if nsamp > 0 && len(bits) != nsamp {
			return nil, fmt.Errorf("gdef: %w: population length for %q is %d, expected %d", errs.ErrInvariant, path, len(bits), nsamp)
		}
		b, err := bitset.FromString(bits)
		if err != nil {
			return nil, fmt.Errorf("gdef: %q: %w", path, err)
		}
		if _, dup := filters[path]; dup {
			return nil, fmt.Errorf("gdef: %w: duplicate definition %q", errs.ErrInvariant, path)
		}
		filters[path] = b
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewManager(def, base, filters), nil
}

func parseHeader(line string) (Definition, error) {
	def := Definition{IngroupPct: -1}
	for _, kv := range strings.Split(line, ";") {
		if kv == "" {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return def, fmt.Errorf("gdef: invalid header token %q", kv)
		}
		switch parts[0] {
		case keyRef:
			def.RefPath = parts[1]
		case keyVCF:
			def.VCFPath = parts[1]
		case keyRegion:
			r, err := parseRegion(parts[1])
			if err != nil {
				return def, err
			}
			def.Region = r
		case keyNodeLen:
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				return def, fmt.Errorf("gdef: invalid nodelen %q", parts[1])
			}
			def.NodeLength = n
		case keyIngroupPct:
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				return def, fmt.Errorf("gdef: invalid ingroup percentage %q", parts[1])
			}
			def.IngroupPct = n
		}
	}
	if def.IngroupPct < 0 {
		def.IngroupPct = 100 // absent means "every sample", matching pre-ingroup gdef files
	}
	return def, nil
}

func parseRegion(s string) (external.Region, error) {
	chromAndRange := strings.SplitN(s, ":", 2)
	if len(chromAndRange) != 2 {
		return external.Region{}, fmt.Errorf("gdef: invalid region %q", s)
	}
	bounds := strings.SplitN(chromAndRange[1], "-", 2)
	if len(bounds) != 2 {
		return external.Region{}, fmt.Errorf("gdef: invalid region %q", s)
	}
	lower, err := strconv.Atoi(bounds[0])
	if err != nil {
		return external.Region{}, fmt.Errorf("gdef: invalid region lower bound %q", s)
	}
	upper, err := strconv.Atoi(bounds[1])
	if err != nil {
		return external.Region{}, fmt.Errorf("gdef: invalid region upper bound %q", s)
	}
	return external.Region{Chrom: chromAndRange[0], Lower: lower, Upper: upper}, nil
}

// WriteHeader serialises def's magic line and header line. def.IngroupPct is
// written verbatim: a caller that wants the default ingroup of every sample
// must set it to 100 explicitly, since Parse only substitutes 100 for a
// header written without the key at all (pre-ingroup gdef files).
func WriteHeader(w io.Writer, def Definition) error {
	_, err := fmt.Fprintf(w, "%s\n%s=%s;%s=%s;%s=%s;%s=%d;%s=%d\n",
		Magic, keyRef, def.RefPath, keyVCF, def.VCFPath, keyRegion, def.Region.String(), keyNodeLen, def.NodeLength,
		keyIngroupPct, def.IngroupPct)
	return err
}

// SubgraphSpec is one line of a subgraph-definition script: declare a
// child (relative to parent, via scope path in Name) sized either as a
// literal Count or as Percent of the parent's remaining (still-unassigned)
// samples. Exactly one of Count/Percent is meaningful, selected by
// IsPercent.
type SubgraphSpec struct {
	Name      string // hierarchical path relative to "base", e.g. "child" or "child/grandchild"
	Count     int
	Percent   int
	IsPercent bool
}

// BuildFilters expands a definition script into a full path -> filter map,
// seeded with the base graph's full-population filter, and returns it; it
// writes nothing (WriteHeader and WriteFilters serialise the result). For
// every declared subgraph it also implicitly defines its complement within
// the parent, prefixed with "~" (spec.md §4.6).
//
// Sampling is uniform-without-replacement over the parent's still-available
// sample indices in ascending order, mirroring
// original_source/src/gdef.cpp's GraphManager::write: build the ascending
// list of the parent's set bit positions, then repeatedly draw a random
// index into that list until count distinct positions are chosen.
func BuildFilters(nsamp int, specs []SubgraphSpec, rng *rand.Rand) (map[string]*bitset.Set, error) {
	pops := make(map[string]*bitset.Set)
	all := bitset.New(nsamp)
	for i := 0; i < nsamp; i++ {
		all.SetBit(i)
	}
	pops[BaseLabel] = all

	for _, spec := range specs {
		full := fullPath(spec.Name)
		if strings.HasPrefix(lastComponent(full), negatePfx) {
			return nil, fmt.Errorf("gdef: %w: negative graphs cannot be defined explicitly: %q", errs.ErrInvariant, spec.Name)
		}
		parentPath := parentOf(full)
		parent, ok := pops[parentPath]
		if !ok {
			return nil, fmt.Errorf("gdef: %w: parent %q not yet defined", errs.ErrInvariant, parentPath)
		}
		if _, dup := pops[full]; dup {
			return nil, fmt.Errorf("gdef: %w: duplicate definition %q", errs.ErrInvariant, spec.Name)
		}

		avail := parent.Count()
		count := spec.Count
		if spec.IsPercent {
			count = int((float64(spec.Percent) / 100) * float64(avail))
		}
		if count > avail {
			return nil, fmt.Errorf("gdef: not enough samples to pick %d in definition %q", count, spec.Name)
		}

		availSet := parent.SetIndices()
		chosen, err := sampleWithoutReplacement(availSet, count, rng)
		if err != nil {
			return nil, err
		}

		child := bitset.New(nsamp)
		for _, idx := range chosen {
			child.SetBit(idx)
		}
		pops[full] = child
		pops[parentPath+scopeSep+negatePfx+lastComponent(full)] = child.Not().And(parent)
	}
	return pops, nil
}

// sampleWithoutReplacement draws count distinct values from avail (a list
// of candidate indices), ascending-ordered as the caller must supply, via
// repeated uniform draws with rejection on repeats -- matching the
// rand()%avail_set.size() loop in original_source/src/gdef.cpp.
func sampleWithoutReplacement(avail []int, count int, rng *rand.Rand) ([]int, error) {
	if count > len(avail) {
		return nil, fmt.Errorf("gdef: cannot sample %d distinct values from %d candidates", count, len(avail))
	}
	chosen := make(map[int]bool, count)
	out := make([]int, 0, count)
	for len(out) < count {
		r := rng.Intn(len(avail))
		if chosen[avail[r]] {
			continue
		}
		chosen[avail[r]] = true
		out = append(out, avail[r])
	}
	sort.Ints(out)
	return out, nil
}

func lastComponent(path string) string {
	idx := strings.LastIndex(path, scopeSep)
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

func parentOf(path string) string {
	idx := strings.LastIndex(path, scopeSep)
	if idx < 0 {
		return path
	}
	return path[:idx]
}

// WriteFilters serialises a full-path -> filter map as gdef subgraph lines,
// sorted by path for deterministic output.
func WriteFilters(w io.Writer, pops map[string]*bitset.Set) error {
	paths := make([]string, 0, len(pops))
	for p := range pops {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if _, err := fmt.Fprintf(w, "%s=%s\n", p, pops[p].String()); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vargo/gdef"
	"vargo/internal/errs"
)

func newDefineCmd() *cobra.Command {
	var (
		gdefPath   string
		scriptPath string
		outPath    string
		seed       int64
	)

	cmd := &cobra.Command{
		Use:   "define",
		Short: "Apply a subgraph-definition script to a graph-definition file's base population",
		RunE: func(*cobra.Command, []string) error {
			f, err := os.Open(gdefPath)
			if err != nil {
				return err
			}
			def, err := readDefinitionHeader(f)
			f.Close()
			if err != nil {
				return err
			}

			g, err := buildBaseGraph(def)
			if err != nil {
				return err
			}

			sf, err := os.Open(scriptPath)
			if err != nil {
				return err
			}
			specs, err := parseSubgraphScript(sf)
			sf.Close()
			if err != nil {
				return err
			}

			pops, err := gdef.BuildFilters(g.PopSize(), specs, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := gdef.WriteHeader(out, def); err != nil {
				return err
			}
			return gdef.WriteFilters(out, pops)
		},
	}

	cmd.Flags().StringVar(&gdefPath, "gdef", "", "input graph-definition file, for its header (required)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "subgraph-definition script path (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output graph-definition file path (required)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "RNG seed for sample sampling")
	for _, f := range []string{"gdef", "script", "out"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// readDefinitionHeader returns the parsed header of a graph-definition file
// without building a base graph. The filter lines are still parsed and
// validated, and then discarded.
func readDefinitionHeader(f *os.File) (gdef.Definition, error) {
	m, err := gdef.Parse(f, nil)
	if err != nil {
		return gdef.Definition{}, err
	}
	return m.Definition(), nil
}

// parseSubgraphScript reads lines of the form "path=count" or "path=pct%"
// into gdef.SubgraphSpec values; blank lines are skipped.
func parseSubgraphScript(r *os.File) ([]gdef.SubgraphSpec, error) {
	var specs []gdef.SubgraphSpec
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, rhs, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("vgalign: %w: malformed subgraph script line %q", errs.ErrMalformedRecord, line)
		}
		spec := gdef.SubgraphSpec{Name: name}
		if strings.HasSuffix(rhs, "%") {
			pct, err := strconv.Atoi(strings.TrimSuffix(rhs, "%"))
			if err != nil {
				return nil, fmt.Errorf("vgalign: %w: invalid percentage in %q", errs.ErrMalformedRecord, line)
			}
			spec.IsPercent = true
			spec.Percent = pct
		} else {
			count, err := strconv.Atoi(rhs)
			if err != nil {
				return nil, fmt.Errorf("vgalign: %w: invalid count in %q", errs.ErrMalformedRecord, line)
			}
			spec.Count = count
		}
		specs = append(specs, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vgalign: %w: %w", errs.ErrResource, err)
	}
	return specs, nil
}

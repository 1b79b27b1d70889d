package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vargo/align"
	"vargo/builder"
	"vargo/external"
	"vargo/gdef"
	"vargo/graph"
	"vargo/internal/errs"
	"vargo/seqcode"
)

func newAlignCmd() *cobra.Command {
	var (
		gdefPath    string
		routingPath string
		inPath      string
		outPath     string
		match       int
		mismatch    int
		gapOpen     int
		gapExtend   int
		endToEnd    bool
		maxReadLen  int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Route SAM reads to subgraphs by read-group and align them against the variant graph",
		RunE: func(*cobra.Command, []string) error {
			manager, err := openManager(gdefPath)
			if err != nil {
				return err
			}

			var rules []external.RoutingRule
			if routingPath != "" {
				rf, err := os.Open(routingPath)
				if err != nil {
					return err
				}
				rules, err = external.ParseRoutingSpec(rf)
				rf.Close()
				if err != nil {
					return err
				}
			}

			in, err := os.Open(inPath)
			if err != nil {
				return err
			}
			defer in.Close()

			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()

			mode := align.Local
			if endToEnd {
				mode = align.EndToEnd
			}
			params := align.Params{
				Match: byte(match), Mismatch: byte(mismatch),
				GapOpen: byte(gapOpen), GapExtend: byte(gapExtend),
				Mode: mode,
			}

			records, labels, err := loadAndRouteSAM(in, rules, maxReadLen)
			if err != nil {
				return err
			}

			tasks, idxByLabel := groupByLabel(records, labels)
			driver := &align.Driver{Manager: manager, Params: params, Concurrency: concurrency}
			results, err := driver.Run(context.Background(), tasks)
			if err != nil {
				return err
			}
			writeResults(out, records, idxByLabel, results, endToEnd)
			return nil
		},
	}

	cmd.Flags().StringVar(&gdefPath, "gdef", "", "graph-definition file (required)")
	cmd.Flags().StringVar(&routingPath, "routing", "", "alignment-target routing spec (optional)")
	cmd.Flags().StringVar(&inPath, "in", "", "input SAM file (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "output SAM file (required)")
	cmd.Flags().IntVar(&match, "match", 2, "match score")
	cmd.Flags().IntVar(&mismatch, "mismatch", 2, "mismatch penalty")
	cmd.Flags().IntVar(&gapOpen, "gap-open", 3, "gap open penalty")
	cmd.Flags().IntVar(&gapExtend, "gap-extend", 1, "gap extend penalty")
	cmd.Flags().BoolVar(&endToEnd, "end-to-end", false, "score end-to-end instead of local")
	cmd.Flags().IntVar(&maxReadLen, "max-read-len", 200, "reads longer than this are a configuration error")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "worker concurrency; 0 means unbounded")
	for _, f := range []string{"gdef", "in", "out"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// openManager rebuilds the base graph named by a graph-definition file's
// header and returns a ready gdef.Manager.
func openManager(path string) (*gdef.Manager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return gdef.Parse(f, buildBaseGraph)
}

func buildBaseGraph(def gdef.Definition) (*graph.Graph, error) {
	ref, err := loadFASTA(def.RefPath)
	if err != nil {
		return nil, err
	}
	vf, err := os.Open(def.VCFPath)
	if err != nil {
		return nil, err
	}
	defer vf.Close()
	stream, err := external.NewTextVCFStream(vf, def.Region, def.IngroupPct)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return builder.Build(ref, stream, builder.Options{
		Region:        def.Region,
		IngroupPct:    def.IngroupPct,
		MaxNodeLen:    def.NodeLength,
		ReferencePath: def.RefPath,
		VariantPath:   def.VCFPath,
	})
}

// loadAndRouteSAM reads SAM alignment lines from r, skipping '@' header
// lines, and resolves each record's target subgraph label per rules
// (spec.md §6.5). Records whose SEQ exceeds maxReadLen are a configuration
// error (spec.md §6.2, §7).
func loadAndRouteSAM(r io.Reader, rules []external.RoutingRule, maxReadLen int) ([]*external.SAMRecord, []string, error) {
	var records []*external.SAMRecord
	var labels []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "@") {
			continue
		}
		rec, err := external.ParseSAMLine(line)
		if err != nil {
			return nil, nil, err
		}
		if len(rec.Seq) > maxReadLen {
			return nil, nil, fmt.Errorf("vgalign: %w: read %q has length %d, exceeds max %d",
				errs.ErrConfiguration, rec.QName, len(rec.Seq), maxReadLen)
		}
		label := external.Route(rec, rules)
		if label == external.UngroupedLabel {
			rec.Aux["RG"] = external.UngroupedReadGroup
		}
		records = append(records, rec)
		labels = append(labels, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("vgalign: %w: %w", errs.ErrResource, err)
	}
	return records, labels, nil
}

// groupByLabel buckets records into one align.Task per distinct label,
// preserving first-seen label order for deterministic task ordering, and
// returns a label -> record-index map so results can be scattered back to
// the original record slice by label rather than by task position: a task
// whose subgraph label fails to resolve, or whose alignment fails, is
// dropped by align.Driver.Run (spec.md §7), so the returned TaskResults
// are not guaranteed to line up positionally with the tasks given to it.
func groupByLabel(records []*external.SAMRecord, labels []string) ([]align.Task, map[string][]int) {
	var order []string
	indices := make(map[string][]int)
	for i, label := range labels {
		if _, ok := indices[label]; !ok {
			order = append(order, label)
		}
		indices[label] = append(indices[label], i)
	}
	tasks := make([]align.Task, len(order))
	for t, label := range order {
		idx := indices[label]
		reads := make([]align.Read, len(idx))
		for j, i := range idx {
			reads[j] = align.Read{ID: records[i].QName, Seq: seqcode.Encode(records[i].Seq)}
		}
		tasks[t] = align.Task{Label: label, Reads: reads}
	}
	return tasks, indices
}

// writeResults scatters each surviving task's per-read Results back onto the
// originating record's aux tags (spec.md §6.2) by looking up its label in
// idxByLabel, then writes every record to w in original input order.
// endToEnd records the mode the whole batch ran under: every task in one
// align invocation shares the same Params. Records belonging to a dropped
// task keep no aux tags added, matching spec.md §7's drop-and-continue
// policy.
func writeResults(w io.Writer, records []*external.SAMRecord, idxByLabel map[string][]int, taskResults []align.TaskResult, endToEnd bool) {
	e2e := 0
	if endToEnd {
		e2e = 1
	}
	for _, tr := range taskResults {
		idx := idxByLabel[tr.Label]
		for j, res := range tr.Results {
			rec := records[idx[j]]
			rec.SetInt(external.TagBestPos, res.BestPos)
			rec.SetInt(external.TagBestScore, int(res.BestScore))
			rec.SetInt(external.TagBestCount, res.BestCount)
			rec.SetInt(external.TagSubPos, res.SubPos)
			rec.SetInt(external.TagSubScore, int(res.SubScore))
			rec.SetInt(external.TagSubCount, res.SubCount)
			rec.SetInt(external.TagCorrectness, res.Correctness)
			rec.SetInt(external.TagEndToEnd, e2e)
		}
	}
	for _, rec := range records {
		fmt.Fprintln(w, external.WriteSAMLine(rec))
	}
}

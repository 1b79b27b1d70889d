package main

import (
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"vargo/sim"
)

func newSimCmd() *cobra.Command {
	var (
		gdefPath   string
		label      string
		outPath    string
		seed       int64
		count      int
		readLen    int
		subCount   int
		subRate    float64
		indCount   int
		indRate    float64
		minVnd     int
		maxVnd     int
		minVbs     int
		maxVbs     int
		nAbort     int
	)

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Emit simulated reads as FASTA, drawn from a graph-definition file's subgraph",
		RunE: func(*cobra.Command, []string) error {
			manager, err := openManager(gdefPath)
			if err != nil {
				return err
			}
			target, err := manager.MakeSubgraph(label)
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()

			profile := sim.Profile{
				ReadLen:                 readLen,
				SubCount:                subCount,
				SubRate:                 subRate,
				IndCount:                indCount,
				IndRate:                 indRate,
				MinVariantNodeCrossings: minVnd,
				MaxVariantNodeCrossings: maxVnd,
				MinVariantBaseCoverage:  minVbs,
				MaxVariantBaseCoverage:  maxVbs,
			}
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < count; i++ {
				read, err := sim.Generate(target, profile, rng, nAbort)
				if err != nil {
					return err
				}
				if err := sim.WriteFASTA(out, read); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&gdefPath, "gdef", "", "graph-definition file (required)")
	cmd.Flags().StringVar(&label, "label", "", "subgraph label to sample from; empty means the base graph")
	cmd.Flags().StringVar(&outPath, "out", "", "output FASTA path (required)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "RNG seed")
	cmd.Flags().IntVar(&count, "count", 1, "number of reads to emit")
	cmd.Flags().IntVar(&readLen, "read-len", 100, "read length")
	cmd.Flags().IntVar(&subCount, "sub-count", 0, "substitution count per read; negative derives from --sub-rate")
	cmd.Flags().Float64Var(&subRate, "sub-rate", 0, "substitution rate per base, used when --sub-count is negative")
	cmd.Flags().IntVar(&indCount, "ind-count", 0, "indel count per read; negative derives from --ind-rate")
	cmd.Flags().Float64Var(&indRate, "ind-rate", 0, "indel rate per base, used when --ind-count is negative")
	cmd.Flags().IntVar(&minVnd, "min-vnd", -1, "minimum distinct variant-node crossings; -1 unconstrained")
	cmd.Flags().IntVar(&maxVnd, "max-vnd", -1, "maximum distinct variant-node crossings; -1 unconstrained")
	cmd.Flags().IntVar(&minVbs, "min-vbs", -1, "minimum variant-base coverage; -1 unconstrained")
	cmd.Flags().IntVar(&maxVbs, "max-vbs", -1, "maximum variant-base coverage; -1 unconstrained")
	cmd.Flags().IntVar(&nAbort, "n-abort", 0, "attempts before giving up; 0 means config.DefaultNAbort")
	for _, f := range []string{"gdef", "out"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

package main

import (
	"os"

	"github.com/spf13/cobra"

	"vargo/bitset"
	"vargo/builder"
	"vargo/external"
	"vargo/gdef"
)

func newBuildCmd() *cobra.Command {
	var (
		refPath    string
		vcfPath    string
		chrom      string
		lower      int
		upper      int
		nodeLen    int
		ingroupPct int
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Fuse a reference FASTA and a VCF into a base variant graph, recording a graph-definition file",
		RunE: func(*cobra.Command, []string) error {
			ref, err := loadFASTA(refPath)
			if err != nil {
				return err
			}
			vf, err := os.Open(vcfPath)
			if err != nil {
				return err
			}
			defer vf.Close()

			region := external.Region{Chrom: chrom, Lower: lower, Upper: upper}
			stream, err := external.NewTextVCFStream(vf, region, ingroupPct)
			if err != nil {
				return err
			}
			defer stream.Close()

			opt := builder.Options{
				Region:        region,
				IngroupPct:    ingroupPct,
				MaxNodeLen:    nodeLen,
				ReferencePath: refPath,
				VariantPath:   vcfPath,
			}
			g, err := builder.Build(ref, stream, opt)
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()

			def := gdef.Definition{RefPath: refPath, VCFPath: vcfPath, Region: region, NodeLength: nodeLen, IngroupPct: ingroupPct}
			if err := gdef.WriteHeader(out, def); err != nil {
				return err
			}
			all := bitset.New(g.PopSize())
			for i := 0; i < g.PopSize(); i++ {
				all.SetBit(i)
			}
			return gdef.WriteFilters(out, map[string]*bitset.Set{gdef.BaseLabel: all})
		},
	}

	cmd.Flags().StringVar(&refPath, "ref", "", "reference FASTA path (required)")
	cmd.Flags().StringVar(&vcfPath, "vcf", "", "VCF path (required)")
	cmd.Flags().StringVar(&chrom, "chrom", "", "chromosome name (required)")
	cmd.Flags().IntVar(&lower, "lower", 0, "region lower bound, 0-based inclusive")
	cmd.Flags().IntVar(&upper, "upper", 0, "region upper bound, 0-based exclusive; 0 means to the end of the chromosome")
	cmd.Flags().IntVar(&nodeLen, "nodelen", 80, "maximum reference node length")
	cmd.Flags().IntVar(&ingroupPct, "ingroup", 100, "percentage of samples to materialise, [0,100]")
	cmd.Flags().StringVar(&outPath, "out", "", "output graph-definition file path (required)")
	for _, f := range []string{"ref", "vcf", "chrom", "out"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

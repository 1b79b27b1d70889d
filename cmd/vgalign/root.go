// Command vgalign drives the variant-graph builder, subgraph-definition
// manager, aligner, and read simulator from the command line: one
// cobra.Command per verb (build, define, align, sim), following cobra's
// standard RunE idiom (grounded on ritzau-deps-analyzer/go.mod's cobra +
// pflag pairing; the teacher's own main.go hardcodes its file paths, so the
// command surface itself is new, built in cobra's conventional shape rather
// than the teacher's procedural main).
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"vargo/internal/logging"
)

var logLevel string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vgalign",
		Short:         "Variant-graph builder, subgraph manager, aligner, and read simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("vgalign: invalid --log-level %q: %w", logLevel, err)
			}
			logging.SetLevel(level)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.AddCommand(newBuildCmd(), newDefineCmd(), newAlignCmd(), newSimCmd())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

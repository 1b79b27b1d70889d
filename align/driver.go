// Driver shards alignment work across a worker pool: one task per
// (subgraph label, read chunk) pair, each resolved to its derived graph via
// a gdef.Manager and aligned independently. Grounded on
// dna_aligner/aligner/align.go's procedural top-level driver function,
// reworked from single-sequence scanning to fan out golang.org/x/sync's
// errgroup across per-task goroutines (spec.md §5, §6.5's read-group
// routing).
package align

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"vargo/gdef"
	"vargo/internal/errs"
	"vargo/internal/logging"
)

var log = logging.For("align")

// Task is one unit of routed work: every read in Reads is aligned against
// the subgraph named Label.
type Task struct {
	Label string
	Reads []Read
}

// TaskResult pairs a Task's Label with its per-read Results, in the same
// order the reads were given.
type TaskResult struct {
	Label   string
	Results []Result
}

// Driver runs Tasks against graphs resolved through a gdef.Manager, with a
// caller-supplied concurrency bound.
type Driver struct {
	Manager     *gdef.Manager
	Params      Params
	Concurrency int // <= 0 means unbounded (errgroup.SetLimit is skipped)
}

// Run resolves and aligns every task. A task that fails with a
// configuration error (spec.md §7: a problem with the run itself, not one
// read or one label) aborts the whole call; any other per-task error
// (unknown routing label, a malformed or resource failure surfaced while
// aligning) is logged to the error stream and that task is dropped,
// matching spec.md §7's propagation policy. The returned slice holds one
// TaskResult per surviving task, in the order its task was given.
// Manager.MakeSubgraph's internal mutex makes concurrent resolution of the
// same label from multiple goroutines safe; two tasks that resolve the same
// label at the same time may both derive it, but both receive the single
// graph that was cached first.
func (d *Driver) Run(ctx context.Context, tasks []Task) ([]TaskResult, error) {
	out := make([]TaskResult, len(tasks))
	survived := make([]bool, len(tasks))
	g, ctx := errgroup.WithContext(ctx)
	if d.Concurrency > 0 {
		g.SetLimit(d.Concurrency)
	}

	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sg, err := d.Manager.MakeSubgraph(task.Label)
			if err != nil {
				return dropOrFail(task.Label, "resolving subgraph", err)
			}
			results, err := AlignBatch(sg, task.Reads, d.Params)
			if err != nil {
				return dropOrFail(task.Label, "aligning", err)
			}
			out[i] = TaskResult{Label: task.Label, Results: results}
			survived[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	kept := make([]TaskResult, 0, len(tasks))
	dropped := 0
	for i, ok := range survived {
		if ok {
			kept = append(kept, out[i])
		} else {
			dropped++
		}
	}
	log.WithField("tasks", len(kept)).WithField("dropped", dropped).Info("aligned batch")
	return kept, nil
}

// dropOrFail classifies a per-task error: configuration errors propagate and
// abort the whole Run, everything else is logged and swallowed so the task
// is simply dropped from the result set.
func dropOrFail(label, step string, err error) error {
	if errors.Is(err, errs.ErrConfiguration) {
		return fmt.Errorf("align: %s %q: %w", step, label, err)
	}
	log.WithError(err).WithField("label", label).Errorf("dropping task: %s", step)
	return nil
}

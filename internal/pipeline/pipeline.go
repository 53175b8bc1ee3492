package pipeline

import (
	"context"
	"fmt"
)

// Step is a named unit of work. Steps run in slice order.
type Step struct {
	Name   string
	Action func(ctx context.Context) error
}

// State of a pipeline run
type State int

const (
	StatePending State = iota
	StateFailed
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFailed:
		return "failed"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Run is the outcome of one pass over a step list.
// Index is the step that failed, or the step count once completed.
type Run struct {
	State    State
	Index    int
	Step     string
	Err      error
	Progress float64
}

// Runner executes steps serially and stops at the first failure
type Runner struct {
	Reporter Reporter
}

// NewRunner creates a runner; a nil reporter discards events
func NewRunner(r Reporter) *Runner {
	if r == nil {
		r = Discard
	}
	return &Runner{Reporter: r}
}

// Run executes steps in order. Progress only advances past a step once it
// succeeds, so a run that fails at step i reports i/total.
func (r *Runner) Run(ctx context.Context, steps []Step) Run {
	rep := r.Reporter
	if rep == nil {
		rep = Discard
	}
	ctx = WithReporter(ctx, rep)

	run := Run{State: StatePending}
	total := len(steps)

	for i, step := range steps {
		run.Index = i
		run.Step = step.Name

		if err := ctx.Err(); err != nil {
			return fail(rep, run, err)
		}

		rep.ReportStep(i, total, step.Name)
		if err := step.Action(ctx); err != nil {
			return fail(rep, run, err)
		}

		run.Progress = float64(i+1) / float64(total)
		rep.ReportProgress(run.Progress)
	}

	run.State = StateCompleted
	run.Index = total
	run.Step = ""
	run.Progress = 1
	rep.ReportDone()
	return run
}

func fail(rep Reporter, run Run, err error) Run {
	run.State = StateFailed
	run.Err = err
	rep.ReportFatal(run.Index, run.Step, err)
	return run
}

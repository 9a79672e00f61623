// Package workflow runs the multi-step operations of a node: holding links
// and entries received from the network and authoring new entries. Each
// run moves through a fixed sequence of stages, reported to an Observer.
package workflow

import (
	"log/slog"

	"github.com/roach88/nucleus/internal/ir"
)

// Stage is a step of a workflow run.
type Stage string

// Stages, in the order a successful run visits them.
const (
	StageStarted         Stage = "started"
	StageAwaitingPackage Stage = "awaiting_package"
	StageValidating      Stage = "validating"
	StageCommitting      Stage = "committing"
	StageSucceeded       Stage = "succeeded"
	StageFailed          Stage = "failed"
)

// Terminal reports whether no stage follows s.
func (s Stage) Terminal() bool {
	return s == StageSucceeded || s == StageFailed
}

// Workflow names.
const (
	NameHoldLink    = "hold_link"
	NameHoldEntry   = "hold_entry"
	NameAuthorEntry = "author_entry"
)

// Transition is reported every time a run enters a stage. Err is set only
// for StageFailed.
type Transition struct {
	Workflow string
	Entry    ir.Address
	Stage    Stage
	Err      error
}

// Observer receives the transitions of a run, in order, on the goroutine
// running the workflow.
type Observer interface {
	Observe(Transition)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Transition)

// Observe implements Observer.
func (f ObserverFunc) Observe(t Transition) { f(t) }

// Option configures a workflow run.
type Option func(*run)

// WithObserver reports transitions to o.
func WithObserver(o Observer) Option {
	return func(r *run) { r.observer = o }
}

type run struct {
	workflow string
	entry    ir.Address
	observer Observer
	log      *slog.Logger
}

func start(workflow string, entry ir.Address, opts []Option) *run {
	r := &run{
		workflow: workflow,
		entry:    entry,
		log:      slog.With("workflow", workflow, "entry", entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.enter(StageStarted, nil)
	return r
}

func (r *run) enter(stage Stage, err error) {
	switch stage {
	case StageFailed:
		r.log.Warn("workflow failed", "error", err)
	case StageSucceeded:
		r.log.Info("workflow succeeded")
	default:
		r.log.Debug("workflow stage", "stage", stage)
	}
	if r.observer != nil {
		r.observer.Observe(Transition{Workflow: r.workflow, Entry: r.entry, Stage: stage, Err: err})
	}
}

func (r *run) advance(stage Stage) {
	r.enter(stage, nil)
}

func (r *run) fail(err error) error {
	r.enter(StageFailed, err)
	return err
}

func (r *run) succeed() {
	r.enter(StageSucceeded, nil)
}

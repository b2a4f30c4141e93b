// Package status implements the status orchestrator (spec section 4.9):
// a fixed set of independent collectors run concurrently, each bounded by
// its own timeout, joined into one snapshot regardless of completion
// order or individual failure.
package status

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Target identifies the worktree a collection run is for.
type Target struct {
	Path   string
	Branch string
}

// Collector produces one named sub-record of a Snapshot. Collect may
// return (nil, err) to indicate absence; the orchestrator also treats a
// timeout or a recovered panic as absence, never as a fatal error.
type Collector interface {
	Name() string
	IsAvailable(ctx context.Context, wt Target) bool
	Collect(ctx context.Context, wt Target, repoRoot string) (any, error)
}

// Snapshot is the joined result of one status collection run. Every field
// may be nil; downstream renderers skip absent fields. Related-worktree
// enumeration is not collector-driven (it runs synchronously after the
// concurrent collectors, per spec section 4.9).
type Snapshot struct {
	WorktreeInfo     any
	GitStatus        any
	StackPosition    any
	PRStatus         any
	Environment      any
	Dependencies     any
	Plan             any
	RelatedWorktrees any
}

// fieldOrder is the fixed section order results are assembled in,
// independent of which collector happened to finish first.
var fieldOrder = []string{
	"worktree_info", "git_status", "stack_position", "pr_status",
	"environment", "dependencies", "plan",
}

// Orchestrator runs a fixed list of collectors concurrently with a
// per-collector timeout.
type Orchestrator struct {
	collectors []Collector
	timeout    time.Duration
}

// DefaultTimeout is spec section 4.9's T (2.0s).
const DefaultTimeout = 2 * time.Second

// NewOrchestrator builds an Orchestrator. timeout <= 0 uses DefaultTimeout.
func NewOrchestrator(collectors []Collector, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{collectors: collectors, timeout: timeout}
}

// RelatedWorktreesFn enumerates worktrees related to wt; run synchronously
// after the concurrent collectors since it's cheap (spec section 4.9).
type RelatedWorktreesFn func(ctx context.Context, wt Target, repoRoot string) (any, error)

// Collect runs every available collector concurrently, each bounded by
// the orchestrator's timeout, then runs relatedFn synchronously. No
// collector failure, timeout, or panic fails the overall call.
func (o *Orchestrator) Collect(ctx context.Context, wt Target, repoRoot string, relatedFn RelatedWorktreesFn) Snapshot {
	results := make(map[string]any, len(o.collectors))
	var mu sync.Mutex

	var g errgroup.Group
	for _, c := range o.collectors {
		c := c
		if !c.IsAvailable(ctx, wt) {
			continue
		}
		g.Go(func() error {
			value, ok := o.runOne(ctx, c, wt, repoRoot)
			if ok {
				mu.Lock()
				results[c.Name()] = value
				mu.Unlock()
			}
			return nil // collector failures never fail the group; they're just absent
		})
	}
	_ = g.Wait()

	snap := assembleSnapshot(results)

	if relatedFn != nil {
		if related, err := relatedFn(ctx, wt, repoRoot); err == nil {
			snap.RelatedWorktrees = related
		}
	}
	return snap
}

// runOne executes a single collector under its timeout, converting a
// timeout or panic into absence (the two non-error "slot stays empty"
// outcomes spec section 4.9 names alongside a returned error).
func (o *Orchestrator) runOne(ctx context.Context, c Collector, wt Target, repoRoot string) (value any, ok bool) {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("collector %s panicked: %v", c.Name(), r)}
			}
		}()
		v, err := c.Collect(cctx, wt, repoRoot)
		done <- result{value: v, err: err}
	}()

	select {
	case <-cctx.Done():
		return nil, false
	case r := <-done:
		if r.err != nil {
			return nil, false
		}
		return r.value, true
	}
}

func assembleSnapshot(results map[string]any) Snapshot {
	snap := Snapshot{}
	for _, name := range fieldOrder {
		v, ok := results[name]
		if !ok {
			continue
		}
		switch name {
		case "worktree_info":
			snap.WorktreeInfo = v
		case "git_status":
			snap.GitStatus = v
		case "stack_position":
			snap.StackPosition = v
		case "pr_status":
			snap.PRStatus = v
		case "environment":
			snap.Environment = v
		case "dependencies":
			snap.Dependencies = v
		case "plan":
			snap.Plan = v
		}
	}
	return snap
}

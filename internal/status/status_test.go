package status

import (
	"context"
	"testing"
	"time"
)

type fakeCollector struct {
	name      string
	available bool
	delay     time.Duration
	value     any
	err       error
	panics    bool
}

func (f fakeCollector) Name() string { return f.name }
func (f fakeCollector) IsAvailable(ctx context.Context, wt Target) bool { return f.available }
func (f fakeCollector) Collect(ctx context.Context, wt Target, repoRoot string) (any, error) {
	if f.panics {
		panic("boom")
	}
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return f.value, f.err
}

func TestOrchestrator_Collect_AssemblesAvailableSlots(t *testing.T) {
	collectors := []Collector{
		fakeCollector{name: "worktree_info", available: true, value: "wt-data"},
		fakeCollector{name: "git_status", available: true, value: "clean"},
		fakeCollector{name: "pr_status", available: false, value: "never seen"},
	}
	o := NewOrchestrator(collectors, 50*time.Millisecond)
	snap := o.Collect(context.Background(), Target{Path: "/wt"}, "/repo", nil)

	if snap.WorktreeInfo != "wt-data" {
		t.Errorf("expected worktree_info slot filled, got %v", snap.WorktreeInfo)
	}
	if snap.GitStatus != "clean" {
		t.Errorf("expected git_status slot filled, got %v", snap.GitStatus)
	}
	if snap.PRStatus != nil {
		t.Errorf("expected pr_status absent (not available), got %v", snap.PRStatus)
	}
}

func TestOrchestrator_Collect_TimeoutYieldsAbsent(t *testing.T) {
	collectors := []Collector{
		fakeCollector{name: "dependencies", available: true, delay: 200 * time.Millisecond, value: "slow"},
	}
	o := NewOrchestrator(collectors, 20*time.Millisecond)
	snap := o.Collect(context.Background(), Target{}, "/repo", nil)
	if snap.Dependencies != nil {
		t.Errorf("expected timed-out collector to leave slot absent, got %v", snap.Dependencies)
	}
}

func TestOrchestrator_Collect_PanicYieldsAbsentNotFatal(t *testing.T) {
	collectors := []Collector{
		fakeCollector{name: "environment", available: true, panics: true},
		fakeCollector{name: "plan", available: true, value: "plan-data"},
	}
	o := NewOrchestrator(collectors, 50*time.Millisecond)
	snap := o.Collect(context.Background(), Target{}, "/repo", nil)
	if snap.Environment != nil {
		t.Errorf("expected panicking collector to leave slot absent, got %v", snap.Environment)
	}
	if snap.Plan != "plan-data" {
		t.Errorf("expected sibling collector to still succeed, got %v", snap.Plan)
	}
}

func TestOrchestrator_Collect_ErrorYieldsAbsent(t *testing.T) {
	collectors := []Collector{
		fakeCollector{name: "stack_position", available: true, err: errBoom{}},
	}
	o := NewOrchestrator(collectors, 50*time.Millisecond)
	snap := o.Collect(context.Background(), Target{}, "/repo", nil)
	if snap.StackPosition != nil {
		t.Errorf("expected erroring collector to leave slot absent, got %v", snap.StackPosition)
	}
}

func TestOrchestrator_Collect_RunsRelatedWorktreesSynchronously(t *testing.T) {
	o := NewOrchestrator(nil, 50*time.Millisecond)
	related := func(ctx context.Context, wt Target, repoRoot string) (any, error) {
		return []string{"a", "b"}, nil
	}
	snap := o.Collect(context.Background(), Target{}, "/repo", related)
	rel, ok := snap.RelatedWorktrees.([]string)
	if !ok || len(rel) != 2 {
		t.Errorf("expected related worktrees populated, got %v", snap.RelatedWorktrees)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

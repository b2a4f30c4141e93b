package rebasestack

import (
	"strings"
	"testing"

	"github.com/workstack-dev/workstack/internal/core/effects"
)

func TestStackBranchName(t *testing.T) {
	if got := StackBranchName("Feature Branch"); got != "workstack/rebase-stack-feature-branch" {
		t.Errorf("got %q", got)
	}
}

func TestStackPath_DefaultLocation(t *testing.T) {
	got := StackPath("/home/u/repo", "", "feature")
	if !strings.HasSuffix(got, "/.rebase-stack-feature") {
		t.Errorf("got %q", got)
	}
	if !strings.HasPrefix(got, "/home/u") {
		t.Errorf("expected stack path to live next to the repo root, got %q", got)
	}
}

func TestMarshalUnmarshalMetadata_RoundTrip(t *testing.T) {
	m := Metadata{BranchName: "feature", TargetBranch: "main", CreatedAt: "2026-01-01T00:00:00Z", OriginalCommit: "abc123", State: StateCreated}
	data, err := MarshalMetadata(m)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalMetadata(data)
	if err != nil {
		t.Fatal(err)
	}
	if got != m {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, m)
	}
}

func TestGenerateCreatePlan(t *testing.T) {
	plan := GenerateCreatePlan("/repo", "/repo/../.rebase-stack-feature", "workstack/rebase-stack-feature", "feature", "main", "abc123", "2026-01-01T00:00:00Z")
	add, ok := plan[0].(effects.WorktreeAddEffect)
	if !ok || add.Branch != "workstack/rebase-stack-feature" || add.Ref != "feature" || !add.CreateBranch {
		t.Fatalf("unexpected first effect: %+v", plan[0])
	}
	write, ok := plan[1].(effects.FileWriteEffect)
	if !ok || !strings.HasSuffix(write.Path, ".rebase-stack-metadata") {
		t.Fatalf("unexpected second effect: %+v", plan[1])
	}
	if !strings.Contains(string(write.Content), `"state": "CREATED"`) {
		t.Errorf("expected CREATED state in metadata, got %s", write.Content)
	}
}

func TestGenerateCleanupPlan_WithLingeringBranch(t *testing.T) {
	plan := GenerateCleanupPlan("/repo", "/stack", "workstack/rebase-stack-feature", true)
	if len(plan) != 3 {
		t.Fatalf("expected 3 effects, got %d", len(plan))
	}
	if _, ok := plan[2].(effects.DeleteBranchEffect); !ok {
		t.Errorf("expected lingering branch delete as last effect, got %T", plan[2])
	}
}

func TestGenerateCleanupPlan_NoLingeringBranch(t *testing.T) {
	plan := GenerateCleanupPlan("/repo", "/stack", "workstack/rebase-stack-feature", false)
	if len(plan) != 2 {
		t.Fatalf("expected 2 effects when branch doesn't linger, got %d", len(plan))
	}
}

func TestGenerateApplyPlan_BranchCheckedOut(t *testing.T) {
	plan := GenerateApplyPlan("/repo", "feature", "/repo/.worktrees/feature", "deadbeef")
	reset, ok := plan[0].(effects.ResetHardEffect)
	if !ok || reset.Path != "/repo/.worktrees/feature" || reset.Ref != "deadbeef" {
		t.Fatalf("expected ResetHardEffect, got %+v", plan[0])
	}
}

func TestGenerateApplyPlan_BranchNotCheckedOut(t *testing.T) {
	plan := GenerateApplyPlan("/repo", "feature", "", "deadbeef")
	force, ok := plan[0].(effects.ForceBranchEffect)
	if !ok || force.Branch != "feature" || force.Ref != "deadbeef" {
		t.Fatalf("expected ForceBranchEffect, got %+v", plan[0])
	}
}

func TestDetectTestCommand_PriorityOrder(t *testing.T) {
	argv, ok := DetectTestCommand(map[string]bool{"go.mod": true, "package.json": true})
	if !ok || argv[0] != "npm" {
		t.Errorf("expected package.json to win over go.mod, got %v", argv)
	}
}

func TestDetectTestCommand_NoMatch(t *testing.T) {
	_, ok := DetectTestCommand(map[string]bool{})
	if ok {
		t.Error("expected no match")
	}
}

func TestStateMachineGuards(t *testing.T) {
	if !CanResolve(StateConflicted) || CanResolve(StateCreated) {
		t.Error("CanResolve should only allow CONFLICTED")
	}
	if !CanTest(StateResolved) || !CanTest(StateTested) || CanTest(StateFailed) {
		t.Error("CanTest should allow RESOLVED/TESTED only")
	}
	if !CanApply(StateResolved, false) || CanApply(StateFailed, false) || !CanApply(StateFailed, true) {
		t.Error("CanApply should require force for FAILED")
	}
}

package worktree

import (
	"testing"

	"github.com/workstack-dev/workstack/internal/core/effects"
)

func TestGenerateCreatePlan_NewBranch(t *testing.T) {
	plan := GenerateCreatePlan(CreatePlanInput{
		Repo: "/repo", TargetPath: "/repo/.worktrees/feature", Name: "feature",
		Branch: "feature", Ref: "main",
	})
	add, ok := plan[0].(effects.WorktreeAddEffect)
	if !ok {
		t.Fatalf("expected first effect to be WorktreeAddEffect, got %T", plan[0])
	}
	if !add.CreateBranch || add.Branch != "feature" || add.Ref != "main" {
		t.Errorf("unexpected WorktreeAddEffect: %+v", add)
	}
}

func TestGenerateCreatePlan_FromCurrentBranch(t *testing.T) {
	plan := GenerateCreatePlan(CreatePlanInput{
		Repo: "/repo", TargetPath: "/repo/.worktrees/feature", Name: "feature",
		FromCurrentBranch: true, CurrentWorktreePath: "/repo", OriginalBranch: "feature",
		RefForFallback: "main",
	})
	checkout, ok := plan[0].(effects.CheckoutBranchEffect)
	if !ok || checkout.Cwd != "/repo" || checkout.Branch != "main" {
		t.Fatalf("expected checkout-to-fallback first, got %+v", plan[0])
	}
	add, ok := plan[1].(effects.WorktreeAddEffect)
	if !ok || add.Branch != "feature" || add.CreateBranch {
		t.Fatalf("expected worktree add of freed branch without -b, got %+v", plan[1])
	}
}

func TestGenerateCreatePlan_UseStackTool(t *testing.T) {
	plan := GenerateCreatePlan(CreatePlanInput{
		Repo: "/repo", TargetPath: "/repo/.worktrees/feature", Name: "feature",
		Branch: "feature", UseStackTool: true, CurrentWorktreePath: "/repo", OriginalBranch: "main",
	})
	if _, ok := plan[0].(effects.StackCreateEffect); !ok {
		t.Fatalf("expected StackCreateEffect first, got %T", plan[0])
	}
	if _, ok := plan[1].(effects.CheckoutBranchEffect); !ok {
		t.Fatalf("expected checkout back to original branch second, got %T", plan[1])
	}
	add, ok := plan[2].(effects.WorktreeAddEffect)
	if !ok || add.CreateBranch {
		t.Fatalf("expected worktree add without -b third (branch already created by stack tool), got %+v", plan[2])
	}
}

func TestGenerateCreatePlan_EnvAndPlanFile(t *testing.T) {
	plan := GenerateCreatePlan(CreatePlanInput{
		Repo: "/repo", TargetPath: "/repo/.worktrees/feature", Name: "feature",
		Branch: "feature", Ref: "main",
		EnvTemplates: map[string]string{"MY_PATH": "{worktree_path}/bin"},
		PlanFilePath: "/tmp/login-implementation-plan.md",
	})
	var foundEnv, foundMove bool
	for _, e := range plan {
		if w, ok := e.(effects.FileWriteEffect); ok && w.Path == "/repo/.worktrees/feature/.env" {
			foundEnv = true
			if !contains(string(w.Content), `MY_PATH="/repo/.worktrees/feature/bin"`) {
				t.Errorf("env content missing rendered template: %s", w.Content)
			}
			if !contains(string(w.Content), `WORKTREE_NAME="feature"`) {
				t.Errorf("env content missing builtin: %s", w.Content)
			}
		}
		if m, ok := e.(effects.FileMoveEffect); ok && m.Dst == "/repo/.worktrees/feature/.PLAN.md" {
			foundMove = true
		}
	}
	if !foundEnv {
		t.Error("expected a .env FileWriteEffect")
	}
	if !foundMove {
		t.Error("expected plan file to be moved to .PLAN.md")
	}
}

func TestGenerateCreatePlan_KeepPlanCopies(t *testing.T) {
	plan := GenerateCreatePlan(CreatePlanInput{
		Repo: "/repo", TargetPath: "/repo/.worktrees/feature", Name: "feature",
		Branch: "feature", Ref: "main",
		PlanFilePath: "/tmp/plan.md", KeepPlan: true,
	})
	for _, e := range plan {
		if _, ok := e.(effects.FileMoveEffect); ok {
			t.Fatal("expected copy, not move, when KeepPlan is set")
		}
	}
}

func TestGenerateCreatePlan_PostCreateCommands(t *testing.T) {
	plan := GenerateCreatePlan(CreatePlanInput{
		Repo: "/repo", TargetPath: "/repo/.worktrees/feature", Name: "feature",
		Branch: "feature", Ref: "main",
		PostCreateShell: "bash", PostCreateCommands: []string{"npm install"},
	})
	last := plan[len(plan)-1]
	run, ok := last.(effects.RunCommandEffect)
	if !ok || run.Shell != "bash" || run.Cwd != "/repo/.worktrees/feature" {
		t.Fatalf("expected RunCommandEffect last, got %+v", last)
	}
}

func TestRenderEnv_Deterministic(t *testing.T) {
	a := RenderEnv(map[string]string{"B": "2", "A": "1"}, "/p", "/r", "n", "feature")
	b := RenderEnv(map[string]string{"A": "1", "B": "2"}, "/p", "/r", "n", "feature")
	if a != b {
		t.Errorf("expected deterministic output regardless of map iteration order:\n%s\nvs\n%s", a, b)
	}
}

func TestRenderEnv_EscapesQuotesAndBackslashes(t *testing.T) {
	out := RenderEnv(map[string]string{"X": `a"b\c`}, "/p", "/r", "n", "feature")
	if !contains(out, `X="a\"b\\c"`) {
		t.Errorf("expected escaped quotes/backslashes, got %s", out)
	}
}

func TestRenderEnv_SubstitutesBranchTemplate(t *testing.T) {
	out := RenderEnv(map[string]string{"BRANCH_NAME": "{branch}"}, "/p", "/r", "n", "feature-x")
	if !contains(out, `BRANCH_NAME="feature-x"`) {
		t.Errorf("expected {branch} substituted, got %s", out)
	}
}

func TestGenerateMovePlan_CreateMode(t *testing.T) {
	plan := GenerateMovePlan(MovePlanInput{
		SourcePath: "/repo", SourceBranch: "feature", TargetPath: "/repo/.worktrees/dest",
		TargetExists: false, Ref: "main",
	})
	checkout, ok := plan[0].(effects.CheckoutBranchEffect)
	if !ok || checkout.Cwd != "/repo" || checkout.Branch != "main" {
		t.Fatalf("expected source switched to fallback ref first, got %+v", plan[0])
	}
	add, ok := plan[1].(effects.WorktreeAddEffect)
	if !ok || add.Branch != "feature" {
		t.Fatalf("expected worktree add of source branch last, got %+v", plan[1])
	}
}

func TestGenerateMovePlan_CreateMode_DetachesRefHolderFirst(t *testing.T) {
	plan := GenerateMovePlan(MovePlanInput{
		SourcePath: "/repo", SourceBranch: "feature", TargetPath: "/repo/.worktrees/dest",
		TargetExists: false, Ref: "main", RefCheckedOutAt: "/repo/.worktrees/other",
	})
	if _, ok := plan[0].(effects.CheckoutDetachedEffect); !ok {
		t.Fatalf("expected detach of ref holder first, got %T", plan[0])
	}
}

func TestGenerateMovePlan_SwapMode(t *testing.T) {
	plan := GenerateMovePlan(MovePlanInput{
		SourcePath: "/repo/a", SourceBranch: "feature-a", TargetPath: "/repo/b",
		TargetExists: true, TargetBranch: "feature-b", TargetDetached: false,
	})
	if len(plan) != 3 {
		t.Fatalf("expected exactly 3 effects for swap, got %d", len(plan))
	}
	if _, ok := plan[0].(effects.CheckoutDetachedEffect); !ok {
		t.Fatalf("expected detach source first, got %T", plan[0])
	}
	c1, ok := plan[1].(effects.CheckoutBranchEffect)
	if !ok || c1.Cwd != "/repo/b" || c1.Branch != "feature-a" {
		t.Fatalf("expected source branch checked out at target, got %+v", plan[1])
	}
	c2, ok := plan[2].(effects.CheckoutBranchEffect)
	if !ok || c2.Cwd != "/repo/a" || c2.Branch != "feature-b" {
		t.Fatalf("expected target branch checked out at source, got %+v", plan[2])
	}
}

func TestGenerateMovePlan_AttachMode(t *testing.T) {
	plan := GenerateMovePlan(MovePlanInput{
		SourcePath: "/repo/a", SourceBranch: "feature-a", TargetPath: "/repo/b",
		TargetExists: true, TargetDetached: true, Ref: "main",
	})
	c0, ok := plan[0].(effects.CheckoutBranchEffect)
	if !ok || c0.Cwd != "/repo/a" || c0.Branch != "main" {
		t.Fatalf("expected source freed to fallback ref first, got %+v", plan[0])
	}
	c1, ok := plan[1].(effects.CheckoutBranchEffect)
	if !ok || c1.Cwd != "/repo/b" || c1.Branch != "feature-a" {
		t.Fatalf("expected source branch attached to target second, got %+v", plan[1])
	}
}

func TestGenerateRemovePlan_NonDryRun(t *testing.T) {
	plan := GenerateRemovePlan(RemovePlanInput{
		Repo: "/repo", Path: "/repo/.worktrees/feature", BranchesToDel: []string{"feature", "feature-child"},
	})
	if _, ok := plan[0].(effects.WorktreeRemoveEffect); !ok {
		t.Fatalf("expected WorktreeRemoveEffect first, got %T", plan[0])
	}
	if _, ok := plan[1].(effects.FileRemoveAllEffect); !ok {
		t.Fatalf("expected FileRemoveAllEffect second in non-dry-run, got %T", plan[1])
	}
	if _, ok := plan[2].(effects.WorktreePruneEffect); !ok {
		t.Fatalf("expected WorktreePruneEffect third, got %T", plan[2])
	}
	del, ok := plan[3].(effects.DeleteBranchEffect)
	if !ok || del.Branch != "feature" {
		t.Fatalf("expected DeleteBranchEffect for feature, got %+v", plan[3])
	}
}

func TestGenerateRemovePlan_DryRunLogsInsteadOfDeleting(t *testing.T) {
	plan := GenerateRemovePlan(RemovePlanInput{
		Repo: "/repo", Path: "/repo/.worktrees/feature", DryRun: true,
	})
	if _, ok := plan[1].(effects.LogEffect); !ok {
		t.Fatalf("expected LogEffect in place of FileRemoveAllEffect for dry run, got %T", plan[1])
	}
}

func TestGenerateRemovePlan_UseStackToolDeletesViaStackTool(t *testing.T) {
	plan := GenerateRemovePlan(RemovePlanInput{
		Repo: "/repo", Path: "/repo/.worktrees/feature", BranchesToDel: []string{"feature"}, UseStackTool: true,
	})
	last := plan[len(plan)-1]
	if _, ok := last.(effects.StackDeleteBranchEffect); !ok {
		t.Fatalf("expected StackDeleteBranchEffect when use_stack_tool is set, got %T", last)
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (func() bool {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	})()
}

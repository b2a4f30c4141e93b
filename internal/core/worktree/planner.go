package worktree

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/workstack-dev/workstack/internal/core/effects"
)

// CreatePlanInput carries every pre-fetched value GenerateCreatePlan needs to
// build a create() plan. All values must already be resolved by the
// caller — this function does no IO.
type CreatePlanInput struct {
	Repo                string
	TargetPath          string
	Name                string
	Branch              string
	Ref                 string
	FromCurrentBranch   bool
	FromBranch          string
	CurrentWorktreePath string // cwd of the invoking command, for the checkout-fallback steps
	OriginalBranch      string // branch checked out in CurrentWorktreePath before this command ran
	RefForFallback      string // default branch, used as the checkout target that frees the source branch
	UseStackTool        bool

	EnvTemplates       map[string]string // PerRepoConfig.Env, name -> template
	PlanFilePath       string            // optional, moved/copied to .PLAN.md
	KeepPlan           bool
	PostCreateShell    string
	PostCreateCommands []string
}

// GenerateCreatePlan builds the effect sequence for spec section 4.3
// steps 4-10. Guards must already have passed (CanCreate).
func GenerateCreatePlan(in CreatePlanInput) []effects.Effect {
	var plan []effects.Effect

	switch {
	case in.FromCurrentBranch:
		plan = append(plan,
			effects.CheckoutBranchEffect{Cwd: in.CurrentWorktreePath, Branch: in.RefForFallback},
			effects.WorktreeAddEffect{Repo: in.Repo, Path: in.TargetPath, Branch: in.OriginalBranch},
		)
	case in.FromBranch != "":
		plan = append(plan, effects.WorktreeAddEffect{Repo: in.Repo, Path: in.TargetPath, Branch: in.FromBranch})
	case in.UseStackTool:
		plan = append(plan,
			effects.StackCreateEffect{Repo: in.Repo, Branch: in.Branch},
			effects.CheckoutBranchEffect{Cwd: in.CurrentWorktreePath, Branch: in.OriginalBranch},
			effects.WorktreeAddEffect{Repo: in.Repo, Path: in.TargetPath, Branch: in.Branch},
		)
	default:
		plan = append(plan, effects.WorktreeAddEffect{
			Repo: in.Repo, Path: in.TargetPath, Branch: in.Branch, Ref: in.Ref, CreateBranch: true,
		})
	}

	envContent := RenderEnv(in.EnvTemplates, in.TargetPath, in.Repo, in.Name, resolveBranchName(in))
	plan = append(plan, effects.FileWriteEffect{Path: filepath.Join(in.TargetPath, ".env"), Content: []byte(envContent), Mode: 0o644})

	if in.PlanFilePath != "" {
		dst := filepath.Join(in.TargetPath, ".PLAN.md")
		if in.KeepPlan {
			plan = append(plan, effects.FileCopyEffect{Src: in.PlanFilePath, Dst: dst})
		} else {
			plan = append(plan, effects.FileMoveEffect{Src: in.PlanFilePath, Dst: dst})
		}
	}

	for _, cmd := range in.PostCreateCommands {
		plan = append(plan, effects.RunCommandEffect{
			Cwd:   in.TargetPath,
			Argv:  []string{cmd},
			Shell: in.PostCreateShell,
		})
	}

	return plan
}

// resolveBranchName picks the branch that will end up checked out at
// TargetPath, for the {branch} env template substitution — it mirrors the
// same branch the switch statement in GenerateCreatePlan routes to.
func resolveBranchName(in CreatePlanInput) string {
	switch {
	case in.FromCurrentBranch:
		return in.OriginalBranch
	case in.FromBranch != "":
		return in.FromBranch
	default:
		return in.Branch
	}
}

// RenderEnv builds the .env file content: the three built-ins plus every
// user template substituted with {worktree_path}, {repo_root}, {name}, and
// {branch} (the resolved branch name for the new worktree — a supplemented
// substitution beyond spec section 6.2's three, carried forward from the
// original implementation). Values are double-quoted with `"` and `\`
// escaped. Keys are sorted for deterministic output.
func RenderEnv(templates map[string]string, worktreePath, repoRoot, name, branch string) string {
	substitute := func(tmpl string) string {
		r := strings.NewReplacer(
			"{worktree_path}", worktreePath,
			"{repo_root}", repoRoot,
			"{name}", name,
			"{branch}", branch,
		)
		return r.Replace(tmpl)
	}

	values := map[string]string{
		"WORKTREE_PATH": worktreePath,
		"REPO_ROOT":     repoRoot,
		"WORKTREE_NAME": name,
	}
	for k, v := range templates {
		values[k] = substitute(v)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, quoteEnvValue(values[k]))
	}
	return b.String()
}

func quoteEnvValue(v string) string {
	escaped := strings.ReplaceAll(v, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// MovePlanInput carries pre-fetched state for GenerateMovePlan.
type MovePlanInput struct {
	Repo             string
	SourcePath       string
	SourceBranch     string // "" if source is detached
	TargetPath       string
	TargetExists     bool
	TargetBranch     string // "" if target doesn't exist or is detached
	TargetDetached   bool
	Ref              string // fallback ref for create/move modes
	RefCheckedOutAt  string // path of the worktree currently holding Ref, if any ("" if none)
}

// GenerateMovePlan implements spec section 4.4's three operation modes.
func GenerateMovePlan(in MovePlanInput) []effects.Effect {
	switch {
	case !in.TargetExists:
		return generateMoveCreateMode(in)
	case !in.TargetDetached && in.TargetBranch != "":
		return generateMoveSwapMode(in)
	default:
		return generateMoveAttachMode(in)
	}
}

// generateMoveCreateMode frees the source branch by checking out Ref in
// the source (detaching Ref's current holder first if needed, to preserve
// I1), then adds a brand new worktree at TargetPath holding that branch.
func generateMoveCreateMode(in MovePlanInput) []effects.Effect {
	var plan []effects.Effect
	if in.RefCheckedOutAt != "" && in.RefCheckedOutAt != in.SourcePath {
		plan = append(plan, effects.CheckoutDetachedEffect{Cwd: in.RefCheckedOutAt, Ref: "HEAD"})
	}
	plan = append(plan,
		effects.CheckoutBranchEffect{Cwd: in.SourcePath, Branch: in.Ref},
		effects.WorktreeAddEffect{Repo: in.Repo, Path: in.TargetPath, Branch: in.SourceBranch},
	)
	return plan
}

// generateMoveSwapMode exchanges branches between source and target,
// per spec section 4.4's three-step sequence (detach source, attach
// source's branch at target, attach target's former branch at source).
func generateMoveSwapMode(in MovePlanInput) []effects.Effect {
	return []effects.Effect{
		effects.CheckoutDetachedEffect{Cwd: in.SourcePath, Ref: "HEAD"}, // frees SourceBranch
		effects.CheckoutBranchEffect{Cwd: in.TargetPath, Branch: in.SourceBranch},
		effects.CheckoutBranchEffect{Cwd: in.SourcePath, Branch: in.TargetBranch},
	}
}

// generateMoveAttachMode frees source's branch by checking out Ref in the
// source (detaching Ref's current holder first if needed), then attaches
// that branch onto the detached target.
func generateMoveAttachMode(in MovePlanInput) []effects.Effect {
	var plan []effects.Effect
	if in.RefCheckedOutAt != "" && in.RefCheckedOutAt != in.SourcePath {
		plan = append(plan, effects.CheckoutDetachedEffect{Cwd: in.RefCheckedOutAt, Ref: "HEAD"})
	}
	plan = append(plan,
		effects.CheckoutBranchEffect{Cwd: in.SourcePath, Branch: in.Ref},
		effects.CheckoutBranchEffect{Cwd: in.TargetPath, Branch: in.SourceBranch},
	)
	return plan
}

// RemovePlanInput carries pre-fetched state for GenerateRemovePlan.
type RemovePlanInput struct {
	Repo          string
	Path          string
	Force         bool
	DryRun        bool
	BranchesToDel []string // leftover stack branches scheduled for deletion, trunk already filtered out
	UseStackTool  bool
}

// GenerateRemovePlan implements spec section 4.5 step 5: best-effort
// worktree remove, fall back to rm -rf, prune, then delete scheduled
// branches.
func GenerateRemovePlan(in RemovePlanInput) []effects.Effect {
	plan := []effects.Effect{
		effects.WorktreeRemoveEffect{Repo: in.Repo, Path: in.Path, Force: in.Force},
	}
	if in.DryRun {
		plan = append(plan, effects.LogEffect{Level: "info", Message: fmt.Sprintf("[DRY RUN] Would remove directory %s if it still exists", in.Path)})
	} else {
		plan = append(plan, effects.FileRemoveAllEffect{Path: in.Path})
	}
	plan = append(plan, effects.WorktreePruneEffect{Repo: in.Repo})

	for _, branch := range in.BranchesToDel {
		if in.UseStackTool {
			plan = append(plan, effects.StackDeleteBranchEffect{Repo: in.Repo, Branch: branch, Force: in.Force})
		} else {
			plan = append(plan, effects.DeleteBranchEffect{Repo: in.Repo, Branch: branch, Force: in.Force})
		}
	}
	return plan
}

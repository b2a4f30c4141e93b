// Package worktree contains the pure business logic for worktree
// lifecycle operations (create/move/remove). Guards are pure functions
// that evaluate preconditions without side effects; planner.go turns a
// validated request plus pre-fetched state into a list of effects.
package worktree

import (
	"fmt"
	"strings"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

var reservedNames = map[string]bool{"root": true, "main": true, "master": true}

// IsReservedName reports whether name (case-insensitively) is reserved
// per spec invariant I4.
func IsReservedName(name string) bool {
	return reservedNames[strings.ToLower(name)]
}

// CreateContext carries pre-fetched state for CanCreate.
type CreateContext struct {
	Name                string
	TargetPathExists    bool
	FromCurrentBranch   bool
	FromBranch          string
	BranchFlagGiven     bool
	PlanFlagGiven       bool
	KeepPlanFlagGiven   bool
	CurrentBranchExists bool // false = detached HEAD
	CurrentBranch       string
	RefForFallback      string // the --ref used as the fallback checkout for --from-current-branch
}

// mutuallyExclusiveCount counts how many of --plan, --from-current-branch,
// --from-branch were given.
func (c CreateContext) mutuallyExclusiveCount() int {
	n := 0
	if c.PlanFlagGiven {
		n++
	}
	if c.FromCurrentBranch {
		n++
	}
	if c.FromBranch != "" {
		n++
	}
	return n
}

// CanCreate evaluates every precondition for `create` before any effect
// is planned, per spec section 4.3 steps 1, 3, 4, 5.
func CanCreate(ctx CreateContext) GuardResult {
	if IsReservedName(ctx.Name) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("%q is a reserved name and cannot be used for a worktree", ctx.Name)}
	}
	if ctx.mutuallyExclusiveCount() > 1 {
		return GuardResult{Allowed: false, Reason: "--plan, --from-current-branch, and --from-branch are mutually exclusive"}
	}
	if ctx.KeepPlanFlagGiven && !ctx.PlanFlagGiven {
		return GuardResult{Allowed: false, Reason: "--keep-plan requires --plan"}
	}
	if ctx.TargetPathExists {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("worktree target already exists for %q", ctx.Name)}
	}
	if ctx.FromCurrentBranch {
		if ctx.BranchFlagGiven {
			return GuardResult{Allowed: false, Reason: "--branch cannot be combined with --from-current-branch"}
		}
		if !ctx.CurrentBranchExists {
			return GuardResult{Allowed: false, Reason: "cannot move the current branch while in detached HEAD"}
		}
		if ctx.CurrentBranch == ctx.RefForFallback {
			return GuardResult{Allowed: false, Reason: "current branch equals the fallback ref; nothing would be left checked out"}
		}
	}
	if ctx.FromBranch != "" && ctx.BranchFlagGiven {
		return GuardResult{Allowed: false, Reason: "--branch cannot be combined with --from-branch"}
	}
	return GuardResult{Allowed: true}
}

// MoveContext carries pre-fetched state for CanMove.
type MoveContext struct {
	TargetIsReserved  bool
	TargetPathExists  bool
	SourceSpecified   bool // one of --current/--branch/--worktree was given
	SourceBranchDirty bool
	Force             bool
}

// CanMove evaluates preconditions for `move` per spec section 4.4.
func CanMove(ctx MoveContext) GuardResult {
	if ctx.TargetIsReserved {
		return GuardResult{Allowed: false, Reason: "move target cannot be a reserved name"}
	}
	if ctx.SourceBranchDirty && !ctx.Force {
		return GuardResult{Allowed: false, Reason: "source worktree has uncommitted changes; use --force to proceed anyway"}
	}
	return GuardResult{Allowed: true}
}

// RemoveContext carries pre-fetched state for CanRemove.
type RemoveContext struct {
	Name             string
	PathExists       bool
	PathIsDir        bool
	DeleteStack      bool
	UseStackTool     bool
	CurrentIsDetached bool
}

// CanRemove evaluates preconditions for `remove` per spec section 4.5
// steps 1-3.
func CanRemove(ctx RemoveContext) GuardResult {
	if IsReservedName(ctx.Name) {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("%q is a reserved name and cannot be removed", ctx.Name)}
	}
	if !ctx.PathExists || !ctx.PathIsDir {
		return GuardResult{Allowed: false, Reason: fmt.Sprintf("no worktree directory found for %q", ctx.Name)}
	}
	if ctx.DeleteStack && !ctx.UseStackTool {
		return GuardResult{Allowed: false, Reason: "--delete-stack requires use_stack_tool=true"}
	}
	return GuardResult{Allowed: true}
}

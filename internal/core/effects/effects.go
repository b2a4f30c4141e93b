// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "os"

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string
	Message string
}

func (e LogEffect) EffectType() string { return "log" }

// FileMkdirEffect creates a directory (and parents) at Path.
type FileMkdirEffect struct {
	Path string
	Mode os.FileMode
}

func (e FileMkdirEffect) EffectType() string { return "file_mkdir" }

// FileWriteEffect writes Content to Path, overwriting any existing file.
type FileWriteEffect struct {
	Path    string
	Content []byte
	Mode    os.FileMode
}

func (e FileWriteEffect) EffectType() string { return "file_write" }

// FileCopyEffect copies Src to Dst.
type FileCopyEffect struct {
	Src string
	Dst string
}

func (e FileCopyEffect) EffectType() string { return "file_copy" }

// FileMoveEffect renames/moves Src to Dst.
type FileMoveEffect struct {
	Src string
	Dst string
}

func (e FileMoveEffect) EffectType() string { return "file_move" }

// FileRemoveAllEffect recursively removes Path. Destructive: the executor
// prints instead of acting when running in dry-run mode (spec section 4.5
// step 5b: "if directory still present, rm -rf it; in dry-run print
// instead").
type FileRemoveAllEffect struct {
	Path string
}

func (e FileRemoveAllEffect) EffectType() string { return "file_remove_all" }

// WorktreeAddEffect adds a git worktree. See gitfacade.Facade.AddWorktree.
type WorktreeAddEffect struct {
	Repo         string
	Path         string
	Branch       string
	Ref          string
	CreateBranch bool
}

func (e WorktreeAddEffect) EffectType() string { return "worktree_add" }

// WorktreeRemoveEffect removes a git worktree, best-effort (errors are not
// fatal to the overall plan — spec section 4.5).
type WorktreeRemoveEffect struct {
	Repo  string
	Path  string
	Force bool
}

func (e WorktreeRemoveEffect) EffectType() string { return "worktree_remove" }

// WorktreePruneEffect prunes stale worktree metadata, best-effort.
type WorktreePruneEffect struct {
	Repo string
}

func (e WorktreePruneEffect) EffectType() string { return "worktree_prune" }

// CheckoutBranchEffect checks out Branch in Cwd.
type CheckoutBranchEffect struct {
	Cwd    string
	Branch string
}

// CheckoutDetachedEffect detaches HEAD at Ref in Cwd, freeing whatever
// branch was previously checked out there.
type CheckoutDetachedEffect struct {
	Cwd string
	Ref string
}

func (e CheckoutDetachedEffect) EffectType() string { return "checkout_detached" }

func (e CheckoutBranchEffect) EffectType() string { return "checkout_branch" }

// CreateBranchEffect creates Branch from Ref without checking it out.
type CreateBranchEffect struct {
	Repo   string
	Branch string
	Ref    string
}

func (e CreateBranchEffect) EffectType() string { return "create_branch" }

// DeleteBranchEffect deletes Branch.
type DeleteBranchEffect struct {
	Repo   string
	Branch string
	Force  bool
}

func (e DeleteBranchEffect) EffectType() string { return "delete_branch" }

// ResetHardEffect hard-resets the worktree at Path to Ref.
type ResetHardEffect struct {
	Path string
	Ref  string
}

func (e ResetHardEffect) EffectType() string { return "reset_hard" }

// ForceBranchEffect moves Branch to Ref without checking it out anywhere.
type ForceBranchEffect struct {
	Repo   string
	Branch string
	Ref    string
}

func (e ForceBranchEffect) EffectType() string { return "force_branch" }

// StackCreateEffect runs the stack tool's non-interactive branch-create
// command (`gt create --no-interactive <branch>`).
type StackCreateEffect struct {
	Repo   string
	Branch string
}

func (e StackCreateEffect) EffectType() string { return "stack_create" }

// StackDeleteBranchEffect runs the stack tool's branch-delete command
// (`gt branch delete <branch>`), used instead of a bare git branch
// deletion when use_stack_tool=true.
type StackDeleteBranchEffect struct {
	Repo   string
	Branch string
	Force  bool
}

func (e StackDeleteBranchEffect) EffectType() string { return "stack_delete_branch" }

// RunCommandEffect runs Argv in Cwd, optionally under a login shell
// (`<Shell> -lc "<joined argv>"` when Shell != ""). Used for
// post_create.commands.
type RunCommandEffect struct {
	Cwd   string
	Argv  []string
	Shell string // e.g. "bash"; empty means exec Argv directly
}

func (e RunCommandEffect) EffectType() string { return "run_command" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }

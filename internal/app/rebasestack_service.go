package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/workstack-dev/workstack/internal/core/effects"
	"github.com/workstack-dev/workstack/internal/core/rebasestack"
	"github.com/workstack-dev/workstack/internal/gitfacade"
	"github.com/workstack-dev/workstack/internal/proc"
)

// RebaseStackService drives the rebase-stack engine (spec section 4.7):
// an isolated worktree on a throwaway branch used for a speculative
// rebase, so the real branch is never touched until apply.
type RebaseStackService struct {
	git      gitfacade.Facade
	runner   proc.Invoker
	executor EffectExecutor
	repoRoot string
	location string
	now      func() string
}

// NewRebaseStackService builds a RebaseStackService. now supplies the
// created_at timestamp (injected so the pure core stays IO-free and the
// service stays testable without wall-clock dependence).
func NewRebaseStackService(git gitfacade.Facade, runner proc.Invoker, executor EffectExecutor, repoRoot, location string, now func() string) *RebaseStackService {
	return &RebaseStackService{git: git, runner: runner, executor: executor, repoRoot: repoRoot, location: location, now: now}
}

func (s *RebaseStackService) stackPath(branch string) string {
	return rebasestack.StackPath(s.repoRoot, s.location, branch)
}

func (s *RebaseStackService) readMetadata(stackPath string) (rebasestack.Metadata, bool) {
	data, err := os.ReadFile(rebasestack.MetadataPath(stackPath))
	if err != nil {
		return rebasestack.Metadata{}, false
	}
	meta, err := rebasestack.UnmarshalMetadata(data)
	if err != nil {
		return rebasestack.Metadata{}, false
	}
	return meta, true
}

// Create implements create(branch, onto): cleans up any existing stack or
// orphaned throwaway branch for branch, then builds a fresh one.
func (s *RebaseStackService) Create(ctx context.Context, branch, onto string) (rebasestack.Metadata, error) {
	stackPath := s.stackPath(branch)
	stackBranch := rebasestack.StackBranchName(branch)

	if _, exists := s.readMetadata(stackPath); exists {
		if err := s.Cleanup(ctx, branch); err != nil {
			return rebasestack.Metadata{}, fmt.Errorf("rebase stack create: cleanup existing stack: %w", err)
		}
	} else if sha, err := s.git.GetBranchHead(ctx, s.repoRoot, stackBranch); err == nil && sha != "" {
		if err := s.executor.Execute(ctx, []effects.Effect{effects.DeleteBranchEffect{Repo: s.repoRoot, Branch: stackBranch, Force: true}}); err != nil {
			return rebasestack.Metadata{}, fmt.Errorf("rebase stack create: delete orphaned branch: %w", err)
		}
	}

	originalCommit, err := s.git.GetBranchHead(ctx, s.repoRoot, branch)
	if err != nil {
		return rebasestack.Metadata{}, fmt.Errorf("rebase stack create: get branch head: %w", err)
	}

	plan := rebasestack.GenerateCreatePlan(s.repoRoot, stackPath, stackBranch, branch, onto, originalCommit, s.now())
	if err := s.executor.Execute(ctx, plan); err != nil {
		return rebasestack.Metadata{}, err
	}
	meta, _ := s.readMetadata(stackPath)
	return meta, nil
}

// Preview implements preview(branch, onto): create the stack, then start
// the rebase and record the resulting state.
func (s *RebaseStackService) Preview(ctx context.Context, branch, onto string) (rebasestack.Metadata, error) {
	meta, err := s.Create(ctx, branch, onto)
	if err != nil {
		return meta, err
	}
	stackPath := s.stackPath(branch)

	meta.State = rebasestack.StateInProgress
	if err := s.executor.Execute(ctx, []effects.Effect{rebasestack.GenerateStateWriteEffect(stackPath, meta)}); err != nil {
		return meta, err
	}

	rebaseErr := s.git.StartRebase(ctx, stackPath, onto)
	status, statusErr := s.git.GetRebaseStatus(ctx, stackPath)
	switch {
	case statusErr != nil:
		meta.State = rebasestack.StateFailed
	case status.InProgress && len(status.Conflicted) > 0:
		meta.State = rebasestack.StateConflicted
	case rebaseErr != nil:
		meta.State = rebasestack.StateFailed
	default:
		meta.State = rebasestack.StateResolved
	}
	writeErr := s.executor.Execute(ctx, []effects.Effect{rebasestack.GenerateStateWriteEffect(stackPath, meta)})
	if writeErr != nil {
		return meta, writeErr
	}
	return meta, nil
}

// Resolve implements resolve(branch): loop opening conflicted files in
// $EDITOR, staging them, and continuing the rebase until it completes or
// fails outright. editorArgv is the tokenized $EDITOR invocation prefix
// (e.g. []string{"vim"}); the conflicted file is appended per file.
func (s *RebaseStackService) Resolve(ctx context.Context, branch string, editorArgv []string) (rebasestack.Metadata, error) {
	stackPath := s.stackPath(branch)
	meta, ok := s.readMetadata(stackPath)
	if !ok {
		return meta, fmt.Errorf("rebase stack resolve: no stack found for %q", branch)
	}
	if !rebasestack.CanResolve(meta.State) {
		return meta, fmt.Errorf("rebase stack resolve: stack for %q is not conflicted (state=%s)", branch, meta.State)
	}

	for {
		status, err := s.git.GetRebaseStatus(ctx, stackPath)
		if err != nil {
			meta.State = rebasestack.StateFailed
			break
		}
		if !status.InProgress {
			meta.State = rebasestack.StateResolved
			break
		}
		for _, f := range status.Conflicted {
			argv := append(append([]string{}, editorArgv...), filepath.Join(stackPath, f))
			if _, err := s.runner.Run(ctx, argv, stackPath, proc.Options{Capture: false}); err != nil {
				meta.State = rebasestack.StateFailed
				return meta, s.persistState(ctx, stackPath, meta)
			}
			if _, err := s.runner.Run(ctx, []string{"git", "add", f}, stackPath, proc.Options{CheckZero: true, Capture: true, Destructive: true}); err != nil {
				meta.State = rebasestack.StateFailed
				return meta, s.persistState(ctx, stackPath, meta)
			}
		}
		if err := s.git.ContinueRebase(ctx, stackPath); err != nil {
			newStatus, statusErr := s.git.GetRebaseStatus(ctx, stackPath)
			if statusErr == nil && newStatus.InProgress && len(newStatus.Conflicted) > 0 {
				meta.State = rebasestack.StateConflicted
				continue // new conflicts emerged; loop
			}
			meta.State = rebasestack.StateFailed
			break
		}
	}
	return meta, s.persistState(ctx, stackPath, meta)
}

func (s *RebaseStackService) persistState(ctx context.Context, stackPath string, meta rebasestack.Metadata) error {
	return s.executor.Execute(ctx, []effects.Effect{rebasestack.GenerateStateWriteEffect(stackPath, meta)})
}

// Test implements test(branch, command?): auto-detect a command if none
// is given, run it in the stack worktree, and record TESTED or FAILED.
func (s *RebaseStackService) Test(ctx context.Context, branch string, command []string) (rebasestack.Metadata, string, error) {
	stackPath := s.stackPath(branch)
	meta, ok := s.readMetadata(stackPath)
	if !ok {
		return meta, "", fmt.Errorf("rebase stack test: no stack found for %q", branch)
	}
	if !rebasestack.CanTest(meta.State) {
		return meta, "", fmt.Errorf("rebase stack test: stack for %q is not ready to test (state=%s)", branch, meta.State)
	}

	argv := command
	if len(argv) == 0 {
		present := map[string]bool{}
		for _, marker := range []string{"package.json", "pytest.ini", "pyproject.toml", "Makefile", "Cargo.toml", "go.mod"} {
			if _, err := os.Stat(filepath.Join(stackPath, marker)); err != nil {
				continue
			}
			if marker == "Makefile" {
				data, _ := os.ReadFile(filepath.Join(stackPath, marker))
				if !strings.HasPrefix(string(data), "test:") && !strings.Contains(string(data), "\ntest:") {
					continue
				}
			}
			present[marker] = true
		}
		detected, found := rebasestack.DetectTestCommand(present)
		if !found {
			return meta, "", fmt.Errorf("rebase stack test: could not auto-detect a test command for %q", branch)
		}
		argv = detected
	}

	res, err := s.runner.Run(ctx, argv, stackPath, proc.Options{CheckZero: false, Capture: true})
	output := res.Stdout + res.Stderr
	if err != nil || res.ExitCode != 0 {
		meta.State = rebasestack.StateFailed
	} else {
		meta.State = rebasestack.StateTested
	}
	return meta, output, s.persistState(ctx, stackPath, meta)
}

// Apply implements apply(branch, force): validate, land the stack HEAD
// onto the real branch, mark APPLIED, then clean up.
func (s *RebaseStackService) Apply(ctx context.Context, branch string, force bool) error {
	stackPath := s.stackPath(branch)
	meta, ok := s.readMetadata(stackPath)
	if !ok {
		return fmt.Errorf("rebase stack apply: no stack found for %q", branch)
	}
	if !rebasestack.CanApply(meta.State, force) {
		return fmt.Errorf("rebase stack apply: stack for %q is in state %s; use --force to apply anyway", branch, meta.State)
	}

	if !force {
		status, err := s.git.GetRebaseStatus(ctx, stackPath)
		if err != nil {
			return fmt.Errorf("rebase stack apply: check rebase status: %w", err)
		}
		if status.InProgress {
			return fmt.Errorf("rebase stack apply: rebase still in progress in %s", stackPath)
		}
		clean, err := s.git.CheckCleanWorktree(ctx, stackPath)
		if err != nil {
			return fmt.Errorf("rebase stack apply: check clean: %w", err)
		}
		if !clean {
			return fmt.Errorf("rebase stack apply: stack worktree %s has uncommitted changes", stackPath)
		}
	}

	stackHead, err := s.git.GetBranchHead(ctx, s.repoRoot, rebasestack.StackBranchName(branch))
	if err != nil {
		return fmt.Errorf("rebase stack apply: get stack head: %w", err)
	}
	holderPath, held, err := s.git.IsBranchCheckedOut(ctx, s.repoRoot, branch)
	if err != nil {
		return fmt.Errorf("rebase stack apply: check branch holder: %w", err)
	}
	if !force && held {
		holderClean, err := s.git.CheckCleanWorktree(ctx, holderPath)
		if err != nil {
			return fmt.Errorf("rebase stack apply: check target worktree clean: %w", err)
		}
		if !holderClean {
			return fmt.Errorf("rebase stack apply: target worktree %s has uncommitted changes", holderPath)
		}
	}
	if !held {
		holderPath = ""
	}

	plan := rebasestack.GenerateApplyPlan(s.repoRoot, branch, holderPath, stackHead)
	if err := s.executor.Execute(ctx, plan); err != nil {
		return err
	}
	meta.State = rebasestack.StateApplied
	if err := s.persistState(ctx, stackPath, meta); err != nil {
		return err
	}
	return s.Cleanup(ctx, branch)
}

// Abort implements abort(branch): cleanup unconditionally.
func (s *RebaseStackService) Abort(ctx context.Context, branch string) error {
	return s.Cleanup(ctx, branch)
}

// Cleanup implements cleanup(branch): delete metadata, force-remove the
// worktree, delete the throwaway branch if it lingers.
func (s *RebaseStackService) Cleanup(ctx context.Context, branch string) error {
	stackPath := s.stackPath(branch)
	stackBranch := rebasestack.StackBranchName(branch)
	sha, err := s.git.GetBranchHead(ctx, s.repoRoot, stackBranch)
	lingers := err == nil && sha != ""
	plan := rebasestack.GenerateCleanupPlan(s.repoRoot, stackPath, stackBranch, lingers)
	return s.executor.Execute(ctx, plan)
}

// StackInfo is the synthetic status record for list/status.
type StackInfo struct {
	Branch string
	Path   string
	Meta   rebasestack.Metadata
}

// List implements list/status: enumerate worktrees, returning those with
// a `.rebase-stack-metadata` file.
func (s *RebaseStackService) List(ctx context.Context) ([]StackInfo, error) {
	records, err := s.git.ListWorktrees(ctx, s.repoRoot)
	if err != nil {
		return nil, fmt.Errorf("rebase stack list: %w", err)
	}
	var out []StackInfo
	for _, r := range records {
		meta, ok := s.readMetadata(r.Path)
		if !ok {
			continue
		}
		status, err := s.git.GetRebaseStatus(ctx, r.Path)
		if err == nil && status.InProgress && len(status.Conflicted) > 0 {
			meta.State = rebasestack.StateConflicted
		}
		out = append(out, StackInfo{Branch: meta.BranchName, Path: r.Path, Meta: meta})
	}
	return out, nil
}

// Compare implements the supplemented rebase compare subcommand
// (SPEC_FULL section 3): a diff-stat between the real branch and the
// rebase stack's current HEAD. Read-only; requires an existing stack.
func (s *RebaseStackService) Compare(ctx context.Context, branch string) (string, error) {
	stackPath := s.stackPath(branch)
	if _, ok := s.readMetadata(stackPath); !ok {
		return "", fmt.Errorf("no rebase stack for %q; run `workstack rebase preview %s` first", branch, branch)
	}
	stackBranch := rebasestack.StackBranchName(branch)

	res, err := s.runner.Run(ctx, []string{"git", "diff", "--stat", branch, stackBranch}, s.repoRoot,
		proc.Options{Capture: true, CheckZero: true})
	if err != nil {
		return "", fmt.Errorf("rebase stack compare: %w", err)
	}
	return res.Stdout, nil
}

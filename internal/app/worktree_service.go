package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/workstack-dev/workstack/internal/core/worktree"
	"github.com/workstack-dev/workstack/internal/gitfacade"
	"github.com/workstack-dev/workstack/internal/repocontext"
	"github.com/workstack-dev/workstack/internal/wsconfig"
)

// WorktreeService orchestrates create/move/remove: guard check, then
// planner, then EffectExecutor. This is the service-layer analog of the
// teacher's GroveServiceImpl.
type WorktreeService struct {
	git      gitfacade.Facade
	executor EffectExecutor
	config   *wsconfig.Store
}

// NewWorktreeService builds a WorktreeService.
func NewWorktreeService(git gitfacade.Facade, executor EffectExecutor, config *wsconfig.Store) *WorktreeService {
	return &WorktreeService{git: git, executor: executor, config: config}
}

// CreateRequest is everything a `create` invocation needs. At most one of
// PlanFilePath, FromCurrentBranch, FromBranch may be set. An empty Name is
// derived from PlanFilePath only; it is not derived from FromBranch or the
// current branch. An empty Branch defaults to the resolved name.
type CreateRequest struct {
	Repo              repocontext.Context
	Cwd               string
	Name              string
	Branch            string
	Ref               string
	FromCurrentBranch bool
	FromBranch        string
	PlanFilePath      string
	KeepPlan          bool
	SkipPostCreate    bool // --no-post
}

// Create implements spec section 4.3. It returns the resolved worktree
// name (post sanitization/plan-filename derivation) and its path, so the
// caller can print a message or build an activation script without
// re-deriving the same name itself.
func (s *WorktreeService) Create(ctx context.Context, req CreateRequest) (name, path string, err error) {
	global, err := s.config.LoadGlobal()
	if err != nil {
		return "", "", fmt.Errorf("worktree create: load config: %w", err)
	}
	perRepo, err := s.config.LoadPerRepo(req.Repo.RepoRoot, req.Repo.WorkstacksDir)
	if err != nil {
		return "", "", fmt.Errorf("worktree create: load per-repo config: %w", err)
	}

	name = req.Name
	if name == "" && req.PlanFilePath != "" {
		stem := strings.TrimSuffix(filepath.Base(req.PlanFilePath), filepath.Ext(req.PlanFilePath))
		name = worktree.DeriveNameFromPlanFile(stem)
	} else {
		name = worktree.Sanitize(name)
	}

	branch := req.Branch
	if branch == "" {
		branch = name
	}

	fallbackRef := req.Ref
	if fallbackRef == "" {
		fallbackRef, err = s.git.DetectDefaultBranch(ctx, req.Repo.RepoRoot)
		if err != nil {
			return "", "", fmt.Errorf("worktree create: detect default branch: %w", err)
		}
	}

	targetPath := filepath.Join(req.Repo.WorkstacksDir, name)
	_, statErr := os.Stat(targetPath)
	targetExists := statErr == nil

	currentBranch, currentBranchExists, err := s.git.GetCurrentBranch(ctx, req.Cwd)
	if err != nil {
		return "", "", fmt.Errorf("worktree create: get current branch: %w", err)
	}

	guard := worktree.CanCreate(worktree.CreateContext{
		Name:                name,
		TargetPathExists:    targetExists,
		FromCurrentBranch:   req.FromCurrentBranch,
		FromBranch:          req.FromBranch,
		BranchFlagGiven:     req.Branch != "",
		PlanFlagGiven:       req.PlanFilePath != "",
		KeepPlanFlagGiven:   req.KeepPlan,
		CurrentBranchExists: currentBranchExists,
		CurrentBranch:       currentBranch,
		RefForFallback:      fallbackRef,
	})
	if !guard.Allowed {
		return "", "", guard.Error()
	}

	postCreateCommands := perRepo.PostCreate.Commands
	if req.SkipPostCreate {
		postCreateCommands = nil
	}

	plan := worktree.GenerateCreatePlan(worktree.CreatePlanInput{
		Repo:                req.Repo.RepoRoot,
		TargetPath:          targetPath,
		Name:                name,
		Branch:              branch,
		Ref:                 fallbackRef,
		FromCurrentBranch:   req.FromCurrentBranch,
		FromBranch:          req.FromBranch,
		CurrentWorktreePath: req.Cwd,
		OriginalBranch:      currentBranch,
		RefForFallback:      fallbackRef,
		UseStackTool:        global.UseStackTool,
		EnvTemplates:        perRepo.Env,
		PlanFilePath:        req.PlanFilePath,
		KeepPlan:            req.KeepPlan,
		PostCreateShell:     perRepo.PostCreate.Shell,
		PostCreateCommands:  postCreateCommands,
	})
	if err := s.executor.Execute(ctx, plan); err != nil {
		return "", "", err
	}
	return name, targetPath, nil
}

// MoveRequest is everything a `move` invocation needs, with the source
// worktree/branch already resolved by the caller (cobra command layer).
type MoveRequest struct {
	Repo           repocontext.Context
	SourcePath     string
	TargetName     string // "root" or a workstacks-dir-relative name
	Ref            string
	Force          bool
}

// Move implements spec section 4.4.
func (s *WorktreeService) Move(ctx context.Context, req MoveRequest) error {
	targetPath := req.Repo.RepoRoot
	if req.TargetName != "root" {
		targetPath = filepath.Join(req.Repo.WorkstacksDir, req.TargetName)
	}

	sourceBranch, sourceBranchExists, err := s.git.GetCurrentBranch(ctx, req.SourcePath)
	if err != nil {
		return fmt.Errorf("worktree move: get source branch: %w", err)
	}
	if !sourceBranchExists {
		return fmt.Errorf("worktree move: source worktree at %s is in detached HEAD", req.SourcePath)
	}

	clean, err := s.git.CheckCleanWorktree(ctx, req.SourcePath)
	if err != nil {
		return fmt.Errorf("worktree move: check clean: %w", err)
	}

	guard := worktree.CanMove(worktree.MoveContext{
		TargetIsReserved:  worktree.IsReservedName(req.TargetName) && req.TargetName != "root",
		SourceSpecified:   true,
		SourceBranchDirty: !clean,
		Force:             req.Force,
	})
	if !guard.Allowed {
		return guard.Error()
	}

	fallbackRef := req.Ref
	if fallbackRef == "" {
		fallbackRef, err = s.git.DetectDefaultBranch(ctx, req.Repo.RepoRoot)
		if err != nil {
			return fmt.Errorf("worktree move: detect default branch: %w", err)
		}
	}

	_, targetExists := stat(targetPath)
	var targetBranch string
	targetDetached := false
	if targetExists {
		var ok bool
		targetBranch, ok, err = s.git.GetCurrentBranch(ctx, targetPath)
		if err != nil {
			return fmt.Errorf("worktree move: get target branch: %w", err)
		}
		targetDetached = !ok
	}

	refHolder, refHeld, err := s.git.IsBranchCheckedOut(ctx, req.Repo.RepoRoot, fallbackRef)
	if err != nil {
		return fmt.Errorf("worktree move: check ref holder: %w", err)
	}
	if !refHeld {
		refHolder = ""
	}

	plan := worktree.GenerateMovePlan(worktree.MovePlanInput{
		Repo:            req.Repo.RepoRoot,
		SourcePath:      req.SourcePath,
		SourceBranch:    sourceBranch,
		TargetPath:      targetPath,
		TargetExists:    targetExists,
		TargetBranch:    targetBranch,
		TargetDetached:  targetDetached,
		Ref:             fallbackRef,
		RefCheckedOutAt: refHolder,
	})
	return s.executor.Execute(ctx, plan)
}

// RemoveRequest is everything a `remove` invocation needs.
type RemoveRequest struct {
	Repo          repocontext.Context
	Name          string
	DeleteStack   bool
	Force         bool
	DryRun        bool
	BranchesToDel []string // resolved by the caller via stacknav when DeleteStack is set
}

// Remove implements spec section 4.5.
func (s *WorktreeService) Remove(ctx context.Context, req RemoveRequest) error {
	global, err := s.config.LoadGlobal()
	if err != nil {
		return fmt.Errorf("worktree remove: load config: %w", err)
	}

	path := filepath.Join(req.Repo.WorkstacksDir, req.Name)
	info, statErr := os.Stat(path)
	pathExists := statErr == nil
	pathIsDir := pathExists && info.IsDir()

	guard := worktree.CanRemove(worktree.RemoveContext{
		Name:         req.Name,
		PathExists:   pathExists,
		PathIsDir:    pathIsDir,
		DeleteStack:  req.DeleteStack,
		UseStackTool: global.UseStackTool,
	})
	if !guard.Allowed {
		return guard.Error()
	}

	plan := worktree.GenerateRemovePlan(worktree.RemovePlanInput{
		Repo:          req.Repo.RepoRoot,
		Path:          path,
		Force:         req.Force,
		DryRun:        req.DryRun,
		BranchesToDel: req.BranchesToDel,
		UseStackTool:  global.UseStackTool,
	})
	return s.executor.Execute(ctx, plan)
}

func stat(path string) (os.FileInfo, bool) {
	info, err := os.Stat(path)
	return info, err == nil
}

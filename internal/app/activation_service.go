package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/workstack-dev/workstack/internal/activation"
	"github.com/workstack-dev/workstack/internal/core/navigation"
	"github.com/workstack-dev/workstack/internal/core/stacknav"
	"github.com/workstack-dev/workstack/internal/gitfacade"
	"github.com/workstack-dev/workstack/internal/repocontext"
	"github.com/workstack-dev/workstack/internal/stackcache"
	"github.com/workstack-dev/workstack/internal/tmuxsync"
	"github.com/workstack-dev/workstack/internal/wsconfig"
)

// RedirectToRootError is returned when the user asked to switch to the
// default branch name directly (spec section 6.1's "switch main/switch
// master prints a redirect to switch root").
type RedirectToRootError struct{ Requested string }

func (e RedirectToRootError) Error() string {
	return fmt.Sprintf("%q is not a worktree name; did you mean `workstack switch root`?", e.Requested)
}

// ActivationTarget is where a resolved switch/create --script lands.
type ActivationTarget struct {
	Path   string
	Branch string
	IsRoot bool
}

// ActivationService resolves switch targets (name, --up, --down, root) and
// emits the activation script for them.
type ActivationService struct {
	git    gitfacade.Facade
	stack  stackcache.Facade
	tmux   tmuxsync.Syncer
	config *wsconfig.Store
}

// NewActivationService builds an ActivationService.
func NewActivationService(git gitfacade.Facade, stack stackcache.Facade, tmux tmuxsync.Syncer, config *wsconfig.Store) *ActivationService {
	return &ActivationService{git: git, stack: stack, tmux: tmux, config: config}
}

// ResolveTarget implements spec section 4.11's switch target resolution.
// Exactly one of up/down/root should be true, or name is a worktree name.
func (s *ActivationService) ResolveTarget(ctx context.Context, repo repocontext.Context, cwd, name string, up, down, root bool) (ActivationTarget, error) {
	if root {
		return ActivationTarget{Path: repo.RepoRoot, IsRoot: true}, nil
	}
	if strings.EqualFold(name, "main") || strings.EqualFold(name, "master") {
		return ActivationTarget{}, RedirectToRootError{Requested: name}
	}

	if up || down {
		global, err := s.config.LoadGlobal()
		if err != nil {
			return ActivationTarget{}, err
		}
		if !global.UseStackTool {
			return ActivationTarget{}, fmt.Errorf("switch --up/--down requires use_graphite=true in global config")
		}
		return s.resolveStackNav(ctx, repo, cwd, up)
	}

	return s.resolveByName(ctx, repo, name)
}

func (s *ActivationService) resolveStackNav(ctx context.Context, repo repocontext.Context, cwd string, up bool) (ActivationTarget, error) {
	current, ok, err := s.git.GetCurrentBranch(ctx, cwd)
	if err != nil {
		return ActivationTarget{}, err
	}
	if !ok {
		return ActivationTarget{}, fmt.Errorf("cannot navigate the stack from a detached HEAD")
	}

	cache, err := s.stack.Load(repo.GitCommonDir)
	if err != nil {
		return ActivationTarget{}, err
	}
	graph := stacknav.NewGraph(cache.Branches)

	records, err := s.git.ListWorktrees(ctx, repo.RepoRoot)
	if err != nil {
		return ActivationTarget{}, err
	}
	lookup := func(branch string) (string, bool) {
		for _, r := range records {
			if r.Branch == branch {
				return r.Path, true
			}
		}
		return "", false
	}

	if up {
		branch, err := navigation.ResolveUp(graph, current)
		if err != nil {
			return ActivationTarget{}, err
		}
		path, ok := lookup(branch)
		if !ok {
			return ActivationTarget{}, fmt.Errorf("branch %q has no worktree; create one first", branch)
		}
		return ActivationTarget{Path: path, Branch: branch}, nil
	}

	defaultBranch, err := s.git.DetectDefaultBranch(ctx, repo.RepoRoot)
	if err != nil {
		return ActivationTarget{}, err
	}
	target, err := navigation.ResolveDown(graph, current, defaultBranch, navigation.WorktreeLookup(lookup))
	if err != nil {
		return ActivationTarget{}, err
	}
	if target.Root {
		return ActivationTarget{Path: repo.RepoRoot, IsRoot: true}, nil
	}
	return ActivationTarget{Path: target.Path, Branch: target.Branch}, nil
}

func (s *ActivationService) resolveByName(ctx context.Context, repo repocontext.Context, name string) (ActivationTarget, error) {
	records, err := s.git.ListWorktrees(ctx, repo.RepoRoot)
	if err != nil {
		return ActivationTarget{}, err
	}
	for _, r := range records {
		if filepath.Base(r.Path) == name || r.Branch == name {
			return ActivationTarget{Path: r.Path, Branch: r.Branch}, nil
		}
	}
	return ActivationTarget{}, fmt.Errorf("no worktree named %q", name)
}

// EmitScript writes the activation script for target and best-effort
// syncs the tmux window name to target's worktree directory name.
func (s *ActivationService) EmitScript(ctx context.Context, cmd string, target ActivationTarget) (string, error) {
	name := filepath.Base(target.Path)
	s.tmux.SyncWindowName(ctx, name)
	return activation.Write(cmd, target.Path)
}

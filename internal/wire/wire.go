// Package wire assembles workstack's real facades into the services the
// CLI layer calls. Unlike the teacher's sync.Once-guarded singleton
// locator (needed because ORC's commands share a long process handling
// many entities), workstack is a one-shot CLI per spec section 5 — every
// invocation starts a fresh process, so the container is just built once
// by the root command's PersistentPreRunE and shared by the subcommands,
// no lazy guarding required.
package wire

import (
	"time"

	"github.com/workstack-dev/workstack/internal/app"
	"github.com/workstack-dev/workstack/internal/gitfacade"
	"github.com/workstack-dev/workstack/internal/historydb"
	"github.com/workstack-dev/workstack/internal/proc"
	"github.com/workstack-dev/workstack/internal/reviewhost"
	"github.com/workstack-dev/workstack/internal/stackcache"
	"github.com/workstack-dev/workstack/internal/tmuxsync"
	"github.com/workstack-dev/workstack/internal/wsconfig"
)

// Container holds the services workstack's CLI commands share across one
// process invocation.
type Container struct {
	DryRun bool

	Proc       proc.Invoker
	Git        gitfacade.Facade
	ReviewHost reviewhost.Facade
	StackCache stackcache.Facade
	Config     *wsconfig.Store
	Tmux       tmuxsync.Syncer
	History    *historydb.Store

	Executor   app.EffectExecutor
	Worktree   *app.WorktreeService
	Activation *app.ActivationService
}

// Build constructs a Container from the real facades, wrapping the
// process invoker and git facade in their dry-run decorators when dryRun
// is set (spec section 4.1's global --dry-run flag).
func Build(homeDir string, dryRun bool) (*Container, error) {
	realProc := proc.NewReal()
	var invoker proc.Invoker = realProc
	if dryRun {
		invoker = proc.NewDryRun(realProc)
	}

	realGit := gitfacade.NewReal(invoker)
	var git gitfacade.Facade = realGit
	if dryRun {
		git = gitfacade.NewDryRun(realGit)
	}

	reviewHost := reviewhost.NewReal(invoker)
	stackCache := stackcache.NewReal()
	config := wsconfig.NewStore(homeDir)
	tmux := tmuxsync.NewReal(invoker)

	history, err := historydb.Open(homeDir)
	if err != nil {
		return nil, err
	}

	executor := app.NewEffectExecutor(git, invoker, dryRun)
	worktree := app.NewWorktreeService(git, executor, config)
	activation := app.NewActivationService(git, stackCache, tmux, config)

	return &Container{
		DryRun:     dryRun,
		Proc:       invoker,
		Git:        git,
		ReviewHost: reviewHost,
		StackCache: stackCache,
		Config:     config,
		Tmux:       tmux,
		History:    history,
		Executor:   executor,
		Worktree:   worktree,
		Activation: activation,
	}, nil
}

// RebaseStackService builds a RebaseStackService scoped to repoRoot: the
// engine's constructor needs the repository root and configured stack
// location up front, neither of which is known until the CLI layer
// resolves the repo context for the current command.
func (c *Container) RebaseStackService(repoRoot, location string) *app.RebaseStackService {
	return app.NewRebaseStackService(c.Git, c.Proc, c.Executor, repoRoot, location, nowRFC3339)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Close releases resources the container owns. Currently just the history
// database connection.
func (c *Container) Close() error {
	if c.History != nil {
		return c.History.Close()
	}
	return nil
}

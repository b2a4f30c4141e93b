// Package app contains the application layer: service implementations that
// wire guards and planners from internal/core to the real facades, and the
// effect executor that is the only place I/O happens.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/workstack-dev/workstack/internal/core/effects"
	"github.com/workstack-dev/workstack/internal/gitfacade"
	"github.com/workstack-dev/workstack/internal/proc"
)

// EffectExecutor interprets and executes effects. This is the "Imperative
// Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor dispatches git/stack-tool effects to a
// gitfacade.Facade and proc.Invoker (both of which already carry their own
// dry-run behavior), and handles raw filesystem effects directly. dryRun
// only affects FileRemoveAllEffect, which has no facade of its own to
// carry dry-run semantics.
type DefaultEffectExecutor struct {
	git    gitfacade.Facade
	stack  proc.Invoker
	dryRun bool
}

// NewEffectExecutor builds a DefaultEffectExecutor. git and stack may
// themselves be dry-run-wrapped; dryRun additionally governs
// FileRemoveAllEffect, which bypasses both facades.
func NewEffectExecutor(git gitfacade.Facade, stack proc.Invoker, dryRun bool) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{git: git, stack: stack, dryRun: dryRun}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.LogEffect:
		fmt.Printf("[%s] %s\n", typed.Level, typed.Message)
		return nil
	case effects.CompositeEffect:
		return e.Execute(ctx, typed.Effects)
	case effects.NoEffect:
		return nil

	case effects.FileMkdirEffect:
		mode := typed.Mode
		if mode == 0 {
			mode = 0o755
		}
		return os.MkdirAll(typed.Path, mode)
	case effects.FileWriteEffect:
		mode := typed.Mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.MkdirAll(filepath.Dir(typed.Path), 0o755); err != nil {
			return err
		}
		return os.WriteFile(typed.Path, typed.Content, mode)
	case effects.FileCopyEffect:
		return copyFile(typed.Src, typed.Dst)
	case effects.FileMoveEffect:
		if err := os.MkdirAll(filepath.Dir(typed.Dst), 0o755); err != nil {
			return err
		}
		return os.Rename(typed.Src, typed.Dst)
	case effects.FileRemoveAllEffect:
		if e.dryRun {
			fmt.Printf("[DRY RUN] Would remove %s\n", typed.Path)
			return nil
		}
		return os.RemoveAll(typed.Path)

	case effects.WorktreeAddEffect:
		return e.git.AddWorktree(ctx, typed.Repo, typed.Path, typed.Branch, typed.Ref, typed.CreateBranch)
	case effects.WorktreeRemoveEffect:
		_ = e.git.RemoveWorktree(ctx, typed.Repo, typed.Path, typed.Force) // best-effort; a failure leaves the directory for FileRemoveAllEffect
		return nil
	case effects.WorktreePruneEffect:
		_ = e.git.PruneWorktrees(ctx, typed.Repo) // errors swallowed per spec section 4.5 step 5
		return nil
	case effects.CheckoutBranchEffect:
		return e.git.CheckoutBranch(ctx, typed.Cwd, typed.Branch)
	case effects.CheckoutDetachedEffect:
		return e.git.CheckoutDetached(ctx, typed.Cwd, typed.Ref)
	case effects.CreateBranchEffect:
		return e.git.CreateBranch(ctx, typed.Repo, typed.Branch, typed.Ref)
	case effects.DeleteBranchEffect:
		return e.git.DeleteBranch(ctx, typed.Repo, typed.Branch, typed.Force)
	case effects.ResetHardEffect:
		return e.git.ResetHard(ctx, typed.Path, typed.Ref)
	case effects.ForceBranchEffect:
		return e.git.ForceBranch(ctx, typed.Repo, typed.Branch, typed.Ref)

	case effects.StackCreateEffect:
		_, err := e.stack.Run(ctx, []string{"gt", "create", "--no-interactive", typed.Branch}, typed.Repo,
			proc.Options{CheckZero: true, Capture: true, Destructive: true})
		return err
	case effects.StackDeleteBranchEffect:
		argv := []string{"gt", "branch", "delete", typed.Branch}
		if typed.Force {
			argv = append(argv, "--force")
		}
		_, err := e.stack.Run(ctx, argv, typed.Repo, proc.Options{CheckZero: true, Capture: true, Destructive: true})
		return err
	case effects.RunCommandEffect:
		return e.runCommand(ctx, typed)

	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) runCommand(ctx context.Context, eff effects.RunCommandEffect) error {
	argv := eff.Argv
	if eff.Shell != "" {
		joined := ""
		for i, a := range eff.Argv {
			if i > 0 {
				joined += " "
			}
			joined += a
		}
		argv = []string{eff.Shell, "-lc", joined}
	}
	res, err := e.stack.Run(ctx, argv, eff.Cwd, proc.Options{Capture: false})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("command %v exited %d", eff.Argv, res.ExitCode)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	info, err := os.Stat(src)
	mode := os.FileMode(0o644)
	if err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(dst, data, mode)
}

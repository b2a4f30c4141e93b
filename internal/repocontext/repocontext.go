// Package repocontext locates the repository a command is running
// against and derives the paths every other component keys off of: the
// repository root, the shared .git directory, and this repo's workstacks
// directory.
package repocontext

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/workstack-dev/workstack/internal/gitfacade"
)

// Context is the resolved repository location for the current command.
type Context struct {
	RepoRoot      string // the real repository root, even when cwd is a linked worktree
	GitCommonDir  string // shared .git directory (handles linked worktrees)
	RepoName      string // filepath.Base(RepoRoot), used as the workstacks subdirectory name
	WorkstacksDir string // <workstacks_root>/<RepoName>, per spec invariant I2
}

// Resolve locates the repository context for cwd. workstacksRoot is the
// configured GlobalConfig.WorkstacksRoot; it may be empty, in which case
// WorkstacksDir is left empty too and the caller decides whether that's
// fatal (commands that don't need it tolerate an empty config).
func Resolve(ctx context.Context, git gitfacade.Facade, cwd, workstacksRoot string) (Context, error) {
	commonDir, ok, err := git.GetGitCommonDir(ctx, cwd)
	if err != nil {
		return Context{}, fmt.Errorf("repocontext: resolve git common dir: %w", err)
	}
	if !ok {
		return Context{}, fmt.Errorf("repocontext: %s is not inside a git repository", cwd)
	}

	repoRoot := deriveRepoRoot(commonDir)
	repoName := filepath.Base(repoRoot)

	rc := Context{
		RepoRoot:     repoRoot,
		GitCommonDir: commonDir,
		RepoName:     repoName,
	}
	if workstacksRoot != "" {
		rc.WorkstacksDir = filepath.Join(workstacksRoot, repoName)
	}
	return rc, nil
}

// deriveRepoRoot strips a trailing "/.git" from the common dir. Linked
// worktrees report their common dir as "<root>/.git" too (git resolves
// the worktree-local .git file for us), so this is safe for both cases.
func deriveRepoRoot(gitCommonDir string) string {
	trimmed := strings.TrimSuffix(filepath.Clean(gitCommonDir), string(filepath.Separator)+".git")
	if trimmed == gitCommonDir || trimmed == "" {
		return filepath.Dir(gitCommonDir)
	}
	return trimmed
}

package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/workstack-dev/workstack/internal/gitfacade"
	"github.com/workstack-dev/workstack/internal/proc"
	"github.com/workstack-dev/workstack/internal/repocontext"
	"github.com/workstack-dev/workstack/internal/wsconfig"
)

func newTestService(t *testing.T) (*WorktreeService, *gitfacade.Fake) {
	t.Helper()
	git := gitfacade.NewFake()
	git.Branches["main"] = "deadbeef"
	store := wsconfig.NewStore(t.TempDir())
	executor := NewEffectExecutor(git, proc.NewFake(), false)
	return NewWorktreeService(git, executor, store), git
}

func TestWorktreeService_Create_NewBranch(t *testing.T) {
	svc, git := newTestService(t)
	repoRoot := t.TempDir()
	workstacksDir := t.TempDir()
	git.Current[repoRoot] = "main"

	repo := repocontext.Context{RepoRoot: repoRoot, WorkstacksDir: workstacksDir}
	name, path, err := svc.Create(context.Background(), CreateRequest{
		Repo: repo, Cwd: repoRoot, Name: "my-feature",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if name != "my-feature" {
		t.Errorf("expected resolved name my-feature, got %s", name)
	}
	if path != filepath.Join(workstacksDir, "my-feature") {
		t.Errorf("expected resolved path, got %s", path)
	}

	want := filepath.Join(workstacksDir, "my-feature")
	found := false
	for _, r := range git.Worktrees[repoRoot] {
		if r.Path == want && r.Branch == "my-feature" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a worktree added at %s with branch my-feature, got %+v", want, git.Worktrees[repoRoot])
	}

	if _, err := os.Stat(filepath.Join(want, ".env")); err != nil {
		t.Errorf("expected .env to be written: %v", err)
	}
}

func TestWorktreeService_Create_RejectsReservedName(t *testing.T) {
	svc, git := newTestService(t)
	repoRoot := t.TempDir()
	git.Current[repoRoot] = "main"
	repo := repocontext.Context{RepoRoot: repoRoot, WorkstacksDir: t.TempDir()}

	_, _, err := svc.Create(context.Background(), CreateRequest{Repo: repo, Cwd: repoRoot, Name: "root"})
	if err == nil {
		t.Fatal("expected reserved name to be rejected")
	}
}

func TestWorktreeService_Remove_RejectsMissingWorktree(t *testing.T) {
	svc, _ := newTestService(t)
	repo := repocontext.Context{RepoRoot: t.TempDir(), WorkstacksDir: t.TempDir()}
	err := svc.Remove(context.Background(), RemoveRequest{Repo: repo, Name: "ghost"})
	if err == nil {
		t.Fatal("expected missing worktree directory to be rejected")
	}
}

func TestWorktreeService_Remove_Succeeds(t *testing.T) {
	svc, git := newTestService(t)
	workstacksDir := t.TempDir()
	repo := repocontext.Context{RepoRoot: t.TempDir(), WorkstacksDir: workstacksDir}
	path := filepath.Join(workstacksDir, "feature")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
	git.Worktrees[repo.RepoRoot] = []gitfacade.WorktreeRecord{{Path: path, Branch: "feature"}}

	err := svc.Remove(context.Background(), RemoveRequest{Repo: repo, Name: "feature", Force: true})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("expected directory to be removed, stat err = %v", statErr)
	}
}

func TestWorktreeService_Move_SwapMode(t *testing.T) {
	svc, git := newTestService(t)
	repoRoot := t.TempDir()
	sourcePath := t.TempDir()
	targetPath := t.TempDir()

	git.Current[sourcePath] = "feature-a"
	git.Current[targetPath] = "feature-b"
	repo := repocontext.Context{RepoRoot: repoRoot, WorkstacksDir: filepath.Dir(targetPath)}

	err := svc.Move(context.Background(), MoveRequest{
		Repo: repo, SourcePath: sourcePath, TargetName: filepath.Base(targetPath),
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if git.Current[sourcePath] != "feature-b" {
		t.Errorf("expected source to end up on feature-b, got %s", git.Current[sourcePath])
	}
	if git.Current[targetPath] != "feature-a" {
		t.Errorf("expected target to end up on feature-a, got %s", git.Current[targetPath])
	}
}

package repocontext

import (
	"context"
	"testing"

	"github.com/workstack-dev/workstack/internal/gitfacade"
)

func TestResolve(t *testing.T) {
	git := gitfacade.NewFake()
	// Fake.GetGitCommonDir returns cwd + "/.git"
	rc, err := Resolve(context.Background(), git, "/home/user/myrepo", "/tmp/ws")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.RepoRoot != "/home/user/myrepo" {
		t.Errorf("repo root = %q", rc.RepoRoot)
	}
	if rc.RepoName != "myrepo" {
		t.Errorf("repo name = %q", rc.RepoName)
	}
	if rc.WorkstacksDir != "/tmp/ws/myrepo" {
		t.Errorf("workstacks dir = %q", rc.WorkstacksDir)
	}
}

func TestResolve_EmptyWorkstacksRoot(t *testing.T) {
	git := gitfacade.NewFake()
	rc, err := Resolve(context.Background(), git, "/home/user/myrepo", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.WorkstacksDir != "" {
		t.Errorf("expected empty workstacks dir, got %q", rc.WorkstacksDir)
	}
}

func TestDeriveRepoRoot(t *testing.T) {
	if got := deriveRepoRoot("/home/user/myrepo/.git"); got != "/home/user/myrepo" {
		t.Errorf("got %q", got)
	}
}

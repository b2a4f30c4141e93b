package navigation

import (
	"testing"

	"github.com/workstack-dev/workstack/internal/core/stacknav"
	"github.com/workstack-dev/workstack/internal/stackcache"
)

func graphOf(branches map[string]stackcache.BranchMetadata) stacknav.Graph {
	return stacknav.NewGraph(branches)
}

func TestResolveUp_TakesFirstChild(t *testing.T) {
	g := graphOf(map[string]stackcache.BranchMetadata{
		"main": {Name: "main", Children: []string{"feature-a"}, IsTrunk: true},
		"feature-a": {Name: "feature-a", Parent: "main", Children: []string{"feature-b", "feature-c"}},
	})
	got, err := ResolveUp(g, "feature-a")
	if err != nil {
		t.Fatalf("ResolveUp: %v", err)
	}
	if got != "feature-b" {
		t.Errorf("expected first child feature-b, got %s", got)
	}
}

func TestResolveUp_ErrorsAtTop(t *testing.T) {
	g := graphOf(map[string]stackcache.BranchMetadata{
		"leaf": {Name: "leaf", Parent: "main"},
	})
	if _, err := ResolveUp(g, "leaf"); err == nil {
		t.Error("expected error at top of stack")
	}
}

func TestResolveDown_RedirectsToRootWhenParentIsDefaultInRootRepo(t *testing.T) {
	g := graphOf(map[string]stackcache.BranchMetadata{
		"main":    {Name: "main", IsTrunk: true, Children: []string{"feature"}},
		"feature": {Name: "feature", Parent: "main"},
	})
	lookup := func(branch string) (string, bool) { return "", false } // main has no dedicated worktree
	target, err := ResolveDown(g, "feature", "main", lookup)
	if err != nil {
		t.Fatalf("ResolveDown: %v", err)
	}
	if !target.Root {
		t.Errorf("expected redirect to root, got %+v", target)
	}
}

func TestResolveDown_TargetsParentWorktreeWhenNotDefaultOrHasOwnWorktree(t *testing.T) {
	g := graphOf(map[string]stackcache.BranchMetadata{
		"main":   {Name: "main", IsTrunk: true, Children: []string{"mid"}},
		"mid":    {Name: "mid", Parent: "main", Children: []string{"top"}},
		"top":    {Name: "top", Parent: "mid"},
	})
	lookup := func(branch string) (string, bool) {
		if branch == "mid" {
			return "/ws/repo/mid", true
		}
		return "", false
	}
	target, err := ResolveDown(g, "top", "main", lookup)
	if err != nil {
		t.Fatalf("ResolveDown: %v", err)
	}
	if target.Root || target.Branch != "mid" || target.Path != "/ws/repo/mid" {
		t.Errorf("expected parent worktree mid, got %+v", target)
	}
}

func TestResolveDown_ErrorsWhenParentHasNoWorktree(t *testing.T) {
	g := graphOf(map[string]stackcache.BranchMetadata{
		"main": {Name: "main", IsTrunk: true, Children: []string{"mid"}},
		"mid":  {Name: "mid", Parent: "main", Children: []string{"top"}},
		"top":  {Name: "top", Parent: "mid"},
	})
	lookup := func(branch string) (string, bool) { return "", false }
	if _, err := ResolveDown(g, "top", "main", lookup); err == nil {
		t.Error("expected explicit error when parent has no worktree")
	}
}

func TestResolveDown_ErrorsWhenNoParent(t *testing.T) {
	g := graphOf(map[string]stackcache.BranchMetadata{
		"main": {Name: "main", IsTrunk: true},
	})
	lookup := func(branch string) (string, bool) { return "", false }
	if _, err := ResolveDown(g, "main", "main", lookup); err == nil {
		t.Error("expected error when branch has no parent")
	}
}

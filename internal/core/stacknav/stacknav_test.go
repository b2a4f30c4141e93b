package stacknav

import (
	"reflect"
	"testing"

	"github.com/workstack-dev/workstack/internal/stackcache"
)

func sampleGraph() Graph {
	return NewGraph(map[string]stackcache.BranchMetadata{
		"main":    {Name: "main", Children: []string{"b1"}, IsTrunk: true},
		"b1":      {Name: "b1", Parent: "main", Children: []string{"b2", "b1-side"}},
		"b2":      {Name: "b2", Parent: "b1", Children: []string{"b3"}},
		"b3":      {Name: "b3", Parent: "b2"},
		"b1-side": {Name: "b1-side", Parent: "b1"},
	})
}

func TestStack_LinearChain(t *testing.T) {
	g := sampleGraph()
	got := g.Stack("b2")
	want := []string{"main", "b1", "b2", "b3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestStack_OnlyFollowsFirstChild(t *testing.T) {
	g := sampleGraph()
	got := g.Stack("b1")
	want := []string{"main", "b1", "b2", "b3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v (b1-side must not appear)", got, want)
	}
}

func TestStack_UnknownBranch(t *testing.T) {
	g := sampleGraph()
	if got := g.Stack("nonexistent"); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestIsTrunk(t *testing.T) {
	g := sampleGraph()
	if !g.IsTrunk("main") {
		t.Error("main should be trunk")
	}
	if g.IsTrunk("b1") {
		t.Error("b1 should not be trunk")
	}
}

func TestFilterForDisplay_Root(t *testing.T) {
	stack := []string{"main", "b1", "b2", "b3"}
	got := FilterForDisplay(stack, "b1", true, func(string) bool { return false })
	want := []string{"main", "b1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFilterForDisplay_NonRoot_KeepsActiveDescendants(t *testing.T) {
	stack := []string{"main", "b1", "b2", "b3"}
	active := map[string]bool{"b3": true}
	got := FilterForDisplay(stack, "b1", false, func(b string) bool { return active[b] })
	want := []string{"main", "b1", "b3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWorktreeForBranch(t *testing.T) {
	records := []WorktreeRecord{{Path: "/a", Branch: "main"}, {Path: "/b", Branch: "feature"}}
	path, ok := WorktreeForBranch(records, "feature")
	if !ok || path != "/b" {
		t.Errorf("path=%q ok=%v", path, ok)
	}
	if _, ok := WorktreeForBranch(records, "nonexistent"); ok {
		t.Error("expected ok=false for unknown branch")
	}
}

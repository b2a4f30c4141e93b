// Package navigation implements the pure target-resolution rules for
// `switch --up`/`--down`/`root` (spec section 4.11) over an already-loaded
// stacknav.Graph. No IO happens here.
package navigation

import (
	"fmt"

	"github.com/workstack-dev/workstack/internal/core/stacknav"
)

// Target is where a switch should land.
type Target struct {
	Root   bool
	Branch string
	Path   string // empty when Root is true; the caller fills in repo root
}

// WorktreeLookup reports the worktree path holding branch, if any.
type WorktreeLookup func(branch string) (path string, ok bool)

// ResolveUp implements "--up": the first child of current in the stack
// graph. Errors if current has no children.
func ResolveUp(graph stacknav.Graph, current string) (string, error) {
	children := graph.Children(current)
	if len(children) == 0 {
		return "", fmt.Errorf("navigation: %q is already at the top of its stack", current)
	}
	return children[0], nil
}

// ResolveDown implements "--down": current's parent, redirected to root
// when the parent is the default branch and the default branch has no
// dedicated worktree (it lives in the root repo); otherwise the parent's
// worktree, or an explicit error if the parent has none.
func ResolveDown(graph stacknav.Graph, current, defaultBranch string, lookup WorktreeLookup) (Target, error) {
	parent := graph.Parent(current)
	if parent == "" {
		return Target{}, fmt.Errorf("navigation: %q has no parent in the stack tool", current)
	}

	if parent == defaultBranch {
		if _, ok := lookup(defaultBranch); !ok {
			return Target{Root: true}, nil
		}
	}

	if path, ok := lookup(parent); ok {
		return Target{Branch: parent, Path: path}, nil
	}
	return Target{}, fmt.Errorf("navigation: parent branch %q has no worktree; create one first (workstack create --from-branch %s)", parent, parent)
}

// ResolveRoot implements "switch root": always the repository root,
// regardless of branch.
func ResolveRoot() Target {
	return Target{Root: true}
}

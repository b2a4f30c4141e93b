// Package stacknav implements the pure stack-navigation algorithms of
// spec section 4.6 over a branch-metadata map loaded by stackcache. No IO
// happens here — every function is a lookup or walk over data already in
// memory.
package stacknav

import "github.com/workstack-dev/workstack/internal/stackcache"

// Graph wraps a branch-name-keyed metadata map with the pure navigation
// operations.
type Graph struct {
	branches map[string]stackcache.BranchMetadata
}

// NewGraph wraps branches for navigation.
func NewGraph(branches map[string]stackcache.BranchMetadata) Graph {
	return Graph{branches: branches}
}

// Parent returns B's parent branch name, or "" if B is a trunk or unknown.
func (g Graph) Parent(branch string) string {
	return g.branches[branch].Parent
}

// Children returns B's children in stack-tool order (first child is the
// "default" next in the stack).
func (g Graph) Children(branch string) []string {
	return g.branches[branch].Children
}

// IsTrunk reports whether branch is a stack root.
func (g Graph) IsTrunk(branch string) bool {
	meta, ok := g.branches[branch]
	return ok && meta.IsTrunk
}

// Stack returns the linear stack containing branch: ancestors (walking
// parent pointers up to a trunk or missing parent), branch itself, then
// descendants (walking the first-child chain down to a leaf). Unrelated
// siblings never appear.
func (g Graph) Stack(branch string) []string {
	if _, ok := g.branches[branch]; !ok {
		return nil
	}

	var ancestors []string
	cur := branch
	for {
		parent := g.Parent(cur)
		if parent == "" {
			break
		}
		if _, ok := g.branches[parent]; !ok {
			break
		}
		ancestors = append(ancestors, parent)
		cur = parent
	}
	reverse(ancestors)

	var descendants []string
	cur = branch
	for {
		children := g.Children(cur)
		if len(children) == 0 {
			break
		}
		next := children[0]
		if _, ok := g.branches[next]; !ok {
			break
		}
		descendants = append(descendants, next)
		cur = next
	}

	stack := make([]string, 0, len(ancestors)+1+len(descendants))
	stack = append(stack, ancestors...)
	stack = append(stack, branch)
	stack = append(stack, descendants...)
	return stack
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// ActiveFn reports whether branch is checked out in some worktree. Callers
// supply it (backed by a WorktreeRecord scan) so this package stays pure.
type ActiveFn func(branch string) bool

// FilterForDisplay implements spec section 4.6's filtering rule for
// rendering a stack from the viewpoint of worktree W on branch `current`.
// isRoot distinguishes the root-repo worktree, which only ever sees its
// own ancestor chain.
func FilterForDisplay(stack []string, current string, isRoot bool, active ActiveFn) []string {
	index := indexOf(stack, current)
	if index < 0 {
		return stack
	}
	if isRoot {
		return append([]string(nil), stack[:index+1]...)
	}

	filtered := make([]string, 0, len(stack))
	for i, branch := range stack {
		if i <= index || active(branch) {
			filtered = append(filtered, branch)
		}
	}
	return filtered
}

func indexOf(stack []string, branch string) int {
	for i, b := range stack {
		if b == branch {
			return i
		}
	}
	return -1
}

// WorktreeRecord is the minimal shape stacknav needs from a git worktree
// listing, to avoid importing gitfacade from a pure package.
type WorktreeRecord struct {
	Path   string
	Branch string
}

// WorktreeForBranch returns the path of the first worktree holding branch,
// or "" if none does.
func WorktreeForBranch(records []WorktreeRecord, branch string) (string, bool) {
	for _, r := range records {
		if r.Branch == branch {
			return r.Path, true
		}
	}
	return "", false
}

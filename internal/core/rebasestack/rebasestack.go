// Package rebasestack contains the pure business logic for the
// rebase-stack engine (spec section 4.7): the state machine, naming/path
// derivation, test-command auto-detection, and plan generation. No IO.
package rebasestack

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/workstack-dev/workstack/internal/core/effects"
	"github.com/workstack-dev/workstack/internal/core/worktree"
)

// State is a rebase-stack's lifecycle state.
type State string

const (
	StateCreated    State = "CREATED"
	StateInProgress State = "IN_PROGRESS"
	StateConflicted State = "CONFLICTED"
	StateResolved   State = "RESOLVED"
	StateTested     State = "TESTED"
	StateFailed     State = "FAILED"
	StateApplied    State = "APPLIED"
)

// Metadata is the persisted `.rebase-stack-metadata` document.
type Metadata struct {
	BranchName     string `json:"branch_name"`
	TargetBranch   string `json:"target_branch"`
	CreatedAt      string `json:"created_at"`
	OriginalCommit string `json:"original_commit"`
	State          State  `json:"state"`
}

const metadataFileName = ".rebase-stack-metadata"

// MetadataPath returns the path of the metadata file inside stackPath.
func MetadataPath(stackPath string) string {
	return filepath.Join(stackPath, metadataFileName)
}

// StackBranchName is the throwaway branch name for branch, per spec
// section 4.7: "workstack/rebase-stack-<sanitized-branch>".
func StackBranchName(branch string) string {
	return "workstack/rebase-stack-" + worktree.Sanitize(branch)
}

// StackPath is the isolated worktree's location, per invariant I5:
// "<repo_root>/../<stack_location>-<sanitized-branch>/".
func StackPath(repoRoot, stackLocation, branch string) string {
	if stackLocation == "" {
		stackLocation = ".rebase-stack"
	}
	parent := filepath.Dir(repoRoot)
	return filepath.Join(parent, stackLocation+"-"+worktree.Sanitize(branch))
}

// MarshalMetadata renders m as indented JSON, for a FileWriteEffect.
func MarshalMetadata(m Metadata) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// UnmarshalMetadata parses a `.rebase-stack-metadata` file's contents.
func UnmarshalMetadata(data []byte) (Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("rebasestack: parse metadata: %w", err)
	}
	return m, nil
}

// GenerateCreatePlan implements spec section 4.7's create(branch, onto):
// add the isolated worktree as a new stack_branch pointed at branch, then
// write metadata with original_commit and state=CREATED. Orphan cleanup
// (an existing stack, a lingering throwaway branch) is the caller's
// responsibility before calling this, since it needs facade reads this
// package does not perform.
func GenerateCreatePlan(repo, stackPath, stackBranch, branch, targetBranch, originalCommit, createdAt string) []effects.Effect {
	meta := Metadata{
		BranchName:     branch,
		TargetBranch:   targetBranch,
		CreatedAt:      createdAt,
		OriginalCommit: originalCommit,
		State:          StateCreated,
	}
	data, _ := MarshalMetadata(meta) // Metadata always marshals cleanly
	return []effects.Effect{
		effects.WorktreeAddEffect{Repo: repo, Path: stackPath, Branch: stackBranch, Ref: branch, CreateBranch: true},
		effects.FileWriteEffect{Path: MetadataPath(stackPath), Content: data, Mode: 0o644},
	}
}

// GenerateStateWriteEffect persists an updated state.
func GenerateStateWriteEffect(stackPath string, meta Metadata) effects.Effect {
	data, _ := MarshalMetadata(meta)
	return effects.FileWriteEffect{Path: MetadataPath(stackPath), Content: data, Mode: 0o644}
}

// GenerateCleanupPlan implements cleanup(branch): delete the metadata
// file, force-remove the worktree, and delete the throwaway branch if it
// lingers (lingerBranch is the caller's pre-fetched check, since this
// package does no IO).
func GenerateCleanupPlan(repo, stackPath, stackBranch string, lingerBranch bool) []effects.Effect {
	plan := []effects.Effect{
		effects.FileRemoveAllEffect{Path: MetadataPath(stackPath)},
		effects.WorktreeRemoveEffect{Repo: repo, Path: stackPath, Force: true},
	}
	if lingerBranch {
		plan = append(plan, effects.DeleteBranchEffect{Repo: repo, Branch: stackBranch, Force: true})
	}
	return plan
}

// GenerateApplyPlan implements apply(branch, force)'s landing step: if the
// real branch is checked out somewhere (holderPath != ""), reset that
// worktree hard to stackHead; otherwise force the branch ref itself.
func GenerateApplyPlan(repo, branch, holderPath, stackHead string) []effects.Effect {
	if holderPath != "" {
		return []effects.Effect{effects.ResetHardEffect{Path: holderPath, Ref: stackHead}}
	}
	return []effects.Effect{effects.ForceBranchEffect{Repo: repo, Branch: branch, Ref: stackHead}}
}

// testCommandRule is one entry in the auto-detection priority list.
type testCommandRule struct {
	marker string
	argv   []string
}

// testCommandPriority is spec section 4.7's test(branch, command?)
// auto-detection order: stop at the first marker file present.
var testCommandPriority = []testCommandRule{
	{"package.json", []string{"npm", "test"}},
	{"pytest.ini", []string{"pytest"}},
	{"pyproject.toml", []string{"pytest"}},
	{"Makefile", []string{"make", "test"}}, // only if it has a test: target; caller pre-filters
	{"Cargo.toml", []string{"cargo", "test"}},
	{"go.mod", []string{"go", "test", "./..."}},
}

// DetectTestCommand picks the first matching command from present, a set
// of marker filenames that exist in the stack worktree (Makefile should
// only be included if it has a "test:" target).
func DetectTestCommand(present map[string]bool) ([]string, bool) {
	for _, rule := range testCommandPriority {
		if present[rule.marker] {
			return rule.argv, true
		}
	}
	return nil, false
}

// CanResolve reports whether resolve(branch) may run: only a CONFLICTED
// stack has files to resolve.
func CanResolve(state State) bool {
	return state == StateConflicted
}

// CanTest reports whether test(branch) may run: only once the rebase
// itself has completed cleanly.
func CanTest(state State) bool {
	return state == StateResolved || state == StateTested
}

// CanApply reports whether apply(branch, force) may run without
// confirmation: RESOLVED or TESTED proceed silently; FAILED requires the
// caller to have already confirmed (force or an explicit prompt).
func CanApply(state State, force bool) bool {
	if state == StateResolved || state == StateTested {
		return true
	}
	return force
}

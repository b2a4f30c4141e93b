// Package stackcache reads the stacked-branch tool's on-disk JSON caches
// and exposes branch parent/child metadata. It never invokes the stack
// tool for reads — only `.graphite_cache_persist` and `.graphite_pr_info`
// are consulted, matching spec section 6.3.
package stackcache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/workstack-dev/workstack/internal/reviewhost"
)

// BranchMetadata is one row the stack tool tracks for a branch.
type BranchMetadata struct {
	Name      string
	Parent    string // "" means trunk candidate
	Children  []string
	IsTrunk   bool
	CommitSHA string // enriched by the git facade; empty until filled in
}

// Cache is the decoded contents of .graphite_cache_persist plus an
// optional PR map decoded from .graphite_pr_info.
type Cache struct {
	Branches map[string]BranchMetadata
	PRs      map[string]reviewhost.PullRequest
}

// Facade exposes the stack tool's cached branch graph.
type Facade interface {
	// Load reads both cache files under gitCommonDir. A missing cache file
	// yields an empty Cache, not an error — the stack tool being
	// unconfigured is not a failure. An unparseable .graphite_pr_info
	// leaves PRs empty; an unparseable .graphite_cache_persist is an error.
	Load(gitCommonDir string) (Cache, error)
}

// Real reads the cache files directly from disk.
type Real struct{}

// NewReal returns a Real stack-cache facade.
func NewReal() *Real { return &Real{} }

type rawCachePersist struct {
	Branches [][2]json.RawMessage `json:"branches"`
}

type rawBranchEntry struct {
	ParentBranchName *string  `json:"parentBranchName"`
	Children         []string `json:"children"`
	ValidationResult string   `json:"validationResult"`
}

// Load implements Facade.
func (r *Real) Load(gitCommonDir string) (Cache, error) {
	cache := Cache{Branches: make(map[string]BranchMetadata), PRs: make(map[string]reviewhost.PullRequest)}

	if data, err := os.ReadFile(filepath.Join(gitCommonDir, ".graphite_cache_persist")); err == nil {
		branches, parseErr := parseCachePersist(data)
		if parseErr != nil {
			return Cache{}, fmt.Errorf("stackcache: parse .graphite_cache_persist: %w", parseErr)
		}
		cache.Branches = branches
	}

	if data, err := os.ReadFile(filepath.Join(gitCommonDir, ".graphite_pr_info")); err == nil {
		prs, parseErr := reviewhost.ParseGraphitePRInfo(data)
		if parseErr == nil {
			cache.PRs = prs
		}
	}

	return cache, nil
}

// parseCachePersist decodes the {branches: [[name, entry], ...]} shape. A
// branch is trunk when validationResult=="TRUNK" or parentBranchName is
// null, per spec section 6.3.
func parseCachePersist(data []byte) (map[string]BranchMetadata, error) {
	var raw rawCachePersist
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]BranchMetadata, len(raw.Branches))
	for _, pair := range raw.Branches {
		var name string
		if err := json.Unmarshal(pair[0], &name); err != nil {
			return nil, fmt.Errorf("branch name: %w", err)
		}
		var entry rawBranchEntry
		if err := json.Unmarshal(pair[1], &entry); err != nil {
			return nil, fmt.Errorf("branch %q entry: %w", name, err)
		}
		meta := BranchMetadata{
			Name:     name,
			Children: entry.Children,
			IsTrunk:  entry.ValidationResult == "TRUNK" || entry.ParentBranchName == nil,
		}
		if entry.ParentBranchName != nil {
			meta.Parent = *entry.ParentBranchName
		}
		out[name] = meta
	}
	return out, nil
}

var _ Facade = (*Real)(nil)

package stackcache

import "github.com/workstack-dev/workstack/internal/reviewhost"

// Fake is an in-memory Facade for tests; Load always returns Cached
// regardless of the path given.
type Fake struct {
	Cached Cache
}

// NewFake returns a Fake stack-cache facade with an empty cache.
func NewFake() *Fake {
	return &Fake{Cached: Cache{Branches: make(map[string]BranchMetadata), PRs: make(map[string]reviewhost.PullRequest)}}
}

func (f *Fake) Load(gitCommonDir string) (Cache, error) {
	return f.Cached, nil
}

var _ Facade = (*Fake)(nil)

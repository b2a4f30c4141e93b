package reviewhost

import "context"

// Fake is an in-memory Facade for service-level tests.
type Fake struct {
	PRs map[string]PullRequest // keyed by branch
}

// NewFake returns an empty Fake review-host facade.
func NewFake() *Fake {
	return &Fake{PRs: make(map[string]PullRequest)}
}

func (f *Fake) GetPRsForRepo(ctx context.Context, repo string, includeChecks bool) (map[string]PullRequest, error) {
	out := make(map[string]PullRequest, len(f.PRs))
	for k, v := range f.PRs {
		if !includeChecks {
			v.Checks = ChecksAbsent
		}
		out[k] = v
	}
	return out, nil
}

func (f *Fake) GetPRStatus(ctx context.Context, repo, branch string) (PullRequestState, int, string, error) {
	pr, ok := f.PRs[branch]
	if !ok {
		return StateNone, 0, "", nil
	}
	return pr.State, pr.Number, "", nil
}

var _ Facade = (*Fake)(nil)

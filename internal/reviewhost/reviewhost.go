// Package reviewhost queries the hosted code-review CLI for pull-request
// state. It never tracks PR state itself; every call is a pass-through read
// of whatever the review-host tool currently reports.
package reviewhost

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/workstack-dev/workstack/internal/proc"
)

// PullRequestState is the lifecycle state of a pull request.
type PullRequestState string

const (
	StateNone   PullRequestState = "NONE"
	StateOpen   PullRequestState = "OPEN"
	StateMerged PullRequestState = "MERGED"
	StateClosed PullRequestState = "CLOSED"
)

// ChecksPassing is a tri-state: true, false, or absent (no CI signal).
type ChecksPassing int

const (
	ChecksAbsent ChecksPassing = iota
	ChecksPassingTrue
	ChecksPassingFalse
)

// PullRequest is one row as reported by the review host (or the stack
// tool's cache, which never carries CI signal).
type PullRequest struct {
	Number  int
	State   PullRequestState
	URL     string
	IsDraft bool
	Checks  ChecksPassing
	Owner   string
	Repo    string
	Branch  string // head ref
}

// Facade is the typed contract over the review-host CLI. Real shells out
// to it; Fake is an in-memory double for tests.
type Facade interface {
	// GetPRsForRepo batch-fetches every PR in repo, keyed by head branch.
	// includeChecks adds statusCheckRollup to the request. An absent or
	// failing review-host tool returns an empty map, not an error.
	GetPRsForRepo(ctx context.Context, repo string, includeChecks bool) (map[string]PullRequest, error)
	// GetPRStatus returns the state and number for branch, or state=NONE
	// if no PR exists for it. The title is not fetched and is always "".
	GetPRStatus(ctx context.Context, repo, branch string) (state PullRequestState, number int, title string, err error)
}

// Real shells out to the `gh` CLI via a proc.Invoker.
type Real struct {
	invoker proc.Invoker
}

// NewReal returns a Real review-host facade backed by invoker.
func NewReal(invoker proc.Invoker) *Real {
	return &Real{invoker: invoker}
}

type ghPR struct {
	Number            int    `json:"number"`
	HeadRefName       string `json:"headRefName"`
	URL               string `json:"url"`
	State             string `json:"state"`
	IsDraft           bool   `json:"isDraft"`
	StatusCheckRollup []ghCheck `json:"statusCheckRollup"`
}

type ghCheck struct {
	Status     string `json:"status"`
	Conclusion string `json:"conclusion"`
}

// GetPRsForRepo runs `gh pr list --json ...` once and returns every PR,
// keyed by head branch. Any failure (gh missing, not authenticated, repo
// not hosted) is swallowed into an empty map per spec section 4.8.
func (r *Real) GetPRsForRepo(ctx context.Context, repo string, includeChecks bool) (map[string]PullRequest, error) {
	fields := "number,headRefName,url,state,isDraft"
	if includeChecks {
		fields += ",statusCheckRollup"
	}
	res, err := r.invoker.Run(ctx, []string{"gh", "pr", "list", "--state", "all", "--json", fields}, repo, proc.Options{Capture: true})
	if err != nil || res.ExitCode != 0 {
		return map[string]PullRequest{}, nil
	}

	var raw []ghPR
	if jsonErr := json.Unmarshal([]byte(res.Stdout), &raw); jsonErr != nil {
		return map[string]PullRequest{}, nil
	}

	out := make(map[string]PullRequest, len(raw))
	for _, pr := range raw {
		out[pr.HeadRefName] = PullRequest{
			Number:  pr.Number,
			State:   PullRequestState(pr.State),
			URL:     pr.URL,
			IsDraft: pr.IsDraft,
			Branch:  pr.HeadRefName,
			Checks:  deriveChecksPassing(pr.StatusCheckRollup, includeChecks),
		}
	}
	return out, nil
}

// deriveChecksPassing implements spec section 4.8's tri-state rule: absent
// when checks weren't requested or none exist, true only when every check
// completed successfully/skipped/neutral, false otherwise.
func deriveChecksPassing(checks []ghCheck, requested bool) ChecksPassing {
	if !requested || len(checks) == 0 {
		return ChecksAbsent
	}
	for _, c := range checks {
		if c.Status != "COMPLETED" {
			return ChecksPassingFalse
		}
		switch c.Conclusion {
		case "SUCCESS", "SKIPPED", "NEUTRAL":
		default:
			return ChecksPassingFalse
		}
	}
	return ChecksPassingTrue
}

// GetPRStatus returns a single branch's PR state via a full repo fetch.
// The review host has no cheap per-branch query, so this reuses
// GetPRsForRepo and looks up the branch.
func (r *Real) GetPRStatus(ctx context.Context, repo, branch string) (PullRequestState, int, string, error) {
	prs, err := r.GetPRsForRepo(ctx, repo, false)
	if err != nil {
		return StateNone, 0, "", err
	}
	pr, ok := prs[branch]
	if !ok {
		return StateNone, 0, "", nil
	}
	return pr.State, pr.Number, "", nil
}

var _ Facade = (*Real)(nil)

// graphitePRInfo mirrors <git_common_dir>/.graphite_pr_info.
type graphitePRInfo struct {
	PRInfos []struct {
		HeadRefName string `json:"headRefName"`
		URL         string `json:"url"`
		PRNumber    int    `json:"prNumber"`
		State       string `json:"state"`
		IsDraft     bool   `json:"isDraft"`
	} `json:"prInfos"`
}

// ParseGraphitePRInfo decodes a .graphite_pr_info file's contents into
// PullRequest records with Checks=ChecksAbsent, per spec section 4.8's
// stack-tool cache fast path (no CI signal in the cache).
func ParseGraphitePRInfo(data []byte) (map[string]PullRequest, error) {
	var info graphitePRInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("reviewhost: parse graphite pr info: %w", err)
	}
	out := make(map[string]PullRequest, len(info.PRInfos))
	for _, p := range info.PRInfos {
		out[p.HeadRefName] = PullRequest{
			Number:  p.PRNumber,
			State:   PullRequestState(p.State),
			URL:     p.URL,
			IsDraft: p.IsDraft,
			Branch:  p.HeadRefName,
			Checks:  ChecksAbsent,
		}
	}
	return out, nil
}

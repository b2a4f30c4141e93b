package reviewhost

import (
	"context"
	"testing"

	"github.com/workstack-dev/workstack/internal/proc"
)

func TestGetPRsForRepo(t *testing.T) {
	f := proc.NewFake()
	f.Responses["gh pr list --state all --json number,headRefName,url,state,isDraft"] = proc.Result{
		Stdout: `[{"number":12,"headRefName":"feature","url":"https://example.com/12","state":"OPEN","isDraft":false}]`,
	}
	r := NewReal(f)

	prs, err := r.GetPRsForRepo(context.Background(), "/repo", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pr, ok := prs["feature"]
	if !ok {
		t.Fatal("expected a PR for branch feature")
	}
	if pr.Number != 12 || pr.State != StateOpen || pr.Checks != ChecksAbsent {
		t.Errorf("pr = %+v", pr)
	}
}

func TestGetPRsForRepo_ToolAbsent(t *testing.T) {
	f := proc.NewFake() // no response registered -> Run errors
	r := NewReal(f)

	prs, err := r.GetPRsForRepo(context.Background(), "/repo", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prs) != 0 {
		t.Errorf("expected empty map when gh is unavailable, got %v", prs)
	}
}

func TestDeriveChecksPassing(t *testing.T) {
	cases := []struct {
		name     string
		checks   []ghCheck
		requested bool
		want     ChecksPassing
	}{
		{"not requested", []ghCheck{{Status: "COMPLETED", Conclusion: "SUCCESS"}}, false, ChecksAbsent},
		{"no checks", nil, true, ChecksAbsent},
		{"all pass", []ghCheck{{Status: "COMPLETED", Conclusion: "SUCCESS"}, {Status: "COMPLETED", Conclusion: "SKIPPED"}}, true, ChecksPassingTrue},
		{"one incomplete", []ghCheck{{Status: "IN_PROGRESS", Conclusion: ""}}, true, ChecksPassingFalse},
		{"one failed", []ghCheck{{Status: "COMPLETED", Conclusion: "FAILURE"}}, true, ChecksPassingFalse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := deriveChecksPassing(tc.checks, tc.requested)
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseGraphitePRInfo(t *testing.T) {
	data := []byte(`{"prInfos":[{"headRefName":"b2","url":"https://example.com/34","prNumber":34,"state":"OPEN","isDraft":true}]}`)
	prs, err := ParseGraphitePRInfo(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pr, ok := prs["b2"]
	if !ok {
		t.Fatal("expected a PR for branch b2")
	}
	if pr.Number != 34 || !pr.IsDraft || pr.Checks != ChecksAbsent {
		t.Errorf("pr = %+v", pr)
	}
}

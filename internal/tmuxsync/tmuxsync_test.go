package tmuxsync

import (
	"context"
	"os"
	"testing"

	"github.com/workstack-dev/workstack/internal/proc"
)

func TestReal_SyncWindowName_NoOpOutsideTmux(t *testing.T) {
	t.Setenv("TMUX", "")
	os.Unsetenv("TMUX")
	r := NewReal(proc.NewFake())
	r.SyncWindowName(context.Background(), "feature-x") // must not panic or block
}

func TestFake_RecordsCall(t *testing.T) {
	f := NewFake()
	f.SyncWindowName(context.Background(), "feature-x")
	if f.Calls != 1 || f.LastName != "feature-x" {
		t.Errorf("expected recorded sync call, got %+v", f)
	}
}

// Package tmuxsync implements the supplemented TMux window-sync feature:
// when switch/create --script runs inside a tmux session, best-effort
// rename the current window to the worktree name. Every failure is
// swallowed here — this is cosmetic, never load-bearing (spec section 7's
// best-effort-cleanup category).
package tmuxsync

import (
	"context"
	"os"
	"strings"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/workstack-dev/workstack/internal/proc"
)

// Syncer renames the current tmux window, if any, to name.
type Syncer interface {
	SyncWindowName(ctx context.Context, name string)
}

// Real shells out to tmux (via a proc.Invoker) to identify the current
// session, then uses gotmux to rename its window.
type Real struct {
	invoker proc.Invoker
}

// NewReal returns a Real syncer backed by invoker.
func NewReal(invoker proc.Invoker) *Real {
	return &Real{invoker: invoker}
}

// SyncWindowName is a no-op outside tmux ($TMUX unset). Inside tmux, it
// renames the current session's window only when that session has
// exactly one window — gotmux has no confirmed "active window" lookup,
// and the teacher's own adapter only ever creates sessions, never
// inspects an existing one, so ambiguous cases are skipped rather than
// guessed at. Every error is swallowed.
func (r *Real) SyncWindowName(ctx context.Context, name string) {
	if os.Getenv("TMUX") == "" {
		return
	}

	res, err := r.invoker.Run(ctx, []string{"tmux", "display-message", "-p", "#S"}, "", proc.Options{Capture: true})
	if err != nil || res.ExitCode != 0 {
		return
	}
	sessionName := strings.TrimSpace(res.Stdout)
	if sessionName == "" {
		return
	}

	client, err := gotmux.DefaultTmux()
	if err != nil {
		return
	}
	sessions, err := client.ListSessions()
	if err != nil {
		return
	}
	for _, s := range sessions {
		if s.Name != sessionName {
			continue
		}
		windows, err := s.ListWindows()
		if err != nil || len(windows) != 1 {
			return
		}
		_ = windows[0].Rename(name)
		return
	}
}

var _ Syncer = (*Real)(nil)

// Fake records the last sync request, for tests that want to assert a
// sync was attempted without a real tmux session.
type Fake struct {
	LastName string
	Calls    int
}

// NewFake returns a Fake syncer.
func NewFake() *Fake { return &Fake{} }

// SyncWindowName records the call.
func (f *Fake) SyncWindowName(ctx context.Context, name string) {
	f.LastName = name
	f.Calls++
}

var _ Syncer = (*Fake)(nil)

package historydb

import (
	"testing"
	"time"
)

func TestStore_RecordAndRecent(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	entries := []Entry{
		{Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Command: "create", Args: "feature-x", ExitCode: 0},
		{Timestamp: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Command: "remove", Args: "feature-x --force", ExitCode: 0},
	}
	for _, e := range entries {
		if err := store.Record(e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Command != "remove" {
		t.Errorf("expected most recent first (remove), got %s", got[0].Command)
	}
}

func TestStore_RecentRespectsLimit(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	for i := 0; i < 5; i++ {
		if err := store.Record(Entry{Timestamp: time.Now(), Command: "move", Args: "x", ExitCode: 0}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	got, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected limit respected, got %d entries", len(got))
	}
}

package activation

import (
	"os"
	"strings"
	"testing"
)

func TestBuildScript_ContainsExpectedLines(t *testing.T) {
	script := BuildScript("/tmp/ws/repo/feature-x")
	want := []string{
		"cd '/tmp/ws/repo/feature-x'",
		"unset VIRTUAL_ENV",
		"if [ ! -d '/tmp/ws/repo/feature-x/.venv' ]; then uv sync; fi",
		"if [ -f '/tmp/ws/repo/feature-x/.venv/bin/activate' ]; then . '/tmp/ws/repo/feature-x/.venv/bin/activate'; fi",
		"set -a",
		"if [ -f ./.env ]; then . ./.env; fi",
		"set +a",
		`echo "Activated worktree: $(pwd)"`,
	}
	for _, line := range want {
		if !strings.Contains(script, line) {
			t.Errorf("expected script to contain %q, got:\n%s", line, script)
		}
	}
}

func TestBuildScript_EscapesSingleQuotes(t *testing.T) {
	script := BuildScript("/tmp/it's-a-path")
	if !strings.Contains(script, `/tmp/it'\''s-a-path`) {
		t.Errorf("expected escaped single quote, got:\n%s", script)
	}
}

func TestWrite_CreatesReadableExecutableFile(t *testing.T) {
	path, err := Write("switch", "/tmp/ws/repo/feature-x")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	defer os.Remove(path)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat written script: %v", err)
	}
	if info.Mode()&0o100 == 0 {
		t.Error("expected script to be executable")
	}
	if !strings.Contains(path, "workstack-switch-") {
		t.Errorf("expected name to embed command, got %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written script: %v", err)
	}
	if !strings.Contains(string(data), "cd '/tmp/ws/repo/feature-x'") {
		t.Errorf("expected written content to match BuildScript, got:\n%s", data)
	}
}

func TestWrite_UniqueNamesAcrossCalls(t *testing.T) {
	p1, err := Write("switch", "/a")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(p1)
	p2, err := Write("switch", "/a")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(p2)
	if p1 == p2 {
		t.Error("expected distinct temp file names across calls")
	}
}

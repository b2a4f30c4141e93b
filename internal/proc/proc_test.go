package proc

import (
	"context"
	"strings"
	"testing"
)

func TestReal_RunCapturesOutput(t *testing.T) {
	r := NewReal()
	res, err := r.Run(context.Background(), []string{"echo", "hello"}, ".", Options{Capture: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "hello" {
		t.Errorf("stdout = %q, want %q", res.Stdout, "hello")
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
}

func TestReal_CheckZeroReturnsError(t *testing.T) {
	r := NewReal()
	_, err := r.Run(context.Background(), []string{"false"}, ".", Options{Capture: true, CheckZero: true})
	if err == nil {
		t.Fatal("expected error for nonzero exit with CheckZero")
	}
}

func TestDryRun_SkipsDestructive(t *testing.T) {
	d := NewDryRun(NewReal())
	res, err := d.Run(context.Background(), []string{"rm", "-rf", "/tmp/whatever"}, ".", Options{Destructive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", res.ExitCode)
	}
}

func TestDryRun_RunsNonDestructive(t *testing.T) {
	d := NewDryRun(NewReal())
	res, err := d.Run(context.Background(), []string{"echo", "read"}, ".", Options{Capture: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "read" {
		t.Errorf("stdout = %q, want %q", res.Stdout, "read")
	}
}

func TestFake_ReturnsRegisteredResponse(t *testing.T) {
	f := NewFake()
	f.Responses["git status --porcelain"] = Result{Stdout: "M foo.go\n"}

	res, err := f.Run(context.Background(), []string{"git", "status", "--porcelain"}, ".", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "M foo.go\n" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if len(f.Calls) != 1 {
		t.Fatalf("expected 1 recorded call, got %d", len(f.Calls))
	}
}

func TestFake_UnregisteredCallErrors(t *testing.T) {
	f := NewFake()
	_, err := f.Run(context.Background(), []string{"git", "status"}, ".", Options{})
	if err == nil {
		t.Fatal("expected error for unregistered call")
	}
}

// Package activation implements the activation-script emitter (spec
// section 4.10): since a child process cannot change the parent shell's
// cwd or environment, the tool writes a small shell script to a tmp path
// and prints only that path; a shell wrapper installed out-of-band sources
// it.
package activation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PassthroughSentinel is printed by the hidden __switch-eval entry point
// instead of a script path when the wrapper should re-invoke the regular
// command directly (no switch target given, or any error while resolving
// the target or writing the script).
const PassthroughSentinel = "__WORKSTACK_PASSTHROUGH__"

// BuildScript renders the activation script for worktreePath, matching
// spec section 4.10's template exactly.
func BuildScript(worktreePath string) string {
	path := quoteSingle(worktreePath)
	venvDir := quoteSingle(worktreePath + "/.venv")
	venvActivate := quoteSingle(worktreePath + "/.venv/bin/activate")

	var b strings.Builder
	b.WriteString("# workstack activation script\n")
	fmt.Fprintf(&b, "cd %s\n", path)
	b.WriteString("unset VIRTUAL_ENV\n")
	fmt.Fprintf(&b, "if [ ! -d %s ]; then uv sync; fi\n", venvDir)
	fmt.Fprintf(&b, "if [ -f %s ]; then . %s; fi\n", venvActivate, venvActivate)
	b.WriteString("set -a\n")
	b.WriteString("if [ -f ./.env ]; then . ./.env; fi\n")
	b.WriteString("set +a\n")
	b.WriteString(`echo "Activated worktree: $(pwd)"` + "\n")
	return b.String()
}

// quoteSingle single-quotes s for shell embedding, rewriting any internal
// `'` as `'\''` per spec section 4.10.
func quoteSingle(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Write renders the activation script for worktreePath and writes it to a
// fresh temp file named workstack-<cmd>-<random>.sh, returning its path.
func Write(cmd, worktreePath string) (string, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return "", fmt.Errorf("activation: generate random suffix: %w", err)
	}
	name := fmt.Sprintf("workstack-%s-%s.sh", cmd, suffix)
	path := filepath.Join(os.TempDir(), name)

	if err := os.WriteFile(path, []byte(BuildScript(worktreePath)), 0o755); err != nil {
		return "", fmt.Errorf("activation: write script: %w", err)
	}
	return path, nil
}

func randomSuffix() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

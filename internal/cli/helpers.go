package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/workstack-dev/workstack/internal/historydb"
	"github.com/workstack-dev/workstack/internal/repocontext"
	"github.com/workstack-dev/workstack/internal/wire"
	"github.com/workstack-dev/workstack/internal/wsconfig"
)

var container *wire.Container

// CloseContainer releases the container's resources. Safe to call even
// when RootCmd's PersistentPreRunE never ran (e.g. --help, bad args).
func CloseContainer() {
	if container != nil {
		_ = container.Close()
	}
}

// resolveRepoContext resolves the repository the current command is
// running against and the global config it needs, failing with an
// actionable message when workstacks_root isn't configured (spec section
// 7's "missing required global config" category, never swallowed).
func resolveRepoContext(cmd *cobra.Command) (repocontext.Context, wsconfig.GlobalConfig, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return repocontext.Context{}, wsconfig.GlobalConfig{}, fmt.Errorf("get working directory: %w", err)
	}
	global, err := container.Config.LoadGlobal()
	if err != nil {
		return repocontext.Context{}, wsconfig.GlobalConfig{}, err
	}
	if global.WorkstacksRoot == "" {
		return repocontext.Context{}, wsconfig.GlobalConfig{},
			fmt.Errorf("workstacks_root is not configured; run `workstack config set workstacks_root <path>`")
	}
	repo, err := repocontext.Resolve(cmd.Context(), container.Git, cwd, expandHome(global.WorkstacksRoot))
	if err != nil {
		return repocontext.Context{}, wsconfig.GlobalConfig{}, err
	}
	return repo, global, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// recordHistory appends one command-history entry, best-effort: a
// history-write failure must never fail the command it's recording
// (spec section 7's best-effort-cleanup category).
func recordHistory(command string, args []string, runErr error) {
	if container == nil || container.History == nil {
		return
	}
	exitCode := 0
	if runErr != nil {
		exitCode = 1
	}
	_ = container.History.Record(historydb.Entry{
		Timestamp: time.Now(),
		Command:   command,
		Args:      strings.Join(args, " "),
		ExitCode:  exitCode,
	})
}

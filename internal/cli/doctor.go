package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/workstack-dev/workstack/internal/version"
)

// CheckResult is the outcome of a single doctor check.
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string
}

// DoctorCmd validates the environment workstack needs: a parseable
// global config, a workstacks_root that exists and is a directory (its
// writability is not checked), and the external tools it shells out to.
func DoctorCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the workstack environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{
				checkGlobalConfig(),
				checkWorkstacksRoot(),
				checkTool("git"),
				checkTool("gt"),
				checkTool("gh"),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check                   Status")
				fmt.Println("────────────────────────────────")
				for _, r := range results {
					fmt.Printf("%-24s%s\n", r.Name, r.Status)
				}
				fmt.Println()
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						fmt.Printf("%s: %s\n", r.Name, r.Details)
					}
				}
				if hasErrors {
					fmt.Println("⚠ Issues found.")
				} else {
					fmt.Println("All checks passed. " + version.String())
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "exit code only, no output")
	return cmd
}

func checkGlobalConfig() CheckResult {
	if _, err := container.Config.LoadGlobal(); err != nil {
		return CheckResult{Name: "Global config", Status: "✗", Details: err.Error()}
	}
	return CheckResult{Name: "Global config", Status: "✓"}
}

func checkWorkstacksRoot() CheckResult {
	cfg, err := container.Config.LoadGlobal()
	if err != nil {
		return CheckResult{Name: "workstacks_root", Status: "✗", Details: err.Error()}
	}
	if cfg.WorkstacksRoot == "" {
		return CheckResult{Name: "workstacks_root", Status: "✗",
			Details: "not configured; run `workstack config set workstacks_root <path>`"}
	}
	root := expandHome(cfg.WorkstacksRoot)
	info, err := os.Stat(root)
	if err != nil {
		return CheckResult{Name: "workstacks_root", Status: "⚠", Details: fmt.Sprintf("%s does not exist yet", root)}
	}
	if !info.IsDir() {
		return CheckResult{Name: "workstacks_root", Status: "✗", Details: fmt.Sprintf("%s is not a directory", root)}
	}
	return CheckResult{Name: "workstacks_root", Status: "✓"}
}

func checkTool(name string) CheckResult {
	path, err := exec.LookPath(name)
	if err != nil {
		return CheckResult{Name: name, Status: "⚠", Details: fmt.Sprintf("%q not found in PATH", name)}
	}
	return CheckResult{Name: name, Status: "✓", Details: path}
}

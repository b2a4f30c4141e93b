package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workstack-dev/workstack/internal/activation"
	"github.com/workstack-dev/workstack/internal/app"
)

func switchNameAndRoot(args []string) (name string, root bool) {
	if len(args) == 0 {
		return "", false
	}
	if strings.EqualFold(args[0], "root") {
		return "", true
	}
	return args[0], false
}

func switchCmd() *cobra.Command {
	var up, down, script bool
	cmd := &cobra.Command{
		Use:   "switch [NAME]",
		Short: "Switch the active worktree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, root := switchNameAndRoot(args)
			repo, _, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}

			target, err := container.Activation.ResolveTarget(cmd.Context(), repo, cwd, name, up, down, root)
			if err != nil {
				return err
			}

			scriptPath, err := container.Activation.EmitScript(cmd.Context(), "switch", target)
			if err != nil {
				return err
			}

			if script {
				fmt.Println(scriptPath)
				return nil
			}
			fmt.Printf("✓ Switched to %s\n", target.Path)
			fmt.Printf("run: eval \"$(cat %s)\"\n", scriptPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&up, "up", false, "move one level up the stack")
	cmd.Flags().BoolVar(&down, "down", false, "move one level down the stack")
	cmd.Flags().BoolVar(&script, "script", false, "print only the activation script path")
	return cmd
}

// switchEvalCmd is the hidden entry point the installed shell wrapper
// function calls: it always emits either a script path to source, or the
// passthrough sentinel telling the wrapper to fall back to a plain
// `workstack switch` invocation (e.g. on error, so the real message
// reaches the user's terminal instead of being swallowed by `eval`).
func switchEvalCmd() *cobra.Command {
	var up, down bool
	cmd := &cobra.Command{
		Use:    "__switch-eval [NAME]",
		Hidden: true,
		Args:   cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, root := switchNameAndRoot(args)
			if name == "" && !root && !up && !down {
				fmt.Println(activation.PassthroughSentinel)
				return nil
			}

			repo, _, err := resolveRepoContext(cmd)
			if err != nil {
				fmt.Println(activation.PassthroughSentinel)
				return nil
			}
			cwd, err := os.Getwd()
			if err != nil {
				fmt.Println(activation.PassthroughSentinel)
				return nil
			}

			target, err := container.Activation.ResolveTarget(cmd.Context(), repo, cwd, name, up, down, root)
			if err != nil {
				if _, ok := err.(app.RedirectToRootError); ok {
					fmt.Println(activation.PassthroughSentinel)
					return nil
				}
				fmt.Println(activation.PassthroughSentinel)
				return nil
			}

			scriptPath, err := container.Activation.EmitScript(cmd.Context(), "switch", target)
			if err != nil {
				fmt.Println(activation.PassthroughSentinel)
				return nil
			}
			fmt.Println(scriptPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&up, "up", false, "move one level up the stack")
	cmd.Flags().BoolVar(&down, "down", false, "move one level down the stack")
	return cmd
}

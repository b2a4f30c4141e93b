package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/workstack-dev/workstack/internal/wsconfig"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Manage workstack's global configuration"}
	cmd.AddCommand(configListCmd())
	cmd.AddCommand(configGetCmd())
	cmd.AddCommand(configSetCmd())
	return cmd
}

func configListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every global configuration key and value",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.Config.LoadGlobal()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintf(w, "workstacks_root\t%s\n", cfg.WorkstacksRoot)
			fmt.Fprintf(w, "use_graphite\t%v\n", cfg.UseStackTool)
			fmt.Fprintf(w, "shell_setup_complete\t%v\n", cfg.ShellSetupComplete)
			fmt.Fprintf(w, "show_pr_info\t%v\n", cfg.ShowPRInfo)
			fmt.Fprintf(w, "show_pr_checks\t%v\n", cfg.ShowPRChecks)
			fmt.Fprintf(w, "rebase_stack_location\t%s\n", cfg.RebaseStackLocation)
			return w.Flush()
		},
	}
}

func configGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := container.Config.LoadGlobal()
			if err != nil {
				return err
			}
			value, err := configKeyValue(cfg, args[0])
			if err != nil {
				return err
			}
			fmt.Println(value)
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set one configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := container.Config.SetGlobal(map[string]string{args[0]: args[1]}); err != nil {
				return err
			}
			fmt.Printf("✓ Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func configKeyValue(cfg wsconfig.GlobalConfig, key string) (string, error) {
	switch key {
	case "workstacks_root":
		return cfg.WorkstacksRoot, nil
	case "use_graphite":
		return fmt.Sprintf("%v", cfg.UseStackTool), nil
	case "shell_setup_complete":
		return fmt.Sprintf("%v", cfg.ShellSetupComplete), nil
	case "show_pr_info":
		return fmt.Sprintf("%v", cfg.ShowPRInfo), nil
	case "show_pr_checks":
		return fmt.Sprintf("%v", cfg.ShowPRChecks), nil
	case "rebase_stack_location":
		return cfg.RebaseStackLocation, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

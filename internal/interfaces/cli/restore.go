package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RestoreFlags holds command-line flags for the restore command
type RestoreFlags struct {
	File     string
	Revision string
	Output   string
}

// NewRestoreCommand creates the restore command
func NewRestoreCommand(container *CLIContainer) *cobra.Command {
	flags := &RestoreFlags{}

	cmd := &cobra.Command{
		Use:   "restore <model-id|path>",
		Short: "Restore a config file from its backup",
		Long: `Copy the backup taken by the first patch back over the target, undoing
every change since. The backup itself is kept, so restore can be repeated.

Examples:
  hubfix restore Qwen/Qwen2.5-1.5B-Instruct
  hubfix restore ./tokenizer_config.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveTarget(container, args[0], flags.Revision, flags.File)
			if err != nil {
				return err
			}

			result, err := container.Patcher.Restore(path)
			if err != nil {
				return err
			}

			container.Logger.Infow("restored config",
				"target", result.Target,
				"backup", result.BackupPath,
			)

			if handled, err := writeStructured(cmd, flags.Output, result); handled {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n  from: %s\n", result.Target, result.BackupPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.File, "file", "", "Config file name inside the model snapshot (defaults to patch.file)")
	cmd.Flags().StringVar(&flags.Revision, "revision", "", "Model revision to resolve (defaults to main)")
	addOutputFlag(cmd, &flags.Output)

	return cmd
}

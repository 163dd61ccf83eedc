package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// InspectFlags holds command-line flags for the inspect command
type InspectFlags struct {
	Field    string
	File     string
	Revision string
	Output   string
}

// NewInspectCommand creates the inspect command
func NewInspectCommand(container *CLIContainer) *cobra.Command {
	flags := &InspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect <model-id|path>",
		Short: "Show a config file's resolved location, keys, and backup state",
		Long: `Inspect a config file without touching it: where its bytes actually live
after following symlinks, which top-level keys it carries, whether the watched
field is set, and whether a pristine backup exists.

Examples:
  hubfix inspect Qwen/Qwen2.5-1.5B-Instruct
  hubfix inspect ./tokenizer_config.json --field legacy -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := flags.Field
			if field == "" {
				field = container.Config.Patch.Field
			}

			path, err := resolveTarget(container, args[0], flags.Revision, flags.File)
			if err != nil {
				return err
			}

			report, err := container.Patcher.Inspect(path, field)
			if err != nil {
				return err
			}

			if handled, err := writeStructured(cmd, flags.Output, report); handled {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Target:  %s\n", report.Target)
			if report.Source != report.Target {
				fmt.Fprintf(out, "Source:  %s\n", report.Source)
			}
			if report.HasBackup {
				fmt.Fprintf(out, "Backup:  %s\n", report.BackupPath)
			} else {
				fmt.Fprintf(out, "Backup:  none\n")
			}
			if report.HasField {
				fmt.Fprintf(out, "Field:   %s = %s\n", report.Field, report.FieldValue)
			} else {
				fmt.Fprintf(out, "Field:   %s (absent)\n", report.Field)
			}
			fmt.Fprintf(out, "Keys:    %s\n", strings.Join(report.Keys, ", "))
			fmt.Fprintf(out, "Lines:   %d\n", report.LineCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Field, "field", "", "Field to report on (defaults to patch.field)")
	cmd.Flags().StringVar(&flags.File, "file", "", "Config file name inside the model snapshot (defaults to patch.file)")
	cmd.Flags().StringVar(&flags.Revision, "revision", "", "Model revision to resolve (defaults to main)")
	addOutputFlag(cmd, &flags.Output)

	return cmd
}

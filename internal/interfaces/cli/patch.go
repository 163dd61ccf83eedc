package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// PatchFlags holds command-line flags for the patch command
type PatchFlags struct {
	Field    string
	Value    string
	File     string
	Revision string
	DryRun   bool
	Output   string
}

// NewPatchCommand creates the patch command
func NewPatchCommand(container *CLIContainer) *cobra.Command {
	flags := &PatchFlags{}

	cmd := &cobra.Command{
		Use:   "patch <model-id|path>",
		Short: "Ensure a config field is present, backing up the original first",
		Long: `Ensure a JSON config file carries a field, inserting the configured
default only when the field is absent. Values already present are never
overwritten. Before the first write a byte-for-byte backup is stored next to
the resolved file; later runs leave the backup alone.

The target is either a model ID, whose config file is found in the local hub
cache, or a direct file path. Symlinks are followed, so patching a snapshot
entry rewrites the underlying blob.

Examples:
  hubfix patch Qwen/Qwen2.5-1.5B-Instruct
  hubfix patch Qwen/Qwen2.5-1.5B-Instruct --field legacy --value true
  hubfix patch ./tokenizer_config.json --field think --value false
  hubfix patch openai/whisper-large-v3 --file config.json --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd, container, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.Field, "field", "", "Field to ensure (defaults to the configured patch.field)")
	cmd.Flags().StringVar(&flags.Value, "value", "", "JSON default inserted when the field is absent (defaults to patch.value)")
	cmd.Flags().StringVar(&flags.File, "file", "", "Config file name inside the model snapshot (defaults to patch.file)")
	cmd.Flags().StringVar(&flags.Revision, "revision", "", "Model revision to resolve (defaults to main)")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Report what would change without writing")
	addOutputFlag(cmd, &flags.Output)

	return cmd
}

func runPatch(cmd *cobra.Command, container *CLIContainer, target string, flags *PatchFlags) error {
	field := flags.Field
	if field == "" {
		field = container.Config.Patch.Field
	}
	value := flags.Value
	if value == "" {
		value = container.Config.Patch.Value
	}
	if !json.Valid([]byte(value)) {
		return fmt.Errorf("value %q is not a JSON literal (strings need quotes, e.g. --value '\"fast\"')", value)
	}

	path, err := resolveTarget(container, target, flags.Revision, flags.File)
	if err != nil {
		return err
	}

	if flags.DryRun {
		return runPatchDryRun(cmd, container, path, field, flags.Output)
	}

	result, err := container.Patcher.EnsureField(path, field, json.RawMessage(value))
	if err != nil {
		return err
	}

	container.Logger.Infow("patched config",
		"target", result.Target,
		"field", field,
		"field_added", result.FieldAdded,
		"backup_created", result.BackupCreated,
	)

	if handled, err := writeStructured(cmd, flags.Output, result); handled {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Patched %s\n", result.Target)
	if result.BackupCreated {
		fmt.Fprintf(out, "  backup: %s (created)\n", result.BackupPath)
	} else {
		fmt.Fprintf(out, "  backup: %s (kept)\n", result.BackupPath)
	}
	if result.FieldAdded {
		fmt.Fprintf(out, "  %s: added with default %s\n", field, value)
	} else {
		fmt.Fprintf(out, "  %s: already present, existing value kept\n", field)
	}
	fmt.Fprintf(out, "  keys: %s\n", strings.Join(result.Keys, ", "))
	return nil
}

// runPatchDryRun reports what a patch would do using the non-mutating
// inspection path.
func runPatchDryRun(cmd *cobra.Command, container *CLIContainer, path, field, output string) error {
	report, err := container.Patcher.Inspect(path, field)
	if err != nil {
		return err
	}

	if handled, err := writeStructured(cmd, output, report); handled {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Would patch %s\n", report.Target)
	if report.HasField {
		fmt.Fprintf(out, "  %s: present (%s), nothing to do\n", field, report.FieldValue)
	} else {
		fmt.Fprintf(out, "  %s: absent, would be added\n", field)
	}
	if report.HasBackup {
		fmt.Fprintf(out, "  backup: %s (exists)\n", report.BackupPath)
	} else {
		fmt.Fprintf(out, "  backup: %s (would be created)\n", report.BackupPath)
	}
	return nil
}

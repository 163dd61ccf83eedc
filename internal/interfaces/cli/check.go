package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hubfix-ai/hubfix-cli/internal/core/model"
	"github.com/hubfix-ai/hubfix-cli/internal/infrastructure/hubapi"
)

// CheckFlags holds command-line flags for the check command
type CheckFlags struct {
	Offline  bool
	File     string
	Field    string
	Revision string
	Output   string
}

// CheckReport summarizes a model's readiness for serving. Pointer booleans
// are nil when the underlying question was not asked (offline mode) or could
// not be answered (missing file).
type CheckReport struct {
	Model          string     `json:"model" yaml:"model"`
	Type           model.Type `json:"type" yaml:"type"`
	Cached         bool       `json:"cached" yaml:"cached"`
	Commit         string     `json:"commit,omitempty" yaml:"commit,omitempty"`
	File           string     `json:"file" yaml:"file"`
	FilePath       string     `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	FieldSet       *bool      `json:"field_set,omitempty" yaml:"field_set,omitempty"`
	HasBackup      *bool      `json:"has_backup,omitempty" yaml:"has_backup,omitempty"`
	OnHub          *bool      `json:"on_hub,omitempty" yaml:"on_hub,omitempty"`
	PipelineTag    string     `json:"pipeline_tag,omitempty" yaml:"pipeline_tag,omitempty"`
	ScaffoldPath   string     `json:"scaffold_path" yaml:"scaffold_path"`
	ScaffoldExists bool       `json:"scaffold_exists" yaml:"scaffold_exists"`
}

// NewCheckCommand creates the check command
func NewCheckCommand(container *CLIContainer) *cobra.Command {
	flags := &CheckFlags{}

	cmd := &cobra.Command{
		Use:   "check <model-id>",
		Short: "Check a model's cache, config, hub, and scaffold state",
		Long: `Run every readiness check for a model in one pass: is it cached, does its
config file carry the watched field, is there a pristine backup, does the hub
know the model, and does a server bootstrap config exist.

Examples:
  hubfix check Qwen/Qwen2.5-1.5B-Instruct
  hubfix check Qwen/Qwen2.5-1.5B-Instruct --offline -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.NewID(args[0])
			if err != nil {
				return err
			}

			report := buildCheckReport(cmd, container, id, flags)

			if handled, err := writeStructured(cmd, flags.Output, report); handled {
				return err
			}

			printCheckReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.Offline, "offline", false, "Skip the hub API lookup")
	cmd.Flags().StringVar(&flags.File, "file", "", "Config file name to check (defaults to patch.file)")
	cmd.Flags().StringVar(&flags.Field, "field", "", "Field to check for (defaults to patch.field)")
	cmd.Flags().StringVar(&flags.Revision, "revision", "", "Model revision to check (defaults to main)")
	addOutputFlag(cmd, &flags.Output)

	return cmd
}

// buildCheckReport gathers every check best-effort; individual failures turn
// into absent fields rather than aborting the whole report.
func buildCheckReport(cmd *cobra.Command, container *CLIContainer, id model.ID, flags *CheckFlags) *CheckReport {
	file := flags.File
	if file == "" {
		file = container.Config.Patch.File
	}
	field := flags.Field
	if field == "" {
		field = container.Config.Patch.Field
	}

	report := &CheckReport{
		Model:        id.String(),
		Type:         model.DetectType(id),
		File:         file,
		ScaffoldPath: container.Scaffold.Path(id),
	}

	report.Cached = container.Locator.IsCached(id)
	if commit, err := container.Locator.CurrentCommit(id, flags.Revision); err == nil {
		report.Commit = commit
	}

	if path, err := container.Locator.ResolveFile(id, flags.Revision, file); err == nil {
		report.FilePath = path
		if inspection, err := container.Patcher.Inspect(path, field); err == nil {
			report.FieldSet = &inspection.HasField
			report.HasBackup = &inspection.HasBackup
		}
	}

	if !flags.Offline {
		info, err := container.Hub.ModelInfo(cmd.Context(), id)
		switch {
		case err == nil:
			onHub := true
			report.OnHub = &onHub
			report.PipelineTag = info.PipelineTag
			if t, ok := model.TypeFromPipelineTag(info.PipelineTag); ok {
				report.Type = t
			}
		case errors.Is(err, hubapi.ErrModelNotFound):
			onHub := false
			report.OnHub = &onHub
		default:
			container.Logger.Warnw("hub lookup failed", "model", id.String(), "error", err)
		}
	}

	report.ScaffoldExists = container.Scaffold.Exists(id)
	return report
}

var (
	checkOKStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46"))
	checkBadStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	checkSkipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func checkMark(ok bool) string {
	if ok {
		return checkOKStyle.Render("✓")
	}
	return checkBadStyle.Render("✗")
}

func printCheckReport(cmd *cobra.Command, report *CheckReport) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Model: %s (%s)\n", report.Model, report.Type)

	if report.Cached && report.Commit != "" {
		fmt.Fprintf(out, "  cache:    %s cached at %s\n", checkMark(true), truncateString(report.Commit, 12))
	} else if report.Cached {
		fmt.Fprintf(out, "  cache:    %s cached (no %s ref)\n", checkMark(true), "main")
	} else {
		fmt.Fprintf(out, "  cache:    %s not cached\n", checkMark(false))
	}

	switch {
	case report.FieldSet == nil:
		fmt.Fprintf(out, "  config:   %s %s not resolvable\n", checkMark(false), report.File)
	case *report.FieldSet:
		fmt.Fprintf(out, "  config:   %s %s (field set)\n", checkMark(true), report.File)
	default:
		fmt.Fprintf(out, "  config:   %s %s (field absent, run patch)\n", checkMark(false), report.File)
	}

	switch {
	case report.HasBackup == nil:
		fmt.Fprintf(out, "  backup:   %s\n", checkSkipStyle.Render("- unknown"))
	case *report.HasBackup:
		fmt.Fprintf(out, "  backup:   %s present\n", checkMark(true))
	default:
		fmt.Fprintf(out, "  backup:   %s none yet\n", checkSkipStyle.Render("-"))
	}

	switch {
	case report.OnHub == nil:
		fmt.Fprintf(out, "  hub:      %s\n", checkSkipStyle.Render("- skipped"))
	case *report.OnHub && report.PipelineTag != "":
		fmt.Fprintf(out, "  hub:      %s reachable (%s)\n", checkMark(true), report.PipelineTag)
	case *report.OnHub:
		fmt.Fprintf(out, "  hub:      %s reachable\n", checkMark(true))
	default:
		fmt.Fprintf(out, "  hub:      %s not found or not accessible\n", checkMark(false))
	}

	if report.ScaffoldExists {
		fmt.Fprintf(out, "  scaffold: %s %s\n", checkMark(true), report.ScaffoldPath)
	} else {
		fmt.Fprintf(out, "  scaffold: %s %s missing (run scaffold)\n", checkMark(false), report.ScaffoldPath)
	}
}

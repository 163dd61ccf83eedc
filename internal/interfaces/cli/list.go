package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hubfix-ai/hubfix-cli/internal/infrastructure/hub"
)

// ListFlags holds command-line flags for the list command
type ListFlags struct {
	Output string
}

// NewListCommand creates the list command
func NewListCommand(container *CLIContainer) *cobra.Command {
	flags := &ListFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List models in the local hub cache",
		Long: `Scan the hub cache and list every model stored in it, with its detected
type, current commit, snapshot count, and blob size.

Examples:
  hubfix list
  hubfix list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inventory, err := container.Scanner.Models(cmd.Context())
			if err != nil {
				return err
			}

			if handled, err := writeStructured(cmd, flags.Output, inventory); handled {
				return err
			}

			printInventory(cmd, inventory)
			return nil
		},
	}

	addOutputFlag(cmd, &flags.Output)

	return cmd
}

func printInventory(cmd *cobra.Command, inventory *hub.Inventory) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Cache: %s\n", inventory.CacheDir)
	if len(inventory.Entries) == 0 {
		fmt.Fprintln(out, "No models cached.")
		return
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("86"))
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-40s │ %-4s │ %-12s │ %-9s │ %-7s │ %s",
		"MODEL", "TYPE", "COMMIT", "SNAPSHOTS", "PATCHED", "SIZE")))

	for _, entry := range inventory.Entries {
		commit := entry.Commit
		if commit == "" {
			commit = "-"
		}
		fmt.Fprintf(out, "%-40s │ %-4s │ %-12s │ %-9d │ %-7s │ %s\n",
			truncateString(entry.ID.String(), 40),
			entry.Type,
			truncateString(commit, 12),
			entry.Snapshots,
			patchStateLabel(entry),
			humanBytes(entry.SizeBytes),
		)
	}
	fmt.Fprintf(out, "%d model(s)\n", len(inventory.Entries))

	if len(inventory.Warnings) > 0 {
		warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
		for _, warning := range inventory.Warnings {
			fmt.Fprintln(out, warnStyle.Render("warning: "+warning))
		}
	}
}

// patchStateLabel summarises the watched-file state of a cache entry for
// table output.
func patchStateLabel(entry hub.Entry) string {
	switch {
	case !entry.HasConfig:
		return "-"
	case entry.FieldSet:
		return "yes"
	default:
		return "no"
	}
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// addOutputFlag registers the shared --output flag on cmd.
func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", "text", "Output format: text, json, or yaml")
}

// writeStructured renders v in the requested machine format to the command's
// stdout. It reports false for the text format, which every command renders
// itself.
func writeStructured(cmd *cobra.Command, format string, v interface{}) (bool, error) {
	switch format {
	case "text":
		return false, nil
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to encode output: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return true, nil
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("failed to encode output: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return true, nil
	default:
		return true, fmt.Errorf("unknown output format %q (want text, json, or yaml)", format)
	}
}

// humanBytes renders a byte count the way directory listings do.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// truncateString shortens s to max runes with an ellipsis.
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

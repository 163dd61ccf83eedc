package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hubfix-ai/hubfix-cli/internal/core/model"
	"github.com/hubfix-ai/hubfix-cli/internal/infrastructure/scaffold"
)

// ScaffoldFlags holds command-line flags for the scaffold command
type ScaffoldFlags struct {
	Type    string
	Dir     string
	Offline bool
	Force   bool
	Output  string
}

// ScaffoldResult describes the outcome of a scaffold run
type ScaffoldResult struct {
	Model   string     `json:"model" yaml:"model"`
	Type    model.Type `json:"type" yaml:"type"`
	Path    string     `json:"path" yaml:"path"`
	Created bool       `json:"created" yaml:"created"`
}

// NewScaffoldCommand creates the scaffold command
func NewScaffoldCommand(container *CLIContainer) *cobra.Command {
	flags := &ScaffoldFlags{}

	cmd := &cobra.Command{
		Use:   "scaffold <model-id>",
		Short: "Write a server bootstrap config for a model",
		Long: `Generate the JSON bootstrap file the inference server reads on startup.
The model type decides the shape: LLM configs carry a think flag, ASR configs
do not. The type comes from --type when given, otherwise from the hub's
pipeline tag, otherwise from name heuristics.

Existing files are kept unless --force is set.

Examples:
  hubfix scaffold Qwen/Qwen2.5-1.5B-Instruct
  hubfix scaffold openai/whisper-small --type asr --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.NewID(args[0])
			if err != nil {
				return err
			}

			modelType, err := resolveModelType(cmd, container, id, flags)
			if err != nil {
				return err
			}

			writer := container.Scaffold
			if flags.Dir != "" {
				writer = scaffold.NewWriter(flags.Dir)
			}

			path, created, err := writer.Create(id, modelType, flags.Force)
			if err != nil {
				return fmt.Errorf("scaffold %s: %w", id.String(), err)
			}

			result := &ScaffoldResult{
				Model:   id.String(),
				Type:    modelType,
				Path:    path,
				Created: created,
			}

			container.Logger.Infow("scaffold finished",
				"model", result.Model,
				"type", result.Type.String(),
				"path", result.Path,
				"created", result.Created,
			)

			if handled, err := writeStructured(cmd, flags.Output, result); handled {
				return err
			}

			if result.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s config %s\n", result.Type, result.Path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Config %s already exists (use --force to overwrite)\n", result.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Type, "type", "", "Model type: llm or asr (default: detect)")
	cmd.Flags().StringVar(&flags.Dir, "dir", "", "Directory to write into (defaults to server.config_dir)")
	cmd.Flags().BoolVar(&flags.Offline, "offline", false, "Skip the hub API lookup when detecting the type")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "Overwrite an existing config file")
	addOutputFlag(cmd, &flags.Output)

	return cmd
}

// resolveModelType picks the model type in priority order: explicit flag,
// hub pipeline tag, name heuristics. Hub failures fall through to the
// heuristics so scaffold keeps working without network access.
func resolveModelType(cmd *cobra.Command, container *CLIContainer, id model.ID, flags *ScaffoldFlags) (model.Type, error) {
	switch flags.Type {
	case "":
	case model.TypeLLM.String():
		return model.TypeLLM, nil
	case model.TypeASR.String():
		return model.TypeASR, nil
	default:
		return "", fmt.Errorf("unknown model type %q (expected llm or asr)", flags.Type)
	}

	if !flags.Offline {
		if t, err := container.Hub.ResolveType(cmd.Context(), id); err == nil {
			return t, nil
		} else {
			container.Logger.Debugw("type lookup failed, using name heuristics", "model", id.String(), "error", err)
		}
	}

	return model.DetectType(id), nil
}

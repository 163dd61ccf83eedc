package scaffold

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hubfix-ai/hubfix-cli/internal/core/model"
)

// DefaultConfigDir is where the model server looks for bootstrap configs.
const DefaultConfigDir = "assets/config"

// ServerConfig is the bootstrap file the model server reads on startup.
// The "modle" spelling is the server's deserializer contract; do not fix it.
type ServerConfig struct {
	ModelPath string `json:"modle_path"`
	ModelName string `json:"modle_name"`
	Think     *bool  `json:"think,omitempty"`
}

// Writer creates server bootstrap configs under a config directory.
type Writer struct {
	configDir string
}

// NewWriter creates a writer rooted at configDir, falling back to
// DefaultConfigDir when empty.
func NewWriter(configDir string) *Writer {
	if configDir == "" {
		configDir = DefaultConfigDir
	}
	return &Writer{configDir: configDir}
}

// ConfigDir returns the directory this writer creates files in.
func (w *Writer) ConfigDir() string {
	return w.configDir
}

// Path returns where the bootstrap config for id lives.
func (w *Writer) Path(id model.ID) string {
	return filepath.Join(w.configDir, id.ConfigFileName())
}

// Exists reports whether a bootstrap config for id is already on disk.
func (w *Writer) Exists(id model.ID) bool {
	info, err := os.Stat(w.Path(id))
	return err == nil && info.Mode().IsRegular()
}

// Create writes the bootstrap config for id. An existing file is left alone
// unless force is set. LLM models start with thinking disabled; ASR models
// carry no think flag at all. It returns the config path and whether a file
// was written.
func (w *Writer) Create(id model.ID, modelType model.Type, force bool) (string, bool, error) {
	path := w.Path(id)
	if !force && w.Exists(id) {
		return path, false, nil
	}

	config := ServerConfig{
		ModelPath: id.String(),
		ModelName: id.Name(),
	}
	if modelType.IsLLM() {
		think := false
		config.Think = &think
	}

	if err := os.MkdirAll(w.configDir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config: %w", err)
	}

	return path, true, nil
}

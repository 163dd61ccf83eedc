package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hubfix-ai/hubfix-cli/internal/core/model"
)

// resolveTarget turns a command argument into a patchable file path. An
// argument that looks like a path is used as-is; anything else is treated as
// a model ID whose file is looked up in the hub cache. The file name falls
// back to the configured default when empty.
func resolveTarget(container *CLIContainer, arg, revision, file string) (string, error) {
	if looksLikePath(arg) {
		return arg, nil
	}

	id, err := model.NewID(arg)
	if err != nil {
		return "", fmt.Errorf("%q is neither an existing file nor a model ID: %w", arg, err)
	}

	if file == "" {
		file = container.Config.Patch.File
	}
	path, err := container.Locator.ResolveFile(id, revision, file)
	if err != nil {
		return "", err
	}

	container.Logger.Debugw("resolved model file",
		"model", id.String(),
		"file", file,
		"path", path,
	)
	return path, nil
}

// looksLikePath decides whether arg names a file rather than a model.
// Model IDs are exactly "owner/name" with no extension, so a .json suffix,
// an absolute or dot-relative prefix, or an existing file all mean "path".
func looksLikePath(arg string) bool {
	if strings.HasSuffix(arg, ".json") {
		return true
	}
	if filepath.IsAbs(arg) || strings.HasPrefix(arg, ".") || strings.HasPrefix(arg, "~") {
		return true
	}
	if strings.Count(arg, "/") != 1 {
		return true
	}
	if info, err := os.Stat(arg); err == nil && info.Mode().IsRegular() {
		return true
	}
	return false
}

package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubfix-ai/hubfix-cli/internal/core/patch"
)

// TestRestoreCommand_RevertsPatchedFile tests the patch then restore round
// trip over a cached model
func TestRestoreCommand_RevertsPatchedFile(t *testing.T) {
	container := newTestContainer(t)
	id := seedCachedModel(t, container.Config.Cache.Dir, "Qwen/Qwen2.5-1.5B-Instruct", "abc123def", map[string]string{
		"tokenizer_config.json": `{"a": 1}`,
	})

	_, err := runCLI(container, "patch", id.String())
	require.NoError(t, err)

	output, err := runCLI(container, "restore", id.String())
	require.NoError(t, err)
	assert.Contains(t, output, "Restored")

	snapshotPath := must(container.Locator.ResolveFile(id, "", "tokenizer_config.json"))
	assert.Equal(t, `{"a": 1}`, string(must(os.ReadFile(snapshotPath))), "Restore should bring back the original bytes")

	target := must(filepath.EvalSymlinks(snapshotPath))
	assert.FileExists(t, target+patch.BackupSuffix, "Restore keeps the backup for later runs")
}

// TestRestoreCommand_WithoutBackup tests restoring a file no patch has seen
func TestRestoreCommand_WithoutBackup(t *testing.T) {
	container := newTestContainer(t)
	path := filepath.Join(t.TempDir(), "tokenizer_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))

	_, err := runCLI(container, "restore", path)

	require.Error(t, err)
	assert.True(t, errors.Is(err, patch.ErrNoBackup), "Expected ErrNoBackup, got: %v", err)
}

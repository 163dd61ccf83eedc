package hub

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubfix-ai/hubfix-cli/internal/core/model"
)

// TestScanner_Models_InventoriesCache tests a full cache scan
func TestScanner_Models_InventoriesCache(t *testing.T) {
	cacheDir := t.TempDir()
	seedModel(t, cacheDir, "Qwen/Qwen2.5-1.5B-Instruct", "abc123", map[string]string{
		"config.json": `{"a": 1}`,
	})
	seedModel(t, cacheDir, "openai/whisper-large-v3", "def456", map[string]string{
		"config.json": `{"b": 2}`,
	})

	// Non-model entries are ignored; undecodable model dirs become warnings.
	require.NoError(t, os.MkdirAll(filepath.Join(cacheDir, "datasets--acme--corpus"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(cacheDir, "models--broken"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "version.txt"), []byte("1"), 0o644))

	inv, err := NewScanner(NewLocator(cacheDir), "config.json", "legacy").Models(context.Background())
	require.NoError(t, err)

	require.Len(t, inv.Entries, 2)
	assert.Equal(t, cacheDir, inv.CacheDir)
	assert.False(t, inv.ScannedAt.IsZero())

	first, second := inv.Entries[0], inv.Entries[1]
	assert.Equal(t, "Qwen/Qwen2.5-1.5B-Instruct", first.ID.String(), "Entries should be sorted by ID")
	assert.Equal(t, model.TypeLLM, first.Type)
	assert.Equal(t, "abc123", first.Commit)
	assert.Equal(t, 1, first.Snapshots)
	assert.Equal(t, int64(8), first.SizeBytes, "Size should sum the blob bytes")
	assert.True(t, first.HasConfig)
	assert.False(t, first.HasBackup)
	assert.False(t, first.FieldSet)

	assert.Equal(t, "openai/whisper-large-v3", second.ID.String())
	assert.Equal(t, model.TypeASR, second.Type)

	require.Len(t, inv.Warnings, 1)
	assert.Contains(t, inv.Warnings[0], "models--broken")
}

// TestScanner_Models_PatchState tests the watched-file columns: field
// present in the config, backup sitting beside the blob
func TestScanner_Models_PatchState(t *testing.T) {
	cacheDir := t.TempDir()
	id := seedModel(t, cacheDir, "Qwen/Qwen2.5-1.5B-Instruct", "abc123", map[string]string{
		"config.json": `{"legacy": true}`,
	})

	locator := NewLocator(cacheDir)
	snapshotPath := must(locator.ResolveFile(id, "", "config.json"))
	target := must(filepath.EvalSymlinks(snapshotPath))
	require.NoError(t, os.WriteFile(target+".backup", []byte(`{}`), 0o644))

	inv, err := NewScanner(locator, "config.json", "legacy").Models(context.Background())
	require.NoError(t, err)

	require.Len(t, inv.Entries, 1)
	entry := inv.Entries[0]
	assert.True(t, entry.HasConfig)
	assert.True(t, entry.HasBackup)
	assert.True(t, entry.FieldSet)
}

// TestScanner_Models_MissingWatchedFile tests a model whose snapshot lacks
// the watched config
func TestScanner_Models_MissingWatchedFile(t *testing.T) {
	cacheDir := t.TempDir()
	seedModel(t, cacheDir, "Qwen/Qwen2.5-1.5B-Instruct", "abc123", map[string]string{
		"model.safetensors": "weights",
	})

	inv, err := NewScanner(NewLocator(cacheDir), "config.json", "legacy").Models(context.Background())
	require.NoError(t, err)

	require.Len(t, inv.Entries, 1)
	assert.False(t, inv.Entries[0].HasConfig)
	assert.False(t, inv.Entries[0].FieldSet)
}

// TestScanner_Models_MissingCacheDir tests scanning a cache that was never
// created
func TestScanner_Models_MissingCacheDir(t *testing.T) {
	locator := NewLocator(filepath.Join(t.TempDir(), "never-created"))

	inv, err := NewScanner(locator, "config.json", "legacy").Models(context.Background())
	require.NoError(t, err)

	assert.Empty(t, inv.Entries, "Missing cache dir should scan as empty, not fail")
	assert.Empty(t, inv.Warnings)
}

// TestScanner_Models_PartialDownload tests a model without refs or snapshots
func TestScanner_Models_PartialDownload(t *testing.T) {
	cacheDir := t.TempDir()
	id := must(model.NewID("acme/half-fetched-llm"))
	require.NoError(t, os.MkdirAll(filepath.Join(cacheDir, id.DirName(), "blobs"), 0o755))

	inv, err := NewScanner(NewLocator(cacheDir), "config.json", "legacy").Models(context.Background())
	require.NoError(t, err)

	require.Len(t, inv.Entries, 1)
	entry := inv.Entries[0]
	assert.Equal(t, id, entry.ID)
	assert.Empty(t, entry.Commit, "Missing ref should leave the commit empty")
	assert.Zero(t, entry.Snapshots)
	assert.Zero(t, entry.SizeBytes)
}

// TestScanner_Models_ContextCancelled tests early exit on cancellation
func TestScanner_Models_ContextCancelled(t *testing.T) {
	cacheDir := t.TempDir()
	seedModel(t, cacheDir, "Qwen/Qwen2.5-1.5B-Instruct", "abc123", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(NewLocator(cacheDir), "config.json", "legacy").Models(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

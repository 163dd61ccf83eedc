package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLooksLikePath tests the path-versus-model-ID heuristics
func TestLooksLikePath(t *testing.T) {
	tests := []struct {
		name        string
		arg         string
		want        bool
		description string
	}{
		{
			name:        "JSONSuffix",
			arg:         "tokenizer_config.json",
			want:        true,
			description: "A .json name is always a file",
		},
		{
			name:        "RelativeDotPath",
			arg:         "./configs/tokenizer_config.json",
			want:        true,
			description: "Dot-relative paths are files",
		},
		{
			name:        "AbsolutePath",
			arg:         "/etc/hubfix/whatever",
			want:        true,
			description: "Absolute paths are files",
		},
		{
			name:        "HomePath",
			arg:         "~/models/config",
			want:        true,
			description: "Tilde paths are files",
		},
		{
			name:        "ModelID",
			arg:         "Qwen/Qwen2.5-1.5B-Instruct",
			want:        false,
			description: "owner/name with nothing else is a model ID",
		},
		{
			name:        "TooManySlashes",
			arg:         "a/b/c",
			want:        true,
			description: "More than one slash cannot be a model ID",
		},
		{
			name:        "NoSlash",
			arg:         "standalone",
			want:        true,
			description: "No slash cannot be a model ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikePath(tt.arg), tt.description)
		})
	}
}

// TestLooksLikePath_ExistingFileWins tests that a real file with a model-ID
// shape is still treated as a path
func TestLooksLikePath_ExistingFileWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "special"), []byte("x"), 0o644))
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })

	assert.True(t, looksLikePath("configs/special"), "An existing file beats the model-ID shape")
	assert.False(t, looksLikePath("configs/missing"), "A non-existent one-slash arg stays a model ID")
}

// TestResolveTarget_ModelID tests cache lookup with the configured default
// file name
func TestResolveTarget_ModelID(t *testing.T) {
	container := newTestContainer(t)
	id := seedCachedModel(t, container.Config.Cache.Dir, "Qwen/Qwen2.5-1.5B-Instruct", "abc123def", map[string]string{
		"tokenizer_config.json": `{"a": 1}`,
	})

	path, err := resolveTarget(container, id.String(), "", "")

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, filepath.Join("snapshots", "abc123def", "tokenizer_config.json")),
		"Expected a snapshot path, got %s", path)
}

// TestResolveTarget_PathPassthrough tests that file paths skip the cache
func TestResolveTarget_PathPassthrough(t *testing.T) {
	container := newTestContainer(t)

	path, err := resolveTarget(container, "./tokenizer_config.json", "", "")

	require.NoError(t, err)
	assert.Equal(t, "./tokenizer_config.json", path)
}

// TestResolveTarget_BadArgument tests the error for something that is
// neither a file nor a model ID
func TestResolveTarget_BadArgument(t *testing.T) {
	container := newTestContainer(t)

	_, err := resolveTarget(container, "owner/Bad Name", "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither an existing file nor a model ID")
}

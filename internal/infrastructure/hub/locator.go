package hub

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hubfix-ai/hubfix-cli/internal/core/model"
)

// DefaultRevision is the ref models are served from unless told otherwise.
const DefaultRevision = "main"

// ErrNotCached marks a model, revision, or file that is absent from the
// local hub cache.
var ErrNotCached = errors.New("not present in hub cache")

// DefaultCacheDir returns the hub cache root, honoring the standard
// overrides: HF_HUB_CACHE wins, then HF_HOME/hub, then the user cache dir.
func DefaultCacheDir() string {
	if dir := os.Getenv("HF_HUB_CACHE"); dir != "" {
		return dir
	}
	if dir := os.Getenv("HF_HOME"); dir != "" {
		return filepath.Join(dir, "hub")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".cache", "huggingface", "hub")
}

// Locator resolves models and files inside a local hub cache. The cache
// stores each repo under "models--{owner}--{name}" with refs pointing at
// commit hashes and snapshot entries symlinked to content-addressed blobs.
type Locator struct {
	cacheDir string
}

// NewLocator creates a locator for cacheDir. An empty cacheDir falls back to
// DefaultCacheDir.
func NewLocator(cacheDir string) *Locator {
	if cacheDir == "" {
		cacheDir = DefaultCacheDir()
	}
	return &Locator{cacheDir: cacheDir}
}

// CacheDir returns the cache root this locator reads from.
func (l *Locator) CacheDir() string {
	return l.cacheDir
}

// ModelDir returns the directory the cache would store id under. It does not
// check that the model is actually cached.
func (l *Locator) ModelDir(id model.ID) string {
	return filepath.Join(l.cacheDir, id.DirName())
}

// IsCached reports whether id has a directory in the cache.
func (l *Locator) IsCached(id model.ID) bool {
	info, err := os.Stat(l.ModelDir(id))
	return err == nil && info.IsDir()
}

// CurrentCommit reads the commit hash the given revision ref points at.
func (l *Locator) CurrentCommit(id model.ID, revision string) (string, error) {
	if revision == "" {
		revision = DefaultRevision
	}

	refPath := filepath.Join(l.ModelDir(id), "refs", revision)
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s at revision %s", ErrNotCached, id, revision)
		}
		return "", fmt.Errorf("read ref %s: %w", refPath, err)
	}

	commit := strings.TrimSpace(string(data))
	if commit == "" {
		return "", fmt.Errorf("ref %s is empty", refPath)
	}
	return commit, nil
}

// SnapshotDir returns the snapshot directory for id at revision.
func (l *Locator) SnapshotDir(id model.ID, revision string) (string, error) {
	commit, err := l.CurrentCommit(id, revision)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(l.ModelDir(id), "snapshots", commit)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: snapshot %s of %s", ErrNotCached, commit, id)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("snapshot path %s is not a directory", dir)
	}
	return dir, nil
}

// ResolveFile returns the path of name inside the current snapshot of id.
// The returned path is usually a symlink into the blob store; callers that
// need the storage location resolve it themselves.
func (l *Locator) ResolveFile(id model.ID, revision, name string) (string, error) {
	dir, err := l.SnapshotDir(id, revision)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s has no %s at revision %s", ErrNotCached, id, name, revision)
		}
		return "", err
	}
	return path, nil
}

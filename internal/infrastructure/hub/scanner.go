package hub

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hubfix-ai/hubfix-cli/internal/core/model"
	"github.com/hubfix-ai/hubfix-cli/internal/core/patch"
)

const modelDirPrefix = "models--"

// Entry describes one cached model. HasConfig, HasBackup, and FieldSet
// describe the watched config file: present in the current snapshot, backed
// up beside its blob, and already carrying the watched field.
type Entry struct {
	ID        model.ID   `json:"id" yaml:"id"`
	Type      model.Type `json:"type" yaml:"type"`
	Commit    string     `json:"commit,omitempty" yaml:"commit,omitempty"`
	Snapshots int        `json:"snapshots" yaml:"snapshots"`
	SizeBytes int64      `json:"size_bytes" yaml:"size_bytes"`
	HasConfig bool       `json:"has_config" yaml:"has_config"`
	HasBackup bool       `json:"has_backup" yaml:"has_backup"`
	FieldSet  bool       `json:"field_set" yaml:"field_set"`
}

// Inventory is the result of scanning a hub cache.
type Inventory struct {
	CacheDir  string    `json:"cache_dir" yaml:"cache_dir"`
	Entries   []Entry   `json:"entries" yaml:"entries"`
	Warnings  []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	ScannedAt time.Time `json:"scanned_at" yaml:"scanned_at"`
}

// Scanner walks a hub cache and inventories the models stored in it.
type Scanner struct {
	locator    *Locator
	watchFile  string
	watchField string
}

// NewScanner creates a scanner over the locator's cache. watchFile names the
// config file whose patch state each entry reports; watchField is the field
// checked inside it. Either may be empty to skip those checks.
func NewScanner(locator *Locator, watchFile, watchField string) *Scanner {
	return &Scanner{locator: locator, watchFile: watchFile, watchField: watchField}
}

// Models scans the cache root and returns an inventory of every model
// directory it can decode. Directories that do not parse back to a model ID
// are reported as warnings rather than failing the scan.
func (s *Scanner) Models(ctx context.Context) (*Inventory, error) {
	inv := &Inventory{
		CacheDir:  s.locator.CacheDir(),
		ScannedAt: time.Now(),
	}

	dirEntries, err := os.ReadDir(s.locator.CacheDir())
	if err != nil {
		if os.IsNotExist(err) {
			return inv, nil
		}
		return nil, fmt.Errorf("read cache dir %s: %w", s.locator.CacheDir(), err)
	}

	for _, dirEntry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !dirEntry.IsDir() || !strings.HasPrefix(dirEntry.Name(), modelDirPrefix) {
			continue
		}

		id, err := decodeModelDir(dirEntry.Name())
		if err != nil {
			inv.Warnings = append(inv.Warnings,
				fmt.Sprintf("skipping %s: %v", dirEntry.Name(), err))
			continue
		}

		inv.Entries = append(inv.Entries, s.describe(id))
	}

	sort.Slice(inv.Entries, func(i, j int) bool {
		return inv.Entries[i].ID.String() < inv.Entries[j].ID.String()
	})
	return inv, nil
}

// describe collects the per-model details. Missing refs or snapshots leave
// their fields zero instead of failing, so a partially downloaded model
// still shows up in listings.
func (s *Scanner) describe(id model.ID) Entry {
	entry := Entry{
		ID:   id,
		Type: model.DetectType(id),
	}

	if commit, err := s.locator.CurrentCommit(id, DefaultRevision); err == nil {
		entry.Commit = commit
	}

	snapshotsDir := filepath.Join(s.locator.ModelDir(id), "snapshots")
	if snapshots, err := os.ReadDir(snapshotsDir); err == nil {
		for _, snapshot := range snapshots {
			if snapshot.IsDir() {
				entry.Snapshots++
			}
		}
	}

	entry.SizeBytes = dirSize(filepath.Join(s.locator.ModelDir(id), "blobs"))

	if s.watchFile != "" {
		if path, err := s.locator.ResolveFile(id, DefaultRevision, s.watchFile); err == nil {
			entry.HasConfig = true
			entry.HasBackup, entry.FieldSet = s.patchState(path)
		}
	}
	return entry
}

// patchState reports whether the resolved config file has a backup beside
// its blob and whether the watched field is already present in it. Files
// that fail to resolve or parse read as unpatched.
func (s *Scanner) patchState(path string) (hasBackup, fieldSet bool) {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false, false
	}

	if _, err := os.Stat(target + patch.BackupSuffix); err == nil {
		hasBackup = true
	}

	if s.watchField == "" {
		return hasBackup, false
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return hasBackup, false
	}
	doc, err := patch.ParseDocument(data)
	if err != nil {
		return hasBackup, false
	}
	return hasBackup, doc.Has(s.watchField)
}

// decodeModelDir converts a cache directory name back into a model ID.
func decodeModelDir(name string) (model.ID, error) {
	trimmed := strings.TrimPrefix(name, modelDirPrefix)
	parts := strings.SplitN(trimmed, "--", 2)
	if len(parts) != 2 {
		return model.ID{}, fmt.Errorf("directory %q does not encode owner and name", name)
	}
	return model.NewID(parts[0] + "/" + parts[1])
}

// dirSize sums the regular files under dir. Unreadable entries are skipped.
func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}

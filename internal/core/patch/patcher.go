package patch

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// BackupSuffix is appended to a resolved target path to name its backup.
const BackupSuffix = ".backup"

// Patcher applies idempotent field patches to JSON config files. Before the
// first write to a target it stores a byte-for-byte backup next to it; the
// backup is never overwritten by later runs.
type Patcher struct {
	backupSuffix string
}

// NewPatcher returns a Patcher using the default backup suffix.
func NewPatcher() *Patcher {
	return &Patcher{backupSuffix: BackupSuffix}
}

// Result describes what EnsureField did to a target.
type Result struct {
	Source        string   `json:"source" yaml:"source"`                 // path as given by the caller
	Target        string   `json:"target" yaml:"target"`                 // resolved path the bytes live at
	BackupPath    string   `json:"backup_path" yaml:"backup_path"`       // target plus the backup suffix
	BackupCreated bool     `json:"backup_created" yaml:"backup_created"` // false when a backup already existed
	FieldAdded    bool     `json:"field_added" yaml:"field_added"`       // false when the field was already present
	Keys          []string `json:"keys" yaml:"keys"`                     // top-level keys after the operation
}

// RestoreResult describes a completed Restore.
type RestoreResult struct {
	Source     string `json:"source" yaml:"source"`
	Target     string `json:"target" yaml:"target"`
	BackupPath string `json:"backup_path" yaml:"backup_path"`
}

// Report is the non-mutating view of a target produced by Inspect.
type Report struct {
	Source     string   `json:"source" yaml:"source"`
	Target     string   `json:"target" yaml:"target"`
	BackupPath string   `json:"backup_path" yaml:"backup_path"`
	HasBackup  bool     `json:"has_backup" yaml:"has_backup"`
	Field      string   `json:"field,omitempty" yaml:"field,omitempty"`
	HasField   bool     `json:"has_field" yaml:"has_field"`
	FieldValue string   `json:"field_value,omitempty" yaml:"field_value,omitempty"`
	Keys       []string `json:"keys" yaml:"keys"`
	LineCount  int      `json:"line_count" yaml:"line_count"`
}

// EnsureField guarantees that the JSON object stored at path carries field.
// When the field is absent it is appended with value; when it is present the
// stored value is left alone, whatever it is. Either way the file is
// rewritten with two-space indentation, and the very first run against a
// target leaves a pristine backup beside it.
//
// The operation runs in fixed order: resolve symlinks, back up, read, parse,
// write. A failure at any step aborts before the target is modified, and the
// returned error names the step via StepError.
func (p *Patcher) EnsureField(path, field string, value json.RawMessage) (*Result, error) {
	if strings.TrimSpace(field) == "" {
		return nil, fmt.Errorf("field name cannot be empty")
	}
	if !json.Valid(value) {
		return nil, fmt.Errorf("default value for %q is not valid JSON", field)
	}

	target, mode, err := p.resolve(path)
	if err != nil {
		return nil, err
	}

	backupPath := target + p.backupSuffix
	backupCreated, err := p.ensureBackup(target, backupPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, stepErr(StepRead, target, classify(err))
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, stepErr(StepParse, target, err)
	}

	added := false
	if !doc.Has(field) {
		if err := doc.Set(field, value); err != nil {
			return nil, stepErr(StepParse, target, err)
		}
		added = true
	}

	out, err := doc.Encode()
	if err != nil {
		return nil, stepErr(StepWrite, target, err)
	}
	if err := os.WriteFile(target, out, mode); err != nil {
		return nil, stepErr(StepWrite, target, classify(err))
	}

	return &Result{
		Source:        path,
		Target:        target,
		BackupPath:    backupPath,
		BackupCreated: backupCreated,
		FieldAdded:    added,
		Keys:          doc.Keys(),
	}, nil
}

// Restore copies the backup back over the target, undoing every patch since
// the backup was taken. The backup itself is kept so Restore stays
// repeatable.
func (p *Patcher) Restore(path string) (*RestoreResult, error) {
	target, _, err := p.resolve(path)
	if err != nil {
		return nil, err
	}

	backupPath := target + p.backupSuffix
	if _, err := os.Stat(backupPath); err != nil {
		if os.IsNotExist(err) {
			return nil, stepErr(StepRestore, backupPath, ErrNoBackup)
		}
		return nil, stepErr(StepRestore, backupPath, classify(err))
	}

	if err := copyFile(backupPath, target); err != nil {
		return nil, stepErr(StepRestore, target, classify(err))
	}

	return &RestoreResult{Source: path, Target: target, BackupPath: backupPath}, nil
}

// Inspect reads the target without modifying it and reports its resolved
// location, backup state, top-level keys, and whether field is present.
// Pass an empty field to skip the field lookup.
func (p *Patcher) Inspect(path, field string) (*Report, error) {
	target, _, err := p.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, stepErr(StepRead, target, classify(err))
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return nil, stepErr(StepParse, target, err)
	}

	backupPath := target + p.backupSuffix
	hasBackup := false
	if _, err := os.Stat(backupPath); err == nil {
		hasBackup = true
	}

	report := &Report{
		Source:     path,
		Target:     target,
		BackupPath: backupPath,
		HasBackup:  hasBackup,
		Field:      field,
		Keys:       doc.Keys(),
		LineCount:  countLines(data),
	}
	if field != "" {
		if raw, ok := doc.Get(field); ok {
			report.HasField = true
			report.FieldValue = string(raw)
		}
	}
	return report, nil
}

// resolve follows the symlink chain from path to the file that actually
// stores the content and confirms it is a regular file. Hub caches link
// snapshot entries to content-addressed blobs, so patching the resolved
// target keeps every snapshot sharing the blob consistent.
func (p *Patcher) resolve(path string) (string, fs.FileMode, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", 0, stepErr(StepResolve, path, classify(err))
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", 0, stepErr(StepResolve, path, classify(err))
	}
	if !info.Mode().IsRegular() {
		return "", 0, stepErr(StepResolve, path, fmt.Errorf("%w: not a regular file", ErrBadFormat))
	}

	return resolved, info.Mode().Perm(), nil
}

// ensureBackup copies target to backupPath unless a backup is already there.
// It reports whether a new backup was written.
func (p *Patcher) ensureBackup(target, backupPath string) (bool, error) {
	if _, err := os.Stat(backupPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, stepErr(StepBackup, backupPath, classify(err))
	}

	if err := copyFile(target, backupPath); err != nil {
		return false, stepErr(StepBackup, backupPath, classify(err))
	}
	return true, nil
}

// copyFile clones src to dst byte for byte, carrying over the source's file
// mode and modification time. A partial copy is removed so a later run does
// not mistake it for a complete one.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := strings.Count(string(data), "\n")
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

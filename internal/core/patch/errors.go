package patch

import (
	"errors"
	"fmt"
	"os"
)

// Step identifies the phase of a patch operation that produced an error.
type Step string

const (
	StepResolve Step = "resolve"
	StepBackup  Step = "backup"
	StepRead    Step = "read"
	StepParse   Step = "parse"
	StepWrite   Step = "write"
	StepRestore Step = "restore"
)

// Failure classes callers branch on with errors.Is.
var (
	// ErrNotFound marks a target, or the file its symlink chain resolves
	// to, that does not exist.
	ErrNotFound = errors.New("config file not found")

	// ErrPermission marks a read or write denied by the filesystem.
	ErrPermission = errors.New("permission denied")

	// ErrBadFormat marks content that is not a top-level JSON object.
	ErrBadFormat = errors.New("invalid config document")

	// ErrNoBackup marks a restore attempted before any patch created a
	// backup.
	ErrNoBackup = errors.New("no backup found")
)

// StepError wraps a failure with the phase it happened in and the path it
// happened on, so a single run can always be traced to the step that broke.
type StepError struct {
	Step Step
	Path string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Step, e.Path, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step Step, path string, err error) error {
	return &StepError{Step: step, Path: path, Err: err}
}

// classify maps OS-level errors onto the patcher's sentinels so callers can
// use errors.Is without caring about syscall details.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %v", ErrPermission, err)
	default:
		return err
	}
}

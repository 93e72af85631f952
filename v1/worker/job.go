package worker

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrInvalidJob is returned for jobs that name neither or both sources.
	ErrInvalidJob = errors.New("worker: invalid job")

	// ErrNoImporter is returned for prefix jobs when object storage is not configured.
	ErrNoImporter = errors.New("worker: object storage is not configured")

	// ErrEmptyPrefix is returned when a prefix holds no .pdf or .txt objects.
	ErrEmptyPrefix = errors.New("worker: no documents under prefix")
)

// Job asks a worker to ingest one directory into a collection. The documents
// come either from an object storage prefix or from a directory readable by
// the worker.
type Job struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Prefix     string    `json:"prefix,omitempty"`
	Dir        string    `json:"dir,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Validate checks that exactly one source is set.
func (j Job) Validate() error {
	hasPrefix := strings.TrimSpace(j.Prefix) != ""
	hasDir := strings.TrimSpace(j.Dir) != ""

	switch {
	case hasPrefix && hasDir:
		return fmt.Errorf("%w: set either prefix or dir, not both", ErrInvalidJob)
	case !hasPrefix && !hasDir:
		return fmt.Errorf("%w: prefix or dir is required", ErrInvalidJob)
	}
	return nil
}

func (j Job) source() string {
	if j.Prefix != "" {
		return "prefix:" + j.Prefix
	}
	return "dir:" + j.Dir
}

// resolveDir returns dir as an absolute path inside root. Relative dirs are
// taken relative to root. With followLinks both paths are resolved through
// symlinks first, which requires them to exist.
func resolveDir(root, dir string, followLinks bool) (string, error) {
	if strings.TrimSpace(root) == "" {
		return "", fmt.Errorf("%w: directory jobs are disabled", ErrInvalidJob)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("worker: allowed root: %w", err)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	dir = filepath.Clean(dir)

	if followLinks {
		if root, err = filepath.EvalSymlinks(root); err != nil {
			return "", fmt.Errorf("worker: allowed root: %w", err)
		}
		if dir, err = filepath.EvalSymlinks(dir); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidJob, err)
		}
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: dir %q is outside the allowed root", ErrInvalidJob, dir)
	}
	return dir, nil
}

package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alfredjeanlab/rolodex/internal/export"
)

// FileDestination writes artifacts into a local directory.
type FileDestination struct {
	dir string
}

// NewFileDestination creates a destination writing into dir. The directory
// is created on first delivery.
func NewFileDestination(dir string) *FileDestination {
	return &FileDestination{dir: dir}
}

func (d *FileDestination) Name() string { return "file" }

// Deliver writes the artifact as <dir>/<name>, replacing any previous file.
func (d *FileDestination) Deliver(_ context.Context, a export.Artifact) error {
	return writeFileAtomic(filepath.Join(d.dir, filepath.Base(a.Name)), a.Data)
}

// Path returns where an artifact named name is written.
func (d *FileDestination) Path(name string) string {
	return filepath.Join(d.dir, filepath.Base(name))
}

// WriterDestination streams artifacts to a writer, such as stdout.
type WriterDestination struct {
	w io.Writer
}

func NewWriterDestination(w io.Writer) *WriterDestination {
	return &WriterDestination{w: w}
}

func (d *WriterDestination) Name() string { return "writer" }

func (d *WriterDestination) Deliver(_ context.Context, a export.Artifact) error {
	_, err := d.w.Write(a.Data)
	return err
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

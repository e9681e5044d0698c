package quarantine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"tgcheck/internal/check"
)

// FileSystemQuarantine moves files into a flat quarantine directory,
// keeping their base names.
type FileSystemQuarantine struct {
	dir string
}

// NewFileSystemQuarantine creates a quarantine rooted at dir, creating it if needed.
func NewFileSystemQuarantine(dir string) (*FileSystemQuarantine, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create quarantine directory: %w", err)
	}
	return &FileSystemQuarantine{dir: dir}, nil
}

// Move renames path into the quarantine directory, replacing any file of the
// same name. When the quarantine lives on another filesystem the file is
// copied and the original removed.
func (q *FileSystemQuarantine) Move(ctx context.Context, path string) (string, error) {
	dest := filepath.Join(q.dir, filepath.Base(path))

	err := os.Rename(path, dest)
	if err == nil {
		return dest, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", fmt.Errorf("moving %s: %w", path, err)
	}

	if err := copyFile(path, dest); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("removing %s after copy: %w", path, err)
	}
	return dest, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("closing %s: %w", dest, err)
	}
	return nil
}

// Compile-time check that FileSystemQuarantine implements check.Quarantine interface
var _ check.Quarantine = (*FileSystemQuarantine)(nil)

package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "salescli/internal/errors"
)

// Archiver moves processed source files into an archive folder after a
// successful run.
type Archiver struct {
	logger *slog.Logger
}

// NewArchiver creates a new archiver instance.
func NewArchiver(logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{logger: logger}
}

// Archive moves each file into the archive folder, preserving base names.
// The folder is created if absent.
func (a *Archiver) Archive(ctx context.Context, paths []string, folder string) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return apperrors.NewStorageError("failed to create archive folder", err).
			WithContext("folder", folder)
	}

	for _, src := range paths {
		dst := filepath.Join(folder, filepath.Base(src))
		if err := MoveFile(src, dst); err != nil {
			return apperrors.NewStorageError("failed to archive file", err).
				WithContext("file", src)
		}
		a.logger.InfoContext(ctx, "archived source file",
			slog.String("src", src),
			slog.String("dst", dst))
	}

	return nil
}

// MoveFile moves a file from source to destination. Rename is attempted
// first; a copy-and-delete fallback covers cross-filesystem moves.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	return dstFile.Sync()
}

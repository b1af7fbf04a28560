package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ExtractZip extracts a zip archive into dest, creating it as needed.
func ExtractZip(ctx context.Context, path, dest string, opts Options) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractZipEntry(f, dest); err != nil {
			return err
		}
	}
	if err := r.Close(); err != nil {
		return err
	}
	if opts.RemoveAfter {
		return removeArchive(path)
	}
	return nil
}

func extractZipEntry(f *zip.File, dest string) error {
	target, err := securePath(dest, f.Name)
	if err != nil {
		return err
	}
	info := f.FileInfo()
	if info.IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	mode := info.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil { //nolint:gosec // size bounded by caller trust in the archive
		out.Close()
		return err
	}
	return out.Close()
}

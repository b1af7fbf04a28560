package archive

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractTar extracts a tar archive (plain, gzip, or bzip2 compressed,
// chosen by extension) into dest.
func ExtractTar(ctx context.Context, path, dest string, opts Options) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer f.Close()

	var reader io.Reader = f
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("archive: gzip %s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	case strings.HasSuffix(name, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(name, ".tar"):
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	tr := tar.NewReader(reader)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := extractTarEntry(tr, hdr, dest); err != nil {
			return err
		}
	}
	if opts.RemoveAfter {
		f.Close()
		return removeArchive(path)
	}
	return nil
}

func extractTarEntry(tr *tar.Reader, hdr *tar.Header, dest string) error {
	target, err := securePath(dest, hdr.Name)
	if err != nil {
		return err
	}
	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, 0o755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		mode := os.FileMode(hdr.Mode).Perm()
		if mode == 0 {
			mode = 0o644
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tr); err != nil { //nolint:gosec // size bounded by caller trust in the archive
			out.Close()
			return err
		}
		return out.Close()
	case tar.TypeSymlink, tar.TypeLink:
		// Only links that stay inside the destination are recreated.
		if filepath.IsAbs(hdr.Linkname) {
			return fmt.Errorf("archive: link %q targets absolute path %q", hdr.Name, hdr.Linkname)
		}
		if _, err := securePath(dest, filepath.Join(filepath.Dir(hdr.Name), hdr.Linkname)); err != nil {
			return err
		}
		if hdr.Typeflag == tar.TypeLink {
			src, err := securePath(dest, hdr.Linkname)
			if err != nil {
				return err
			}
			return os.Link(src, target)
		}
		return os.Symlink(hdr.Linkname, target)
	default:
		// Devices, fifos and the like are skipped.
		return nil
	}
}

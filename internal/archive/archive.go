// Package archive extracts zip and tar archives with protection against
// path traversal: absolute entry paths, parent escapes, and links pointing
// outside the destination are rejected.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat reports an archive extension no extractor handles.
var ErrUnsupportedFormat = errors.New("archive: unsupported format")

// Options configures extraction.
type Options struct {
	// RemoveAfter deletes the archive once extraction succeeds.
	RemoveAfter bool
}

// Kind sniffs the archive kind from the file name.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindZip
	KindTar
)

// Detect classifies a path by extension.
func Detect(path string) Kind {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".zip"):
		return KindZip
	case strings.HasSuffix(name, ".tar"),
		strings.HasSuffix(name, ".tar.gz"),
		strings.HasSuffix(name, ".tgz"),
		strings.HasSuffix(name, ".tar.bz2"):
		return KindTar
	default:
		return KindUnknown
	}
}

// securePath joins an archive entry name onto the destination root,
// rejecting entries that would land outside it.
func securePath(dest, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("archive: absolute entry path %q", name)
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive: entry %q escapes destination", name)
	}
	return filepath.Join(dest, clean), nil
}

func removeArchive(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

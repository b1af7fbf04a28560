package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Increment when the Record format changes.
const cacheSchemaVersion uint16 = 1

// Record stores what is known about one completed download, keyed by URL.
// A later download of the same URL can be skipped when the validators still
// match the file on disk.
type Record struct {
	Schema uint16

	URL         string
	Dest        string
	ETag        string
	Size        int64
	CompletedAt time.Time
}

// DiskCache persists download records under a cache directory, one msgpack
// file per URL digest. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a disk cache at the standard user location
// (XDG_CACHE_HOME, falling back to ~/.cache) for the given app name.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache initializes a disk cache rooted at dir.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func urlDigest(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *DiskCache) pathFor(url string) string {
	return filepath.Join(c.dir, "dl", urlDigest(url)+".mp")
}

// Put serializes and writes a record, replacing it atomically.
func (c *DiskCache) Put(rec *Record) error {
	if c == nil || rec == nil {
		return nil
	}
	rec.Schema = cacheSchemaVersion
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(rec.URL)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(rec); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads the record for a URL. A missing record, or one written by an
// older schema, reports ok=false without an error.
func (c *DiskCache) Get(url string) (*Record, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(url))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var rec Record
	if err := msgpack.NewDecoder(f).Decode(&rec); err != nil {
		return nil, false, err
	}
	if rec.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &rec, true, nil
}

// Fresh reports whether the cached record still matches the file at dest.
func (rec *Record) Fresh(dest string) bool {
	if rec == nil || rec.Dest != dest {
		return false
	}
	info, err := os.Stat(dest)
	if err != nil {
		return false
	}
	return rec.Size > 0 && info.Size() == rec.Size
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

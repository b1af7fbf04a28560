// Package fetch downloads files over HTTP with bounded concurrency,
// progress reporting, and an optional on-disk record cache.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"nbaio/internal/pipeline"
)

// Spec names one download: source URL and destination file path.
type Spec struct {
	URL  string
	Dest string
	// ExpectedSize, when positive, is validated against the downloaded
	// file within a 1% tolerance.
	ExpectedSize int64
}

// Result reports the outcome of one download.
type Result struct {
	Spec    Spec
	Err     error
	Size    int64
	Skipped bool
	Elapsed time.Duration
}

// Options configures a Fetcher.
type Options struct {
	// Insecure disables TLS certificate verification.
	Insecure bool
	// Timeout bounds a single download end to end. Zero means an hour,
	// generous enough for large files on slow links.
	Timeout time.Duration
	// Cache, when set, records completed downloads and lets repeats skip
	// work while the validators still match.
	Cache *DiskCache
}

// Fetcher performs downloads. Safe for concurrent use.
type Fetcher struct {
	client *http.Client
	cache  *DiskCache
}

// New constructs a Fetcher.
func New(opts Options) *Fetcher {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Hour
	}
	transport := http.DefaultTransport
	if opts.Insecure {
		t, ok := http.DefaultTransport.(*http.Transport)
		if ok {
			clone := t.Clone()
			clone.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via Options.Insecure
			transport = clone
		}
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout, Transport: transport},
		cache:  opts.Cache,
	}
}

// Download streams one URL to its destination, creating parent directories
// as needed. A partially written file is removed on failure. Progress is
// reported through sink; pass pipeline.NopSink{} to discard it.
func (f *Fetcher) Download(ctx context.Context, spec Spec, sink pipeline.ProgressSink) Result {
	start := time.Now()
	if sink == nil {
		sink = pipeline.NopSink{}
	}
	res := Result{Spec: spec}

	if rec, ok, _ := f.cache.Get(spec.URL); ok && rec.Fresh(spec.Dest) {
		res.Size = rec.Size
		res.Skipped = true
		res.Elapsed = time.Since(start)
		sink.OnEvent(pipeline.Event{Item: spec.Dest, Stage: pipeline.StageFetch, Status: pipeline.StatusDone, Done: rec.Size, Total: rec.Size})
		return res
	}

	size, etag, err := f.download(ctx, spec, sink)
	res.Size = size
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = err
		sink.OnEvent(pipeline.Event{Item: spec.Dest, Stage: pipeline.StageFetch, Status: pipeline.StatusError, Err: err})
		return res
	}
	if spec.ExpectedSize > 0 && !CheckFileSize(spec.Dest, spec.ExpectedSize, 0.01) {
		res.Err = fmt.Errorf("fetch %s: size mismatch: got %d bytes, expected %d", spec.URL, size, spec.ExpectedSize)
		os.Remove(spec.Dest)
		sink.OnEvent(pipeline.Event{Item: spec.Dest, Stage: pipeline.StageFetch, Status: pipeline.StatusError, Err: res.Err})
		return res
	}
	if f.cache != nil {
		_ = f.cache.Put(&Record{
			URL:         spec.URL,
			Dest:        spec.Dest,
			ETag:        etag,
			Size:        size,
			CompletedAt: time.Now(),
		})
	}
	sink.OnEvent(pipeline.Event{Item: spec.Dest, Stage: pipeline.StageFetch, Status: pipeline.StatusDone, Done: size, Total: size, Elapsed: res.Elapsed})
	return res
}

func (f *Fetcher) download(ctx context.Context, spec Spec, sink pipeline.ProgressSink) (int64, string, error) {
	if err := os.MkdirAll(filepath.Dir(spec.Dest), 0o755); err != nil {
		return 0, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, "", fmt.Errorf("fetch %s: unexpected status %s", spec.URL, resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	out, err := os.Create(spec.Dest)
	if err != nil {
		return 0, "", err
	}

	var written int64
	buf := make([]byte, 32*1024)
	cleanup := func(cause error) (int64, string, error) {
		out.Close()
		os.Remove(spec.Dest)
		return 0, "", cause
	}
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return cleanup(writeErr)
			}
			written += int64(n)
			sink.OnEvent(pipeline.Event{Item: spec.Dest, Stage: pipeline.StageFetch, Status: pipeline.StatusWorking, Done: written, Total: total})
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return cleanup(readErr)
		}
	}
	if err := out.Close(); err != nil {
		os.Remove(spec.Dest)
		return 0, "", err
	}
	return written, resp.Header.Get("ETag"), nil
}

// DownloadAll runs the downloads with at most limit in flight, mirroring a
// capacity limiter. Results are returned in input order; individual failures
// do not abort the batch.
func (f *Fetcher) DownloadAll(ctx context.Context, specs []Spec, limit int, sink pipeline.ProgressSink) []Result {
	if limit <= 0 {
		limit = 5
	}
	if sink == nil {
		sink = pipeline.NopSink{}
	}
	results := make([]Result, len(specs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, spec := range specs {
		sink.OnEvent(pipeline.Event{Item: spec.Dest, Stage: pipeline.StageFetch, Status: pipeline.StatusQueued})
		g.Go(func() error {
			results[i] = f.Download(ctx, spec, sink)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// CheckFileSize reports whether the file's size matches the expectation
// within the given tolerance ratio.
func CheckFileSize(path string, expected int64, tolerance float64) bool {
	if expected <= 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	diff := math.Abs(float64(info.Size()-expected)) / float64(expected)
	return diff <= tolerance
}

package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"nbaio/internal/fetch"
	"nbaio/internal/pipeline"
	"nbaio/internal/ui"
)

var downloadCmd = &cobra.Command{
	Use:   "download [flags] URL...",
	Short: "Download multiple files concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDownload,
}

func init() {
	downloadCmd.Flags().StringP("output", "o", ".", "output directory")
	downloadCmd.Flags().IntP("concurrent", "c", 0, "maximum concurrent downloads (0 uses manifest/default)")
	downloadCmd.Flags().Bool("insecure", false, "skip TLS certificate verification")
	downloadCmd.Flags().Bool("no-cache", false, "ignore and do not update the download record cache")
}

func runDownload(cmd *cobra.Command, urls []string) error {
	output, _ := cmd.Flags().GetString("output")
	concurrent, _ := cmd.Flags().GetInt("concurrent")
	insecure, _ := cmd.Flags().GetBool("insecure")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	cfg, _, err := loadProjectConfig(".")
	if err != nil {
		return err
	}
	if concurrent <= 0 {
		concurrent = cfg.Download.Concurrent
	}
	if output == "." && cfg.Download.Output != "" {
		output = cfg.Download.Output
	}
	insecure = insecure || cfg.Download.Insecure

	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}
	specs := make([]fetch.Spec, 0, len(urls))
	for _, raw := range urls {
		specs = append(specs, fetch.Spec{URL: raw, Dest: filepath.Join(output, fileNameFromURL(raw))})
	}

	var cache *fetch.DiskCache
	if cfg.Download.Cache && !noCache {
		if cache, err = fetch.OpenDiskCache("nbaio"); err != nil {
			return err
		}
	}
	fetcher := fetch.New(fetch.Options{Insecure: insecure, Cache: cache})

	var results []fetch.Result
	quiet := quietEnabled(cmd)
	if !quiet && isTerminal(os.Stdout) {
		names := make([]string, len(specs))
		for i, spec := range specs {
			names[i] = spec.Dest
		}
		events := make(chan pipeline.Event, 64)
		done := make(chan struct{})
		go func() {
			defer close(done)
			defer close(events)
			results = fetcher.DownloadAll(cmd.Context(), specs, concurrent, pipeline.ChannelSink{Ch: events})
		}()
		if err := ui.Run(ui.NewProgressModel("downloading", names, events)); err != nil {
			// The downloads keep sending progress; keep draining so the
			// goroutine can finish instead of blocking on a full channel.
			drainEvents(events, done)
			return err
		}
		<-done
	} else {
		var sink pipeline.ProgressSink = pipeline.NopSink{}
		if !quiet {
			sink = &pipeline.WriterSink{W: cmd.OutOrStdout(), Color: colorEnabled(cmd)}
		}
		results = fetcher.DownloadAll(cmd.Context(), specs, concurrent, sink)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d/%d files.\n", len(results)-failed, len(results))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(results))
	}
	return nil
}

// drainEvents consumes leftover progress events until the producer closes
// the channel and signals done.
func drainEvents(events <-chan pipeline.Event, done <-chan struct{}) {
	for range events {
	}
	<-done
}

// fileNameFromURL extracts a destination file name from a URL, falling back
// to a generic name when the path has none.
func fileNameFromURL(raw string) string {
	name := raw
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		name = u.Path
	}
	name = strings.TrimRight(name, "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		return "downloaded_file"
	}
	return name
}

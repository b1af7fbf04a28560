package pipeline

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// NopSink discards events.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}

// WriterSink prints terminal status transitions as plain lines, one per
// item, for non-interactive output. Byte-progress events are dropped.
type WriterSink struct {
	W     io.Writer
	Color bool

	mu sync.Mutex
}

func (s *WriterSink) OnEvent(evt Event) {
	if s == nil || s.W == nil || evt.Item == "" {
		return
	}
	if evt.Status != StatusDone && evt.Status != StatusError {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if evt.Status == StatusError {
		s.printf(color.FgRed, "error %s: %v\n", evt.Item, evt.Err)
		return
	}
	s.printf(color.FgGreen, "done  %s\n", evt.Item)
}

func (s *WriterSink) printf(attr color.Attribute, format string, args ...any) {
	if s.Color {
		color.New(attr).Fprintf(s.W, format, args...)
		return
	}
	fmt.Fprintf(s.W, format, args...)
}

// Fanout duplicates events to several sinks.
type Fanout []ProgressSink

func (f Fanout) OnEvent(evt Event) {
	for _, sink := range f {
		if sink != nil {
			sink.OnEvent(evt)
		}
	}
}

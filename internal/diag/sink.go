// Package diag provides the human-readable diagnostic channel used by the
// compute manager to report selection outcomes and runtime failures.
package diag

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Sink receives diagnostic lines. It has no levels and no structure.
type Sink interface {
	Write(text string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(text string)

func (f SinkFunc) Write(text string) { f(text) }

// Discard drops every line.
var Discard Sink = SinkFunc(func(string) {})

// SlogSink forwards each line to a slog.Logger at info level.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink returns a sink writing to logger, or to slog.Default() when nil.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Write(text string) {
	line := strings.TrimRight(text, "\n")
	if line == "" {
		return
	}
	l := s.logger
	if l == nil {
		l = slog.Default()
	}
	l.Info(line, "source", "sodecl")
}

// WriterSink writes each line, newline terminated, to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	fmt.Fprint(s.w, text)
}

var (
	defaultOnce sync.Once
	defaultSink Sink
)

// Default returns the process-wide sink, created on first use. It writes
// through slog.Default() as it is at the time of each write.
func Default() Sink {
	defaultOnce.Do(func() {
		defaultSink = NewSlogSink(nil)
	})
	return defaultSink
}

// Recorder keeps every line in memory.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *Recorder) Write(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, strings.TrimRight(text, "\n"))
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// Contains reports whether any recorded line contains substr.
func (r *Recorder) Contains(substr string) bool {
	for _, line := range r.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// Reset drops all recorded lines.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
}

package logging

import (
	"context"
	"log/slog"
	"sync"
)

// Event is a captured log record with its attributes flattened.
type Event struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// Recorder is a slog.Handler that keeps every record it receives. It accepts
// all levels.
type Recorder struct {
	mu     *sync.Mutex
	events *[]Event
	attrs  []slog.Attr
	group  string
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, events: &[]Event{}}
}

// Logger returns a Logger that records into r.
func (r *Recorder) Logger() *Logger {
	return NewLoggerWithHandler(r)
}

// Enabled implements slog.Handler.
func (r *Recorder) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (r *Recorder) Handle(_ context.Context, record slog.Record) error {
	ev := Event{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   make(map[string]any, len(r.attrs)+record.NumAttrs()),
	}
	for _, a := range r.attrs {
		ev.Attrs[a.Key] = a.Value.Any()
	}
	record.Attrs(func(a slog.Attr) bool {
		ev.Attrs[r.qualify(a.Key)] = a.Value.Any()
		return true
	})

	r.mu.Lock()
	*r.events = append(*r.events, ev)
	r.mu.Unlock()

	return nil
}

// WithAttrs implements slog.Handler.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *r
	clone.attrs = append([]slog.Attr(nil), r.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, slog.Attr{Key: r.qualify(a.Key), Value: a.Value})
	}
	return &clone
}

// WithGroup implements slog.Handler. Group names prefix attribute keys.
func (r *Recorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	clone := *r
	clone.group = r.qualify(name)
	return &clone
}

func (r *Recorder) qualify(key string) string {
	if r.group == "" {
		return key
	}
	return r.group + "." + key
}

// Events returns a copy of every recorded event in order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), (*r.events)...)
}

// Filter returns the recorded events with the given message.
func (r *Recorder) Filter(message string) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Message == message {
			out = append(out, ev)
		}
	}
	return out
}

// Count returns how many events with the given message were recorded.
func (r *Recorder) Count(message string) int {
	return len(r.Filter(message))
}

// Reset discards every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	*r.events = nil
	r.mu.Unlock()
}

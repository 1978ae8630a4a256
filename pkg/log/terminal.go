package log

import (
	"bytes"
	"io"
	"sync/atomic"
)

// TerminalWriter writes log lines to a terminal that may be switched to raw
// mode, where a bare "\n" does not return the carriage.
type TerminalWriter struct {
	w   io.Writer
	raw atomic.Bool
}

// NewTerminalWriter wraps w, starting in cooked mode
func NewTerminalWriter(w io.Writer) *TerminalWriter {
	return &TerminalWriter{w: w}
}

// SetRaw switches "\n" to "\r\n" translation on or off
func (t *TerminalWriter) SetRaw(raw bool) {
	t.raw.Store(raw)
}

// Write implements io.Writer. It reports len(p) on success so callers never
// see the translated length.
func (t *TerminalWriter) Write(p []byte) (int, error) {
	if !t.raw.Load() {
		return t.w.Write(p)
	}
	out := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	if _, err := t.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

package service

import (
	"bytes"
	"io"
	"sync"
)

// EventEmittingWriter wraps a buffer and invokes an optional callback with
// each chunk written, so a caller (the API layer's WebSocket session
// manager) can fan guest program output out to connected clients as it
// happens instead of polling GetBufferAndClear.
type EventEmittingWriter struct {
	buffer   *bytes.Buffer
	onOutput func(string)
	mutex    sync.Mutex
}

// NewEventEmittingWriter creates a writer that buffers output and, if
// onOutput is non-nil, calls it with every write.
func NewEventEmittingWriter(buffer *bytes.Buffer, onOutput func(string)) *EventEmittingWriter {
	return &EventEmittingWriter{
		buffer:   buffer,
		onOutput: onOutput,
	}
}

// Write implements io.Writer.
func (w *EventEmittingWriter) Write(p []byte) (n int, err error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	n, err = w.buffer.Write(p)
	if err == nil && n > 0 && w.onOutput != nil {
		w.onOutput(string(p))
	}
	return n, err
}

// GetBufferAndClear returns buffer contents and clears it
func (w *EventEmittingWriter) GetBufferAndClear() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	output := w.buffer.String()
	w.buffer.Reset()
	return output
}

// SetOnOutput rebinds the output callback, letting the API layer attach a
// session broadcaster after the writer has already been created.
func (w *EventEmittingWriter) SetOnOutput(onOutput func(string)) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.onOutput = onOutput
}

var _ io.Writer = (*EventEmittingWriter)(nil)

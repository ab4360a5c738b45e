package rzframe

import "io"

// BytesSink is a ByteSink that writes to a pre-allocated byte slice.
// It will not grow the slice's capacity. If a write exceeds the available space,
// it writes as much as it can and returns io.ErrShortWrite.
type BytesSink struct {
	B []byte // destination slice
	N int    // current write position
}

var _ ByteSink = (*BytesSink)(nil)

// NewBytesSink creates a new BytesSink over the full capacity of p.
func NewBytesSink(p []byte) *BytesSink {
	return &BytesSink{B: p[:cap(p)]}
}

// Write implements the io.Writer interface.
func (w *BytesSink) Write(p []byte) (int, error) {
	if w.N >= len(w.B) && len(p) > 0 {
		return 0, io.ErrShortWrite
	}
	n := copy(w.B[w.N:], p)
	w.N += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// WriteByte implements the io.ByteWriter interface for efficiency.
func (w *BytesSink) WriteByte(c byte) error {
	if w.N >= len(w.B) {
		return io.ErrShortWrite
	}
	w.B[w.N] = c
	w.N++
	return nil
}

// Flush does nothing.
func (w *BytesSink) Flush() error { return nil }

// Close does nothing.
func (w *BytesSink) Close() error { return nil }

// Reset allows the underlying byte slice to be reused.
func (w *BytesSink) Reset() { w.N = 0 }

// Len returns the number of bytes written.
func (w *BytesSink) Len() int { return w.N }

// Size returns the capacity of the underlying byte slice.
func (w *BytesSink) Size() int { return len(w.B) }

// Available returns the number of bytes available for writing.
func (w *BytesSink) Available() int { return len(w.B) - w.N }

// Bytes returns a slice view of the written data.
func (w *BytesSink) Bytes() []byte { return w.B[:w.N] }

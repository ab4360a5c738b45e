package rzframe

import (
	"io"

	"golang.org/x/exp/constraints"
)

// ByteSource is the read capability a transport lends to the core.
// Read may return fewer bytes than requested.
type ByteSource interface {
	io.Reader
}

// ByteSink is the write capability a transport lends to the core.
// Write may accept fewer bytes than offered; WriteFully compensates.
type ByteSink interface {
	io.Writer
	Flush() error
	Close() error
}

// maxEmptyTransfers bounds how many consecutive zero-byte transfers
// ReadFully and WriteFully tolerate before giving up.
const maxEmptyTransfers = 100

// inRange reports whether [off, off+n) lies inside a buffer of size size.
func inRange[T constraints.Integer](size, off, n T) bool {
	return off >= 0 && n >= 0 && off <= size && n <= size-off
}

// ReadFully reads exactly n bytes from src into p[off:off+n].
// Any failure aborts the loop and is returned as a *TransportError;
// a stream that ends mid-way reports io.ErrUnexpectedEOF.
func ReadFully(src ByteSource, p []byte, off, n int) error {
	if src == nil {
		return ErrNilIO
	}
	if !inRange(len(p), off, n) {
		return ErrOutOfRange
	}
	got, empty := 0, 0
	for got < n {
		m, err := src.Read(p[off+got : off+n])
		if m < 0 || m > n-got {
			return transportError("read", ErrInvalidRead)
		}
		got += m
		if got == n {
			return nil
		}
		if err != nil {
			if err == io.EOF && got > 0 {
				err = io.ErrUnexpectedEOF
			}
			return transportError("read", err)
		}
		if m == 0 {
			if empty++; empty >= maxEmptyTransfers {
				return transportError("read", io.ErrNoProgress)
			}
			continue
		}
		empty = 0
	}
	return nil
}

// WriteFully writes p[off:off+n] to dst, retrying partial writes.
func WriteFully(dst io.Writer, p []byte, off, n int) error {
	if dst == nil {
		return ErrNilIO
	}
	if !inRange(len(p), off, n) {
		return ErrOutOfRange
	}
	put, empty := 0, 0
	for put < n {
		m, err := dst.Write(p[off+put : off+n])
		if m < 0 || m > n-put {
			return transportError("write", ErrInvalidWrite)
		}
		put += m
		if err != nil {
			return transportError("write", err)
		}
		if m == 0 {
			if empty++; empty >= maxEmptyTransfers {
				return transportError("write", io.ErrShortWrite)
			}
			continue
		}
		empty = 0
	}
	return nil
}

type (
	flusher interface{ Flush() error }

	writerSink struct{ io.Writer }
)

// SinkOf adapts any io.Writer to a ByteSink. Flush and Close are forwarded
// when w supports them and are no-ops otherwise.
func SinkOf(w io.Writer) ByteSink {
	if s, ok := w.(ByteSink); ok {
		return s
	}
	return writerSink{w}
}

func (s writerSink) Flush() error {
	if f, ok := s.Writer.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func (s writerSink) Close() error {
	if c, ok := s.Writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

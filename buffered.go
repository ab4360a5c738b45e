package rzframe

// DefaultBufferSize is the BufferedSink capacity used by NewBufferedSink.
const DefaultBufferSize = 128

// BufferedSink coalesces small writes into one transfer to the sink it wraps.
// It borrows the sink; Close flushes and then closes it.
//
// The cursor never exceeds the capacity and always equals the number of
// bytes waiting for the next Flush.
type BufferedSink struct {
	sink   ByteSink
	buf    []byte
	n      int
	closed bool
}

var _ ByteSink = (*BufferedSink)(nil)

// NewBufferedSinkSize creates a BufferedSink with the given capacity.
func NewBufferedSinkSize(sink ByteSink, size int) (*BufferedSink, error) {
	if sink == nil {
		return nil, ErrNilIO
	}
	if size <= 0 {
		return nil, ErrSizeTooSmall
	}
	return &BufferedSink{sink: sink, buf: make([]byte, size)}, nil
}

// NewBufferedSink creates a BufferedSink with DefaultBufferSize.
func NewBufferedSink(sink ByteSink) (*BufferedSink, error) {
	return NewBufferedSinkSize(sink, DefaultBufferSize)
}

// Write implements io.Writer. The whole of p is accepted or an error is returned.
func (b *BufferedSink) Write(p []byte) (int, error) {
	if err := b.WriteRange(p, 0, len(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteRange buffers p[off:off+n].
//
// A chunk at least as large as the capacity is not buffered: pending bytes
// are flushed first and the chunk goes straight to the sink, so wire order
// matches submission order.
func (b *BufferedSink) WriteRange(p []byte, off, n int) error {
	if b.closed {
		return ErrClosed
	}
	if !inRange(len(p), off, n) {
		return ErrOutOfRange
	}
	if n == 0 {
		return nil
	}
	if n >= len(b.buf) {
		if err := b.Flush(); err != nil {
			return err
		}
		return WriteFully(b.sink, p, off, n)
	}
	if b.n+n > len(b.buf) {
		if err := b.Flush(); err != nil {
			return err
		}
	}
	b.n += copy(b.buf[b.n:], p[off:off+n])
	return nil
}

// WriteByte implements io.ByteWriter.
func (b *BufferedSink) WriteByte(c byte) error {
	if b.closed {
		return ErrClosed
	}
	if b.n == len(b.buf) {
		if err := b.Flush(); err != nil {
			return err
		}
	}
	b.buf[b.n] = c
	b.n++
	return nil
}

// Flush writes exactly the bytes accumulated since the last flush and
// resets the cursor. On failure the pending bytes are dropped.
func (b *BufferedSink) Flush() error {
	if b.closed {
		return nil
	}
	if b.n > 0 {
		n := b.n
		b.n = 0
		if err := WriteFully(b.sink, b.buf, 0, n); err != nil {
			return err
		}
	}
	return transportError("flush", b.sink.Flush())
}

// Close flushes pending bytes and closes the sink. The sink is closed even
// when the flush fails. Closing twice is a no-op.
func (b *BufferedSink) Close() error {
	if b.closed {
		return nil
	}
	err := b.Flush()
	b.closed = true
	if cerr := b.sink.Close(); err == nil {
		err = transportError("close", cerr)
	}
	return err
}

func (b *BufferedSink) Size() int      { return len(b.buf) }
func (b *BufferedSink) Buffered() int  { return b.n }
func (b *BufferedSink) Available() int { return len(b.buf) - b.n }

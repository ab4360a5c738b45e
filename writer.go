package rzframe

import (
	"errors"
	"io"
	"math"
	"unicode/utf16"
)

// DataWriter writes big-endian primitives to a ByteSink.
// It tracks the first error that occurs; after an error, all subsequent
// write operations become no-ops and report that error. Codec.WriteFrame
// clears errors that did not come from the transport once the frame is done.
type DataWriter struct {
	w       ByteSink
	scratch [8]byte
	count   int64 // total bytes handed to w
	err     error // first error encountered
}

var (
	_ io.Writer     = (*DataWriter)(nil)
	_ io.ByteWriter = (*DataWriter)(nil)
)

// NewDataWriterSize creates a DataWriter that buffers through a BufferedSink
// of the given capacity. A *BufferedSink or *BytesSink is used as-is to avoid
// double-buffering.
func NewDataWriterSize(w io.Writer, size int) (*DataWriter, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	switch sink := w.(type) {
	case *BufferedSink:
		return &DataWriter{w: sink}, nil
	case *BytesSink:
		return &DataWriter{w: sink}, nil
	}
	buffered, err := NewBufferedSinkSize(SinkOf(w), size)
	if err != nil {
		return nil, err
	}
	return &DataWriter{w: buffered}, nil
}

// NewDataWriter creates a DataWriter with a DefaultBufferSize buffer.
func NewDataWriter(w io.Writer) (*DataWriter, error) {
	return NewDataWriterSize(w, DefaultBufferSize)
}

// setError records the first non-nil error.
func (d *DataWriter) setError(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

// clearSoftError drops a latched error that did not come from the transport
// and returns it.
func (d *DataWriter) clearSoftError() error {
	err := d.err
	if err == nil || errors.Is(err, ErrTransport) {
		return nil
	}
	d.err = nil
	return err
}

func (d *DataWriter) Count() int64 { return d.count }
func (d *DataWriter) Err() error   { return d.err }

// Result flushes the buffer and returns the final count and error state.
func (d *DataWriter) Result() (int64, error) {
	d.Flush()
	return d.count, d.err
}

// Flush pushes buffered bytes to the transport.
func (d *DataWriter) Flush() error {
	if d.err != nil {
		return d.err
	}
	d.setError(d.w.Flush())
	return d.err
}

// Close flushes and closes the underlying sink.
func (d *DataWriter) Close() error {
	err := d.w.Close()
	d.setError(err)
	return err
}

// WriteRange writes p[off:off+n].
func (d *DataWriter) WriteRange(p []byte, off, n int) {
	if d.err != nil {
		return
	}
	if err := WriteFully(d.w, p, off, n); err != nil {
		d.err = err
		return
	}
	d.count += int64(n)
}

// Write implements io.Writer.
func (d *DataWriter) Write(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	d.WriteRange(p, 0, len(p))
	if d.err != nil {
		return 0, d.err
	}
	return len(p), nil
}

// WriteByte implements io.ByteWriter.
func (d *DataWriter) WriteByte(v byte) error {
	d.WriteUint8(v)
	return d.err
}

// WriteBytes writes a byte slice.
func (d *DataWriter) WriteBytes(p []byte) {
	d.WriteRange(p, 0, len(p))
}

func (d *DataWriter) put(n int) {
	d.WriteRange(d.scratch[:], 0, n)
}

// --- Primitive Write Operations ---

func (d *DataWriter) WriteBool(v bool) {
	if v {
		d.WriteUint8(1)
	} else {
		d.WriteUint8(0)
	}
}

func (d *DataWriter) WriteUint8(v uint8) {
	if d.err != nil {
		return
	}
	d.scratch[0] = v
	d.put(1)
}

func (d *DataWriter) WriteInt8(v int8) { d.WriteUint8(uint8(v)) }

func (d *DataWriter) WriteUint16(v uint16) {
	if d.err != nil {
		return
	}
	Order.PutUint16(d.scratch[:2], v)
	d.put(2)
}

func (d *DataWriter) WriteInt16(v int16) { d.WriteUint16(uint16(v)) }

func (d *DataWriter) WriteUint32(v uint32) {
	if d.err != nil {
		return
	}
	Order.PutUint32(d.scratch[:4], v)
	d.put(4)
}

func (d *DataWriter) WriteInt32(v int32) { d.WriteUint32(uint32(v)) }

func (d *DataWriter) WriteUint64(v uint64) {
	if d.err != nil {
		return
	}
	Order.PutUint64(d.scratch[:8], v)
	d.put(8)
}

func (d *DataWriter) WriteInt64(v int64) { d.WriteUint64(uint64(v)) }

// WriteFloat32 writes the raw IEEE-754 bits; NaN payloads and -0 survive.
func (d *DataWriter) WriteFloat32(v float32) { d.WriteUint32(math.Float32bits(v)) }

// WriteFloat64 writes the raw IEEE-754 bits; NaN payloads and -0 survive.
func (d *DataWriter) WriteFloat64(v float64) { d.WriteUint64(math.Float64bits(v)) }

// --- Characters and strings ---

// WriteCharUTF8 writes one UTF-8 code unit.
func (d *DataWriter) WriteCharUTF8(c byte) { d.WriteUint8(c) }

// WriteCharUTF16 writes one UTF-16 code unit as two big-endian bytes.
func (d *DataWriter) WriteCharUTF16(c uint16) { d.WriteUint16(c) }

// WriteCharUTF32 writes one code point as four big-endian bytes.
func (d *DataWriter) WriteCharUTF32(c rune) { d.WriteUint32(uint32(c)) }

// WriteStringUTF8 writes the raw bytes of s with no length prefix.
func (d *DataWriter) WriteStringUTF8(s string) {
	if d.err != nil || s == "" {
		return
	}
	d.WriteRange([]byte(s), 0, len(s))
}

// WriteStringUTF16 writes units[off:off+n], four code units per transfer.
func (d *DataWriter) WriteStringUTF16(units []uint16, off, n int) {
	if d.err != nil {
		return
	}
	if !inRange(len(units), off, n) {
		d.setError(ErrOutOfRange)
		return
	}
	for n >= 4 {
		Order.PutUint16(d.scratch[0:], units[off])
		Order.PutUint16(d.scratch[2:], units[off+1])
		Order.PutUint16(d.scratch[4:], units[off+2])
		Order.PutUint16(d.scratch[6:], units[off+3])
		d.put(8)
		off += 4
		n -= 4
	}
	// tail of 1..3 units
	for i := 0; i < n; i++ {
		Order.PutUint16(d.scratch[2*i:], units[off+i])
	}
	if n > 0 {
		d.put(2 * n)
	}
}

// WriteStringUTF16WL writes s as a u16 count of UTF-16 code units followed by the units.
func (d *DataWriter) WriteStringUTF16WL(s string) {
	if d.err != nil {
		return
	}
	units := utf16.Encode([]rune(s))
	if len(units) > math.MaxUint16 {
		d.setError(ErrStringTooLong)
		return
	}
	d.WriteUint16(uint16(len(units)))
	d.WriteStringUTF16(units, 0, len(units))
}

// WriteStringUTF8WL writes s as a u16 byte count followed by the bytes.
func (d *DataWriter) WriteStringUTF8WL(s string) {
	if d.err != nil {
		return
	}
	if len(s) > math.MaxUint16 {
		d.setError(ErrStringTooLong)
		return
	}
	d.WriteUint16(uint16(len(s)))
	d.WriteStringUTF8(s)
}

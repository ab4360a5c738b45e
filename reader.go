package rzframe

import (
	"errors"
	"io"
	"math"
	"unicode/utf16"
)

// DataReader reads big-endian primitives from a ByteSource.
//
// It does not buffer: every primitive takes exactly its own bytes from the
// source, so a rejected frame never drags following bytes off the transport.
// It tracks the first error; subsequent reads become no-ops. Codec.ReadFrame
// clears errors that did not come from the transport, so only a
// *TransportError outlives the frame that caused it.
type DataReader struct {
	r       ByteSource
	scratch [8]byte
	count   int64 // total bytes read
	err     error // first error encountered
}

var (
	_ io.Reader     = (*DataReader)(nil)
	_ io.ByteReader = (*DataReader)(nil)
)

// NewDataReader creates a DataReader over src.
func NewDataReader(src io.Reader) (*DataReader, error) {
	if src == nil {
		return nil, ErrNilIO
	}
	if dr, ok := src.(*DataReader); ok {
		return &DataReader{r: dr.r}, nil
	}
	return &DataReader{r: src}, nil
}

func (d *DataReader) Count() int64 { return d.count }
func (d *DataReader) Err() error   { return d.err }
func (d *DataReader) IsEOF() bool  { return errors.Is(d.err, io.EOF) }

// setError records the first non-nil error.
func (d *DataReader) setError(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

// clearSoftError drops a latched error that did not come from the transport
// and returns it.
func (d *DataReader) clearSoftError() error {
	err := d.err
	if err == nil || errors.Is(err, ErrTransport) {
		return nil
	}
	d.err = nil
	return err
}

// Result returns the total bytes read and the final error state.
func (d *DataReader) Result() (int64, error) {
	return d.count, d.err
}

// Read implements io.Reader. It performs a single partial read.
func (d *DataReader) Read(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	n, err := d.r.Read(p)
	if n < 0 || n > len(p) {
		d.err = transportError("read", ErrInvalidRead)
		return 0, d.err
	}
	d.count += int64(n)
	if err != nil && err != io.EOF {
		d.setError(transportError("read", err))
	}
	return n, err
}

// ReadFully fills p[off:off+n] or fails.
func (d *DataReader) ReadFully(p []byte, off, n int) {
	if d.err != nil {
		return
	}
	if err := ReadFully(d.r, p, off, n); err != nil {
		d.err = err
		return
	}
	d.count += int64(n)
}

func (d *DataReader) take(n int) []byte {
	d.ReadFully(d.scratch[:], 0, n)
	if d.err != nil {
		return nil
	}
	return d.scratch[:n]
}

// ReadBytes reads n bytes into a new slice.
func (d *DataReader) ReadBytes(n int) []byte {
	if n <= 0 || d.err != nil {
		return nil
	}
	buf := make([]byte, n)
	d.ReadFully(buf, 0, n)
	if d.err != nil {
		return nil
	}
	return buf
}

// Skip discards n bytes.
func (d *DataReader) Skip(n int) {
	if d.err != nil {
		return
	}
	if n < 0 {
		d.err = ErrDiscardNegative
		return
	}
	var sink [256]byte
	for n > 0 {
		chunk := min(n, len(sink))
		d.ReadFully(sink[:], 0, chunk)
		if d.err != nil {
			return
		}
		n -= chunk
	}
}

// --- Primitive Read Operations ---

func (d *DataReader) ReadByte() (byte, error) {
	b := d.take(1)
	if d.err != nil {
		return 0, d.err
	}
	return b[0], nil
}

func (d *DataReader) ReadBool(dest *bool) {
	if b := d.take(1); d.err == nil {
		*dest = b[0] != 0
	}
}

func (d *DataReader) ReadUint8(dest *uint8) {
	if b := d.take(1); d.err == nil {
		*dest = b[0]
	}
}

func (d *DataReader) ReadInt8(dest *int8) {
	if b := d.take(1); d.err == nil {
		*dest = int8(b[0])
	}
}

func (d *DataReader) ReadUint16(dest *uint16) {
	if b := d.take(2); d.err == nil {
		*dest = Order.Uint16(b)
	}
}

func (d *DataReader) ReadInt16(dest *int16) {
	if b := d.take(2); d.err == nil {
		*dest = int16(Order.Uint16(b))
	}
}

func (d *DataReader) ReadUint32(dest *uint32) {
	if b := d.take(4); d.err == nil {
		*dest = Order.Uint32(b)
	}
}

func (d *DataReader) ReadInt32(dest *int32) {
	if b := d.take(4); d.err == nil {
		*dest = int32(Order.Uint32(b))
	}
}

func (d *DataReader) ReadUint64(dest *uint64) {
	if b := d.take(8); d.err == nil {
		*dest = Order.Uint64(b)
	}
}

func (d *DataReader) ReadInt64(dest *int64) {
	if b := d.take(8); d.err == nil {
		*dest = int64(Order.Uint64(b))
	}
}

func (d *DataReader) ReadFloat32(dest *float32) {
	if b := d.take(4); d.err == nil {
		*dest = math.Float32frombits(Order.Uint32(b))
	}
}

func (d *DataReader) ReadFloat64(dest *float64) {
	if b := d.take(8); d.err == nil {
		*dest = math.Float64frombits(Order.Uint64(b))
	}
}

// --- Characters and strings ---

func (d *DataReader) ReadCharUTF8(dest *byte) { d.ReadUint8(dest) }

func (d *DataReader) ReadCharUTF16(dest *uint16) { d.ReadUint16(dest) }

func (d *DataReader) ReadCharUTF32(dest *rune) {
	if b := d.take(4); d.err == nil {
		*dest = rune(Order.Uint32(b))
	}
}

// ReadStringUTF8 reads n raw bytes as a string.
func (d *DataReader) ReadStringUTF8(n int) string {
	return string(d.ReadBytes(n))
}

// ReadStringUTF16 fills dst[off:off+n] with code units, four per transfer.
func (d *DataReader) ReadStringUTF16(dst []uint16, off, n int) {
	if d.err != nil {
		return
	}
	if !inRange(len(dst), off, n) {
		d.err = ErrOutOfRange
		return
	}
	for n >= 4 {
		b := d.take(8)
		if d.err != nil {
			return
		}
		dst[off] = Order.Uint16(b[0:])
		dst[off+1] = Order.Uint16(b[2:])
		dst[off+2] = Order.Uint16(b[4:])
		dst[off+3] = Order.Uint16(b[6:])
		off += 4
		n -= 4
	}
	if n == 0 {
		return
	}
	// tail of 1..3 units
	b := d.take(2 * n)
	if d.err != nil {
		return
	}
	for i := 0; i < n; i++ {
		dst[off+i] = Order.Uint16(b[2*i:])
	}
}

// ReadStringUTF16WL reads a u16 unit count followed by that many UTF-16 code units.
// Unpaired surrogates decode to U+FFFD.
func (d *DataReader) ReadStringUTF16WL() string {
	var n uint16
	d.ReadUint16(&n)
	if d.err != nil || n == 0 {
		return ""
	}
	units := make([]uint16, n)
	d.ReadStringUTF16(units, 0, int(n))
	if d.err != nil {
		return ""
	}
	return string(utf16.Decode(units))
}

// ReadStringUTF8WL reads a u16 byte count followed by that many bytes.
func (d *DataReader) ReadStringUTF8WL() string {
	var n uint16
	d.ReadUint16(&n)
	if d.err != nil {
		return ""
	}
	return d.ReadStringUTF8(int(n))
}

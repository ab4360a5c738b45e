package rzframe

import "io"

// BytesSource is a ByteSource that reads from a pre-allocated byte slice.
// A positive MaxRead caps every Read, imitating a transport that delivers
// bytes in small pieces.
type BytesSource struct {
	B       []byte // source slice
	N       int    // current read position
	MaxRead int
}

// NewBytesSource creates a new BytesSource.
func NewBytesSource(b []byte) *BytesSource {
	return &BytesSource{B: b}
}

// Read implements the [io.Reader] interface.
func (r *BytesSource) Read(p []byte) (int, error) {
	if r.N >= len(r.B) {
		return 0, io.EOF
	}
	if r.MaxRead > 0 && len(p) > r.MaxRead {
		p = p[:r.MaxRead]
	}
	n := copy(p, r.B[r.N:])
	r.N += n
	return n, nil
}

// Close does nothing.
func (r *BytesSource) Close() error { return nil }

// Reset allows the underlying byte slice to be reused.
func (r *BytesSource) Reset() { r.N = 0 }

// Len returns the number of bytes read.
func (r *BytesSource) Len() int { return r.N }

// Size returns the size of the underlying byte slice.
func (r *BytesSource) Size() int { return len(r.B) }

// Available returns the number of bytes available for reading.
func (r *BytesSource) Available() int {
	if n := len(r.B) - r.N; n > 0 {
		return n
	}
	return 0
}

// Remaining returns a view of the unread bytes.
func (r *BytesSource) Remaining() []byte { return r.B[min(r.N, len(r.B)):] }

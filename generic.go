package rzframe

import "fmt"

// MarshalFrame encodes p as one complete frame.
// It fails when the encoder writes fewer bytes than PayloadSize promised.
func MarshalFrame(p Packet) ([]byte, error) {
	expectedSize := HeaderSize + int(p.PayloadSize())
	sink := NewBytesSink(make([]byte, expectedSize))
	w, err := NewDataWriter(sink)
	if err != nil {
		return nil, err
	}
	if err := writeFrame(w, p); err != nil {
		return nil, err
	}
	if sink.Len() < expectedSize {
		return nil, fmt.Errorf("%w: expected %d bytes, but wrote %d", ErrTruncatedData, expectedSize, sink.Len())
	}
	return sink.Bytes(), nil
}

// UnmarshalFrame decodes exactly one frame from data.
// Bytes left after the frame are reported as ErrTrailingData.
func (c *Codec) UnmarshalFrame(data []byte) (Packet, Sync, error) {
	src := NewBytesSource(data)
	r, err := NewDataReader(src)
	if err != nil {
		return nil, 0, err
	}
	p, sync, err := c.ReadFrame(r)
	if err != nil {
		return nil, sync, err
	}
	if n := src.Available(); n > 0 {
		return nil, sync, fmt.Errorf("%w: %d bytes", ErrTrailingData, n)
	}
	return p, sync, nil
}

package rzframe

import "errors"

// Codec reads and writes frames, dispatching decoded ids through a Registry.
//
// A Codec holds no per-connection state and may be shared by any number of
// connections, each with its own DataReader and DataWriter.
type Codec struct {
	reg *Registry
}

// NewCodec seals reg and returns a Codec that decodes with it.
// A nil reg yields a Codec that knows no packet ids.
func NewCodec(reg *Registry) *Codec {
	if reg == nil {
		reg = NewRegistry()
	}
	reg.Seal()
	return &Codec{reg: reg}
}

// Registry returns the sealed registry used for dispatch.
func (c *Codec) Registry() *Registry { return c.reg }

// WriteFrame emits the preamble, the id, the payload length and the payload,
// then flushes w. The encoder's error is returned as-is; when the encoder
// succeeds, a transport failure from any step is returned instead.
//
// The header and whatever the encoder wrote are flushed even when the
// encoder fails, so the peer sees a short frame and has to resync. Only a
// transport failure leaves w unusable for the next frame.
func (c *Codec) WriteFrame(w *DataWriter, p Packet) error {
	return writeFrame(w, p)
}

func writeFrame(w *DataWriter, p Packet) error {
	if err := w.Err(); errors.Is(err, ErrTransport) {
		return err
	}
	w.clearSoftError()
	w.WriteRange(Preamble[:], 0, PreambleLen)
	w.WriteUint8(p.ID())
	w.WriteUint16(p.PayloadSize())
	err := p.EncodePayload(w)
	if soft := w.clearSoftError(); err == nil {
		err = soft
	}
	flushErr := w.Flush()
	if err != nil {
		return err
	}
	return flushErr
}

// ReadFrame reads the next frame from r.
//
// The returned Sync is the preamble search result; on a failed search the
// error is a *FramingError and the caller may simply call ReadFrame again to
// keep scanning. Other outcomes:
//
//   - *UnknownPacketIDError: the id byte was consumed but the length was not.
//   - *OversizedPayloadError: the length exceeded MaxPayloadLen; no payload
//     byte was consumed.
//   - *PayloadCodecError: the packet rejected its payload.
//   - *TransportError: the source failed; r is unusable from then on.
//
// Every other outcome leaves r ready for the next call.
func (c *Codec) ReadFrame(r *DataReader) (Packet, Sync, error) {
	if err := r.Err(); errors.Is(err, ErrTransport) {
		return nil, 0, err
	}
	r.clearSoftError()
	sync, err := readSync(r)
	if err != nil {
		return nil, 0, err
	}
	if !sync.OK() {
		return nil, sync, &FramingError{Sync: sync}
	}

	var id uint8
	r.ReadUint8(&id)
	if err := r.Err(); err != nil {
		return nil, sync, err
	}
	factory, ok := c.reg.lookup(id)
	if !ok {
		return nil, sync, &UnknownPacketIDError{ID: id}
	}

	var length uint16
	r.ReadUint16(&length)
	if err := r.Err(); err != nil {
		return nil, sync, err
	}
	if length > MaxPayloadLen {
		return nil, sync, &OversizedPayloadError{ID: id, Length: length}
	}

	p := factory()
	err = p.DecodePayload(r, length)
	// A transport failure during decode outranks whatever the packet made of it.
	if rerr := r.Err(); errors.Is(rerr, ErrTransport) {
		return nil, sync, rerr
	}
	if soft := r.clearSoftError(); err == nil {
		err = soft
	}
	if err != nil {
		return nil, sync, &PayloadCodecError{ID: id, Cause: err}
	}
	return p, sync, nil
}

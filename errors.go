package rzframe

import (
	"errors"
	"fmt"
)

var (
	// ErrNilIO indicates that a reader, writer or sink was constructed around a nil source or sink.
	ErrNilIO = errors.New("rzframe: nil byte source or sink")

	// ErrSizeTooSmall indicates a BufferedSink was requested with a non-positive capacity.
	ErrSizeTooSmall = errors.New("rzframe: buffer capacity must be positive")

	// ErrClosed indicates a write to a BufferedSink that was already closed.
	ErrClosed = errors.New("rzframe: sink is closed")

	// ErrOutOfRange indicates an explicit (offset, count) byte range does not fit its buffer.
	ErrOutOfRange = errors.New("rzframe: byte range out of bounds")

	// ErrInvalidWrite indicates that a sink returned an invalid (negative or outbound) count from Write.
	ErrInvalidWrite = errors.New("rzframe: sink returned invalid count from Write")

	// ErrInvalidRead indicates that a source returned an invalid (negative or outbound) count from Read.
	ErrInvalidRead = errors.New("rzframe: source returned invalid count from Read")

	// ErrDiscardNegative indicates a Skip was attempted with a negative byte count.
	ErrDiscardNegative = errors.New("rzframe: cannot discard negative number of bytes")

	// ErrTruncatedData indicates a payload ended before all expected bytes were read.
	ErrTruncatedData = errors.New("rzframe: truncated data")

	// ErrTrailingData indicates bytes were left over after decoding a frame from a slice.
	ErrTrailingData = errors.New("rzframe: trailing data after frame")

	// ErrStringTooLong indicates a length-prefixed string does not fit a u16 count.
	ErrStringTooLong = errors.New("rzframe: string too long for u16 length prefix")

	// ErrTransport is matched by every *TransportError.
	ErrTransport = errors.New("rzframe: transport failure")

	// ErrFraming is matched by every *FramingError.
	ErrFraming = errors.New("rzframe: preamble not found")

	// ErrUnknownPacketID indicates a frame carried an id with no registered factory.
	ErrUnknownPacketID = errors.New("rzframe: unknown packet id")

	// ErrOversizedPayload indicates a frame declared a payload longer than MaxPayloadLen.
	ErrOversizedPayload = errors.New("rzframe: payload too large")

	// ErrPayloadCodec is matched by every *PayloadCodecError.
	ErrPayloadCodec = errors.New("rzframe: payload codec failure")

	// ErrRegistrySealed indicates Register was called after the registry was sealed.
	ErrRegistrySealed = errors.New("rzframe: registry is sealed")

	// ErrInvalidPacketID indicates an id outside [0, MaxPacketID] was given to Register.
	ErrInvalidPacketID = errors.New("rzframe: packet id out of range")

	// ErrInvalidFactory indicates a factory is nil, builds nil, or builds a packet with another id.
	ErrInvalidFactory = errors.New("rzframe: invalid packet factory")
)

// TransportError is an I/O failure of the underlying byte stream.
// It aborts the primitive in flight and is never retried.
type TransportError struct {
	Op  string // "read", "write", "flush" or "close"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rzframe: transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// FramingError reports a failed preamble search. Consumed bytes are not
// replayed; the caller recovers by calling ReadFrame again.
type FramingError struct {
	Sync Sync
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("rzframe: preamble not found (%s)", e.Sync)
}

func (e *FramingError) Is(target error) bool { return target == ErrFraming }

// UnknownPacketIDError reports a frame whose id has no registered factory.
// The frame's length field and payload are left unread in the stream.
type UnknownPacketIDError struct {
	ID uint8
}

func (e *UnknownPacketIDError) Error() string {
	return fmt.Sprintf("rzframe: unknown packet id %d", e.ID)
}

func (e *UnknownPacketIDError) Is(target error) bool { return target == ErrUnknownPacketID }

// OversizedPayloadError reports a declared payload length above MaxPayloadLen.
// No payload byte has been consumed when it is returned.
type OversizedPayloadError struct {
	ID     uint8
	Length uint16
}

func (e *OversizedPayloadError) Error() string {
	return fmt.Sprintf("rzframe: packet %d declares %d payload bytes (max %d)", e.ID, e.Length, MaxPayloadLen)
}

func (e *OversizedPayloadError) Is(target error) bool { return target == ErrOversizedPayload }

// PayloadCodecError carries the cause returned by a packet's DecodePayload.
type PayloadCodecError struct {
	ID    uint8
	Cause error
}

func (e *PayloadCodecError) Error() string {
	return fmt.Sprintf("rzframe: packet %d payload: %v", e.ID, e.Cause)
}

func (e *PayloadCodecError) Unwrap() error { return e.Cause }

func (e *PayloadCodecError) Is(target error) bool { return target == ErrPayloadCodec }

func transportError(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

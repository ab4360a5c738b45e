// Package rzframe implements a preamble-delimited packet framing protocol for
// point-to-point byte streams such as serial links.
//
// A frame on the wire is
//
//	[0x72 0x7A 0x32 0x31] [id u8] [length u16 BE] [payload]
//
// with no checksum and no terminator. Payload primitives are big-endian.
package rzframe

const (
	// MaxPayloadLen is the largest payload a frame may declare.
	MaxPayloadLen = 1017

	// MaxPacketID is the largest registrable packet id; the table holds MaxPacketID+1 entries.
	MaxPacketID = 254

	// PreambleLen is the size of the frame marker.
	PreambleLen = 4

	// HeaderSize is preamble + id + length.
	HeaderSize = PreambleLen + 1 + 2
)

// Preamble is the frame marker, "rz21" in ASCII.
var Preamble = [PreambleLen]byte{0x72, 0x7A, 0x32, 0x31}

// Packet is one decoded or to-be-encoded protocol unit.
//
// Both codec directions are part of the interface, so a variant that cannot
// encode or decode does not compile as a Packet.
type Packet interface {
	// ID returns the registry slot of this variant.
	ID() uint8

	// PayloadSize returns the length written into the frame header.
	PayloadSize() uint16

	// EncodePayload writes exactly PayloadSize bytes.
	EncodePayload(w *DataWriter) error

	// DecodePayload reads the payload of a frame that declared length bytes.
	DecodePayload(r *DataReader, length uint16) error
}

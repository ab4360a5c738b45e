package rzframe

import "math"

// RawPacket carries an uninterpreted payload under any id.
type RawPacket struct {
	PacketID uint8
	Payload  []byte
}

var _ Packet = (*RawPacket)(nil)

// RawFactory returns a Factory building RawPacket values for id.
func RawFactory(id uint8) Factory {
	return func() Packet { return &RawPacket{PacketID: id} }
}

func (p *RawPacket) ID() uint8 { return p.PacketID }

// PayloadSize saturates at math.MaxUint16.
func (p *RawPacket) PayloadSize() uint16 { return uint16(min(len(p.Payload), math.MaxUint16)) }

func (p *RawPacket) EncodePayload(w *DataWriter) error {
	if !FitsPayload(len(p.Payload)) {
		return &OversizedPayloadError{ID: p.PacketID, Length: p.PayloadSize()}
	}
	w.WriteBytes(p.Payload)
	return w.Err()
}

func (p *RawPacket) DecodePayload(r *DataReader, length uint16) error {
	p.Payload = r.ReadBytes(int(length))
	return r.Err()
}

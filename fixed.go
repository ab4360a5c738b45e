package rzframe

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the high performance cost of reflection in `binary.Size`
// on every call. Using a concurrent map makes it safe across connections.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// FixedPacket is a Packet whose payload is a struct of fixed-size fields,
// encoded field by field in big-endian order.
//
// Constraint: Payload MUST NOT contain slices, maps or strings, and must fit
// in MaxPayloadLen bytes. Register rejects a FixedPacket that violates this.
type FixedPacket[Payload any] struct {
	PacketID uint8
	Payload  Payload
}

// Statically assert that FixedPacket implements Packet.
var _ Packet = (*FixedPacket[struct{}])(nil)

// FixedFactory returns a Factory building FixedPacket[Payload] values for id.
func FixedFactory[Payload any](id uint8) Factory {
	return func() Packet { return &FixedPacket[Payload]{PacketID: id} }
}

func (c *FixedPacket[Payload]) ID() uint8 { return c.PacketID }

// size returns the encoded size of Payload, or -1 for a variable-size type.
func (c *FixedPacket[Payload]) size() int {
	bodyType := reflect.TypeOf((*Payload)(nil)).Elem()
	if size, ok := sizeCache.Load(bodyType); ok {
		return size
	}
	size := binary.Size(&c.Payload)
	sizeCache.Store(bodyType, size)
	return size
}

// Validate reports whether Payload can travel in a frame.
func (c *FixedPacket[Payload]) Validate() error {
	size := c.size()
	if size < 0 {
		return fmt.Errorf("payload %T is not fixed-size", c.Payload)
	}
	if !FitsPayload(size) {
		return fmt.Errorf("payload %T needs %d bytes (max %d)", c.Payload, size, MaxPayloadLen)
	}
	return nil
}

func (c *FixedPacket[Payload]) PayloadSize() uint16 {
	return uint16(max(c.size(), 0))
}

func (c *FixedPacket[Payload]) EncodePayload(w *DataWriter) error {
	if err := binary.Write(w, Order, &c.Payload); err != nil {
		return err
	}
	return w.Err()
}

// DecodePayload reads Payload and skips any declared bytes beyond it.
func (c *FixedPacket[Payload]) DecodePayload(r *DataReader, length uint16) error {
	size := c.size()
	if int(length) < size {
		return fmt.Errorf("%w: %T needs %d bytes, frame declares %d", ErrTruncatedData, c.Payload, size, length)
	}
	buf := r.ReadBytes(size)
	if err := r.Err(); err != nil {
		return err
	}
	if _, err := binary.Decode(buf, Order, &c.Payload); err != nil {
		return ErrTruncatedData
	}
	r.Skip(int(length) - size)
	return r.Err()
}

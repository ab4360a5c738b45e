package rzframe

import (
	"encoding/binary"
	"unicode/utf16"

	"golang.org/x/exp/constraints"
)

var (
	// BE is the big-endian byte order.
	BE = binary.BigEndian
	// Order is the byte order of every multi-byte value on the wire.
	Order = BE
)

// WriteEnum8 writes a one-byte enumeration value.
func WriteEnum8[E ~uint8](w *DataWriter, v E) { w.WriteUint8(uint8(v)) }

// ReadEnum8 reads a one-byte enumeration value into dest.
func ReadEnum8[E ~uint8](r *DataReader, dest *E) {
	var v uint8
	r.ReadUint8(&v)
	if r.Err() == nil {
		*dest = E(v)
	}
}

// FitsPayload reports whether n bytes fit in one frame payload.
func FitsPayload[T constraints.Integer](n T) bool {
	return n >= 0 && uint64(n) <= MaxPayloadLen
}

// SizeUTF16WL returns the encoded size of s as written by WriteStringUTF16WL.
func SizeUTF16WL(s string) int {
	n := 2
	for _, r := range s {
		n += 2 * utf16.RuneLen(r)
	}
	return n
}

// SizeUTF8WL returns the encoded size of s as written by WriteStringUTF8WL.
func SizeUTF8WL(s string) int { return 2 + len(s) }

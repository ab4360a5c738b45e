package rzframe

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A simple fixed-size struct for testing FixedPacket.
type mockPayload struct {
	Seq  uint32
	Data [2]byte
	On   bool
}

type mockPacket = FixedPacket[mockPayload]

func fixedCodec(t *testing.T) *Codec {
	reg := NewRegistry()
	require.NoError(t, reg.Register(20, FixedFactory[mockPayload](20)))
	return NewCodec(reg)
}

func TestFixedPacket_Encode(t *testing.T) {
	data, err := MarshalFrame(&mockPacket{PacketID: 20, Payload: mockPayload{Seq: 0xDEADBEEF, Data: [2]byte{1, 2}, On: true}})
	require.NoError(t, err)
	assert.Equal(t, frameBytes(20, 7, 0xDE, 0xAD, 0xBE, 0xEF, 1, 2, 1), data)
}

func TestFixedPacket_RoundTrip(t *testing.T) {
	codec := fixedCodec(t)
	sent := &mockPacket{PacketID: 20, Payload: mockPayload{Seq: 42, Data: [2]byte{9, 8}}}

	data, err := MarshalFrame(sent)
	require.NoError(t, err)
	got, _, err := codec.UnmarshalFrame(data)
	require.NoError(t, err)
	assert.Equal(t, sent, got)
}

func TestFixedPacket_SkipsExtraDeclaredBytes(t *testing.T) {
	codec := fixedCodec(t)
	frame := frameBytes(20, 9, 0, 0, 0, 5, 0, 0, 0, 0xFF, 0xFF)
	got, _, err := codec.UnmarshalFrame(frame)
	require.NoError(t, err)
	assert.EqualValues(t, 5, got.(*mockPacket).Payload.Seq)
}

func TestFixedPacket_ShortDeclaredLength(t *testing.T) {
	codec := fixedCodec(t)
	_, _, err := codec.UnmarshalFrame(frameBytes(20, 3, 0, 0, 0))
	assert.ErrorIs(t, err, ErrPayloadCodec)
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestFixedPacket_SizeCache(t *testing.T) {
	c := &mockPacket{}
	expectedSize := 7 // uint32(4) + [2]byte(2) + bool(1)

	assert.EqualValues(t, expectedSize, c.PayloadSize())
	assert.EqualValues(t, expectedSize, c.PayloadSize())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c2 := &mockPacket{PacketID: uint8(i)}
			assert.EqualValues(t, expectedSize, c2.PayloadSize())
		}()
	}
	wg.Wait()
}

func TestRawPacket(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(200, RawFactory(200)))
	codec := NewCodec(reg)

	data, err := MarshalFrame(&RawPacket{PacketID: 200, Payload: []byte("abc")})
	require.NoError(t, err)
	got, _, err := codec.UnmarshalFrame(data)
	require.NoError(t, err)
	assert.Equal(t, &RawPacket{PacketID: 200, Payload: []byte("abc")}, got)

	got, _, err = codec.UnmarshalFrame(frameBytes(200, 0))
	require.NoError(t, err)
	assert.Empty(t, got.(*RawPacket).Payload)
}

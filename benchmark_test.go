package rzframe

import (
	"encoding/binary"
	"testing"
)

type BenchmarkPayload struct {
	ID      uint32
	Val1    uint64
	Val2    uint64
	Val3    uint64
	IsAlive bool
	Padding [3]byte
}

type BenchmarkPacket = FixedPacket[BenchmarkPayload]

func BenchmarkFixedMarshalFrame(b *testing.B) {
	p := &BenchmarkPacket{PacketID: 1, Payload: BenchmarkPayload{ID: 1, Val1: 100}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MarshalFrame(p)
	}
}

func BenchmarkFixedUnmarshalFrame(b *testing.B) {
	reg := NewRegistry()
	reg.MustRegister(1, FixedFactory[BenchmarkPayload](1))
	codec := NewCodec(reg)
	data, _ := MarshalFrame(&BenchmarkPacket{PacketID: 1, Payload: BenchmarkPayload{ID: 1, Val1: 100}})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = codec.UnmarshalFrame(data)
	}
}

func BenchmarkChatWriteFrame(b *testing.B) {
	codec := NewCodec(testRegistry())
	sink := NewBytesSink(make([]byte, 256))
	w, _ := NewDataWriter(sink)
	p := &chatPacket{Message: "the quick brown fox"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sink.Reset()
		_ = codec.WriteFrame(w, p)
	}
}

// Baseline comparison using only binary.Write directly, to see overhead of the framing.
func BenchmarkStandardBinaryWrite(b *testing.B) {
	payload := BenchmarkPayload{ID: 1, Val1: 100}
	buf := make([]byte, binary.Size(payload))
	w := NewBytesSink(buf)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Reset()
		_ = binary.Write(w, Order, &payload)
	}
}

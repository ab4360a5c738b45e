package rzframe

import (
	"bytes"
	"errors"
)

// --- Mocks and Helpers ---

var errBadPayload = errors.New("bad payload")

// recordingSink is a ByteSink that keeps every Write call as a separate chunk.
type recordingSink struct {
	chunks   [][]byte
	flushes  int
	closes   int
	maxWrite int   // accept at most this many bytes per Write when positive
	failWith error // fail every Write when set
}

func (s *recordingSink) Write(p []byte) (int, error) {
	if s.failWith != nil {
		return 0, s.failWith
	}
	if s.maxWrite > 0 && len(p) > s.maxWrite {
		p = p[:s.maxWrite]
	}
	s.chunks = append(s.chunks, bytes.Clone(p))
	return len(p), nil
}

func (s *recordingSink) Flush() error { s.flushes++; return nil }
func (s *recordingSink) Close() error { s.closes++; return nil }

func (s *recordingSink) bytes() []byte { return bytes.Join(s.chunks, nil) }

// stalledSource never delivers a byte and never fails.
type stalledSource struct{}

func (stalledSource) Read([]byte) (int, error) { return 0, nil }

// chatPacket carries a length-prefixed UTF-16 message.
type chatPacket struct {
	Message string
}

func (p *chatPacket) ID() uint8           { return 1 }
func (p *chatPacket) PayloadSize() uint16 { return uint16(SizeUTF16WL(p.Message)) }

func (p *chatPacket) EncodePayload(w *DataWriter) error {
	w.WriteStringUTF16WL(p.Message)
	return w.Err()
}

func (p *chatPacket) DecodePayload(r *DataReader, length uint16) error {
	p.Message = r.ReadStringUTF16WL()
	return r.Err()
}

type counterAction uint8

const (
	counterIncrement counterAction = iota
	counterDecrement
)

// counterPacket carries an action enum and an amount.
type counterPacket struct {
	Action counterAction
	Amount int32
}

func (p *counterPacket) ID() uint8           { return 2 }
func (p *counterPacket) PayloadSize() uint16 { return 5 }

func (p *counterPacket) EncodePayload(w *DataWriter) error {
	WriteEnum8(w, p.Action)
	w.WriteInt32(p.Amount)
	return w.Err()
}

func (p *counterPacket) DecodePayload(r *DataReader, length uint16) error {
	ReadEnum8(r, &p.Action)
	r.ReadInt32(&p.Amount)
	return r.Err()
}

// brokenPacket fails both directions with errBadPayload.
type brokenPacket struct{}

func (p *brokenPacket) ID() uint8 { return 3 }

func (p *brokenPacket) PayloadSize() uint16 { return 0 }

func (p *brokenPacket) EncodePayload(*DataWriter) error { return errBadPayload }

func (p *brokenPacket) DecodePayload(*DataReader, uint16) error { return errBadPayload }

func testRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister(1, func() Packet { return &chatPacket{} })
	reg.MustRegister(2, func() Packet { return &counterPacket{} })
	reg.MustRegister(3, func() Packet { return &brokenPacket{} })
	return reg
}

// frameBytes builds a raw frame without going through the encoder.
func frameBytes(id uint8, length uint16, payload ...byte) []byte {
	b := append([]byte{}, Preamble[:]...)
	b = append(b, id, byte(length>>8), byte(length))
	return append(b, payload...)
}

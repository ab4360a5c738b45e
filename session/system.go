// Package session runs a packet system over one connection: a reader that
// decodes frames into a read queue, a send queue drained by a writer, and a
// dispatch.Map that delivers queued packets by priority.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/rs/zerolog"

	"github.com/oy3o/rzframe"
	"github.com/oy3o/rzframe/dispatch"
)

var (
	ErrClosed    = errors.New("session: system is closed")
	ErrQueueFull = errors.New("session: queue is full")
	ErrNilPacket = errors.New("session: nil packet")
	ErrRunning   = errors.New("session: already running")
)

// Recoverable reports whether a ReadNext error left the stream usable, so
// the caller may keep reading.
func Recoverable(err error) bool {
	return errors.Is(err, rzframe.ErrFraming) ||
		errors.Is(err, rzframe.ErrUnknownPacketID) ||
		errors.Is(err, rzframe.ErrOversizedPayload) ||
		errors.Is(err, rzframe.ErrPayloadCodec)
}

type Option func(*System)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *System) { s.log = l }
}

// WithRegisterer registers the System's metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *System) { s.registerer = reg }
}

// WithReadErrorHandler is called with every recoverable ReadNext error.
func WithReadErrorHandler(fn func(err error)) Option {
	return func(s *System) { s.onReadError = fn }
}

// WithWriteErrorHandler is called with every failed SendNow.
func WithWriteErrorHandler(fn func(p rzframe.Packet, err error)) Option {
	return func(s *System) { s.onWriteError = fn }
}

// WithReadAvailable is called by Run after each packet is queued.
func WithReadAvailable(fn func()) Option {
	return func(s *System) { s.onReadAvailable = fn }
}

// System owns one connection and the queues around it.
//
// ReadNext and the send operations may be called from different goroutines;
// reads are serialized with each other, and so are writes.
type System struct {
	cfg      Config
	conn     io.ReadWriteCloser
	codec    *rzframe.Codec
	handlers *dispatch.Map

	log        zerolog.Logger
	registerer prometheus.Registerer
	metrics    *metrics

	readMu sync.Mutex
	reader *rzframe.DataReader

	writeMu sync.Mutex
	writer  *rzframe.DataWriter

	readQMu   sync.Mutex
	readQueue []rzframe.Packet

	sendQMu   sync.Mutex
	sendQueue []rzframe.Packet
	sendReady chan struct{}

	packetsRead *xsync.Counter
	packetsSent *xsync.Counter

	onReadError     func(error)
	onWriteError    func(rzframe.Packet, error)
	onReadAvailable func()

	running   atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New builds a System over conn. The codec's registry decides which ids
// can be read.
func New(conn io.ReadWriteCloser, codec *rzframe.Codec, cfg Config, opts ...Option) (*System, error) {
	if conn == nil || codec == nil {
		return nil, rzframe.ErrNilIO
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reader, err := rzframe.NewDataReader(conn)
	if err != nil {
		return nil, err
	}
	sink, err := rzframe.NewBufferedSinkSize(rzframe.SinkOf(conn), cfg.BufferSize)
	if err != nil {
		return nil, err
	}
	writer, err := rzframe.NewDataWriter(sink)
	if err != nil {
		return nil, err
	}

	s := &System{
		cfg:         cfg,
		conn:        conn,
		codec:       codec,
		handlers:    dispatch.NewMap(),
		log:         zerolog.Nop(),
		reader:      reader,
		writer:      writer,
		readQueue:   make([]rzframe.Packet, 0, cfg.ReadQueue),
		sendQueue:   make([]rzframe.Packet, 0, cfg.SendQueue),
		sendReady:   make(chan struct{}, 1),
		packetsRead: xsync.NewCounter(),
		packetsSent: xsync.NewCounter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("system", cfg.Name).Logger()
	s.metrics = newMetrics(cfg.Name)
	if err := s.metrics.register(s.registerer); err != nil {
		return nil, fmt.Errorf("session: register metrics: %w", err)
	}
	return s, nil
}

func (s *System) Config() Config          { return s.cfg }
func (s *System) Codec() *rzframe.Codec   { return s.codec }
func (s *System) Handlers() *dispatch.Map { return s.handlers }
func (s *System) Closed() bool            { return s.closed.Load() }
func (s *System) PacketsRead() int64      { return s.packetsRead.Value() }
func (s *System) PacketsSent() int64      { return s.packetsSent.Value() }

func (s *System) ReadQueueLen() int {
	s.readQMu.Lock()
	defer s.readQMu.Unlock()
	return len(s.readQueue)
}

func (s *System) SendQueueLen() int {
	s.sendQMu.Lock()
	defer s.sendQMu.Unlock()
	return len(s.sendQueue)
}

// ReadNext reads one frame and queues the packet. It blocks until a frame,
// a rejected frame or a transport failure arrives. A full read queue fails
// with ErrQueueFull before any byte is read.
func (s *System) ReadNext() (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	if s.ReadQueueLen() >= s.cfg.ReadQueue {
		return false, ErrQueueFull
	}

	s.readMu.Lock()
	p, res, err := s.codec.ReadFrame(s.reader)
	s.readMu.Unlock()

	if res != 0 {
		s.metrics.syncResults.WithLabelValues(res.String()).Inc()
	}
	if err != nil {
		return false, s.readFailed(err)
	}

	s.readQMu.Lock()
	s.readQueue = append(s.readQueue, p)
	s.readQMu.Unlock()

	s.packetsRead.Inc()
	s.metrics.framesRead.Inc()
	s.log.Debug().Uint8("id", p.ID()).Stringer("sync", res).Msg("packet read")
	return true, nil
}

func (s *System) readFailed(err error) error {
	kind := errorKind(err)
	s.metrics.readErrors.WithLabelValues(kind).Inc()
	if Recoverable(err) {
		s.log.Warn().Err(err).Str("kind", kind).Msg("frame rejected")
		if s.onReadError != nil {
			s.onReadError(err)
		}
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	s.log.Error().Err(err).Msg("read failed")
	return err
}

// ReadNextN calls ReadNext up to n times and stops at the first error.
func (s *System) ReadNextN(n int) (int, error) {
	read := 0
	for read < n {
		if _, err := s.ReadNext(); err != nil {
			return read, err
		}
		read++
	}
	return read, nil
}

func (s *System) popRead() (rzframe.Packet, bool) {
	s.readQMu.Lock()
	defer s.readQMu.Unlock()
	if len(s.readQueue) == 0 {
		return nil, false
	}
	p := s.readQueue[0]
	s.readQueue[0] = nil
	s.readQueue = s.readQueue[1:]
	return p, true
}

// ProcessReadQueue delivers up to n queued packets through Handlers and
// returns how many were taken off the queue. A failing callback stops the
// batch; the packets behind it stay queued.
func (s *System) ProcessReadQueue(n int) (int, error) {
	for i := 0; i < n; i++ {
		p, ok := s.popRead()
		if !ok {
			return i, nil
		}
		if _, err := s.handlers.Deliver(p); err != nil {
			return i + 1, fmt.Errorf("session: deliver packet %d/%d (id %d): %w", i+1, n, p.ID(), err)
		}
	}
	return n, nil
}

// Send queues p for the writer.
func (s *System) Send(p rzframe.Packet) error {
	if p == nil {
		return ErrNilPacket
	}
	if s.closed.Load() {
		return ErrClosed
	}
	s.sendQMu.Lock()
	if len(s.sendQueue) >= s.cfg.SendQueue {
		s.sendQMu.Unlock()
		return ErrQueueFull
	}
	s.sendQueue = append(s.sendQueue, p)
	s.sendQMu.Unlock()

	select {
	case s.sendReady <- struct{}{}:
	default:
	}
	return nil
}

// SendNow writes and flushes p, bypassing the send queue.
// A payload larger than MaxPayloadLen is refused before any byte is written.
func (s *System) SendNow(p rzframe.Packet) error {
	if p == nil {
		return ErrNilPacket
	}
	if s.closed.Load() {
		return ErrClosed
	}
	var err error
	if size := p.PayloadSize(); !rzframe.FitsPayload(size) {
		err = &rzframe.OversizedPayloadError{ID: p.ID(), Length: size}
	} else {
		s.writeMu.Lock()
		err = s.codec.WriteFrame(s.writer, p)
		s.writeMu.Unlock()
	}
	if err != nil {
		if errors.Is(err, rzframe.ErrTransport) && s.closed.Load() {
			err = ErrClosed
		}
		s.log.Error().Err(err).Uint8("id", p.ID()).Msg("write failed")
		if s.onWriteError != nil {
			s.onWriteError(p, err)
		}
		return err
	}
	s.packetsSent.Inc()
	s.metrics.framesWritten.Inc()
	s.log.Debug().Uint8("id", p.ID()).Uint16("length", p.PayloadSize()).Msg("packet sent")
	return nil
}

func (s *System) popSend() (rzframe.Packet, bool) {
	s.sendQMu.Lock()
	defer s.sendQMu.Unlock()
	if len(s.sendQueue) == 0 {
		return nil, false
	}
	p := s.sendQueue[0]
	s.sendQueue[0] = nil
	s.sendQueue = s.sendQueue[1:]
	return p, true
}

// ProcessSendQueue writes up to n queued packets and returns how many were
// written. It stops at the first failure; the failed packet is dropped.
func (s *System) ProcessSendQueue(n int) (int, error) {
	sent := 0
	for sent < n {
		p, ok := s.popSend()
		if !ok {
			break
		}
		if err := s.SendNow(p); err != nil {
			return sent, fmt.Errorf("session: write %T (%d/%d): %w", p, sent+1, n, err)
		}
		sent++
	}
	return sent, nil
}

// fatalWrite reports whether a write error leaves the connection unusable.
func fatalWrite(err error) bool {
	return errors.Is(err, rzframe.ErrTransport) || errors.Is(err, ErrClosed)
}

// Run reads and writes on two goroutines until ctx is done, Close is called,
// or the transport fails. It closes the System before returning and only
// reports transport failures.
func (s *System) Run(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer s.running.Store(false)

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.log.Info().Msg("system started")
	errc := make(chan error, 2)
	go func() { errc <- s.readLoop(ctx) }()
	go func() { errc <- s.writeLoop(ctx) }()

	pending := 2
	var err error
	select {
	case err = <-errc:
		pending--
	case <-ctx.Done():
	}
	cancel()
	// Closing the connection releases a reader parked in Read.
	_ = s.Close()
	for ; pending > 0; pending-- {
		if e := <-errc; err == nil {
			err = e
		}
	}
	// Closing the peer races with cancellation; a failure seen after ctx
	// ended is part of the shutdown.
	if errors.Is(err, ErrClosed) || parent.Err() != nil {
		return nil
	}
	return err
}

func (s *System) readLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		_, err := s.ReadNext()
		switch {
		case err == nil:
			if s.onReadAvailable != nil {
				s.onReadAvailable()
			}
		case Recoverable(err):
		case errors.Is(err, ErrQueueFull):
			if !sleep(ctx, max(s.cfg.IdleDelay, time.Millisecond)) {
				return nil
			}
		default:
			return err
		}
	}
	return nil
}

func (s *System) writeLoop(ctx context.Context) error {
	for {
		if _, err := s.ProcessSendQueue(s.cfg.WriteBatch); err != nil && fatalWrite(err) {
			return err
		}
		if s.SendQueueLen() > 0 {
			if !sleep(ctx, s.cfg.IdleDelay) {
				return nil
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-s.sendReady:
		}
	}
}

// sleep waits for d and reports whether ctx is still live.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Close flushes what it can and closes the connection. Queued packets are
// discarded. Calling Close more than once returns the first result.
func (s *System) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		// A writer blocked on the transport holds writeMu; skip the flush then.
		if s.writeMu.TryLock() {
			if err := s.writer.Flush(); err != nil {
				s.log.Debug().Err(err).Msg("flush on close failed")
			}
			s.writeMu.Unlock()
		}
		s.closeErr = s.conn.Close()
		s.log.Info().
			Int64("read", s.packetsRead.Value()).
			Int64("sent", s.packetsSent.Value()).
			Msg("system closed")
	})
	return s.closeErr
}

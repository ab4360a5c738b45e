// Package dispatch delivers decoded packets to listeners and handlers in
// priority order.
package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/oy3o/rzframe"
)

// Priority orders delivery; Highest runs first.
type Priority int

const (
	Highest Priority = iota
	High
	Normal
	Low
	Lowest

	levels = int(Lowest) + 1
)

var (
	// ErrInvalidPriority indicates a priority outside [Highest, Lowest].
	ErrInvalidPriority = errors.New("dispatch: invalid priority")

	// ErrNilCallback indicates a nil listener or handler.
	ErrNilCallback = errors.New("dispatch: nil listener or handler")
)

func (p Priority) Valid() bool { return p >= Highest && p <= Lowest }

func (p Priority) String() string {
	switch p {
	case Highest:
		return "highest"
	case High:
		return "high"
	case Normal:
		return "normal"
	case Low:
		return "low"
	case Lowest:
		return "lowest"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// Listener observes packets. It cannot stop delivery.
type Listener interface {
	OnReceived(p rzframe.Packet)
}

// Handler may consume a packet. Handle is only called when CanProcess
// accepts the packet; returning true stops delivery.
type Handler interface {
	CanProcess(p rzframe.Packet) bool
	Handle(p rzframe.Packet) bool
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(p rzframe.Packet)

func (f ListenerFunc) OnReceived(p rzframe.Packet) { f(p) }

// HandlerFunc adapts a function to a Handler that accepts every packet.
type HandlerFunc func(p rzframe.Packet) bool

func (f HandlerFunc) CanProcess(rzframe.Packet) bool { return true }
func (f HandlerFunc) Handle(p rzframe.Packet) bool   { return f(p) }

// Registration identifies one AddListener or AddHandler call.
type Registration struct {
	id       uint64
	priority Priority
	handler  bool
}

func (r Registration) Priority() Priority { return r.priority }

type listenerEntry struct {
	id uint64
	l  Listener
}

type handlerEntry struct {
	id uint64
	h  Handler
}

// Map holds listeners and handlers for each priority.
// It is safe for concurrent use; callbacks may add or remove registrations
// while a packet is being delivered, taking effect from the next Deliver.
type Map struct {
	mu        sync.RWMutex
	next      uint64
	listeners [levels][]listenerEntry
	handlers  [levels][]handlerEntry
}

func NewMap() *Map {
	return &Map{}
}

// AddListener registers l at priority.
func (m *Map) AddListener(priority Priority, l Listener) (Registration, error) {
	if !priority.Valid() {
		return Registration{}, fmt.Errorf("%w: %d", ErrInvalidPriority, int(priority))
	}
	if l == nil {
		return Registration{}, ErrNilCallback
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.listeners[priority] = append(m.listeners[priority], listenerEntry{id: m.next, l: l})
	return Registration{id: m.next, priority: priority}, nil
}

// AddHandler registers h at priority.
func (m *Map) AddHandler(priority Priority, h Handler) (Registration, error) {
	if !priority.Valid() {
		return Registration{}, fmt.Errorf("%w: %d", ErrInvalidPriority, int(priority))
	}
	if h == nil {
		return Registration{}, ErrNilCallback
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.handlers[priority] = append(m.handlers[priority], handlerEntry{id: m.next, h: h})
	return Registration{id: m.next, priority: priority, handler: true}, nil
}

// Remove drops a registration. It reports whether it was still present.
func (m *Map) Remove(reg Registration) bool {
	if !reg.priority.Valid() || reg.id == 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if reg.handler {
		list := m.handlers[reg.priority]
		for i, e := range list {
			if e.id == reg.id {
				m.handlers[reg.priority] = append(list[:i:i], list[i+1:]...)
				return true
			}
		}
		return false
	}
	list := m.listeners[reg.priority]
	for i, e := range list {
		if e.id == reg.id {
			m.listeners[reg.priority] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every listener and handler.
func (m *Map) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = [levels][]listenerEntry{}
	m.handlers = [levels][]handlerEntry{}
}

// Len returns the number of registrations.
func (m *Map) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for i := 0; i < levels; i++ {
		n += len(m.listeners[i]) + len(m.handlers[i])
	}
	return n
}

// Deliver runs, for each priority from Highest to Lowest, every listener and
// then every handler that can process p. It stops at the first handler that
// consumes p and reports whether one did.
//
// A panicking callback aborts delivery and is returned as a *HandlerError.
func (m *Map) Deliver(p rzframe.Packet) (bool, error) {
	for pr := Highest; pr <= Lowest; pr++ {
		m.mu.RLock()
		listeners := m.listeners[pr]
		handlers := m.handlers[pr]
		m.mu.RUnlock()

		for _, e := range listeners {
			if err := callListener(pr, e.l, p); err != nil {
				return false, err
			}
		}
		for _, e := range handlers {
			handled, err := callHandler(pr, e.h, p)
			if err != nil {
				return false, err
			}
			if handled {
				return true, nil
			}
		}
	}
	return false, nil
}

// HandlerError reports a callback that panicked during Deliver.
type HandlerError struct {
	Packet   rzframe.Packet
	Priority Priority
	Listener bool
	Cause    error
}

func (e *HandlerError) Error() string {
	kind := "handler"
	if e.Listener {
		kind = "listener"
	}
	return fmt.Sprintf("dispatch: %s at %s priority failed on packet %d: %v", kind, e.Priority, e.Packet.ID(), e.Cause)
}

func (e *HandlerError) Unwrap() error { return e.Cause }

func callListener(pr Priority, l Listener, p rzframe.Packet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{Packet: p, Priority: pr, Listener: true, Cause: panicError(r)}
		}
	}()
	l.OnReceived(p)
	return nil
}

func callHandler(pr Priority, h Handler, p rzframe.Packet) (handled bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{Packet: p, Priority: pr, Cause: panicError(r)}
		}
	}()
	if !h.CanProcess(p) {
		return false, nil
	}
	return h.Handle(p), nil
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}

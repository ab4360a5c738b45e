package dispatch

import "github.com/oy3o/rzframe"

// Listen returns a Listener that only sees packets of type T.
func Listen[T rzframe.Packet](fn func(T)) Listener {
	return ListenerFunc(func(p rzframe.Packet) {
		if v, ok := p.(T); ok {
			fn(v)
		}
	})
}

type typedHandler[T rzframe.Packet] struct {
	handle     func(T) bool
	canProcess func(T) bool
}

// Handle returns a Handler for packets of type T. A nil canProcess accepts
// every T.
func Handle[T rzframe.Packet](handle func(T) bool, canProcess func(T) bool) Handler {
	return &typedHandler[T]{handle: handle, canProcess: canProcess}
}

func (h *typedHandler[T]) CanProcess(p rzframe.Packet) bool {
	v, ok := p.(T)
	if !ok {
		return false
	}
	return h.canProcess == nil || h.canProcess(v)
}

func (h *typedHandler[T]) Handle(p rzframe.Packet) bool {
	return h.handle(p.(T))
}

package rzframe

import (
	"fmt"
	"sync/atomic"
)

// validator is implemented by packet variants that can reject their own
// shape at registration time.
type validator interface {
	Validate() error
}

// Factory builds an empty packet ready for DecodePayload.
type Factory func() Packet

// Registry maps a packet id to the factory of its variant.
//
// A Registry is populated once, then sealed; NewCodec seals the registry it
// is given. Register after Seal fails, which makes the setup-then-decode
// ordering explicit rather than a convention. Register itself is not safe
// for concurrent use.
type Registry struct {
	table  [MaxPacketID + 1]Factory
	sealed atomic.Bool
}

// NewRegistry returns an empty, unsealed Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register stores f for id, replacing any earlier registration.
// The factory is invoked once to check it builds a packet reporting id.
func (r *Registry) Register(id uint8, f Factory) error {
	if r.sealed.Load() {
		return ErrRegistrySealed
	}
	if int(id) > MaxPacketID {
		return fmt.Errorf("%w: %d (max %d)", ErrInvalidPacketID, id, MaxPacketID)
	}
	if f == nil {
		return fmt.Errorf("%w: nil factory for id %d", ErrInvalidFactory, id)
	}
	p := f()
	if p == nil {
		return fmt.Errorf("%w: factory for id %d built nil", ErrInvalidFactory, id)
	}
	if got := p.ID(); got != id {
		return fmt.Errorf("%w: factory for id %d built %T with id %d", ErrInvalidFactory, id, p, got)
	}
	if v, ok := p.(validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: id %d: %v", ErrInvalidFactory, id, err)
		}
	}
	r.table[id] = f
	return nil
}

// MustRegister is like Register but panics on error. It suits package init code.
func (r *Registry) MustRegister(id uint8, f Factory) {
	if err := r.Register(id, f); err != nil {
		panic(err)
	}
}

// RegisterType registers the pointer type *T under the id its zero value reports.
func RegisterType[T any, PT interface {
	*T
	Packet
}](r *Registry) error {
	id := PT(new(T)).ID()
	return r.Register(id, func() Packet { return PT(new(T)) })
}

// Seal freezes the registry. It is safe to call more than once.
func (r *Registry) Seal() { r.sealed.Store(true) }

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool { return r.sealed.Load() }

func (r *Registry) lookup(id uint8) (Factory, bool) {
	if int(id) > MaxPacketID {
		return nil, false
	}
	f := r.table[id]
	return f, f != nil
}

// Create builds a new packet for id.
func (r *Registry) Create(id uint8) (Packet, error) {
	f, ok := r.lookup(id)
	if !ok {
		return nil, &UnknownPacketIDError{ID: id}
	}
	return f(), nil
}

// IDs lists the registered ids in ascending order.
func (r *Registry) IDs() []uint8 {
	var ids []uint8
	for id, f := range r.table {
		if f != nil {
			ids = append(ids, uint8(id))
		}
	}
	return ids
}

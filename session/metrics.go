package session

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oy3o/rzframe"
)

type metrics struct {
	framesRead    prometheus.Counter
	framesWritten prometheus.Counter
	syncResults   *prometheus.CounterVec
	readErrors    *prometheus.CounterVec
}

func newMetrics(name string) *metrics {
	labels := prometheus.Labels{"system": name}
	return &metrics{
		framesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rzframe",
			Subsystem:   "session",
			Name:        "frames_read_total",
			Help:        "Frames decoded and queued.",
			ConstLabels: labels,
		}),
		framesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rzframe",
			Subsystem:   "session",
			Name:        "frames_written_total",
			Help:        "Frames written and flushed.",
			ConstLabels: labels,
		}),
		syncResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "rzframe",
			Subsystem:   "session",
			Name:        "sync_results_total",
			Help:        "Preamble search outcomes.",
			ConstLabels: labels,
		}, []string{"result"}),
		readErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "rzframe",
			Subsystem:   "session",
			Name:        "read_errors_total",
			Help:        "Frames rejected by the reader, by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
	}
}

// register adds the collectors to reg. A collector that is already
// registered is replaced by the existing one so two Systems with the same
// name share their series.
func (m *metrics) register(reg prometheus.Registerer) error {
	if reg == nil {
		return nil
	}
	var err error
	m.framesRead, err = registerOrReuse(reg, m.framesRead)
	if err != nil {
		return err
	}
	m.framesWritten, err = registerOrReuse(reg, m.framesWritten)
	if err != nil {
		return err
	}
	m.syncResults, err = registerOrReuse(reg, m.syncResults)
	if err != nil {
		return err
	}
	m.readErrors, err = registerOrReuse(reg, m.readErrors)
	return err
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// errorKind labels a ReadFrame error.
func errorKind(err error) string {
	switch {
	case errors.Is(err, rzframe.ErrFraming):
		return "framing"
	case errors.Is(err, rzframe.ErrUnknownPacketID):
		return "unknown_id"
	case errors.Is(err, rzframe.ErrOversizedPayload):
		return "oversized"
	case errors.Is(err, rzframe.ErrPayloadCodec):
		return "payload"
	case errors.Is(err, rzframe.ErrTransport):
		return "transport"
	}
	return "other"
}

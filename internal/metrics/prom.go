package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Flush results used as the "result" label.
const (
	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"
)

// Prom records schedule editing activity in Prometheus collectors.
type Prom struct {
	mutations *prometheus.CounterVec
	flushes   *prometheus.CounterVec
	dragMoves prometheus.Counter
	dirty     prometheus.Gauge
}

// NewProm registers the schedule collectors on reg. A nil reg means the
// default registerer. Collectors that are already registered are reused.
func NewProm(reg prometheus.Registerer) (*Prom, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trv_schedule_mutations_total",
		Help: "Schedule mutations applied, by operation",
	}, []string{"op"})
	flushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trv_schedule_flushes_total",
		Help: "Per-day flush attempts, by result",
	}, []string{"result"})
	dragMoves := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trv_schedule_drag_moves_total",
		Help: "Drag moves applied to transitions",
	})
	dirty := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "trv_schedule_dirty_days",
		Help: "Weekdays with changes not yet flushed",
	})

	var err error
	if mutations, err = register(reg, mutations); err != nil {
		return nil, err
	}
	if flushes, err = register(reg, flushes); err != nil {
		return nil, err
	}
	if dragMoves, err = register(reg, dragMoves); err != nil {
		return nil, err
	}
	if dirty, err = register(reg, dirty); err != nil {
		return nil, err
	}
	return &Prom{mutations: mutations, flushes: flushes, dragMoves: dragMoves, dirty: dirty}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Mutation counts one applied mutation of kind op.
func (p *Prom) Mutation(op string) {
	p.mutations.WithLabelValues(op).Inc()
}

// Flush counts one per-day flush outcome.
func (p *Prom) Flush(result string) {
	p.flushes.WithLabelValues(result).Inc()
}

// DragMove counts one applied drag move.
func (p *Prom) DragMove() {
	p.dragMoves.Inc()
}

// DirtyDays sets the number of days waiting for a flush.
func (p *Prom) DirtyDays(n int) {
	p.dirty.Set(float64(n))
}

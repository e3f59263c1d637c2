// Package metrics accumulates scalar diagnostics over the snapshots of a
// simulated field.
package metrics

import (
	"github.com/san-kum/lbmsim/internal/sim"
)

type Metric interface {
	Name() string
	Observe(t float64, x, u []float64)
	Value() float64
	Reset()
}

// Observer feeds the moment field of the simulation to every metric after
// each step.
func Observer(field string, ms ...Metric) sim.Observer {
	return sim.ObserverFunc(func(s *sim.Simulation) {
		u, err := s.Moment(field)
		if err != nil {
			return
		}
		x := s.Domain().X
		for _, m := range ms {
			m.Observe(s.T(), x, u)
		}
	})
}

// Values collects the metric values keyed by name.
func Values(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

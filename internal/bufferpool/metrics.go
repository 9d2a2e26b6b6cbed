package bufferpool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "bufmgr"
	metricsSubsystem = "bufferpool"
)

// Metrics are the pool's Prometheus counters. A Metrics built with a nil
// registerer counts but is not exported.
type Metrics struct {
	Hits       prometheus.Counter
	Misses     prometheus.Counter
	Evictions  prometheus.Counter
	WriteBacks prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		Hits:       counter("hits_total", "Page requests served from a cached frame."),
		Misses:     counter("misses_total", "Page requests that had to read from the page store."),
		Evictions:  counter("evictions_total", "Frames reclaimed by the clock sweep."),
		WriteBacks: counter("writebacks_total", "Dirty pages written back to their page store."),
	}
}

// RegisterGauges exports the resident and pinned frame counts of mgr.
func RegisterGauges(reg prometheus.Registerer, mgr *Manager) error {
	gauge := func(name, help string, fn func(Stats) int) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(fn(mgr.Stats())) })
	}

	for _, c := range []prometheus.Collector{
		gauge("resident_frames", "Frames currently holding a page.", func(s Stats) int { return s.Resident }),
		gauge("pinned_frames", "Frames with a non-zero pin count.", func(s Stats) int { return s.Pinned }),
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

package install

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records pipeline outcomes. A nil *Metrics records nothing.
type Metrics struct {
	runs            *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	downloadedBytes prometheus.Counter
}

// NewMetrics creates the pipeline metrics and registers them with registerer
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "get_rust_runs_total",
			Help: "Install runs by terminal state",
		}, []string{"target", "version", "state"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "get_rust_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.05, 4, 8),
		}, []string{"stage"}),
		downloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "get_rust_downloaded_bytes_total",
			Help: "Bytes of toolchain archive downloaded",
		}),
	}

	if registerer != nil {
		registerer.MustRegister(m.runs)
		registerer.MustRegister(m.stageDuration)
		registerer.MustRegister(m.downloadedBytes)
	}

	return m
}

func (m *Metrics) observeStage(s State, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(s.String()).Observe(d.Seconds())
}

func (m *Metrics) observeRun(r Request, s State) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(r.Target.String(), r.Version, s.String()).Inc()
}

func (m *Metrics) addBytes(n int64) {
	if m == nil {
		return
	}
	m.downloadedBytes.Add(float64(n))
}

package httpapi

import (
	"sync"
	"time"

	"batchsend/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks batch progress for /status and exports prometheus series.
// It is fed by the driver and read by the HTTP handlers.
type Metrics struct {
	mu             sync.RWMutex
	startTime      time.Time
	total          int
	processed      int
	succeeded      int
	failed         int
	currentAddress string
	lastError      string

	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
	pending     prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		startTime: time.Now(),
		registry:  registry,
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "batchsend_submissions_total",
			Help: "Submissions by outcome",
		}, []string{"outcome"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "batchsend_submission_duration_seconds",
			Help:    "Time from nonce lookup to receipt",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Name: "batchsend_pending_records",
			Help: "Records not yet submitted in the current run",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OnStart(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startTime = time.Now()
	m.total = total
	m.processed = 0
	m.succeeded = 0
	m.failed = 0
	m.pending.Set(float64(total))
}

func (m *Metrics) OnSubmitting(index int, credential domain.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentAddress = credential.Address
}

func (m *Metrics) OnResult(result domain.SubmissionResult, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed++
	m.currentAddress = ""
	outcome := "success"
	if result.Success {
		m.succeeded++
	} else {
		m.failed++
		m.lastError = result.Error
		outcome = "failure"
	}
	m.submissions.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	m.pending.Set(float64(m.total - m.processed))
}

type Snapshot struct {
	StartTime      time.Time `json:"started"`
	Total          int       `json:"total"`
	Processed      int       `json:"processed"`
	Succeeded      int       `json:"succeeded"`
	Failed         int       `json:"failed"`
	CurrentAddress string    `json:"current_address,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
}

func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		StartTime:      m.startTime,
		Total:          m.total,
		Processed:      m.processed,
		Succeeded:      m.succeeded,
		Failed:         m.failed,
		CurrentAddress: m.currentAddress,
		LastError:      m.lastError,
	}
}

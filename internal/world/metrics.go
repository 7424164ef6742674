package world

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics инкапсулирует Prometheus-метрики мира.
// Метрики регистрируются в переданном регистре и снимаются с него в Destroy.
type Metrics struct {
	registerer prometheus.Registerer
	registered []prometheus.Collector

	chunks         *prometheus.GaugeVec
	pendingDestroy prometheus.Gauge
	jobsInFlight   prometheus.Gauge
	jobsQueued     prometheus.Gauge
	jobs           *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
	applications   *prometheus.CounterVec
	deferred       prometheus.Counter
	tickDuration   prometheus.Histogram
}

// NewMetrics создаёт метрики. При reg == nil метрики работают, но никуда не экспортируются.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		registerer: reg,
		chunks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "chunks",
			Help:      "Количество чанков по фазам жизненного цикла.",
		}, []string{"state"}),
		pendingDestroy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "chunks_pending_destroy",
			Help:      "Чанки, ожидающие завершения задач перед удалением.",
		}),
		jobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "jobs",
			Name:      "in_flight",
			Help:      "Задачи в очереди или в работе.",
		}),
		jobsQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Subsystem: "jobs",
			Name:      "queued",
			Help:      "Задачи, ожидающие свободного воркера.",
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "jobs",
			Name:      "total",
			Help:      "Завершённые задачи по виду и результату (published, stale, abandoned).",
		}, []string{"kind", "result"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voxel",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Длительность выполнения задач.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"kind"}),
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "applications_total",
			Help:      "Применённые снимки меша и коллизии.",
		}, []string{"kind"}),
		deferred: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "deferred_total",
			Help:      "Действия, отложенные на следующий тик из-за исчерпания бюджета.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Subsystem: "world",
			Name:      "tick_duration_seconds",
			Help:      "Длительность тика мира.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
	}

	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				m.unregister()
				return nil, err
			}
			m.registered = append(m.registered, c)
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.chunks, m.pendingDestroy, m.jobsInFlight, m.jobsQueued,
		m.jobs, m.jobDuration, m.applications, m.deferred, m.tickDuration,
	}
}

// unregister снимает только те метрики, которые зарегистрировал этот экземпляр.
// Регистр сравнивает коллекторы по дескрипторам, поэтому чужие не трогаем.
func (m *Metrics) unregister() {
	for _, c := range m.registered {
		m.registerer.Unregister(c)
	}
	m.registered = nil
}

func (m *Metrics) observeJob(kind WorkKind, result string, d time.Duration) {
	m.jobs.WithLabelValues(kind.String(), result).Inc()
	if d > 0 {
		m.jobDuration.WithLabelValues(kind.String()).Observe(d.Seconds())
	}
}

func (m *Metrics) observeTick(st *Stats) {
	for state, n := range st.ChunksByState {
		m.chunks.WithLabelValues(state).Set(float64(n))
	}
	m.pendingDestroy.Set(float64(st.PendingDestroy))
	m.jobsInFlight.Set(float64(st.InFlightJobs))
	m.jobsQueued.Set(float64(st.QueuedJobs))
	m.tickDuration.Observe(st.TickDuration.Seconds())
}

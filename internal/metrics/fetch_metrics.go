package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FetchMetrics содержит метрики запросов каталога к бэкенду.
type FetchMetrics struct {
	// Счётчики исходов запроса
	fetchStarted   prometheus.Counter
	fetchSucceeded prometheus.Counter
	fetchFailed    prometheus.Counter
	// fetchStale считает ответы, отброшенные из-за устаревшего поколения.
	fetchStale prometheus.Counter

	// Гистограмма времени выполнения запроса
	fetchDuration prometheus.Histogram

	// Gauge для запросов в полёте
	inflight prometheus.Gauge
}

// NewFetchMetrics создаёт метрики в default-реестре Prometheus.
func NewFetchMetrics() *FetchMetrics {
	return newFetchMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newFetchMetricsWithRegisterer(registerer prometheus.Registerer) *FetchMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &FetchMetrics{
		fetchStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_catalog_fetch_started_total",
			Help: "Total number of catalog fetches started",
		}),
		fetchSucceeded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_catalog_fetch_succeeded_total",
			Help: "Total number of catalog fetches applied successfully",
		}),
		fetchFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_catalog_fetch_failed_total",
			Help: "Total number of catalog fetches that ended in an error",
		}),
		fetchStale: registerCounter(registerer, prometheus.CounterOpts{
			Name: "pos_catalog_fetch_stale_total",
			Help: "Total number of catalog responses dropped as stale",
		}),
		fetchDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_catalog_fetch_duration_seconds",
			Help:    "Duration of catalog fetches in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		inflight: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "pos_catalog_fetch_inflight",
			Help: "Number of catalog fetches currently in flight",
		}),
	}
}

// RecordFetchStarted отмечает начало запроса.
func (m *FetchMetrics) RecordFetchStarted() {
	m.fetchStarted.Inc()
	m.inflight.Inc()
}

// RecordFetchSucceeded отмечает применённый ответ.
func (m *FetchMetrics) RecordFetchSucceeded(d time.Duration) {
	m.fetchSucceeded.Inc()
	m.fetchDuration.Observe(d.Seconds())
	m.inflight.Dec()
}

// RecordFetchFailed отмечает запрос, завершившийся ошибкой.
func (m *FetchMetrics) RecordFetchFailed(d time.Duration) {
	m.fetchFailed.Inc()
	m.fetchDuration.Observe(d.Seconds())
	m.inflight.Dec()
}

// RecordFetchStale отмечает ответ, отброшенный как устаревший.
func (m *FetchMetrics) RecordFetchStale() {
	m.fetchStale.Inc()
	m.inflight.Dec()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

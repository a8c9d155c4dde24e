package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SamplingMetrics holds the gauges describing the most recent build run.
// A run is a one-shot batch job, so apart from the outcome counters everything
// is a gauge that is set once.
type SamplingMetrics struct {
	registry *prometheus.Registry

	datasetRows      *prometheus.GaugeVec
	hostsEligible    prometheus.Gauge
	hostsSampled     prometheus.Gauge
	outsideUniverse  prometheus.Gauge
	samplingEvents   *prometheus.GaugeVec
	stageDuration    *prometheus.GaugeVec
	lastRunTimestamp prometheus.Gauge
	processRSS       prometheus.Gauge
	operations       *prometheus.CounterVec
	errors           *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewSamplingMetrics creates the collectors and registers them with registry.
func NewSamplingMetrics(registry *prometheus.Registry) (*SamplingMetrics, error) {
	m := &SamplingMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SamplingMetrics) initMetrics() {
	m.datasetRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Rows written to the dataset by label",
		},
		[]string{"label"},
	)

	m.hostsEligible = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hosts_eligible",
		Help:      "Hosts with at least one positive inside the universe",
	})

	m.hostsSampled = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hosts_sampled",
		Help:      "Hosts selected for the dataset",
	})

	m.outsideUniverse = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "positives_outside_universe",
		Help:      "Positive pairs dropped because the phage is not in the universe",
	})

	m.samplingEvents = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sampling_events",
			Help:      "Hosts whose negatives fell short, by event kind",
		},
		[]string{"kind"},
	)

	m.stageDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each stage of the run",
		},
		[]string{"stage"},
	)

	m.lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time at which the last run completed",
	})

	m.processRSS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "process_resident_memory_bytes",
		Help:      "Resident set size of the process at the end of the run",
	})

	m.operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operations run by this process, by outcome",
		},
		[]string{"operation", "status"},
	)

	m.errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed operations by error category",
		},
		[]string{"operation", "category"},
	)

	m.collectors = []prometheus.Collector{
		m.datasetRows,
		m.hostsEligible,
		m.hostsSampled,
		m.outsideUniverse,
		m.samplingEvents,
		m.stageDuration,
		m.lastRunTimestamp,
		m.processRSS,
		m.operations,
		m.errors,
	}
}

// Describe implements the Collector interface
func (m *SamplingMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *SamplingMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordDataset sets the per-label row counts.
func (m *SamplingMetrics) RecordDataset(positives, negatives int) {
	m.datasetRows.WithLabelValues(LabelPositive).Set(float64(positives))
	m.datasetRows.WithLabelValues(LabelNegative).Set(float64(negatives))
}

// RecordHosts sets the eligible and sampled host counts.
func (m *SamplingMetrics) RecordHosts(eligible, sampled int) {
	m.hostsEligible.Set(float64(eligible))
	m.hostsSampled.Set(float64(sampled))
}

// RecordOutsideUniverse sets the number of positives dropped by the universe filter.
func (m *SamplingMetrics) RecordOutsideUniverse(n int) {
	m.outsideUniverse.Set(float64(n))
}

// RecordEvent increments the count of hosts with the given event kind.
func (m *SamplingMetrics) RecordEvent(kind string) {
	m.samplingEvents.WithLabelValues(kind).Inc()
}

// RecordStage sets the duration of a stage.
func (m *SamplingMetrics) RecordStage(stage string, d time.Duration) {
	m.RecordDuration(stage, d.Seconds())
}

// RecordCompletion stamps the end of the run.
func (m *SamplingMetrics) RecordCompletion(at time.Time) {
	m.lastRunTimestamp.Set(float64(at.Unix()))
}

// RecordRSS sets the resident memory gauge.
func (m *SamplingMetrics) RecordRSS(bytes uint64) {
	m.processRSS.Set(float64(bytes))
}

// RecordOperation implements Recorder.
func (m *SamplingMetrics) RecordOperation(operation, status string) {
	m.operations.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder. The operation is used as the stage label.
func (m *SamplingMetrics) RecordDuration(operation string, seconds float64) {
	m.stageDuration.WithLabelValues(operation).Set(seconds)
}

// RecordError implements Recorder.
func (m *SamplingMetrics) RecordError(operation, errorType string) {
	m.errors.WithLabelValues(operation, errorType).Inc()
}

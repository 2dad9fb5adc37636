package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsTotal tracks catalog rows per partition and result
	// (success, failed, no_url, resumed, out_of_partition)
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_records_total",
			Help: "Total number of catalog records handled",
		},
		[]string{"partition", "result"},
	)

	// FetchAttemptsTotal tracks individual HTTP attempts by result (ok, retry, fatal)
	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_fetch_attempts_total",
			Help: "Total number of HTTP download attempts",
		},
		[]string{"result"},
	)

	// FetchLatency tracks the duration of a single attempt, body included
	FetchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "harvester_fetch_duration_seconds",
			Help:    "Duration of one download attempt in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// DownloadedBytes tracks bytes written to disk per partition
	DownloadedBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_downloaded_bytes_total",
			Help: "Total bytes of downloaded bitstreams",
		},
		[]string{"partition"},
	)

	// PacingSeconds tracks time spent in the anti-bot pause and retry backoff
	PacingSeconds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_wait_seconds_total",
			Help: "Total seconds spent waiting before requests",
		},
		[]string{"kind"},
	)

	// CheckpointFlushes tracks checkpoint persistence by result (ok, error)
	CheckpointFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "harvester_checkpoint_flushes_total",
			Help: "Total number of checkpoint flushes",
		},
		[]string{"result"},
	)

	// CheckpointSize tracks the number of finished identifiers per partition
	CheckpointSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "harvester_checkpoint_size",
			Help: "Number of record identifiers in the checkpoint",
		},
		[]string{"partition"},
	)

	// BreakerState tracks the per-host circuit breaker (0 closed, 1 half-open, 2 open)
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "harvester_breaker_state",
			Help: "Circuit breaker state per remote host",
		},
		[]string{"host"},
	)
)

// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the indexer core.
type Metrics struct {
	// Identity metrics
	IdentitiesCreated  prometheus.Counter
	IdentitiesResolved prometheus.Counter
	IdentityConflicts  prometheus.Counter

	// Reconciler metrics
	MergesApplied        prometheus.Counter
	MergesNoChange       prometheus.Counter
	PrecedenceRejections *prometheus.CounterVec
	MergeRetries         prometheus.Counter

	// Market metrics
	SnapshotsUpserted prometheus.Counter
	HotSetRefreshes   prometheus.Counter
	HotSetSize        prometheus.Gauge

	// Time-series metrics
	RingPointsAppended prometheus.Counter
	RingPointsDropped  prometheus.Counter
	RingEvictions      prometheus.Counter
	DailyUpserts       prometheus.Counter
	MirrorWriteErrors  prometheus.Counter

	// Ledger metrics
	LedgerRecordsStored prometheus.Counter
	DuplicatesIgnored   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "zeno_indexer"
	}

	return &Metrics{
		IdentitiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "created_total",
			Help:      "Total number of new canonical identities created",
		}),
		IdentitiesResolved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "resolved_total",
			Help:      "Total number of identity resolutions served from existing rows",
		}),
		IdentityConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "identity",
			Name:      "conflicts_total",
			Help:      "Total number of unresolved first-sighting races",
		}),

		MergesApplied: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "merges_applied_total",
			Help:      "Total number of metadata merges that wrote at least one field",
		}),
		MergesNoChange: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "merges_no_change_total",
			Help:      "Total number of metadata merges that applied nothing",
		}),
		PrecedenceRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "precedence_rejections_total",
			Help:      "Total number of field writes rejected by source precedence",
		}, []string{"field"}),
		MergeRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconciler",
			Name:      "merge_retries_total",
			Help:      "Total number of merge retries after a version conflict",
		}),

		SnapshotsUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "snapshots_upserted_total",
			Help:      "Total number of market snapshot upserts",
		}),
		HotSetRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "hot_set_refreshes_total",
			Help:      "Total number of hot set replacements",
		}),
		HotSetSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "hot_set_size",
			Help:      "Number of entries in the current hot set",
		}),

		RingPointsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeseries",
			Name:      "ring_points_appended_total",
			Help:      "Total number of points appended to 15-minute rings",
		}),
		RingPointsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeseries",
			Name:      "ring_points_dropped_total",
			Help:      "Total number of non-monotonic points dropped",
		}),
		RingEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeseries",
			Name:      "ring_evictions_total",
			Help:      "Total number of points evicted from 15-minute rings",
		}),
		DailyUpserts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeseries",
			Name:      "daily_upserts_total",
			Help:      "Total number of daily series upserts",
		}),
		MirrorWriteErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeseries",
			Name:      "mirror_write_errors_total",
			Help:      "Total number of failed analytical mirror writes",
		}),

		LedgerRecordsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "records_stored_total",
			Help:      "Total number of ledger records written",
		}),
		DuplicatesIgnored: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "duplicates_ignored_total",
			Help:      "Total number of replayed ledger records ignored by kind",
		}, []string{"kind"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the various metrics used for monitoring a payslip run.
// It includes counters for runs, processed records, sent mails and normalized columns,
// a gauge for the last successful run, and histograms for run and render duration.
type Metrics struct {
	Runs              *prometheus.CounterVec
	RecordsProcessed  *prometheus.CounterVec
	MailsSent         *prometheus.CounterVec
	LastSuccessfulRun prometheus.Gauge
	RunDuration       prometheus.Histogram
	RenderDuration    prometheus.Histogram
	ColumnsFilled     *prometheus.CounterVec
	ValuesCoerced     *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with the provided Registerer.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		Runs: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "plutus_runs_total",
			Help: "Total payslip batches, by whether every record was processed without error.",
		}, []string{"status"}),
		RecordsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "plutus_records_processed_total",
			Help: "Total employee records by outcome.",
		}, []string{"result"}), // result: 'sent', 'rendered', 'failed', 'skipped'
		MailsSent: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "plutus_mails_sent_total",
			Help: "Total payslip mails by delivery status.",
		}, []string{"status"}),
		LastSuccessfulRun: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "plutus_last_successful_run_timestamp",
			Help: "Last time when a batch completed without failed records",
		}),
		RunDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "plutus_run_duration_seconds",
			Help: "Measures how long it takes for a full batch to complete",
		}),
		RenderDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "plutus_render_duration_seconds",
			Help:    "Duration of rendering a single payslip document.",
			Buckets: prometheus.DefBuckets,
		}),
		ColumnsFilled: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "plutus_columns_synthesized_total",
			Help: "Total required columns that were absent from the sheet and filled with defaults.",
		}, []string{"column"}),
		ValuesCoerced: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "plutus_values_coerced_total",
			Help: "Total numeric cells that could not be parsed and were replaced with zero.",
		}, []string{"column"}),
	}

	metrics.Runs.WithLabelValues("success")
	metrics.Runs.WithLabelValues("failure")
	metrics.MailsSent.WithLabelValues("success")
	metrics.MailsSent.WithLabelValues("failure")

	return metrics
}

// Push sends everything gathered by gatherer to the Pushgateway at url under the given job name.
func Push(ctx context.Context, url, job string, gatherer prometheus.Gatherer) error {
	if err := push.New(url, job).Gatherer(gatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to '%s': %w", url, err)
	}

	return nil
}

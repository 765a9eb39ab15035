// Package metrics records catalog workflow counters with Prometheus.
//
// The CLI is a short-lived process, so nothing is scraped: the counters live
// in a private registry and are written once on exit to a node-exporter
// textfile when one is configured.
//
// Metrics:
//   - livraria_workflow_total{workflow,result}        counter
//   - livraria_workflow_duration_seconds{workflow}    histogram
//   - livraria_backups_total{result}                  counter
//   - livraria_import_rows_total{result}              counter
//
// Usage:
//
//	rec := metrics.NewRecorder()
//	start := time.Now()
//	err := doWork()
//	rec.Observe("add_book", start, err)
//	_ = rec.WriteTextfile("/var/lib/node_exporter/livraria.prom")
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/xiebiao/livraria/pkg/errors"
)

// Result label values.
const (
	ResultSuccess   = "success"
	ResultInvalid   = "invalid"
	ResultNotFound  = "not_found"
	ResultCancelled = "cancelled"
	ResultError     = "error"
)

// Recorder owns the registry and the catalog metrics.
// Design notes:
// 1. A private registry instead of the global one, so tests and repeated
//    construction never hit duplicate registration
// 2. Labels are bounded sets (workflow names, result values); no ids or titles
type Recorder struct {
	registry *prometheus.Registry

	workflows  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	backups    *prometheus.CounterVec
	importRows *prometheus.CounterVec
}

// NewRecorder creates and registers the catalog metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		workflows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livraria_workflow_total",
				Help: "Catalog workflows executed, by outcome.",
			},
			[]string{"workflow", "result"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "livraria_workflow_duration_seconds",
				Help: "Catalog workflow duration in seconds.",
				// single SQLite statements up to whole-file imports
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"workflow"},
		),

		backups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livraria_backups_total",
				Help: "Backups attempted, by outcome.",
			},
			[]string{"result"},
		),

		importRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "livraria_import_rows_total",
				Help: "CSV rows processed by imports, by outcome.",
			},
			[]string{"result"},
		),
	}

	r.registry.MustRegister(r.workflows, r.duration, r.backups, r.importRows)
	return r
}

// Registry exposes the registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one workflow run, classifying err into a result label.
func (r *Recorder) Observe(workflow string, start time.Time, err error) {
	r.ObserveResult(workflow, ResultOf(err), start)
}

// ObserveResult records one workflow run with an explicit result label.
func (r *Recorder) ObserveResult(workflow, result string, start time.Time) {
	r.workflows.WithLabelValues(workflow, result).Inc()
	r.duration.WithLabelValues(workflow).Observe(time.Since(start).Seconds())
}

// Backup records one backup attempt.
func (r *Recorder) Backup(err error) {
	if err != nil {
		r.backups.WithLabelValues(ResultError).Inc()
		return
	}
	r.backups.WithLabelValues(ResultSuccess).Inc()
}

// ImportRows adds the outcome of an import batch.
func (r *Recorder) ImportRows(imported, failed int) {
	r.importRows.WithLabelValues(ResultSuccess).Add(float64(imported))
	r.importRows.WithLabelValues(ResultError).Add(float64(failed))
}

// WriteTextfile writes every metric in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// ResultOf maps an error to a result label.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case apperrors.IsValidation(err):
		return ResultInvalid
	case apperrors.IsNotFound(err):
		return ResultNotFound
	default:
		return ResultError
	}
}

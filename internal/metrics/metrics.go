// Package metrics counts geth import outcomes on a private Prometheus
// registry. Batch runs export it with WriteTextfile for the node_exporter
// textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons
const (
	ReasonIO     = "io"
	ReasonFormat = "format"
)

// Import holds the import counters. A nil *Import is valid and records nothing.
type Import struct {
	registry *prometheus.Registry

	FilesDiscovered prometheus.Counter
	KeysImported    prometheus.Counter
	KeysSkipped     *prometheus.CounterVec
	LastImport      prometheus.Gauge
}

// New creates and registers the import metrics
func New() *Import {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Import{
		registry: reg,
		FilesDiscovered: factory.NewCounter(prometheus.CounterOpts{
			Name: "keymigrate_geth_files_discovered_total",
			Help: "Geth keystore files matched by the filename convention",
		}),
		KeysImported: factory.NewCounter(prometheus.CounterOpts{
			Name: "keymigrate_geth_keys_imported_total",
			Help: "Geth keys imported into the local store",
		}),
		KeysSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keymigrate_geth_keys_skipped_total",
			Help: "Geth keystore files that could not be imported, by reason",
		}, []string{"reason"}),
		LastImport: factory.NewGauge(prometheus.GaugeOpts{
			Name: "keymigrate_geth_last_import_timestamp_seconds",
			Help: "Unix time of the last completed batch import",
		}),
	}
}

func (m *Import) Discovered(n int) {
	if m == nil {
		return
	}
	m.FilesDiscovered.Add(float64(n))
}

func (m *Import) Imported() {
	if m == nil {
		return
	}
	m.KeysImported.Inc()
}

func (m *Import) Skipped(reason string) {
	if m == nil {
		return
	}
	m.KeysSkipped.WithLabelValues(reason).Inc()
}

// BatchDone records the completion time of a batch
func (m *Import) BatchDone(at time.Time) {
	if m == nil {
		return
	}
	m.LastImport.Set(float64(at.Unix()))
}

// WriteTextfile writes all metrics in text exposition format to path.
func (m *Import) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

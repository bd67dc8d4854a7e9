// file: internal/metrics/metrics.go
// version: 1.0.0
// guid: 6b3d9f2e-7c4a-4d1b-8e5f-0a9c3b6d2e8f

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "novelshelf",
		Name:      "queries_total",
		Help:      "Total number of library queries executed by kind",
	}, []string{"kind"})
	migrationsApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "novelshelf",
		Name:      "migrations_applied_total",
		Help:      "Total number of schema revisions applied",
	})
	progressWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "novelshelf",
		Name:      "progress_writes_total",
		Help:      "Total number of reading progress saves",
	})
	importedNovels = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "novelshelf",
		Name:      "imported_novels_total",
		Help:      "Total number of novels created by the importer",
	})
)

// Register registers all collectors with the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			queriesTotal,
			migrationsApplied,
			progressWrites,
			importedNovels,
		)
	})
}

// IncQuery records one executed library query of the given kind
// (e.g. "find", "facets", "summary").
func IncQuery(kind string) {
	queriesTotal.WithLabelValues(kind).Inc()
}

// IncMigrationApplied records one applied schema revision.
func IncMigrationApplied() {
	migrationsApplied.Inc()
}

// IncProgressWrite records one reading progress save.
func IncProgressWrite() {
	progressWrites.Inc()
}

// IncImportedNovel records one novel created by the importer.
func IncImportedNovel() {
	importedNovels.Inc()
}

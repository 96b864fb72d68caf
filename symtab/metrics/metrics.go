// Package metrics exports symbol table statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wbrown/janus-symtab/symtab"
)

const namespace = "symtab"

// Collector is a prometheus.Collector reading a table's Stats on every
// scrape. Each metric carries a "table" label so several tables can be
// registered side by side.
type Collector struct {
	table *symtab.Table

	symbols       *prometheus.Desc
	hits          *prometheus.Desc
	misses        *prometheus.Desc
	chunks        *prometheus.Desc
	bytesUsed     *prometheus.Desc
	bytesReserved *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for t labelled with name.
func NewCollector(name string, t *symtab.Table) *Collector {
	labels := prometheus.Labels{"table": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", metric), help, nil, labels)
	}

	return &Collector{
		table:         t,
		symbols:       desc("symbols", "Number of distinct strings interned."),
		hits:          desc("intern_hits_total", "Intern calls that found an existing symbol."),
		misses:        desc("intern_misses_total", "Intern calls that inserted a new symbol."),
		chunks:        desc("arena_chunks", "Number of arena chunks allocated."),
		bytesUsed:     desc("arena_used_bytes", "Bytes of interned string data."),
		bytesReserved: desc("arena_reserved_bytes", "Bytes held by arena chunks."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.symbols
	ch <- c.hits
	ch <- c.misses
	ch <- c.chunks
	ch <- c.bytesUsed
	ch <- c.bytesReserved
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.table.Stats()

	ch <- prometheus.MustNewConstMetric(c.symbols, prometheus.GaugeValue, float64(stats.Symbols))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses))
	ch <- prometheus.MustNewConstMetric(c.chunks, prometheus.GaugeValue, float64(stats.Chunks))
	ch <- prometheus.MustNewConstMetric(c.bytesUsed, prometheus.GaugeValue, float64(stats.BytesUsed))
	ch <- prometheus.MustNewConstMetric(c.bytesReserved, prometheus.GaugeValue, float64(stats.BytesReserved))
}

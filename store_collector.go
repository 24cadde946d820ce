package humpack

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StoreCollector exposes store and pebble metrics to prometheus.
// Register it with a prometheus registry:
//
//	prometheus.MustRegister(humpack.NewStoreCollector(store))
type StoreCollector struct {
	store *Store

	saves     *prometheus.Desc
	loads     *prometheus.Desc
	cacheHits *prometheus.Desc

	compactionCount *prometheus.Desc
	memtableSize    *prometheus.Desc
	memtableCount   *prometheus.Desc
	walSize         *prometheus.Desc
	diskUsage       *prometheus.Desc
}

func NewStoreCollector(store *Store) *StoreCollector {
	return &StoreCollector{
		store: store,

		saves: prometheus.NewDesc(
			"humpack_store_saves_total",
			"Total number of documents saved",
			nil, nil,
		),
		loads: prometheus.NewDesc(
			"humpack_store_loads_total",
			"Total number of document loads",
			nil, nil,
		),
		cacheHits: prometheus.NewDesc(
			"humpack_store_cache_hits_total",
			"Loads served from the decoded-document cache",
			nil, nil,
		),
		compactionCount: prometheus.NewDesc(
			"humpack_store_pebble_compaction_count_total",
			"Total number of pebble compactions performed",
			nil, nil,
		),
		memtableSize: prometheus.NewDesc(
			"humpack_store_pebble_memtable_size_bytes",
			"Current size of the pebble memtable in bytes",
			nil, nil,
		),
		memtableCount: prometheus.NewDesc(
			"humpack_store_pebble_memtable_count",
			"Number of pebble memtables",
			nil, nil,
		),
		walSize: prometheus.NewDesc(
			"humpack_store_pebble_wal_size_bytes",
			"Current size of the pebble WAL in bytes",
			nil, nil,
		),
		diskUsage: prometheus.NewDesc(
			"humpack_store_pebble_disk_usage_bytes",
			"Total disk space used by the pebble database",
			nil, nil,
		),
	}
}

func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.saves
	ch <- c.loads
	ch <- c.cacheHits
	ch <- c.compactionCount
	ch <- c.memtableSize
	ch <- c.memtableCount
	ch <- c.walSize
	ch <- c.diskUsage
}

func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.saves, prometheus.CounterValue,
		float64(c.store.saves.Load()))
	ch <- prometheus.MustNewConstMetric(c.loads, prometheus.CounterValue,
		float64(c.store.loads.Load()))
	ch <- prometheus.MustNewConstMetric(c.cacheHits, prometheus.CounterValue,
		float64(c.store.cacheHits.Load()))

	// hold the lock so a concurrent Close cannot pull the db out from
	// under Metrics
	c.store.lock.Lock()
	defer c.store.lock.Unlock()
	if c.store.db == nil {
		return
	}
	m := c.store.db.Metrics()
	ch <- prometheus.MustNewConstMetric(c.compactionCount, prometheus.CounterValue,
		float64(m.Compact.Count))
	ch <- prometheus.MustNewConstMetric(c.memtableSize, prometheus.GaugeValue,
		float64(m.MemTable.Size))
	ch <- prometheus.MustNewConstMetric(c.memtableCount, prometheus.GaugeValue,
		float64(m.MemTable.Count))
	ch <- prometheus.MustNewConstMetric(c.walSize, prometheus.GaugeValue,
		float64(m.WAL.Size))
	ch <- prometheus.MustNewConstMetric(c.diskUsage, prometheus.GaugeValue,
		float64(m.DiskSpaceUsage()))
}

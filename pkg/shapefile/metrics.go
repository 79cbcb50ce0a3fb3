package shapefile

import (
	"github.com/prometheus/client_golang/prometheus"
)

// cacheMetrics holds Prometheus metrics for cache operations.
// A nil *cacheMetrics records nothing.
type cacheMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	sets      prometheus.Counter
	deletes   prometheus.Counter
	evictions prometheus.Counter

	size prometheus.Gauge
}

// newCacheMetrics creates the cache metrics and registers them with reg.
func newCacheMetrics(reg prometheus.Registerer) (*cacheMetrics, error) {
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shapefile",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shapefile",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses",
		}),
		sets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shapefile",
			Subsystem: "cache",
			Name:      "sets_total",
			Help:      "Total number of results added to the cache",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shapefile",
			Subsystem: "cache",
			Name:      "deletes_total",
			Help:      "Total number of explicit cache removals",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shapefile",
			Subsystem: "cache",
			Name:      "evictions_total",
			Help:      "Total number of cache evictions",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shapefile",
			Subsystem: "cache",
			Name:      "size",
			Help:      "Current number of results in cache",
		}),
	}

	for _, c := range []prometheus.Collector{m.hits, m.misses, m.sets, m.deletes, m.evictions, m.size} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *cacheMetrics) recordHit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) recordMiss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) recordSet() {
	if m != nil {
		m.sets.Inc()
	}
}

func (m *cacheMetrics) recordDelete() {
	if m != nil {
		m.deletes.Inc()
	}
}

func (m *cacheMetrics) recordEviction() {
	if m != nil {
		m.evictions.Inc()
	}
}

// updateSize sets the current cache size.
func (m *cacheMetrics) updateSize(size int) {
	if m != nil {
		m.size.Set(float64(size))
	}
}

// Instrument registers the cache's Prometheus metrics with reg.
func (c *ResultCache) Instrument(reg prometheus.Registerer) error {
	m, err := newCacheMetrics(reg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
	m.updateSize(len(c.entries))
	return nil
}

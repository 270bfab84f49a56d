package reader

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics tracks the page cache's hit/miss/reclaim behavior, the
// same per-instance-counter shape quay-claircore's postgres store uses
// for its query timers: construct with NewCacheMetrics and register the
// result with a prometheus.Registerer, or leave a Cache's metrics unset
// to fall back to a no-op sink.
type CacheMetrics struct {
	Hits       prometheus.Counter
	Misses     prometheus.Counter
	Inserts    prometheus.Counter
	Evictions  prometheus.Counter
	OutOfMemory prometheus.Counter
}

// NewCacheMetrics builds a CacheMetrics under the given namespace/subsystem
// (e.g. "myapp", "page_cache"), ready to be registered with a
// prometheus.Registerer.
func NewCacheMetrics(namespace, subsystem string) *CacheMetrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	return &CacheMetrics{
		Hits:        counter("hits_total", "Page cache lookups served from a resident slot."),
		Misses:      counter("misses_total", "Page cache lookups that required loading a page from storage."),
		Inserts:     counter("inserts_total", "Pages loaded into the cache."),
		Evictions:   counter("evictions_total", "Unpinned slots reclaimed to make room for a new page."),
		OutOfMemory: counter("out_of_memory_total", "Misses that failed because no slot could be reclaimed."),
	}
}

// Collectors returns the metrics in a slice suitable for
// prometheus.Registerer.MustRegister(m.Collectors()...).
func (m *CacheMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Hits, m.Misses, m.Inserts, m.Evictions, m.OutOfMemory}
}

// noopMetrics is used by caches constructed without an explicit
// CacheMetrics, so cache.go never needs a nil check on the hot path.
var noopMetrics = &CacheMetrics{
	Hits:        prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_hits"}),
	Misses:      prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_misses"}),
	Inserts:     prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_inserts"}),
	Evictions:   prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_evictions"}),
	OutOfMemory: prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_out_of_memory"}),
}

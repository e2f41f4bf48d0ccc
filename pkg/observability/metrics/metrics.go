package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

var (
	cacheHits          atomic.Int64
	cacheMisses        atomic.Int64
	cacheExpired       atomic.Int64
	cacheEntries       atomic.Int64
	csvFetches         atomic.Int64
	csvFallbacks       atomic.Int64
	csvNotFound        atomic.Int64
	csvRowWarnings     atomic.Int64
	loessDegraded      atomic.Int64
	preloadFailures    atomic.Int64
	lastPreloadMillis  atomic.Int64
)

func CacheHit() { cacheHits.Add(1) }
func CacheMiss() { cacheMisses.Add(1) }
func CacheExpired() { cacheExpired.Add(1) }

// ObserveCacheSize records the live entry count seen by the last stats pass.
func ObserveCacheSize(n int) { cacheEntries.Store(int64(n)) }

func CSVFetched() { csvFetches.Add(1) }
func CSVFallback() { csvFallbacks.Add(1) }
func CSVNotFound() { csvNotFound.Add(1) }
func CSVRowWarnings(n int) { csvRowWarnings.Add(int64(n)) }
func LoessDegraded() { loessDegraded.Add(1) }

// ObservePreload records a finished preload run. The duration is kept in
// milliseconds so sub-second runs still register.
func ObservePreload(failed int, d time.Duration) {
	preloadFailures.Add(int64(failed))
	lastPreloadMillis.Store(d.Milliseconds())
}

// Snapshot is used by tests and the cache stats endpoint.
type Snapshot struct {
	CacheHits      int64 `json:"cacheHits"`
	CacheMisses    int64 `json:"cacheMisses"`
	CacheExpired   int64 `json:"cacheExpired"`
	CSVFetches     int64 `json:"csvFetches"`
	CSVFallbacks   int64 `json:"csvFallbacks"`
	CSVNotFound    int64 `json:"csvNotFound"`
	CSVRowWarnings int64 `json:"csvRowWarnings"`
	LoessDegraded  int64 `json:"loessDegraded"`
}

func Read() Snapshot {
	return Snapshot{
		CacheHits:      cacheHits.Load(),
		CacheMisses:    cacheMisses.Load(),
		CacheExpired:   cacheExpired.Load(),
		CSVFetches:     csvFetches.Load(),
		CSVFallbacks:   csvFallbacks.Load(),
		CSVNotFound:    csvNotFound.Load(),
		CSVRowWarnings: csvRowWarnings.Load(),
		LoessDegraded:  loessDegraded.Load(),
	}
}

func writeMetric(w http.ResponseWriter, name, kind, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(w, "%s %d\n", name, value)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	writeMetric(w, "vitals_cache_hits_total", "counter", "Number of cache lookups served from memory.", cacheHits.Load())
	writeMetric(w, "vitals_cache_misses_total", "counter", "Number of cache lookups that found no live entry.", cacheMisses.Load())
	writeMetric(w, "vitals_cache_expired_total", "counter", "Number of entries evicted lazily after their TTL elapsed.", cacheExpired.Load())
	writeMetric(w, "vitals_cache_entries", "gauge", "Live cache entries at the last stats pass.", cacheEntries.Load())
	writeMetric(w, "vitals_csv_fetches_total", "counter", "Number of CSV resources fetched and parsed.", csvFetches.Load())
	writeMetric(w, "vitals_csv_fallbacks_total", "counter", "Number of candidate paths that failed before another was tried.", csvFallbacks.Load())
	writeMetric(w, "vitals_csv_not_found_total", "counter", "Number of resources for which every candidate path failed.", csvNotFound.Load())
	writeMetric(w, "vitals_csv_row_warnings_total", "counter", "Number of non-fatal row-level CSV parse problems.", csvRowWarnings.Load())
	writeMetric(w, "vitals_loess_degraded_total", "counter", "Number of LOESS loads degraded to an empty result.", loessDegraded.Load())
	writeMetric(w, "vitals_preload_failures_total", "counter", "Number of preload targets that failed.", preloadFailures.Load())
	writeMetric(w, "vitals_preload_last_duration_milliseconds", "gauge", "Duration of the last preload run in milliseconds.", lastPreloadMillis.Load())
}

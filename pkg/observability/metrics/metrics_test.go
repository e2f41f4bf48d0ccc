package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWritePrometheusIncludesCounters(t *testing.T) {
	before := Read()
	CacheHit()
	CSVFallback()

	after := Read()
	if after.CacheHits != before.CacheHits+1 {
		t.Fatalf("expected cache hits to grow by one, got %d -> %d", before.CacheHits, after.CacheHits)
	}

	rec := httptest.NewRecorder()
	WritePrometheus(rec)
	body := rec.Body.String()
	for _, name := range []string{"vitals_cache_hits_total", "vitals_csv_fallbacks_total", "vitals_loess_degraded_total"} {
		if !strings.Contains(body, "# TYPE "+name) {
			t.Fatalf("expected %s in exposition:\n%s", name, body)
		}
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestObservePreloadKeepsSubSecondDuration(t *testing.T) {
	ObservePreload(0, 250*time.Millisecond)

	rec := httptest.NewRecorder()
	WritePrometheus(rec)
	body := rec.Body.String()
	if !strings.Contains(body, "vitals_preload_last_duration_milliseconds 250\n") {
		t.Fatalf("expected a 250ms preload duration in exposition:\n%s", body)
	}
}

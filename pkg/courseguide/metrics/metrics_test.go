package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveQuery("q", time.Millisecond, nil)
	m.Operation("op", errors.New("x"))
	m.CacheHit()
	m.CacheMiss()
	m.Recommended(3)
}

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveQuery("transitive_prerequisites", time.Millisecond, nil)
	m.ObserveQuery("transitive_prerequisites", time.Millisecond, errors.New("down"))
	m.ObserveQuery("", time.Millisecond, nil)
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.Recommended(4)
	m.Recommended(0)
	m.Operation("search", nil)

	if got := testutil.ToFloat64(m.queries.WithLabelValues("transitive_prerequisites", "ok")); got != 1 {
		t.Errorf("ok queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.queries.WithLabelValues("transitive_prerequisites", "error")); got != 1 {
		t.Errorf("error queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.queries.WithLabelValues("unnamed", "ok")); got != 1 {
		t.Errorf("unnamed queries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheMisses); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.recommendations); got != 4 {
		t.Errorf("recommendations = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("operations = %v, want 1", got)
	}
}

func TestOperationOutcomes(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Operation("stats", fmt.Errorf("course X: %w", internalerr.ErrNotFound))
	m.Operation("stats", fmt.Errorf("course code is required: %w", internalerr.ErrInvalidInput))
	m.Operation("stats", errors.New("boom"))

	for _, o := range []string{"not_found", "invalid_input", "error"} {
		if got := testutil.ToFloat64(m.operations.WithLabelValues("stats", o)); got != 1 {
			t.Errorf("%s operations = %v, want 1", o, got)
		}
	}
}

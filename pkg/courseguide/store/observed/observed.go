// Package observed decorates a store.Store with request metrics.
package observed

import (
	"context"
	"time"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/metrics"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
)

// Store forwards to another store and records each request.
type Store struct {
	next    store.Store
	metrics *metrics.Metrics
}

// Wrap returns next instrumented with m.
func Wrap(next store.Store, m *metrics.Metrics) *Store {
	return &Store{next: next, metrics: m}
}

func (s *Store) Close() error { return s.next.Close() }

func (s *Store) Query(ctx context.Context, q *sparql.Select) ([]sparql.Row, error) {
	start := time.Now()
	rows, err := s.next.Query(ctx, q)
	s.metrics.ObserveQuery(q.Name, time.Since(start), err)
	return rows, err
}

func (s *Store) Update(ctx context.Context, u sparql.Update) error {
	start := time.Now()
	err := s.next.Update(ctx, u)
	s.metrics.ObserveQuery("update", time.Since(start), err)
	return err
}

package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store/eval"
)

// Store is an in-memory triple store implementing store.Store. It is used by
// tests and by the CLI when no endpoint is configured.
type Store struct {
	mu      sync.RWMutex
	triples []sparql.Triple
	index   map[sparql.Triple]int
	eval    *eval.Evaluator
}

// New creates an empty in-memory store.
func New() *Store {
	s := &Store{index: make(map[sparql.Triple]int)}
	s.eval = eval.New(s)
	return s
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Add inserts triples, ignoring ones already present. Insertion order is
// preserved and is the order Match returns them in.
func (s *Store) Add(triples ...sparql.Triple) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(triples)
}

func (s *Store) add(triples []sparql.Triple) {
	for _, t := range triples {
		t = normalize(t)
		if _, ok := s.index[t]; ok {
			continue
		}
		s.index[t] = len(s.triples)
		s.triples = append(s.triples, t)
	}
}

func (s *Store) remove(triples []sparql.Triple) {
	drop := make(map[sparql.Triple]bool, len(triples))
	for _, t := range triples {
		drop[normalize(t)] = true
	}
	kept := s.triples[:0]
	for _, t := range s.triples {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	s.triples = kept
	s.index = make(map[sparql.Triple]int, len(kept))
	for i, t := range kept {
		s.index[t] = i
	}
}

// Len returns the number of stored triples.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.triples)
}

// Match implements store.TripleSource.
func (s *Store) Match(ctx context.Context, subj, pred, obj sparql.Term) ([]sparql.Triple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subj, pred, obj = store.Normalize(subj), store.Normalize(pred), store.Normalize(obj)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []sparql.Triple
	for _, t := range s.triples {
		if matches(subj, t.S) && matches(pred, t.P) && matches(obj, t.O) {
			out = append(out, t)
		}
	}
	return out, nil
}

func matches(want, got sparql.Term) bool {
	return want.IsZero() || want == got
}

// Query implements store.Store.
func (s *Store) Query(ctx context.Context, q *sparql.Select) ([]sparql.Row, error) {
	return s.eval.Select(ctx, q)
}

// Update implements store.Store. A batch is checked as a whole before any
// of it is applied.
func (s *Store) Update(ctx context.Context, u sparql.Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkUpdate(u); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(u)
	return nil
}

func checkUpdate(u sparql.Update) error {
	switch u := u.(type) {
	case sparql.InsertData, sparql.DeleteData:
		return nil
	case sparql.Batch:
		for _, op := range u {
			if err := checkUpdate(op); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("memstore: unsupported update %T", u)
	}
}

func (s *Store) apply(u sparql.Update) {
	switch u := u.(type) {
	case sparql.InsertData:
		s.add(u.Triples)
	case sparql.DeleteData:
		s.remove(u.Triples)
	case sparql.Batch:
		for _, op := range u {
			s.apply(op)
		}
	}
}

func normalize(t sparql.Triple) sparql.Triple {
	return sparql.Triple{S: store.Normalize(t.S), P: store.Normalize(t.P), O: store.Normalize(t.O)}
}

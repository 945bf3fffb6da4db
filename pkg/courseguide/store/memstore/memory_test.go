package memstore

import (
	"context"
	"testing"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
)

var (
	p = sparql.IRI("http://example.org/p")
	a = sparql.IRI("http://example.org/a")
	b = sparql.IRI("http://example.org/b")
)

func TestAddIgnoresDuplicates(t *testing.T) {
	s := New()
	s.Add(
		sparql.Triple{S: a, P: p, O: sparql.Literal("x")},
		sparql.Triple{S: a, P: p, O: sparql.Term{Kind: sparql.KindLiteral, Value: "x", Datatype: sparql.XSDString}},
	)
	if s.Len() != 1 {
		t.Errorf("expected xsd:string and plain literal to collapse, got %d triples", s.Len())
	}
}

func TestMatchWildcards(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Add(
		sparql.Triple{S: a, P: p, O: b},
		sparql.Triple{S: b, P: p, O: a},
	)

	got, err := s.Match(ctx, a, sparql.Term{}, sparql.Term{})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(got) != 1 || got[0].O != b {
		t.Errorf("unexpected match %v", got)
	}

	all, _ := s.Match(ctx, sparql.Term{}, p, sparql.Term{})
	if len(all) != 2 {
		t.Errorf("expected 2 triples, got %d", len(all))
	}
	if all[0].S != a {
		t.Error("expected insertion order to be preserved")
	}
}

func TestUpdateInsertDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	tr := sparql.Triple{S: a, P: p, O: b}

	if err := s.Update(ctx, sparql.InsertData{Triples: []sparql.Triple{tr}}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 triple after insert, got %d", s.Len())
	}
	if err := s.Update(ctx, sparql.DeleteData{Triples: []sparql.Triple{tr}}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store after delete, got %d", s.Len())
	}

	// Re-adding after delete must work with the rebuilt index.
	s.Add(tr)
	if s.Len() != 1 {
		t.Errorf("expected 1 triple after re-add, got %d", s.Len())
	}
}

func TestQueryRunsEvaluator(t *testing.T) {
	s := New()
	s.Add(sparql.Triple{S: a, P: p, O: sparql.Literal("x")})
	rows, err := s.Query(context.Background(), &sparql.Select{
		Vars:  []sparql.Var{"o"},
		Where: sparql.Group{sparql.T(a, p, sparql.Var("o"))},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if v, _ := rows[0].Value("o"); v != "x" {
		t.Errorf("expected x, got %q", v)
	}
}

func TestUpdateBatch(t *testing.T) {
	ctx := context.Background()
	s := New()
	old := sparql.Triple{S: a, P: p, O: b}
	next := sparql.Triple{S: b, P: p, O: a}
	s.Add(old)

	err := s.Update(ctx, sparql.Batch{
		sparql.DeleteData{Triples: []sparql.Triple{old}},
		sparql.InsertData{Triples: []sparql.Triple{next}},
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	got, _ := s.Match(ctx, sparql.Term{}, p, sparql.Term{})
	if len(got) != 1 || got[0] != next {
		t.Errorf("expected only the inserted triple, got %v", got)
	}
}

package store

import (
	"context"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
)

// Store is the graph store boundary. It executes read queries, returning
// variable-binding rows, and update requests. Implementations own no
// reasoning logic.
type Store interface {
	Close() error

	// Query runs a SELECT and returns its solutions in result order.
	Query(ctx context.Context, q *sparql.Select) ([]sparql.Row, error)

	// Update applies an update request (INSERT DATA / DELETE DATA).
	Update(ctx context.Context, u sparql.Update) error
}

// TripleSource is a store that can enumerate ground triples by pattern.
// A zero Term in any position is a wildcard. In-process backends implement it
// and delegate query evaluation to package eval.
type TripleSource interface {
	Match(ctx context.Context, s, p, o sparql.Term) ([]sparql.Triple, error)
}

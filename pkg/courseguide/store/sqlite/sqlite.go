package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store/eval"
)

// Store is a persistent triple store on SQLite. Queries are evaluated
// in-process over indexed triple lookups.
type Store struct {
	db   *sql.DB
	eval *eval.Evaluator
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// triple table if needed.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	s.eval = eval.New(s)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS triples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	s TEXT NOT NULL,
	s_kind INTEGER NOT NULL,
	p TEXT NOT NULL,
	o TEXT NOT NULL,
	o_kind INTEGER NOT NULL,
	o_datatype TEXT NOT NULL DEFAULT '',
	o_lang TEXT NOT NULL DEFAULT '',
	UNIQUE(s, s_kind, p, o, o_kind, o_datatype, o_lang)
);

CREATE INDEX IF NOT EXISTS idx_triples_sp ON triples(s, p);
CREATE INDEX IF NOT EXISTS idx_triples_po ON triples(p, o);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Len returns the number of stored triples.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM triples").Scan(&n)
	return n, err
}

// Match implements store.TripleSource. Results come back in insertion order.
func (s *Store) Match(ctx context.Context, subj, pred, obj sparql.Term) ([]sparql.Triple, error) {
	subj, pred, obj = store.Normalize(subj), store.Normalize(pred), store.Normalize(obj)
	if !pred.IsZero() && !pred.IsIRI() {
		return nil, nil
	}

	var where []string
	var args []any
	if !subj.IsZero() {
		where = append(where, "s = ? AND s_kind = ?")
		args = append(args, subj.Value, int(subj.Kind))
	}
	if !pred.IsZero() {
		where = append(where, "p = ?")
		args = append(args, pred.Value)
	}
	if !obj.IsZero() {
		where = append(where, "o = ? AND o_kind = ? AND o_datatype = ? AND o_lang = ?")
		args = append(args, obj.Value, int(obj.Kind), obj.Datatype, obj.Lang)
	}

	q := "SELECT s, s_kind, p, o, o_kind, o_datatype, o_lang FROM triples"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: match: %w", err)
	}
	defer rows.Close()

	var out []sparql.Triple
	for rows.Next() {
		var t sparql.Triple
		var sKind, oKind int
		if err := rows.Scan(&t.S.Value, &sKind, &t.P.Value, &t.O.Value, &oKind, &t.O.Datatype, &t.O.Lang); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		t.S.Kind = sparql.Kind(sKind)
		t.P.Kind = sparql.KindIRI
		t.O.Kind = sparql.Kind(oKind)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Query implements store.Store.
func (s *Store) Query(ctx context.Context, q *sparql.Select) ([]sparql.Row, error) {
	return s.eval.Select(ctx, q)
}

// Update implements store.Store. Each update, batches included, runs in one
// transaction.
func (s *Store) Update(ctx context.Context, u sparql.Update) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := applyUpdate(ctx, tx, u); err != nil {
		return err
	}
	return tx.Commit()
}

func applyUpdate(ctx context.Context, tx *sql.Tx, u sparql.Update) error {
	var stmt string
	var triples []sparql.Triple
	switch u := u.(type) {
	case sparql.InsertData:
		stmt = `INSERT OR IGNORE INTO triples (s, s_kind, p, o, o_kind, o_datatype, o_lang) VALUES (?, ?, ?, ?, ?, ?, ?)`
		triples = u.Triples
	case sparql.DeleteData:
		stmt = `DELETE FROM triples WHERE s = ? AND s_kind = ? AND p = ? AND o = ? AND o_kind = ? AND o_datatype = ? AND o_lang = ?`
		triples = u.Triples
	case sparql.Batch:
		for _, op := range u {
			if err := applyUpdate(ctx, tx, op); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("sqlite: unsupported update %T", u)
	}

	prep, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return err
	}
	defer prep.Close()

	for _, t := range triples {
		sub, pred, obj := store.Normalize(t.S), store.Normalize(t.P), store.Normalize(t.O)
		if !pred.IsIRI() {
			return fmt.Errorf("sqlite: predicate must be an IRI: %s", t)
		}
		if _, err := prep.ExecContext(ctx, sub.Value, int(sub.Kind), pred.Value, obj.Value, int(obj.Kind), obj.Datatype, obj.Lang); err != nil {
			return fmt.Errorf("sqlite: %s: %w", t, err)
		}
	}
	return nil
}

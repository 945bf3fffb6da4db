// Package eval evaluates typed sparql queries in-process against any
// store.TripleSource. It covers the subset of SPARQL 1.1 the reasoning engine
// emits: basic graph patterns, one-or-more property paths, OPTIONAL, UNION,
// BIND, FILTER (including NOT EXISTS), GROUP BY with COUNT, ORDER BY,
// DISTINCT and LIMIT.
package eval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
)

// binding is one partial solution.
type binding map[sparql.Var]sparql.Term

func (b binding) with(v sparql.Var, t sparql.Term) binding {
	nb := make(binding, len(b)+1)
	for k, val := range b {
		nb[k] = val
	}
	nb[v] = t
	return nb
}

// Evaluator runs queries against a triple source.
type Evaluator struct {
	src store.TripleSource
}

// New creates an evaluator over src.
func New(src store.TripleSource) *Evaluator {
	return &Evaluator{src: src}
}

// Select evaluates q and returns its rows.
func (e *Evaluator) Select(ctx context.Context, q *sparql.Select) ([]sparql.Row, error) {
	sols, err := e.group(ctx, q.Where, []binding{{}})
	if err != nil {
		return nil, err
	}

	if len(q.GroupBy) > 0 || len(q.Aggregates) > 0 {
		sols = aggregate(sols, q.GroupBy, q.Aggregates)
	}
	if len(q.Order) > 0 {
		sortSolutions(sols, q.Order)
	}

	proj := q.Projection()
	rows := project(sols, proj)
	if q.Distinct {
		rows = distinct(rows, proj)
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (e *Evaluator) group(ctx context.Context, g sparql.Group, in []binding) ([]binding, error) {
	sols := in
	var filters []sparql.Expr

	for _, el := range g {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(sols) == 0 {
			return nil, nil
		}

		var err error
		switch el := el.(type) {
		case sparql.Pattern:
			sols, err = e.join(ctx, el, sols)
		case sparql.OptionalPattern:
			sols, err = e.leftJoin(ctx, el.Group, sols)
		case sparql.UnionPattern:
			var out []binding
			for _, branch := range el.Branches {
				res, berr := e.group(ctx, branch, sols)
				if berr != nil {
					return nil, berr
				}
				out = append(out, res...)
			}
			sols = out
		case sparql.BindPattern:
			next := make([]binding, len(sols))
			for i, b := range sols {
				next[i] = b
				if _, bound := b[el.As]; bound {
					continue
				}
				if v, verr := e.eval(ctx, el.Expr, b); verr == nil {
					next[i] = b.with(el.As, v)
				}
			}
			sols = next
		case sparql.FilterPattern:
			filters = append(filters, el.Expr)
		default:
			return nil, fmt.Errorf("eval: unsupported element %T", el)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(filters) == 0 {
		return sols, nil
	}
	out := sols[:0:0]
	for _, b := range sols {
		keep := true
		for _, f := range filters {
			ok, err := e.test(ctx, f, b)
			if err != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if err != nil || !ok {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, b)
		}
	}
	return out, nil
}

func (e *Evaluator) leftJoin(ctx context.Context, g sparql.Group, sols []binding) ([]binding, error) {
	var out []binding
	for _, b := range sols {
		res, err := e.group(ctx, g, []binding{b})
		if err != nil {
			return nil, err
		}
		if len(res) == 0 {
			out = append(out, b)
			continue
		}
		out = append(out, res...)
	}
	return out, nil
}

// resolve substitutes a bound variable; unbound variables become wildcards.
func resolve(n sparql.Node, b binding) sparql.Term {
	switch n := n.(type) {
	case sparql.Term:
		return n
	case sparql.Var:
		return b[n]
	}
	return sparql.Term{}
}

// unify extends b so that node n matches t. It fails on a conflicting binding.
func unify(b binding, n sparql.Node, t sparql.Term) (binding, bool) {
	v, ok := n.(sparql.Var)
	if !ok {
		return b, true
	}
	if cur, bound := b[v]; bound {
		return b, cur.Equal(t)
	}
	return b.with(v, t), true
}

func (e *Evaluator) join(ctx context.Context, p sparql.Pattern, sols []binding) ([]binding, error) {
	if path, ok := p.P.(sparql.Path); ok {
		return e.joinPath(ctx, p, path, sols)
	}

	var out []binding
	for _, b := range sols {
		triples, err := e.src.Match(ctx, resolve(p.S, b), resolve(p.P, b), resolve(p.O, b))
		if err != nil {
			return nil, err
		}
		for _, t := range triples {
			nb, ok := unify(b, p.S, t.S)
			if !ok {
				continue
			}
			if nb, ok = unify(nb, p.P, t.P); !ok {
				continue
			}
			if nb, ok = unify(nb, p.O, t.O); !ok {
				continue
			}
			out = append(out, nb)
		}
	}
	return out, nil
}

// joinPath evaluates s p+ o by breadth-first search from each start node.
// The visited set makes it terminate on cyclic data.
func (e *Evaluator) joinPath(ctx context.Context, p sparql.Pattern, path sparql.Path, sols []binding) ([]binding, error) {
	var out []binding
	for _, b := range sols {
		starts := []sparql.Term{resolve(p.S, b)}
		if starts[0].IsZero() {
			var err error
			if starts, err = e.subjects(ctx, path.Predicate); err != nil {
				return nil, err
			}
		}

		for _, start := range starts {
			reached, err := e.reach(ctx, start, path.Predicate)
			if err != nil {
				return nil, err
			}
			for _, node := range reached {
				nb, ok := unify(b, p.S, start)
				if !ok {
					continue
				}
				if nb, ok = unify(nb, p.O, node); !ok {
					continue
				}
				out = append(out, nb)
			}
		}
	}
	return out, nil
}

func (e *Evaluator) subjects(ctx context.Context, pred sparql.Term) ([]sparql.Term, error) {
	triples, err := e.src.Match(ctx, sparql.Term{}, pred, sparql.Term{})
	if err != nil {
		return nil, err
	}
	seen := make(map[sparql.Term]bool)
	var out []sparql.Term
	for _, t := range triples {
		if !seen[t.S] {
			seen[t.S] = true
			out = append(out, t.S)
		}
	}
	return out, nil
}

func (e *Evaluator) reach(ctx context.Context, start, pred sparql.Term) ([]sparql.Term, error) {
	visited := make(map[sparql.Term]bool)
	var reached []sparql.Term
	queue := []sparql.Term{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		triples, err := e.src.Match(ctx, cur, pred, sparql.Term{})
		if err != nil {
			return nil, err
		}
		for _, t := range triples {
			if visited[t.O] {
				continue
			}
			visited[t.O] = true
			reached = append(reached, t.O)
			queue = append(queue, t.O)
		}
	}
	return reached, nil
}

func aggregate(sols []binding, groupBy []sparql.Var, aggs []sparql.Aggregate) []binding {
	type bucket struct {
		key  binding
		rows []binding
	}
	var order []string
	buckets := make(map[string]*bucket)

	for _, b := range sols {
		key := make(binding, len(groupBy))
		var sb strings.Builder
		for _, v := range groupBy {
			if t, ok := b[v]; ok {
				key[v] = t
				sb.WriteString(t.String())
			}
			sb.WriteByte(0)
		}
		k := sb.String()
		bk, ok := buckets[k]
		if !ok {
			bk = &bucket{key: key}
			buckets[k] = bk
			order = append(order, k)
		}
		bk.rows = append(bk.rows, b)
	}

	if len(groupBy) == 0 && len(order) == 0 {
		buckets[""] = &bucket{key: binding{}}
		order = append(order, "")
	}

	out := make([]binding, 0, len(order))
	for _, k := range order {
		bk := buckets[k]
		res := bk.key
		for _, a := range aggs {
			n := 0
			for _, r := range bk.rows {
				if _, bound := r[a.Arg]; bound {
					n++
				}
			}
			res = res.with(a.As, sparql.Integer(n))
		}
		out = append(out, res)
	}
	return out
}

func sortSolutions(sols []binding, keys []sparql.OrderKey) {
	sort.SliceStable(sols, func(i, j int) bool {
		for _, k := range keys {
			c := compareTerms(sols[i][k.Var], sols[j][k.Var])
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareTerms orders unbound < blank < IRI < literal; numeric literals
// compare by value.
func compareTerms(a, b sparql.Term) int {
	if a.Kind != b.Kind {
		return kindRank(a.Kind) - kindRank(b.Kind)
	}
	if an, ok := a.Int(); ok {
		if bn, ok := b.Int(); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(a.Value, b.Value)
}

func kindRank(k sparql.Kind) int {
	switch k {
	case sparql.KindBlank:
		return 1
	case sparql.KindIRI:
		return 2
	case sparql.KindLiteral:
		return 3
	}
	return 0
}

func project(sols []binding, proj []sparql.Var) []sparql.Row {
	rows := make([]sparql.Row, 0, len(sols))
	for _, b := range sols {
		row := make(sparql.Row, len(proj))
		if len(proj) == 0 {
			for v, t := range b {
				row[string(v)] = t
			}
		}
		for _, v := range proj {
			if t, ok := b[v]; ok {
				row[string(v)] = t
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func distinct(rows []sparql.Row, proj []sparql.Var) []sparql.Row {
	seen := make(map[string]bool, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		var sb strings.Builder
		names := make([]string, 0, len(row))
		if len(proj) == 0 {
			for name := range row {
				names = append(names, name)
			}
			sort.Strings(names)
		} else {
			for _, v := range proj {
				names = append(names, string(v))
			}
		}
		for _, name := range names {
			sb.WriteString(name)
			sb.WriteByte('=')
			if t, ok := row[name]; ok {
				sb.WriteString(t.String())
			}
			sb.WriteByte(0)
		}
		k := sb.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, row)
	}
	return out
}

package sparql

import (
	"strconv"
	"strings"
)

// Aggregate is a projected aggregate such as (COUNT(?x) AS ?n).
type Aggregate struct {
	Func string // only COUNT is supported
	Arg  Var
	As   Var
}

// Count builds (COUNT(?arg) AS ?as).
func Count(arg, as Var) Aggregate { return Aggregate{Func: "COUNT", Arg: arg, As: as} }

func (a Aggregate) String() string {
	return "(" + a.Func + "(" + a.Arg.String() + ") AS " + a.As.String() + ")"
}

// OrderKey is one ORDER BY condition.
type OrderKey struct {
	Var  Var
	Desc bool
}

func Asc(v Var) OrderKey  { return OrderKey{Var: v} }
func Desc(v Var) OrderKey { return OrderKey{Var: v, Desc: true} }

func (k OrderKey) String() string {
	if k.Desc {
		return "DESC(" + k.Var.String() + ")"
	}
	return k.Var.String()
}

// Select is a SELECT query.
type Select struct {
	// Name labels the query shape for logs and metrics. It is not rendered.
	Name string

	Distinct   bool
	Vars       []Var
	Aggregates []Aggregate
	Where      Group
	GroupBy    []Var
	Order      []OrderKey
	Limit      int
}

// Projection returns the result variables in projection order.
func (q *Select) Projection() []Var {
	out := make([]Var, 0, len(q.Vars)+len(q.Aggregates))
	out = append(out, q.Vars...)
	for _, a := range q.Aggregates {
		out = append(out, a.As)
	}
	return out
}

// String renders the query as SPARQL text.
func (q *Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	proj := make([]string, 0, len(q.Vars)+len(q.Aggregates))
	for _, v := range q.Vars {
		proj = append(proj, v.String())
	}
	for _, a := range q.Aggregates {
		proj = append(proj, a.String())
	}
	if len(proj) == 0 {
		proj = append(proj, "*")
	}
	b.WriteString(strings.Join(proj, " "))
	b.WriteString("\nWHERE ")
	q.Where.renderBlock(&b, "")
	b.WriteString("\n")

	if len(q.GroupBy) > 0 {
		vars := make([]string, len(q.GroupBy))
		for i, v := range q.GroupBy {
			vars[i] = v.String()
		}
		b.WriteString("GROUP BY " + strings.Join(vars, " ") + "\n")
	}
	if len(q.Order) > 0 {
		keys := make([]string, len(q.Order))
		for i, k := range q.Order {
			keys[i] = k.String()
		}
		b.WriteString("ORDER BY " + strings.Join(keys, " ") + "\n")
	}
	if q.Limit > 0 {
		b.WriteString("LIMIT " + strconv.Itoa(q.Limit) + "\n")
	}
	return b.String()
}

// Update is a SPARQL 1.1 update request.
type Update interface {
	update()
	String() string
}

// InsertData is INSERT DATA { triples }.
type InsertData struct {
	Triples []Triple
}

// DeleteData is DELETE DATA { triples }.
type DeleteData struct {
	Triples []Triple
}

// Batch is a sequence of operations sent as one request. Stores apply a
// batch atomically.
type Batch []Update

func (InsertData) update() {}
func (DeleteData) update() {}
func (Batch) update()      {}

func (u InsertData) String() string { return renderData("INSERT DATA", u.Triples) }
func (u DeleteData) String() string { return renderData("DELETE DATA", u.Triples) }

func (b Batch) String() string {
	parts := make([]string, len(b))
	for i, op := range b {
		parts[i] = op.String()
	}
	return strings.Join(parts, ";\n")
}

func renderData(verb string, triples []Triple) string {
	var b strings.Builder
	b.WriteString(verb + " {\n")
	for _, t := range triples {
		b.WriteString("  " + t.String() + "\n")
	}
	b.WriteString("}\n")
	return b.String()
}

package sparql

import "strings"

// Node is anything that may sit in a triple-pattern position: a Term, a Var,
// or (predicate position only) a Path.
type Node interface {
	node()
	String() string
}

// Path is the one-or-more property path p+.
type Path struct {
	Predicate Term
}

// OneOrMore builds the transitive path p+.
func OneOrMore(p Term) Path { return Path{Predicate: p} }

func (Path) node() {}

func (p Path) String() string { return p.Predicate.String() + "+" }

// Triple is a ground statement.
type Triple struct {
	S, P, O Term
}

func (t Triple) String() string {
	return t.S.String() + " " + t.P.String() + " " + t.O.String() + " ."
}

// Element is one member of a group graph pattern.
type Element interface {
	element()
	render(b *strings.Builder, indent string)
}

// Group is an ordered group graph pattern { ... }.
type Group []Element

// Pattern is a triple pattern.
type Pattern struct {
	S, P, O Node
}

// T builds a triple pattern.
func T(s, p, o Node) Pattern { return Pattern{S: s, P: p, O: o} }

// OptionalPattern is OPTIONAL { ... } (left outer join).
type OptionalPattern struct {
	Group Group
}

// Optional wraps elements in an OPTIONAL block.
func Optional(elems ...Element) OptionalPattern { return OptionalPattern{Group: elems} }

// UnionPattern is { ... } UNION { ... } [UNION ...].
type UnionPattern struct {
	Branches []Group
}

// Union joins alternative groups.
func Union(branches ...Group) UnionPattern { return UnionPattern{Branches: branches} }

// FilterPattern restricts the solutions of its enclosing group.
type FilterPattern struct {
	Expr Expr
}

// Filter builds a FILTER constraint.
func Filter(e Expr) FilterPattern { return FilterPattern{Expr: e} }

// BindPattern assigns an expression result to a fresh variable.
type BindPattern struct {
	Expr Expr
	As   Var
}

// Bind builds BIND(expr AS ?v).
func Bind(e Expr, as Var) BindPattern { return BindPattern{Expr: e, As: as} }

func (Pattern) element()         {}
func (OptionalPattern) element() {}
func (UnionPattern) element()    {}
func (FilterPattern) element()   {}
func (BindPattern) element()     {}

func (p Pattern) render(b *strings.Builder, indent string) {
	b.WriteString(indent)
	b.WriteString(p.S.String() + " " + p.P.String() + " " + p.O.String() + " .\n")
}

func (o OptionalPattern) render(b *strings.Builder, indent string) {
	b.WriteString(indent + "OPTIONAL ")
	o.Group.renderBlock(b, indent)
	b.WriteString("\n")
}

func (u UnionPattern) render(b *strings.Builder, indent string) {
	b.WriteString(indent)
	for i, g := range u.Branches {
		if i > 0 {
			b.WriteString(" UNION ")
		}
		g.renderBlock(b, indent)
	}
	b.WriteString("\n")
}

func (f FilterPattern) render(b *strings.Builder, indent string) {
	b.WriteString(indent + "FILTER(" + f.Expr.String() + ")\n")
}

func (bp BindPattern) render(b *strings.Builder, indent string) {
	b.WriteString(indent + "BIND(" + bp.Expr.String() + " AS " + bp.As.String() + ")\n")
}

func (g Group) renderBlock(b *strings.Builder, indent string) {
	b.WriteString("{\n")
	for _, e := range g {
		e.render(b, indent+"  ")
	}
	b.WriteString(indent + "}")
}

func (g Group) String() string {
	var b strings.Builder
	g.renderBlock(&b, "")
	return b.String()
}

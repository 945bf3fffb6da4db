// Package sparql is a small typed builder for the graph-pattern queries the
// reasoning engine issues. Every query is assembled from values (terms,
// patterns, expressions) and rendered to SPARQL 1.1 text in one place, so
// literal and IRI escaping is never done at a call site.
package sparql

import (
	"strconv"
	"strings"
)

// Kind distinguishes the RDF term types a binding can hold.
type Kind int

// Term kinds. The zero Kind marks an unset term.
const (
	KindIRI Kind = iota + 1
	KindLiteral
	KindBlank
)

// XSD datatypes the engine produces or compares.
const (
	XSDString  = "http://www.w3.org/2001/XMLSchema#string"
	XSDInteger = "http://www.w3.org/2001/XMLSchema#integer"
	XSDBoolean = "http://www.w3.org/2001/XMLSchema#boolean"
)

// Term is a concrete RDF term: an IRI, a literal or a blank node.
type Term struct {
	Kind     Kind
	Value    string
	Datatype string // literals only; empty means xsd:string
	Lang     string // literals only
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Literal returns a plain string literal.
func Literal(v string) Term { return Term{Kind: KindLiteral, Value: v} }

// LangLiteral returns a language-tagged literal.
func LangLiteral(v, lang string) Term { return Term{Kind: KindLiteral, Value: v, Lang: lang} }

// Integer returns an xsd:integer literal.
func Integer(n int) Term {
	return Term{Kind: KindLiteral, Value: strconv.Itoa(n), Datatype: XSDInteger}
}

// Boolean returns an xsd:boolean literal.
func Boolean(b bool) Term {
	return Term{Kind: KindLiteral, Value: strconv.FormatBool(b), Datatype: XSDBoolean}
}

// Blank returns a blank node term.
func Blank(id string) Term { return Term{Kind: KindBlank, Value: id} }

func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }
func (t Term) IsZero() bool    { return t.Kind == 0 }

// Int parses the lexical form of a numeric literal.
func (t Term) Int() (int, bool) {
	if t.Kind != KindLiteral {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(t.Value))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Equal reports RDF term equality. Plain literals and xsd:string literals
// compare equal; language tags compare case-insensitively.
func (t Term) Equal(o Term) bool {
	if t.Kind != o.Kind || t.Value != o.Value {
		return false
	}
	if t.Kind != KindLiteral {
		return true
	}
	return normDatatype(t.Datatype) == normDatatype(o.Datatype) && strings.EqualFold(t.Lang, o.Lang)
}

func normDatatype(dt string) string {
	if dt == XSDString {
		return ""
	}
	return dt
}

// String renders the term in SPARQL syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + escapeIRI(t.Value) + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		s := `"` + escapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if dt := normDatatype(t.Datatype); dt != "" {
			return s + "^^<" + escapeIRI(dt) + ">"
		}
		return s
	default:
		return `""`
	}
}

func (Term) node() {}
func (Term) expr() {}

// Var is a query variable, named without the leading '?'.
type Var string

func (v Var) String() string { return "?" + string(v) }

func (Var) node() {}
func (Var) expr() {}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// escapeIRI percent-encodes the characters SPARQL forbids inside <...>.
func escapeIRI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || strings.IndexByte("<>\"{}|^`\\", c) >= 0 {
			b.WriteString("%" + strings.ToUpper(strconv.FormatInt(int64(c)|0x100, 16)[1:]))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

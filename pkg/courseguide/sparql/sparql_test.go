package sparql

import (
	"errors"
	"strings"
	"testing"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
)

func TestTermRendering(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want string
	}{
		{"iri", IRI("http://e.org/c#IA-101"), "<http://e.org/c#IA-101>"},
		{"iri escaping", IRI("http://e.org/a b>"), "<http://e.org/a%20b%3E>"},
		{"plain literal", Literal("Machine Learning"), `"Machine Learning"`},
		{"quotes and newlines", Literal("say \"hi\"\n\\"), `"say \"hi\"\n\\"`},
		{"xsd string is plain", Term{Kind: KindLiteral, Value: "x", Datatype: XSDString}, `"x"`},
		{"integer", Integer(5), `"5"^^<http://www.w3.org/2001/XMLSchema#integer>`},
		{"language", LangLiteral("Avancé", "fr"), `"Avancé"@fr`},
		{"blank", Blank("b0"), "_:b0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.term.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNeedleCannotBreakOutOfLiteral(t *testing.T) {
	got := ContainsFold(Var("label"), `x") || true || ("`).String()
	want := `CONTAINS(LCASE(STR(?label)), LCASE("x\") || true || (\""))`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}
}

func TestTermEqualAndInt(t *testing.T) {
	if !Literal("a").Equal(Term{Kind: KindLiteral, Value: "a", Datatype: XSDString}) {
		t.Error("plain and xsd:string literals should be equal")
	}
	if !LangLiteral("a", "EN").Equal(LangLiteral("a", "en")) {
		t.Error("language tags compare case-insensitively")
	}
	if Literal("a").Equal(IRI("a")) {
		t.Error("literal and IRI with the same value differ")
	}
	if n, ok := Integer(42).Int(); !ok || n != 42 {
		t.Errorf("Int() = %d, %v", n, ok)
	}
	if _, ok := IRI("42").Int(); ok {
		t.Error("IRIs are not numbers")
	}
}

func TestSelectRendering(t *testing.T) {
	q := &Select{
		Name:     "probe",
		Distinct: true,
		Vars:     []Var{"code"},
		Where: Group{
			T(Var("c"), IRI("http://e.org/code"), Var("code")),
			Optional(T(Var("c"), IRI("http://e.org/lvl"), Var("l"))),
			Filter(NotEq(Var("code"), Literal("X"))),
		},
		Order: []OrderKey{Desc("code")},
		Limit: 3,
	}
	want := "SELECT DISTINCT ?code\n" +
		"WHERE {\n" +
		"  ?c <http://e.org/code> ?code .\n" +
		"  OPTIONAL {\n" +
		"    ?c <http://e.org/lvl> ?l .\n" +
		"  }\n" +
		"  FILTER(?code != \"X\")\n" +
		"}\n" +
		"ORDER BY DESC(?code)\n" +
		"LIMIT 3\n"
	if got := q.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestAggregatePathAndUnion(t *testing.T) {
	q := &Select{
		Vars:       []Var{"l"},
		Aggregates: []Aggregate{Count("c", "n")},
		Where: Group{
			T(Var("c"), OneOrMore(IRI("http://e.org/p")), Var("l")),
			Union(
				Group{Bind(Literal("direct"), "src")},
				Group{Bind(Concat(Literal("via "), Str(Var("c"))), "src")},
			),
			Filter(NotExists(T(Var("c"), IRI("http://e.org/q"), Var("l")))),
		},
		GroupBy: []Var{"l"},
	}
	got := q.String()
	for _, want := range []string{
		"SELECT ?l (COUNT(?c) AS ?n)\n",
		"?c <http://e.org/p>+ ?l .",
		"} UNION {",
		`BIND("direct" AS ?src)`,
		`BIND(CONCAT("via ", STR(?c)) AS ?src)`,
		"FILTER(NOT EXISTS {",
		"GROUP BY ?l\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("query lacks %q:\n%s", want, got)
		}
	}
	if proj := q.Projection(); len(proj) != 2 || proj[1] != "n" {
		t.Errorf("Projection() = %v", proj)
	}
}

func TestLogicalShortcuts(t *testing.T) {
	x := Eq(Var("a"), Literal("b"))
	if Or(x) != x {
		t.Error("single-argument Or should return its argument")
	}
	if got := Or().String(); got != Boolean(false).String() {
		t.Errorf("empty Or = %s", got)
	}
	if got := And().String(); got != Boolean(true).String() {
		t.Errorf("empty And = %s", got)
	}
	if got := Or(x, Bound("a")).String(); got != `(?a = "b" || BOUND(?a))` {
		t.Errorf("Or = %s", got)
	}
}

func TestUpdateRendering(t *testing.T) {
	u := InsertData{Triples: []Triple{{S: IRI("http://e.org/s"), P: IRI("http://e.org/p"), O: Literal("o")}}}
	want := "INSERT DATA {\n  <http://e.org/s> <http://e.org/p> \"o\" .\n}\n"
	if got := u.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := (DeleteData{}).String(); got != "DELETE DATA {\n}\n" {
		t.Errorf("empty delete = %q", got)
	}

	batch := Batch{DeleteData{}, u}
	if got, want := batch.String(), "DELETE DATA {\n}\n;\n"+want; got != want {
		t.Errorf("batch = %q, want %q", got, want)
	}
}

func TestDecodeJSON(t *testing.T) {
	doc := `{
	  "head": {"vars": ["course", "code", "credits", "label", "b", "missing"]},
	  "results": {"bindings": [
	    {"course": {"type": "uri", "value": "http://e.org/IA-101"},
	     "code": {"type": "literal", "value": "IA-101"},
	     "credits": {"type": "literal", "value": "4", "datatype": "http://www.w3.org/2001/XMLSchema#integer"},
	     "label": {"type": "literal", "value": "Débutant", "xml:lang": "fr"},
	     "b": {"type": "bnode", "value": "x1"}}
	  ]}
	}`
	rows, err := DecodeJSON(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	row := rows[0]
	if c, _ := row.Term("course"); !c.IsIRI() || c.Value != "http://e.org/IA-101" {
		t.Errorf("course = %+v", c)
	}
	if n, ok := row.Int("credits"); !ok || n != 4 {
		t.Errorf("credits = %d, %v", n, ok)
	}
	if l, _ := row.Term("label"); l.Lang != "fr" {
		t.Errorf("label = %+v", l)
	}
	if b, _ := row.Term("b"); b.Kind != KindBlank {
		t.Errorf("b = %+v", b)
	}
	if _, ok := row.Value("missing"); ok {
		t.Error("unbound variables are absent")
	}
	if err := row.Require("code", "course"); err != nil {
		t.Errorf("Require: %v", err)
	}
	err = row.Require("code", "missing")
	if !errors.Is(err, internalerr.ErrShape) || !strings.Contains(err.Error(), "?missing") {
		t.Errorf("Require(missing) = %v", err)
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	if _, err := DecodeJSON(strings.NewReader("not json")); err == nil {
		t.Error("malformed document should fail")
	}
	bad := `{"head":{"vars":["x"]},"results":{"bindings":[{"x":{"type":"triple","value":"?"}}]}}`
	if _, err := DecodeJSON(strings.NewReader(bad)); !errors.Is(err, internalerr.ErrShape) {
		t.Errorf("unknown term type should be ErrShape, got %v", err)
	}
}

package sparql

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
)

// Row is one solution of a SELECT: variable name -> bound term.
// Unbound variables are absent.
type Row map[string]Term

// Term returns the binding for name.
func (r Row) Term(name Var) (Term, bool) {
	t, ok := r[string(name)]
	return t, ok
}

// Value returns the lexical value bound to name.
func (r Row) Value(name Var) (string, bool) {
	t, ok := r[string(name)]
	if !ok {
		return "", false
	}
	return t.Value, true
}

// Int returns the integer bound to name.
func (r Row) Int(name Var) (int, bool) {
	t, ok := r[string(name)]
	if !ok {
		return 0, false
	}
	return t.Int()
}

// Require fails with internalerr.ErrShape if any of names is unbound.
func (r Row) Require(names ...Var) error {
	var missing []string
	for _, n := range names {
		if _, ok := r[string(n)]; !ok {
			missing = append(missing, n.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", internalerr.ErrShape, strings.Join(missing, ", "))
	}
	return nil
}

type jsonTerm struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

type jsonResults struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]jsonTerm `json:"bindings"`
	} `json:"results"`
}

// DecodeJSON reads an application/sparql-results+json document.
func DecodeJSON(r io.Reader) ([]Row, error) {
	var doc jsonResults
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode sparql results: %w", err)
	}

	rows := make([]Row, 0, len(doc.Results.Bindings))
	for _, binding := range doc.Results.Bindings {
		row := make(Row, len(binding))
		for name, jt := range binding {
			t, err := jt.term()
			if err != nil {
				return nil, fmt.Errorf("decode binding %s: %w", name, err)
			}
			row[name] = t
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (jt jsonTerm) term() (Term, error) {
	switch jt.Type {
	case "uri":
		return IRI(jt.Value), nil
	case "literal", "typed-literal":
		return Term{Kind: KindLiteral, Value: jt.Value, Datatype: jt.Datatype, Lang: jt.Lang}, nil
	case "bnode":
		return Blank(jt.Value), nil
	default:
		return Term{}, fmt.Errorf("%w: term type %q", internalerr.ErrShape, jt.Type)
	}
}

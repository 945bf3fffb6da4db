package store

import (
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
)

// Normalize returns t in the canonical form backends index by: plain and
// xsd:string literals collapse to one representation, language tags are
// lower-cased.
func Normalize(t sparql.Term) sparql.Term {
	if t.Kind != sparql.KindLiteral {
		return sparql.Term{Kind: t.Kind, Value: t.Value}
	}
	if t.Datatype == sparql.XSDString {
		t.Datatype = ""
	}
	if t.Lang != "" {
		t.Lang = strings.ToLower(t.Lang)
		t.Datatype = ""
	}
	return t
}

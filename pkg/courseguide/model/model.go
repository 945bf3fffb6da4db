// Package model defines the typed shapes read back from the knowledge graph.
// Each decoder checks the variables its query shape guarantees and fails with
// internalerr.ErrShape instead of defaulting silently.
package model

import (
	"fmt"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

// Variable names shared by the course-shaped queries.
const (
	VarCourse      sparql.Var = "course"
	VarCode        sparql.Var = "code"
	VarName        sparql.Var = "name"
	VarCredits     sparql.Var = "credits"
	VarDuration    sparql.Var = "duration"
	VarDifficulty  sparql.Var = "difficulty"
	VarDescription sparql.Var = "description"
	VarDomain      sparql.Var = "domain"
	VarDomainLabel sparql.Var = "domainLabel"
	VarLevel       sparql.Var = "level"
	VarLevelLabel  sparql.Var = "levelLabel"
)

// Course is a course node with its scalar attributes.
type Course struct {
	IRI         string   `json:"iri,omitempty"`
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Credits     int      `json:"credits"`
	Duration    int      `json:"duration"`
	Difficulty  int      `json:"difficulty"`
	Description string   `json:"description,omitempty"`
	Domain      string   `json:"domain,omitempty"`
	Level       string   `json:"level,omitempty"`
	Skills      []string `json:"skills,omitempty"`
}

func (c Course) String() string { return fmt.Sprintf("%s: %s", c.Code, c.Name) }

// CourseVars is the projection used by every course-shaped query.
var CourseVars = []sparql.Var{
	VarCourse, VarCode, VarName, VarCredits, VarDuration, VarDifficulty,
	VarDescription, VarDomainLabel, VarLevelLabel,
}

// CourseCore matches a course node with mandatory code and name.
func CourseCore(course sparql.Node) []sparql.Element {
	return []sparql.Element{
		sparql.T(course, vocab.CourseName, VarName),
		sparql.T(course, vocab.CourseCode, VarCode),
	}
}

// CourseAttributes binds the optional attributes of a course node.
func CourseAttributes(course sparql.Node) []sparql.Element {
	return []sparql.Element{
		sparql.Optional(sparql.T(course, vocab.Credits, VarCredits)),
		sparql.Optional(sparql.T(course, vocab.Duration, VarDuration)),
		sparql.Optional(sparql.T(course, vocab.Difficulty, VarDifficulty)),
		sparql.Optional(sparql.T(course, vocab.Description, VarDescription)),
		sparql.Optional(
			sparql.T(course, vocab.InDomain, sparql.Var("attrDomain")),
			sparql.T(sparql.Var("attrDomain"), vocab.Label, VarDomainLabel),
		),
		sparql.Optional(
			sparql.T(course, vocab.HasLevel, sparql.Var("attrLevel")),
			sparql.T(sparql.Var("attrLevel"), vocab.Label, VarLevelLabel),
		),
	}
}

// CourseFromRow decodes a course-shaped row.
func CourseFromRow(row sparql.Row) (Course, error) {
	if err := row.Require(VarCode, VarName); err != nil {
		return Course{}, err
	}
	c := Course{}
	c.Code, _ = row.Value(VarCode)
	c.Name, _ = row.Value(VarName)
	c.IRI, _ = row.Value(VarCourse)
	c.Credits, _ = row.Int(VarCredits)
	c.Duration, _ = row.Int(VarDuration)
	c.Difficulty, _ = row.Int(VarDifficulty)
	c.Description, _ = row.Value(VarDescription)
	c.Domain, _ = row.Value(VarDomainLabel)
	c.Level, _ = row.Value(VarLevelLabel)
	return c, nil
}

// CoursesFromRows decodes rows in order, collapsing repeated codes produced
// by multi-valued optional attributes. The first row for a code wins.
func CoursesFromRows(rows []sparql.Row) ([]Course, error) {
	out := make([]Course, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		c, err := CourseFromRow(row)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c.Code]; dup {
			continue
		}
		seen[c.Code] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

// Codes returns the course codes in order.
func Codes(courses []Course) []string {
	out := make([]string, len(courses))
	for i, c := range courses {
		out[i] = c.Code
	}
	return out
}

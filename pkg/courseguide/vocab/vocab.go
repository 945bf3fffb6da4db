// Package vocab holds the course ontology: namespace, classes, predicates and
// the level progression.
package vocab

import (
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
)

// Namespaces.
const (
	Namespace = "http://www.university.edu/ontology/courses#"
	RDF       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS      = "http://www.w3.org/2000/01/rdf-schema#"
)

// Classes
var (
	Course  = sparql.IRI(Namespace + "Course")
	Student = sparql.IRI(Namespace + "Student")
	Skill   = sparql.IRI(Namespace + "Skill")
	Domain  = sparql.IRI(Namespace + "Domain")
	Level   = sparql.IRI(Namespace + "Level")
)

// Object properties
var (
	HasPrerequisite = sparql.IRI(Namespace + "aPrerequis")
	TeachesSkill    = sparql.IRI(Namespace + "enseigneCompetence")
	InDomain        = sparql.IRI(Namespace + "appartientADomaine")
	HasLevel        = sparql.IRI(Namespace + "aNiveau")
	HasSkill        = sparql.IRI(Namespace + "possèdeCompetence")
	InterestedIn    = sparql.IRI(Namespace + "aInteretPour")
	Completed       = sparql.IRI(Namespace + "aSuivi")
)

// Data properties
var (
	Type        = sparql.IRI(RDF + "type")
	Label       = sparql.IRI(RDFS + "label")
	CourseName  = sparql.IRI(Namespace + "nomCours")
	CourseCode  = sparql.IRI(Namespace + "codeCours")
	Credits     = sparql.IRI(Namespace + "credits")
	Duration    = sparql.IRI(Namespace + "duree")
	Difficulty  = sparql.IRI(Namespace + "difficulte")
	Description = sparql.IRI(Namespace + "description")
	StudentName = sparql.IRI(Namespace + "nomEtudiant")
)

// Entity returns the IRI for a local name in the ontology namespace. Values
// that already look like absolute IRIs are used as-is, so callers may pass
// either "STU-001" or a full student IRI.
func Entity(id string) sparql.Term {
	if strings.Contains(id, "://") || strings.HasPrefix(id, "urn:") {
		return sparql.IRI(id)
	}
	return sparql.IRI(Namespace + id)
}

// LevelName is a course level label.
type LevelName string

// Course levels, lowest first.
const (
	Beginner     LevelName = "Débutant"
	Intermediate LevelName = "Intermédiaire"
	Advanced     LevelName = "Avancé"
)

var progression = map[LevelName]LevelName{
	Beginner:     Intermediate,
	Intermediate: Advanced,
	Advanced:     Advanced,
}

// Next returns the level one step above l. Unknown labels map to Beginner.
func (l LevelName) Next() LevelName {
	if next, ok := progression[l]; ok {
		return next
	}
	return Beginner
}

// LevelLocalName maps a level label to its ontology local name
// (Débutant -> Debutant).
func LevelLocalName(l LevelName) string {
	switch l {
	case Beginner:
		return "Debutant"
	case Intermediate:
		return "Intermediaire"
	case Advanced:
		return "Avance"
	}
	return string(l)
}

package model

import (
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
)

// Variable names shared by the prerequisite, competency and profile queries.
const (
	VarPrereq      sparql.Var = "prereq"
	VarPrereqCode  sparql.Var = "prereqCode"
	VarPrereqName  sparql.Var = "prereqName"
	VarPrereqLevel sparql.Var = "prereqLevel"
	VarSkill       sparql.Var = "skill"
	VarSkillLabel  sparql.Var = "skillLabel"
	VarSource      sparql.Var = "source"
	VarCount       sparql.Var = "count"
	VarInterest    sparql.Var = "interestLabel"
	VarCompleted   sparql.Var = "completedCode"
)

// PrerequisiteRow is one direct "requires" edge discovered while expanding
// the prerequisite graph.
type PrerequisiteRow struct {
	RequiredBy string `json:"required_by"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Level      string `json:"level,omitempty"`
}

// PrerequisiteFromRow decodes a direct-prerequisite row for requiredBy.
func PrerequisiteFromRow(requiredBy string, row sparql.Row) (PrerequisiteRow, error) {
	if err := row.Require(VarPrereqCode, VarPrereqName); err != nil {
		return PrerequisiteRow{}, err
	}
	p := PrerequisiteRow{RequiredBy: requiredBy}
	p.Code, _ = row.Value(VarPrereqCode)
	p.Name, _ = row.Value(VarPrereqName)
	p.Level, _ = row.Value(VarPrereqLevel)
	return p, nil
}

// Competency is a skill a student holds, tagged with where it came from:
// "direct" or "inferred from <course>".
type Competency struct {
	Skill  string `json:"skill"`
	Label  string `json:"label"`
	Source string `json:"source"`
}

// SourceDirect marks a competency recorded on the student rather than
// inferred from a completed course.
const SourceDirect = "direct"

// CompetencyFromRow decodes a competency row.
func CompetencyFromRow(row sparql.Row) (Competency, error) {
	if err := row.Require(VarSkill, VarSkillLabel, VarSource); err != nil {
		return Competency{}, err
	}
	c := Competency{}
	c.Skill, _ = row.Value(VarSkill)
	c.Label, _ = row.Value(VarSkillLabel)
	c.Source, _ = row.Value(VarSource)
	return c, nil
}

// Profile is what the recommender knows about a student.
type Profile struct {
	StudentID string
	Interests []string
	Skills    []string
	Completed []string
}

// HasCompleted reports whether code is among the completed courses.
func (p Profile) HasCompleted(code string) bool {
	for _, c := range p.Completed {
		if c == code {
			return true
		}
	}
	return false
}

// ProfileFromRows folds the cross product of the three optional profile
// blocks into de-duplicated lists, keeping first-seen order.
func ProfileFromRows(studentID string, rows []sparql.Row) Profile {
	p := Profile{StudentID: studentID}
	seen := map[sparql.Var]map[string]bool{
		VarInterest:   {},
		VarSkillLabel: {},
		VarCompleted:  {},
	}
	add := func(v sparql.Var, row sparql.Row, dst *[]string) {
		val, ok := row.Value(v)
		if !ok || seen[v][val] {
			return
		}
		seen[v][val] = true
		*dst = append(*dst, val)
	}
	for _, row := range rows {
		add(VarInterest, row, &p.Interests)
		add(VarSkillLabel, row, &p.Skills)
		add(VarCompleted, row, &p.Completed)
	}
	return p
}

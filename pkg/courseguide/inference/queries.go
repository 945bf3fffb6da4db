package inference

import (
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

// transitiveQuery follows one or more prerequisite edges from the course
// with the given code. The code itself is filtered out so a cycle through
// the course does not report it as its own prerequisite.
func transitiveQuery(code string) *sparql.Select {
	c, p := sparql.Var("c"), model.VarPrereq
	return &sparql.Select{
		Name:     "transitive_prerequisites",
		Distinct: true,
		Vars:     []sparql.Var{model.VarPrereqCode},
		Where: sparql.Group{
			sparql.T(c, vocab.CourseCode, sparql.Literal(code)),
			sparql.T(c, sparql.OneOrMore(vocab.HasPrerequisite), p),
			sparql.T(p, vocab.CourseCode, model.VarPrereqCode),
			sparql.Filter(sparql.NotEq(model.VarPrereqCode, sparql.Literal(code))),
		},
		Order: []sparql.OrderKey{sparql.Asc(model.VarPrereqCode)},
	}
}

func competenciesQuery(student sparql.Term) *sparql.Select {
	c, cn := sparql.Var("c"), sparql.Var("courseName")
	return &sparql.Select{
		Name:     "student_competencies",
		Distinct: true,
		Vars:     []sparql.Var{model.VarSkill, model.VarSkillLabel, model.VarSource},
		Where: sparql.Group{
			sparql.Union(
				sparql.Group{
					sparql.T(student, vocab.HasSkill, model.VarSkill),
					sparql.T(model.VarSkill, vocab.Label, model.VarSkillLabel),
					sparql.Bind(sparql.Literal(model.SourceDirect), model.VarSource),
				},
				sparql.Group{
					sparql.T(student, vocab.Completed, c),
					sparql.T(c, vocab.TeachesSkill, model.VarSkill),
					sparql.T(model.VarSkill, vocab.Label, model.VarSkillLabel),
					sparql.T(c, vocab.CourseName, cn),
					sparql.Bind(sparql.Concat(sparql.Literal("inferred from "), sparql.Str(cn)), model.VarSource),
				},
			),
		},
		Order: []sparql.OrderKey{sparql.Asc(model.VarSkillLabel), sparql.Asc(model.VarSource)},
	}
}

func levelCountQuery(student sparql.Term) *sparql.Select {
	c := sparql.Var("c")
	return &sparql.Select{
		Name:       "recommended_level",
		Vars:       []sparql.Var{model.VarLevelLabel},
		Aggregates: []sparql.Aggregate{sparql.Count(c, model.VarCount)},
		Where: sparql.Group{
			sparql.T(student, vocab.Completed, c),
			sparql.T(c, vocab.HasLevel, model.VarLevel),
			sparql.T(model.VarLevel, vocab.Label, model.VarLevelLabel),
		},
		GroupBy: []sparql.Var{model.VarLevelLabel},
		Order:   []sparql.OrderKey{sparql.Desc(model.VarCount)},
		Limit:   1,
	}
}

// eligibleQuery lists courses the student has not completed and whose direct
// prerequisites are all completed.
func eligibleQuery(student sparql.Term) *sparql.Select {
	course, p := model.VarCourse, sparql.Var("p")
	where := sparql.Group{}
	where = append(where, model.CourseCore(course)...)
	where = append(where, model.CourseAttributes(course)...)
	where = append(where,
		sparql.Filter(sparql.NotExists(sparql.T(student, vocab.Completed, course))),
		sparql.Filter(sparql.NotExists(
			sparql.T(course, vocab.HasPrerequisite, p),
			sparql.Filter(sparql.NotExists(sparql.T(student, vocab.Completed, p))),
		)),
	)
	return &sparql.Select{
		Name:     "eligible_courses",
		Distinct: true,
		Vars:     model.CourseVars,
		Where:    where,
		Order:    []sparql.OrderKey{sparql.Asc(model.VarCode)},
	}
}

package recommend

import (
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

// profileQuery fetches interests, skills and completed courses in one
// request. The three blocks are independent, so rows are their cross
// product; model.ProfileFromRows folds them back.
func profileQuery(student sparql.Term) *sparql.Select {
	i, s, c := sparql.Var("interest"), sparql.Var("skillNode"), sparql.Var("completed")
	return &sparql.Select{
		Name: "student_profile",
		Vars: []sparql.Var{model.VarInterest, model.VarSkillLabel, model.VarCompleted},
		Where: sparql.Group{
			sparql.Optional(
				sparql.T(student, vocab.InterestedIn, i),
				sparql.T(i, vocab.Label, model.VarInterest),
			),
			sparql.Optional(
				sparql.T(student, vocab.HasSkill, s),
				sparql.T(s, vocab.Label, model.VarSkillLabel),
			),
			sparql.Optional(
				sparql.T(student, vocab.Completed, c),
				sparql.T(c, vocab.CourseCode, model.VarCompleted),
			),
		},
	}
}

// similarQuery finds courses sharing the reference course's domain or its
// level. A reference without a domain (or level) simply contributes no rows
// through that branch.
func similarQuery(code string, limit int) *sparql.Select {
	ref, sim := sparql.Var("ref"), model.VarCourse
	d, l := sparql.Var("sharedDomain"), sparql.Var("sharedLevel")

	where := sparql.Group{
		sparql.T(ref, vocab.CourseCode, sparql.Literal(code)),
		sparql.Union(
			sparql.Group{sparql.T(ref, vocab.InDomain, d), sparql.T(sim, vocab.InDomain, d)},
			sparql.Group{sparql.T(ref, vocab.HasLevel, l), sparql.T(sim, vocab.HasLevel, l)},
		),
	}
	where = append(where, model.CourseCore(sim)...)
	where = append(where, model.CourseAttributes(sim)...)
	where = append(where, sparql.Filter(sparql.NotEq(sim, ref)))

	return &sparql.Select{
		Name:     "similar_courses",
		Distinct: true,
		Vars:     model.CourseVars,
		Where:    where,
		Order:    []sparql.OrderKey{sparql.Asc(model.VarCode)},
		Limit:    limit,
	}
}

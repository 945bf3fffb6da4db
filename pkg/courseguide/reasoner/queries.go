package reasoner

import (
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

// courseSelect wraps extra patterns in the standard course projection,
// distinct and ordered by code.
func courseSelect(name string, extra ...sparql.Element) *sparql.Select {
	course := model.VarCourse
	where := sparql.Group{}
	where = append(where, model.CourseCore(course)...)
	where = append(where, extra...)
	where = append(where, model.CourseAttributes(course)...)
	return &sparql.Select{
		Name:     name,
		Distinct: true,
		Vars:     model.CourseVars,
		Where:    where,
		Order:    []sparql.OrderKey{sparql.Asc(model.VarCode)},
	}
}

// domainTiers are the lookup strategies for a free-text domain name, tried
// in order until one returns rows.
var domainTiers = []struct {
	name  string
	build func(domain string) *sparql.Select
}{
	{"domain_by_label", func(domain string) *sparql.Select {
		d, dl := sparql.Var("d"), sparql.Var("dl")
		return courseSelect("domain_by_label",
			sparql.T(model.VarCourse, vocab.InDomain, d),
			sparql.T(d, vocab.Label, dl),
			sparql.Filter(sparql.ContainsFold(dl, domain)),
		)
	}},
	{"domain_by_iri", func(domain string) *sparql.Select {
		d := sparql.Var("d")
		return courseSelect("domain_by_iri",
			sparql.T(model.VarCourse, vocab.InDomain, d),
			sparql.Filter(sparql.ContainsFold(d, domain)),
		)
	}},
	{"domain_by_course_text", func(domain string) *sparql.Select {
		return courseSelect("domain_by_course_text",
			sparql.Filter(sparql.Or(
				sparql.ContainsFold(model.VarName, domain),
				sparql.ContainsFold(model.VarCode, domain),
			)),
		)
	}},
}

func levelQuery(level string) *sparql.Select {
	l, ll := sparql.Var("l"), sparql.Var("ll")
	return courseSelect("courses_by_level",
		sparql.T(model.VarCourse, vocab.HasLevel, l),
		sparql.T(l, vocab.Label, ll),
		sparql.Filter(sparql.ContainsFold(ll, level)),
	)
}

func skillsQuery(skills []string) *sparql.Select {
	tests := make([]sparql.Expr, len(skills))
	for i, s := range skills {
		tests[i] = sparql.ContainsFold(model.VarSkillLabel, s)
	}
	return courseSelect("courses_by_skill",
		sparql.T(model.VarCourse, vocab.TeachesSkill, model.VarSkill),
		sparql.T(model.VarSkill, vocab.Label, model.VarSkillLabel),
		sparql.Filter(sparql.Or(tests...)),
	)
}

// skillsTextQuery is the fallback: search course names and descriptions.
// An unbound description makes its CONTAINS an error, which || tolerates.
func skillsTextQuery(skills []string) *sparql.Select {
	var tests []sparql.Expr
	for _, s := range skills {
		tests = append(tests, sparql.ContainsFold(model.VarName, s))
	}
	for _, s := range skills {
		tests = append(tests, sparql.ContainsFold(model.VarDescription, s))
	}
	q := courseSelect("courses_by_skill_text")
	q.Where = append(q.Where, sparql.Filter(sparql.Or(tests...)))
	return q
}

func courseByCodeQuery(code string) *sparql.Select {
	q := courseSelect("course_by_code")
	q.Where = append(sparql.Group{sparql.T(model.VarCourse, vocab.CourseCode, sparql.Literal(code))}, q.Where...)
	q.Limit = 1
	return q
}

func allCoursesQuery() *sparql.Select {
	return courseSelect("all_courses")
}

func completedQuery(student sparql.Term) *sparql.Select {
	return courseSelect("completed_courses", sparql.T(student, vocab.Completed, model.VarCourse))
}

func directPrerequisitesQuery(code string) *sparql.Select {
	c, p, l := sparql.Var("c"), model.VarPrereq, sparql.Var("l")
	return &sparql.Select{
		Name:     "direct_prerequisites",
		Distinct: true,
		Vars:     []sparql.Var{model.VarPrereqCode, model.VarPrereqName, model.VarPrereqLevel},
		Where: sparql.Group{
			sparql.T(c, vocab.CourseCode, sparql.Literal(code)),
			sparql.T(c, vocab.HasPrerequisite, p),
			sparql.T(p, vocab.CourseName, model.VarPrereqName),
			sparql.T(p, vocab.CourseCode, model.VarPrereqCode),
			sparql.Optional(
				sparql.T(p, vocab.HasLevel, l),
				sparql.T(l, vocab.Label, model.VarPrereqLevel),
			),
		},
		Order: []sparql.OrderKey{sparql.Asc(model.VarPrereqCode)},
	}
}

func courseSkillsQuery(code string) *sparql.Select {
	c := sparql.Var("c")
	return &sparql.Select{
		Name:     "course_skills",
		Distinct: true,
		Vars:     []sparql.Var{model.VarSkillLabel},
		Where: sparql.Group{
			sparql.T(c, vocab.CourseCode, sparql.Literal(code)),
			sparql.T(c, vocab.TeachesSkill, model.VarSkill),
			sparql.T(model.VarSkill, vocab.Label, model.VarSkillLabel),
		},
		Order: []sparql.OrderKey{sparql.Asc(model.VarSkillLabel)},
	}
}

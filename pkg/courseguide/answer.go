package courseguide

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
)

// Intent names an already-classified user request.
type Intent string

// Intents Answer dispatches.
const (
	IntentSearchCourses      Intent = "search_courses"
	IntentCheckPrerequisites Intent = "check_prerequisites"
	IntentLearningPath       Intent = "learning_path"
	IntentCourseInfo         Intent = "course_info"
	IntentListSkills         Intent = "list_skills"
	IntentCheckEligibility   Intent = "check_eligibility"
	IntentRecommend          Intent = "recommend"
	IntentPlanToGoal         Intent = "plan_to_goal"
)

// Entities are the fields an intent classifier extracted from free text.
type Entities struct {
	CourseCode string   `json:"course_code,omitempty"`
	Domain     string   `json:"domain,omitempty"`
	Level      string   `json:"level,omitempty"`
	Skills     []string `json:"skills,omitempty"`
}

// Request is one classified question.
type Request struct {
	Intent    Intent   `json:"intent" binding:"required"`
	Entities  Entities `json:"entities"`
	StudentID string   `json:"student_id,omitempty"`
}

// Response carries the operation result and a short summary line.
type Response struct {
	Intent  Intent `json:"intent"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Answer dispatches req to the matching operation. Not-found lookups become
// a message rather than an error; unknown intents and missing entities fail
// with internalerr.ErrInvalidInput.
func (g *Guide) Answer(ctx context.Context, req Request) (Response, error) {
	resp := Response{Intent: req.Intent}
	e := req.Entities

	switch req.Intent {
	case IntentSearchCourses:
		courses, err := g.Search(ctx, Query{Domain: e.Domain, Level: e.Level, CourseCode: e.CourseCode})
		if err != nil {
			return resp, err
		}
		resp.Data = courses
		resp.Message = countMessage(len(courses), "course", "No course matches your search.")

	case IntentCheckPrerequisites:
		p, err := g.Prerequisites(ctx, e.CourseCode)
		if errors.Is(err, internalerr.ErrNotFound) {
			resp.Message = fmt.Sprintf("Course %s was not found.", strings.TrimSpace(e.CourseCode))
			return resp, nil
		}
		if err != nil {
			return resp, err
		}
		resp.Data = p
		if len(p.All) == 0 {
			resp.Message = fmt.Sprintf("%s has no prerequisites.", p.Course.Code)
		} else {
			resp.Message = fmt.Sprintf("%s requires %s.", p.Course.Code, strings.Join(p.All, ", "))
		}

	case IntentLearningPath:
		var (
			path []model.Course
			err  error
		)
		if strings.TrimSpace(e.CourseCode) != "" {
			path, err = g.CoursePath(ctx, e.CourseCode)
		} else {
			path, err = g.LearningPath(ctx, e.Domain)
		}
		if err != nil {
			return resp, err
		}
		resp.Data = path
		resp.Message = countMessage(len(path), "step", "No learning path could be built.")

	case IntentCourseInfo:
		c, err := g.CourseInfo(ctx, e.CourseCode)
		if errors.Is(err, internalerr.ErrNotFound) {
			resp.Message = fmt.Sprintf("Course %s was not found.", strings.TrimSpace(e.CourseCode))
			return resp, nil
		}
		if err != nil {
			return resp, err
		}
		resp.Data = c
		resp.Message = c.String()

	case IntentListSkills:
		courses, err := g.Skills(ctx, e.Skills)
		if err != nil {
			return resp, err
		}
		resp.Data = courses
		resp.Message = countMessage(len(courses), "course", "No course teaches these skills.")

	case IntentCheckEligibility:
		el, err := g.Eligibility(ctx, req.StudentID, e.CourseCode)
		if err != nil {
			return resp, err
		}
		resp.Data = el
		resp.Message = el.Message

	case IntentRecommend:
		recs, err := g.Recommend(ctx, req.StudentID, 0)
		if err != nil {
			return resp, err
		}
		resp.Data = recs
		resp.Message = countMessage(len(recs), "recommendation", "No recommendation available yet.")

	case IntentPlanToGoal:
		plan, err := g.PlanToGoal(ctx, req.StudentID, e.CourseCode)
		if err != nil {
			return resp, err
		}
		resp.Data = plan
		resp.Message = fmt.Sprintf("%d course(s) left, about %d semester(s).", len(plan.RemainingPath), plan.EstimatedSemesters)

	default:
		return resp, fmt.Errorf("unknown intent %q: %w", req.Intent, internalerr.ErrInvalidInput)
	}
	return resp, nil
}

func countMessage(n int, noun, empty string) string {
	switch n {
	case 0:
		return empty
	case 1:
		return "Found 1 " + noun + "."
	default:
		return fmt.Sprintf("Found %d %ss.", n, noun)
	}
}

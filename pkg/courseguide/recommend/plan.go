package recommend

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
)

// Plan is the way from a student's current state to a goal course.
type Plan struct {
	ID                 string         `json:"id"`
	StudentID          string         `json:"student_id"`
	Goal               string         `json:"goal"`
	FullPath           []model.Course `json:"full_path"`
	RemainingPath      []model.Course `json:"remaining_path"`
	NextCourses        []model.Course `json:"next_courses"`
	TotalCredits       int            `json:"total_credits"`
	EstimatedSemesters int            `json:"estimated_semesters"`
	CompletedCount     int            `json:"completed_count"`
	CreatedAt          time.Time      `json:"created_at"`
}

// PlanBuilder assembles plans and stamps them with sortable IDs.
type PlanBuilder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewPlanBuilder creates a plan builder.
func NewPlanBuilder() *PlanBuilder {
	return &PlanBuilder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Build derives a plan from the ordered path to goal. Completed courses are
// removed from the path; the next courses are the first remaining ones the
// student may take now (eligible), at most three. Semesters assume four
// courses each, with a minimum of one.
func (b *PlanBuilder) Build(studentID, goal string, path []model.Course, completed, eligible []string) Plan {
	done := toSet(completed)
	canTake := toSet(eligible)

	remaining := make([]model.Course, 0, len(path))
	next := make([]model.Course, 0, maxNextCourses)
	credits := 0
	for _, c := range path {
		if done[c.Code] {
			continue
		}
		remaining = append(remaining, c)
		credits += c.Credits
		if canTake[c.Code] && len(next) < maxNextCourses {
			next = append(next, c)
		}
	}

	semesters := len(remaining) / coursesPerSemester
	if semesters < 1 {
		semesters = 1
	}

	now := b.now()
	return Plan{
		ID:                 b.newID(now),
		StudentID:          studentID,
		Goal:               goal,
		FullPath:           path,
		RemainingPath:      remaining,
		NextCourses:        next,
		TotalCredits:       credits,
		EstimatedSemesters: semesters,
		CompletedCount:     len(done),
		CreatedAt:          now,
	}
}

func (b *PlanBuilder) newID(t time.Time) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), b.entropy).String()
}

func toSet(codes []string) map[string]bool {
	m := make(map[string]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}

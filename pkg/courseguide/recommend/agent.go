// Package recommend ranks courses for a student, plans the way to a goal
// course and finds similar courses.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/inference"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/metrics"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/reasoner"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

const (
	// DefaultMaxResults is the recommendation count used when none is asked for.
	DefaultMaxResults = 5
	// DefaultSimilarLimit is the similar-course count used when none is asked for.
	DefaultSimilarLimit = 3
	// DefaultMaxLimit bounds any caller-supplied result count.
	DefaultMaxLimit = 100

	statsSimilarLimit  = 5
	maxNextCourses     = 3
	coursesPerSemester = 4

	reasonTopUp = "Accessible with your current prerequisites"
)

// Recommendation is one ranked course.
type Recommendation struct {
	Course    model.Course   `json:"course"`
	Score     float64        `json:"score"`
	Reason    string         `json:"reason"`
	Eligible  bool           `json:"eligible"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// Statistics summarises a course's place in the graph.
type Statistics struct {
	Course             model.Course   `json:"course"`
	TotalPrerequisites int            `json:"total_prerequisites"`
	SimilarCount       int            `json:"similar_count"`
	SimilarCourses     []model.Course `json:"similar_courses"`
}

// Agent composes reasoner and inference answers into recommendations.
type Agent struct {
	store     store.Store
	reasoner  *reasoner.Reasoner
	inference *inference.Engine
	scorer    *Scorer
	plans     *PlanBuilder
	maxLimit  int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithWeights replaces the default scoring weights.
func WithWeights(w Weights) Option {
	return func(a *Agent) { a.scorer = NewScorer(w) }
}

// WithMetrics counts recommendations handed out.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Agent) { a.metrics = m }
}

// WithMaxLimit bounds the result counts callers may ask for. Larger
// requests fail with internalerr.ErrInvalidInput. n <= 0 keeps
// DefaultMaxLimit.
func WithMaxLimit(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxLimit = n
		}
	}
}

// New creates an agent.
func New(st store.Store, r *reasoner.Reasoner, inf *inference.Engine, opts ...Option) *Agent {
	a := &Agent{
		store:     st,
		reasoner:  r,
		inference: inf,
		scorer:    NewScorer(DefaultWeights()),
		plans:     NewPlanBuilder(),
		maxLimit:  DefaultMaxLimit,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Profile loads a student's interests, skills and completed course codes in
// one query. An unknown student has an empty profile.
func (a *Agent) Profile(ctx context.Context, studentID string) (model.Profile, error) {
	id, err := requireArg("student id", studentID)
	if err != nil {
		return model.Profile{}, err
	}
	q := profileQuery(vocab.Entity(id))
	rows, err := a.store.Query(ctx, q)
	if err != nil {
		a.logger.Warn("recommend: store query failed", "query", q.Name, "err", err)
		rows = nil
	}
	return model.ProfileFromRows(id, rows), nil
}

// RecommendByProfile ranks eligible, not yet completed courses: first those
// in the student's interest domains, scored by the Scorer, then any other
// eligible course at the top-up score until maxResults is reached. A course
// matching several interests is listed once, under the first. Ties keep
// discovery order. maxResults <= 0 means DefaultMaxResults. Interests with a
// blank label are skipped.
func (a *Agent) RecommendByProfile(ctx context.Context, studentID string, maxResults int) ([]Recommendation, error) {
	maxResults, err := a.limit("max results", maxResults, DefaultMaxResults)
	if err != nil {
		return nil, err
	}
	profile, err := a.Profile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	a.logger.Info("recommend: profile loaded", "student", profile.StudentID,
		"interests", len(profile.Interests), "skills", len(profile.Skills), "completed", len(profile.Completed))

	var recs []Recommendation
	seen := make(map[string]bool)
	eligible := func(code string) (bool, error) {
		res, err := a.reasoner.CheckEligibility(ctx, profile.StudentID, code)
		return res.Eligible, err
	}

	for _, interest := range profile.Interests {
		if strings.TrimSpace(interest) == "" {
			continue
		}
		courses, err := a.reasoner.CoursesByDomain(ctx, interest)
		if err != nil {
			return nil, err
		}
		for _, c := range courses {
			if seen[c.Code] || profile.HasCompleted(c.Code) {
				continue
			}
			ok, err := eligible(c.Code)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			seen[c.Code] = true
			b := a.scorer.Breakdown(c)
			recs = append(recs, Recommendation{
				Course:    c,
				Score:     b.Total,
				Reason:    "Matches your interest: " + interest,
				Eligible:  true,
				Breakdown: b,
			})
		}
	}

	if len(recs) < maxResults {
		all, err := a.reasoner.AllCourses(ctx)
		if err != nil {
			return nil, err
		}
		topUp := a.scorer.TopUpScore()
		// With the top-up score at or below every interest score, courses
		// past maxResults can never outrank what is already collected.
		stopEarly := topUp <= minScore(recs)
		for _, c := range all {
			if stopEarly && len(recs) >= maxResults {
				break
			}
			if seen[c.Code] || profile.HasCompleted(c.Code) {
				continue
			}
			ok, err := eligible(c.Code)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			seen[c.Code] = true
			recs = append(recs, Recommendation{
				Course:    c,
				Score:     topUp,
				Reason:    reasonTopUp,
				Eligible:  true,
				Breakdown: ScoreBreakdown{Base: topUp, Total: topUp},
			})
		}
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > maxResults {
		recs = recs[:maxResults]
	}
	if recs == nil {
		recs = []Recommendation{}
	}
	a.metrics.Recommended(len(recs))
	a.logger.Info("recommend: recommendations ranked", "student", profile.StudentID, "count", len(recs))
	return recs, nil
}

func minScore(recs []Recommendation) float64 {
	m := 1.0
	for _, r := range recs {
		if r.Score < m {
			m = r.Score
		}
	}
	return m
}

// RecommendForGoal plans the way from the student's completed courses to
// goalCode.
func (a *Agent) RecommendForGoal(ctx context.Context, studentID, goalCode string) (Plan, error) {
	id, err := requireArg("student id", studentID)
	if err != nil {
		return Plan{}, err
	}
	goal, err := requireArg("goal course code", goalCode)
	if err != nil {
		return Plan{}, err
	}

	path, err := a.reasoner.ComputeLearningPath(ctx, goal)
	if err != nil {
		return Plan{}, err
	}
	completed, err := a.reasoner.CompletedCourses(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	eligible, err := a.inference.EligibleCourses(ctx, id)
	if err != nil {
		return Plan{}, err
	}

	plan := a.plans.Build(id, goal, path, model.Codes(completed), model.Codes(eligible))
	a.logger.Info("recommend: goal plan", "student", id, "goal", goal,
		"remaining", len(plan.RemainingPath), "plan", plan.ID)
	return plan, nil
}

// FindSimilarCourses returns up to limit courses sharing the domain or the
// level of courseCode, never courseCode itself. limit <= 0 means
// DefaultSimilarLimit; a limit above the agent's bound fails with
// internalerr.ErrInvalidInput.
func (a *Agent) FindSimilarCourses(ctx context.Context, courseCode string, limit int) ([]model.Course, error) {
	code, err := requireArg("course code", courseCode)
	if err != nil {
		return nil, err
	}
	limit, err = a.limit("limit", limit, DefaultSimilarLimit)
	if err != nil {
		return nil, err
	}

	// One extra row covers a distinct node that shares the reference code.
	q := similarQuery(code, limit+1)
	rows, err := a.store.Query(ctx, q)
	if err != nil {
		a.logger.Warn("recommend: store query failed", "query", q.Name, "err", err)
		return []model.Course{}, nil
	}
	courses, err := model.CoursesFromRows(rows)
	if err != nil {
		return nil, err
	}

	out := make([]model.Course, 0, min(limit, len(courses)))
	for _, c := range courses {
		if c.Code == code {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, c)
	}
	return out, nil
}

// CourseStatistics counts a course's recursive prerequisite rows and lists
// similar courses. An unknown code fails with internalerr.ErrNotFound.
func (a *Agent) CourseStatistics(ctx context.Context, courseCode string) (Statistics, error) {
	course, ok, err := a.reasoner.CourseByCode(ctx, courseCode)
	if err != nil {
		return Statistics{}, err
	}
	if !ok {
		return Statistics{}, fmt.Errorf("course %s: %w", strings.TrimSpace(courseCode), internalerr.ErrNotFound)
	}

	prereqs, err := a.reasoner.AllPrerequisitesRecursive(ctx, course.Code)
	if err != nil {
		return Statistics{}, err
	}
	similar, err := a.FindSimilarCourses(ctx, course.Code, statsSimilarLimit)
	if err != nil {
		return Statistics{}, err
	}
	return Statistics{
		Course:             course,
		TotalPrerequisites: len(prereqs),
		SimilarCount:       len(similar),
		SimilarCourses:     similar,
	}, nil
}

// limit applies def to n <= 0 and rejects n above the agent's bound.
func (a *Agent) limit(name string, n, def int) (int, error) {
	if n <= 0 {
		return def, nil
	}
	if n > a.maxLimit {
		return 0, fmt.Errorf("%s %d exceeds %d: %w", name, n, a.maxLimit, internalerr.ErrInvalidInput)
	}
	return n, nil
}

func requireArg(name, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s is required: %w", name, internalerr.ErrInvalidInput)
	}
	return v, nil
}

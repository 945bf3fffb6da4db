// Package courseguide is the caller-facing facade over the course knowledge
// graph: search, prerequisites, learning paths, eligibility and
// recommendations.
package courseguide

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/inference"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/metrics"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/reasoner"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/recommend"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

// Guide answers course questions against one graph store.
type Guide struct {
	store     store.Store
	inference *inference.Engine
	reasoner  *reasoner.Reasoner
	agent     *recommend.Agent
	logger    *slog.Logger
	metrics   *metrics.Metrics

	maxResults   int
	similarLimit int
}

// Options configures a Guide. Only Store is required.
type Options struct {
	Store        store.Store
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	CacheSize    int
	Weights      *recommend.Weights
	MaxResults   int
	SimilarLimit int
	// MaxLimit bounds caller-supplied result counts; see recommend.WithMaxLimit.
	MaxLimit int
}

// New wires the inference engine, reasoner and recommendation agent over
// opts.Store.
func New(opts Options) *Guide {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	inf := inference.New(opts.Store, inference.WithLogger(logger))
	rsn := reasoner.New(opts.Store, inf,
		reasoner.WithLogger(logger),
		reasoner.WithCacheSize(opts.CacheSize),
		reasoner.WithMetrics(opts.Metrics),
	)
	agentOpts := []recommend.Option{
		recommend.WithLogger(logger),
		recommend.WithMetrics(opts.Metrics),
		recommend.WithMaxLimit(opts.MaxLimit),
	}
	if opts.Weights != nil {
		agentOpts = append(agentOpts, recommend.WithWeights(*opts.Weights))
	}
	return &Guide{
		store:        opts.Store,
		inference:    inf,
		reasoner:     rsn,
		agent:        recommend.New(opts.Store, rsn, inf, agentOpts...),
		logger:       logger,
		metrics:      opts.Metrics,
		maxResults:   opts.MaxResults,
		similarLimit: opts.SimilarLimit,
	}
}

// Close releases the underlying store.
func (g *Guide) Close() error {
	return g.store.Close()
}

// Reasoner exposes the reasoner, mainly for cache control.
func (g *Guide) Reasoner() *reasoner.Reasoner { return g.reasoner }

// Query narrows a course search. Empty fields are ignored; a course code
// takes precedence over domain and level.
type Query struct {
	Domain     string `json:"domain,omitempty" form:"domain"`
	Level      string `json:"level,omitempty" form:"level"`
	CourseCode string `json:"course_code,omitempty" form:"code"`
}

// Search returns the courses matching q. An empty query lists every course.
func (g *Guide) Search(ctx context.Context, q Query) (courses []model.Course, err error) {
	defer func() { g.metrics.Operation("search", err) }()

	if code := strings.TrimSpace(q.CourseCode); code != "" {
		c, ok, err := g.reasoner.CourseByCode(ctx, code)
		if err != nil || !ok {
			return []model.Course{}, err
		}
		return []model.Course{c}, nil
	}

	domain, level := strings.TrimSpace(q.Domain), strings.TrimSpace(q.Level)
	switch {
	case domain != "" && level != "":
		byDomain, err := g.reasoner.CoursesByDomain(ctx, domain)
		if err != nil {
			return nil, err
		}
		out := []model.Course{}
		for _, c := range byDomain {
			if strings.Contains(strings.ToLower(c.Level), strings.ToLower(level)) {
				out = append(out, c)
			}
		}
		return out, nil
	case domain != "":
		return g.reasoner.CoursesByDomain(ctx, domain)
	case level != "":
		return g.reasoner.CoursesByLevel(ctx, level)
	default:
		return g.reasoner.AllCourses(ctx)
	}
}

// Prerequisites lists what a course requires.
type Prerequisites struct {
	Course model.Course `json:"course"`
	// Direct holds the immediate requirements, All every transitive one.
	Direct []model.PrerequisiteRow `json:"direct"`
	All    []string                `json:"all"`
}

// Prerequisites describes the requirements of courseCode. An unknown code
// fails with internalerr.ErrNotFound.
func (g *Guide) Prerequisites(ctx context.Context, courseCode string) (res Prerequisites, err error) {
	defer func() { g.metrics.Operation("prerequisites", err) }()

	course, err := g.course(ctx, courseCode)
	if err != nil {
		return Prerequisites{}, err
	}
	direct, err := g.reasoner.DirectPrerequisites(ctx, course.Code)
	if err != nil {
		return Prerequisites{}, err
	}
	all, err := g.inference.TransitivePrerequisites(ctx, course.Code)
	if err != nil {
		return Prerequisites{}, err
	}
	return Prerequisites{Course: course, Direct: direct, All: all}, nil
}

// LearningPath orders every course of domain together with its transitive
// prerequisites so that prerequisites come first.
func (g *Guide) LearningPath(ctx context.Context, domain string) (path []model.Course, err error) {
	defer func() { g.metrics.Operation("learning_path", err) }()

	if strings.TrimSpace(domain) == "" {
		return nil, fmt.Errorf("domain is required: %w", internalerr.ErrInvalidInput)
	}
	courses, err := g.reasoner.CoursesByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return []model.Course{}, nil
	}
	return g.reasoner.PathFor(ctx, model.Codes(courses))
}

// CoursePath orders courseCode after all of its transitive prerequisites.
func (g *Guide) CoursePath(ctx context.Context, courseCode string) (path []model.Course, err error) {
	defer func() { g.metrics.Operation("course_path", err) }()
	return g.reasoner.ComputeLearningPath(ctx, courseCode)
}

// Eligibility checks whether studentID may take courseCode.
func (g *Guide) Eligibility(ctx context.Context, studentID, courseCode string) (res reasoner.Eligibility, err error) {
	defer func() { g.metrics.Operation("eligibility", err) }()
	return g.reasoner.CheckEligibility(ctx, studentID, courseCode)
}

// Recommend ranks up to n courses for studentID. n <= 0 uses the configured
// default; n above the configured bound fails with internalerr.ErrInvalidInput.
func (g *Guide) Recommend(ctx context.Context, studentID string, n int) (recs []recommend.Recommendation, err error) {
	defer func() { g.metrics.Operation("recommend", err) }()
	if n <= 0 {
		n = g.maxResults
	}
	return g.agent.RecommendByProfile(ctx, studentID, n)
}

// PlanToGoal plans the remaining courses between studentID and goalCode.
func (g *Guide) PlanToGoal(ctx context.Context, studentID, goalCode string) (plan recommend.Plan, err error) {
	defer func() { g.metrics.Operation("plan_to_goal", err) }()
	return g.agent.RecommendForGoal(ctx, studentID, goalCode)
}

// CourseInfo returns a course with the skills it teaches. An unknown code
// fails with internalerr.ErrNotFound.
func (g *Guide) CourseInfo(ctx context.Context, courseCode string) (course model.Course, err error) {
	defer func() { g.metrics.Operation("course_info", err) }()

	course, err = g.course(ctx, courseCode)
	if err != nil {
		return model.Course{}, err
	}
	skills, err := g.reasoner.CourseSkills(ctx, course.Code)
	if err != nil {
		return model.Course{}, err
	}
	course.Skills = skills
	return course, nil
}

// Similar returns courses sharing the domain or level of courseCode.
// limit <= 0 uses the configured default; limit above the configured bound
// fails with internalerr.ErrInvalidInput.
func (g *Guide) Similar(ctx context.Context, courseCode string, limit int) (courses []model.Course, err error) {
	defer func() { g.metrics.Operation("similar", err) }()
	if limit <= 0 {
		limit = g.similarLimit
	}
	return g.agent.FindSimilarCourses(ctx, courseCode, limit)
}

// Stats summarises a course's prerequisites and neighbours.
func (g *Guide) Stats(ctx context.Context, courseCode string) (stats recommend.Statistics, err error) {
	defer func() { g.metrics.Operation("stats", err) }()
	return g.agent.CourseStatistics(ctx, courseCode)
}

// Skills finds courses teaching any of skills.
func (g *Guide) Skills(ctx context.Context, skills []string) (courses []model.Course, err error) {
	defer func() { g.metrics.Operation("skills", err) }()
	return g.reasoner.FindCoursesBySkills(ctx, skills)
}

// Level suggests the level studentID should take next.
func (g *Guide) Level(ctx context.Context, studentID string) (level vocab.LevelName, err error) {
	defer func() { g.metrics.Operation("level", err) }()
	return g.inference.RecommendedLevel(ctx, studentID)
}

// Competencies lists the skills studentID holds, directly or through
// completed courses.
func (g *Guide) Competencies(ctx context.Context, studentID string) (comps []model.Competency, err error) {
	defer func() { g.metrics.Operation("competencies", err) }()
	return g.inference.StudentCompetencies(ctx, studentID)
}

func (g *Guide) course(ctx context.Context, courseCode string) (model.Course, error) {
	code := strings.TrimSpace(courseCode)
	if code == "" {
		return model.Course{}, fmt.Errorf("course code is required: %w", internalerr.ErrInvalidInput)
	}
	c, ok, err := g.reasoner.CourseByCode(ctx, code)
	if err != nil {
		return model.Course{}, err
	}
	if !ok {
		return model.Course{}, fmt.Errorf("course %s: %w", code, internalerr.ErrNotFound)
	}
	return c, nil
}

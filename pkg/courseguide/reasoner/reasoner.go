// Package reasoner resolves free-text names to courses, walks the
// prerequisite graph and orders learning paths.
//
// Store failures are logged and answered with empty results; they are never
// retried. Invalid arguments fail with internalerr.ErrInvalidInput before any
// query is issued.
package reasoner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/inference"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/metrics"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

// Reasoner answers graph questions that need more than one query.
type Reasoner struct {
	store     store.Store
	inference *inference.Engine
	cache     *domainCache
	logger    *slog.Logger
	metrics   *metrics.Metrics
	cacheSize int
}

// Option configures a Reasoner.
type Option func(*Reasoner)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reasoner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithCacheSize bounds the domain cache. Non-positive sizes use
// DefaultCacheSize.
func WithCacheSize(n int) Option {
	return func(r *Reasoner) { r.cacheSize = n }
}

// WithMetrics records cache hits and misses.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Reasoner) { r.metrics = m }
}

// New creates a reasoner. inf computes transitive prerequisites for
// eligibility and path ordering.
func New(st store.Store, inf *inference.Engine, opts ...Option) *Reasoner {
	r := &Reasoner{store: st, inference: inf, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = newDomainCache(r.cacheSize)
	return r
}

// Eligibility is the outcome of a transitive prerequisite check.
type Eligibility struct {
	Eligible bool     `json:"eligible"`
	Missing  []string `json:"missing"`
	Message  string   `json:"message"`
}

// CoursesByDomain resolves a free-text domain name to courses. It tries the
// domain label, then the domain IRI, then the course name and code, and
// keeps the first non-empty answer. Results, including empty ones, are
// cached until Invalidate.
func (r *Reasoner) CoursesByDomain(ctx context.Context, domain string) ([]model.Course, error) {
	name, err := requireArg("domain", domain)
	if err != nil {
		return nil, err
	}

	key := domainKey(name)
	if courses, ok := r.cache.get(key); ok {
		r.metrics.CacheHit()
		r.logger.Debug("reasoner: domain cache hit", "domain", name, "courses", len(courses))
		return courses, nil
	}
	r.metrics.CacheMiss()

	var shapeErr error
	courses := r.cache.resolve(key, func() ([]model.Course, bool) {
		for i, tier := range domainTiers {
			rows, ok := r.rows(ctx, tier.build(name))
			if !ok {
				// Do not remember an outage as "no such domain".
				return nil, false
			}
			if len(rows) == 0 {
				r.logger.Debug("reasoner: domain tier empty", "domain", name, "tier", i+1)
				continue
			}
			courses, err := model.CoursesFromRows(rows)
			if err != nil {
				shapeErr = err
				return nil, false
			}
			r.logger.Info("reasoner: domain resolved", "domain", name, "tier", i+1, "strategy", tier.name, "courses", len(courses))
			return courses, true
		}
		r.logger.Info("reasoner: domain unresolved", "domain", name)
		return nil, true
	})
	if shapeErr != nil {
		return nil, shapeErr
	}
	return courses, nil
}

// CoursesByLevel returns courses whose level label contains level.
func (r *Reasoner) CoursesByLevel(ctx context.Context, level string) ([]model.Course, error) {
	name, err := requireArg("level", level)
	if err != nil {
		return nil, err
	}
	return r.courses(ctx, levelQuery(name))
}

// FindCoursesBySkills returns courses teaching a skill whose label contains
// any of skills. With no match it falls back to course names and
// descriptions.
func (r *Reasoner) FindCoursesBySkills(ctx context.Context, skills []string) ([]model.Course, error) {
	var names []string
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one skill is required: %w", internalerr.ErrInvalidInput)
	}

	courses, err := r.courses(ctx, skillsQuery(names))
	if err != nil || len(courses) > 0 {
		return courses, err
	}
	r.logger.Debug("reasoner: no course teaches skills, searching course text", "skills", names)
	return r.courses(ctx, skillsTextQuery(names))
}

// CourseByCode looks a course up by its exact code.
func (r *Reasoner) CourseByCode(ctx context.Context, code string) (model.Course, bool, error) {
	c, err := requireArg("course code", code)
	if err != nil {
		return model.Course{}, false, err
	}
	courses, err := r.courses(ctx, courseByCodeQuery(c))
	if err != nil || len(courses) == 0 {
		return model.Course{}, false, err
	}
	return courses[0], true, nil
}

// CourseSkills returns the labels of the skills a course teaches.
func (r *Reasoner) CourseSkills(ctx context.Context, code string) ([]string, error) {
	c, err := requireArg("course code", code)
	if err != nil {
		return nil, err
	}
	rows, _ := r.rows(ctx, courseSkillsQuery(c))
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if err := row.Require(model.VarSkillLabel); err != nil {
			return nil, err
		}
		v, _ := row.Value(model.VarSkillLabel)
		out = append(out, v)
	}
	return out, nil
}

// AllCourses returns every course ordered by code.
func (r *Reasoner) AllCourses(ctx context.Context) ([]model.Course, error) {
	return r.courses(ctx, allCoursesQuery())
}

// CompletedCourses returns the courses a student completed, ordered by code.
func (r *Reasoner) CompletedCourses(ctx context.Context, studentID string) ([]model.Course, error) {
	id, err := requireArg("student id", studentID)
	if err != nil {
		return nil, err
	}
	return r.courses(ctx, completedQuery(vocab.Entity(id)))
}

// DirectPrerequisites returns the courses code directly requires.
func (r *Reasoner) DirectPrerequisites(ctx context.Context, code string) ([]model.PrerequisiteRow, error) {
	c, err := requireArg("course code", code)
	if err != nil {
		return nil, err
	}
	return r.direct(ctx, c)
}

func (r *Reasoner) direct(ctx context.Context, code string) ([]model.PrerequisiteRow, error) {
	rows, _ := r.rows(ctx, directPrerequisitesQuery(code))
	out := make([]model.PrerequisiteRow, 0, len(rows))
	for _, row := range rows {
		p, err := model.PrerequisiteFromRow(code, row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// CheckEligibility reports whether the student completed every transitive
// prerequisite of courseCode. Missing codes are sorted.
func (r *Reasoner) CheckEligibility(ctx context.Context, studentID, courseCode string) (Eligibility, error) {
	id, err := requireArg("student id", studentID)
	if err != nil {
		return Eligibility{}, err
	}
	code, err := requireArg("course code", courseCode)
	if err != nil {
		return Eligibility{}, err
	}

	required, err := r.inference.TransitivePrerequisites(ctx, code)
	if err != nil {
		return Eligibility{}, err
	}
	if len(required) == 0 {
		return Eligibility{
			Eligible: true,
			Missing:  []string{},
			Message:  fmt.Sprintf("%s has no prerequisites", code),
		}, nil
	}

	completed, err := r.CompletedCourses(ctx, id)
	if err != nil {
		return Eligibility{}, err
	}
	done := make(map[string]bool, len(completed))
	for _, c := range completed {
		done[c.Code] = true
	}

	missing := []string{}
	for _, req := range required {
		if !done[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return Eligibility{
			Missing: missing,
			Message: fmt.Sprintf("missing %d prerequisite(s): %s", len(missing), strings.Join(missing, ", ")),
		}, nil
	}
	return Eligibility{Eligible: true, Missing: missing, Message: "all prerequisites are satisfied"}, nil
}

// Invalidate drops the cached lookup for domain, or every entry when domain
// is empty. Call it after mutating the graph.
func (r *Reasoner) Invalidate(domain string) {
	r.cache.invalidate(strings.TrimSpace(domain))
	r.logger.Info("reasoner: cache invalidated", "domain", domain)
}

// CacheStats reports the domain cache state.
func (r *Reasoner) CacheStats() CacheStats {
	return r.cache.stats()
}

func (r *Reasoner) courses(ctx context.Context, q *sparql.Select) ([]model.Course, error) {
	rows, _ := r.rows(ctx, q)
	return model.CoursesFromRows(rows)
}

// rows runs q. A store failure is logged and reported as ok=false with no
// rows.
func (r *Reasoner) rows(ctx context.Context, q *sparql.Select) ([]sparql.Row, bool) {
	rows, err := r.store.Query(ctx, q)
	if err != nil {
		r.logger.Warn("reasoner: store query failed", "query", q.Name, "err", err)
		return nil, false
	}
	return rows, true
}

func requireArg(name, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s is required: %w", name, internalerr.ErrInvalidInput)
	}
	return v, nil
}

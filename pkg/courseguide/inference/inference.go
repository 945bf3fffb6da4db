// Package inference derives facts the course graph implies but does not
// store as single edges: transitive prerequisites, a student's direct and
// course-derived competencies, the next level to aim for and the courses a
// student can take now.
//
// Store failures never surface as errors. They are logged and the affected
// lookup answers with an empty result.
package inference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/sparql"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/store"
	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/vocab"
)

// Engine answers inference questions against a store.
type Engine struct {
	store  store.Store
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine over st.
func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{store: st, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TransitivePrerequisites returns the codes of every course reachable from
// courseCode over one or more prerequisite edges, sorted. An unknown course
// has no prerequisites.
func (e *Engine) TransitivePrerequisites(ctx context.Context, courseCode string) ([]string, error) {
	code, err := requireArg("course code", courseCode)
	if err != nil {
		return nil, err
	}

	rows := e.rows(ctx, transitiveQuery(code))
	codes := make([]string, 0, len(rows))
	for _, row := range rows {
		if err := row.Require(model.VarPrereqCode); err != nil {
			return nil, err
		}
		v, _ := row.Value(model.VarPrereqCode)
		codes = append(codes, v)
	}
	return codes, nil
}

// StudentCompetencies returns the skills a student holds directly and the
// ones taught by courses they completed. The same skill may appear once per
// source.
func (e *Engine) StudentCompetencies(ctx context.Context, studentID string) ([]model.Competency, error) {
	id, err := requireArg("student id", studentID)
	if err != nil {
		return nil, err
	}

	rows := e.rows(ctx, competenciesQuery(vocab.Entity(id)))
	out := make([]model.Competency, 0, len(rows))
	for _, row := range rows {
		c, err := model.CompetencyFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// RecommendedLevel returns the level after the one most represented among
// the student's completed courses, or Beginner when nothing is completed.
func (e *Engine) RecommendedLevel(ctx context.Context, studentID string) (vocab.LevelName, error) {
	id, err := requireArg("student id", studentID)
	if err != nil {
		return "", err
	}

	rows := e.rows(ctx, levelCountQuery(vocab.Entity(id)))
	if len(rows) == 0 {
		return vocab.Beginner, nil
	}
	label, ok := rows[0].Value(model.VarLevelLabel)
	if !ok {
		// COUNT over no solutions yields one row with no group key.
		return vocab.Beginner, nil
	}
	return vocab.LevelName(label).Next(), nil
}

// EligibleCourses returns the courses the student has not completed whose
// direct prerequisites are all completed, ordered by code. Only direct
// prerequisites are checked; full transitive eligibility is
// reasoner.CheckEligibility.
func (e *Engine) EligibleCourses(ctx context.Context, studentID string) ([]model.Course, error) {
	id, err := requireArg("student id", studentID)
	if err != nil {
		return nil, err
	}
	return model.CoursesFromRows(e.rows(ctx, eligibleQuery(vocab.Entity(id))))
}

// rows runs q and converts a store failure into an empty result.
func (e *Engine) rows(ctx context.Context, q *sparql.Select) []sparql.Row {
	rows, err := e.store.Query(ctx, q)
	if err != nil {
		e.logger.Warn("inference: store query failed", "query", q.Name, "err", err)
		return nil
	}
	e.logger.Debug("inference: query", "query", q.Name, "rows", len(rows))
	return rows
}

func requireArg(name, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("%s is required: %w", name, internalerr.ErrInvalidInput)
	}
	return v, nil
}

package recommend

import (
	"math"
	"strings"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
)

// Weights defines the relevance scoring weights.
type Weights struct {
	Base            float64 `yaml:"base" json:"base" validate:"gte=0,lte=1"`                   // every matching course
	Description     float64 `yaml:"description" json:"description" validate:"gte=0,lte=1"`     // course has a description
	Credits         float64 `yaml:"credits" json:"credits" validate:"gte=0,lte=1"`             // course is substantial
	CreditThreshold int     `yaml:"credit_threshold" json:"credit_threshold" validate:"gte=0"` // credits needed for the bonus
	TopUp           float64 `yaml:"top_up" json:"top_up" validate:"gte=0,lte=1"`               // courses outside the student's interests
}

// DefaultWeights returns the standard weights: 0.5 base, +0.1 for a
// description, +0.1 at 5 credits or more, 0.5 for top-up courses.
func DefaultWeights() Weights {
	return Weights{
		Base:            0.5,
		Description:     0.1,
		Credits:         0.1,
		CreditThreshold: 5,
		TopUp:           0.5,
	}
}

// Scorer rates how relevant a course is to a student's interests.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// ScoreBreakdown itemises a score.
type ScoreBreakdown struct {
	Base        float64 `json:"base"`
	Description float64 `json:"description"`
	Credits     float64 `json:"credits"`
	Total       float64 `json:"total"`
}

// Score returns the relevance of c, clamped to [0, 1].
func (s *Scorer) Score(c model.Course) float64 {
	return s.Breakdown(c).Total
}

// Breakdown scores c and reports each component.
func (s *Scorer) Breakdown(c model.Course) ScoreBreakdown {
	b := ScoreBreakdown{Base: s.weights.Base}
	if strings.TrimSpace(c.Description) != "" {
		b.Description = s.weights.Description
	}
	if c.Credits >= s.weights.CreditThreshold {
		b.Credits = s.weights.Credits
	}
	b.Total = clamp(b.Base + b.Description + b.Credits)
	return b
}

// TopUpScore is the neutral score given to courses outside the interests.
func (s *Scorer) TopUpScore() float64 {
	return clamp(s.weights.TopUp)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

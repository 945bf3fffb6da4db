package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/model"
)

func TestScore(t *testing.T) {
	s := NewScorer(DefaultWeights())

	tests := []struct {
		name   string
		course model.Course
		want   float64
	}{
		{"bare", model.Course{Credits: 3}, 0.5},
		{"description", model.Course{Credits: 3, Description: "x"}, 0.6},
		{"blank description", model.Course{Credits: 3, Description: "  "}, 0.5},
		{"credits at threshold", model.Course{Credits: 5}, 0.6},
		{"both", model.Course{Credits: 6, Description: "x"}, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Score(tt.course), 1e-9)
		})
	}
}

func TestScoreIsClamped(t *testing.T) {
	s := NewScorer(Weights{Base: 0.9, Description: 0.5, Credits: 0.5, CreditThreshold: 1, TopUp: 2})
	assert.Equal(t, 1.0, s.Score(model.Course{Credits: 10, Description: "x"}))
	assert.Equal(t, 1.0, s.TopUpScore())

	neg := NewScorer(Weights{Base: -1})
	assert.Equal(t, 0.0, neg.Score(model.Course{}))
}

func TestBreakdown(t *testing.T) {
	b := NewScorer(DefaultWeights()).Breakdown(model.Course{Credits: 5})
	assert.Equal(t, 0.5, b.Base)
	assert.Equal(t, 0.0, b.Description)
	assert.Equal(t, 0.1, b.Credits)
	assert.InDelta(t, 0.6, b.Total, 1e-9)
}

package examservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scores(values ...int) Scores {
	var s Scores
	for i, v := range values {
		if v < 0 {
			continue
		}
		s[i] = &v
	}
	return s
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		scores        Scores
		wantOutcome   Outcome
		wantComposite float64
		wantMissing   []int
	}{
		{
			name:          "average below pass mark fails",
			scores:        scores(60, 60, 60, 60, 60, 60, 60, 60, 30),
			wantOutcome:   OutcomeFail,
			wantComposite: 56.67,
		},
		{
			name:          "one weak category fails despite passing average",
			scores:        scores(70, 70, 70, 70, 70, 70, 70, 70, 35),
			wantOutcome:   OutcomeFail,
			wantComposite: 66.11,
		},
		{
			name:          "exactly at pass mark passes",
			scores:        scores(60, 60, 60, 60, 60, 60, 60, 60, 60),
			wantOutcome:   OutcomePass,
			wantComposite: 60,
		},
		{
			name:        "all absent is pending",
			scores:      Scores{},
			wantOutcome: OutcomePending,
		},
		{
			name:          "category exactly at minimum passes",
			scores:        scores(100, 100, 100, 100, 100, 100, 100, 100, 40),
			wantOutcome:   OutcomePass,
			wantComposite: 93.33,
		},
		{
			name:          "absent category counts as zero",
			scores:        scores(100, 100, 100, 100, 100, 100, 100, 100, -1),
			wantOutcome:   OutcomeFail,
			wantComposite: 88.89,
			wantMissing:   []int{8},
		},
		{
			name:          "perfect and zero bounds",
			scores:        scores(0, 100, 100, 100, 100, 100, 100, 100, 100),
			wantOutcome:   OutcomeFail,
			wantComposite: 88.89,
		},
		{
			name:          "just under pass mark after rounding",
			scores:        scores(59, 60, 60, 60, 60, 60, 60, 60, 60),
			wantOutcome:   OutcomeFail,
			wantComposite: 59.89,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.scores)
			assert.Equal(t, tt.wantOutcome, got.Outcome)
			assert.InDelta(t, tt.wantComposite, got.Composite, 0.0001)
			assert.Equal(t, tt.wantMissing, got.Missing)
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	s := scores(81, 77, 64, 90, 55, 73, 88, 92, 70)
	first := Evaluate(s)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(s))
	}
}

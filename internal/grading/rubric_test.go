package grading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/shared"
)

func TestWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, c := range Criteria() {
		sum += Weights[c]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Len(t, Weights, len(Criteria()))
}

func TestUniformEightyTwoIsB(t *testing.T) {
	res, err := Evaluate(Scores{82, 82, 82, 82, 82})
	require.NoError(t, err)
	assert.Equal(t, 82.0, res.Total)
	assert.Equal(t, "B", res.Grade)
}

func TestTotalIsWeighted(t *testing.T) {
	s := Scores{Planning: 90, Execution: 80, ClassroomManagement: 70, Professionalism: 60, Reflection: 50}
	// 18 + 24 + 14 + 9 + 7.5
	assert.Equal(t, 72.5, Total(s))
}

func TestTotalRoundsToTwoDecimals(t *testing.T) {
	s := Scores{Planning: 77.777, Execution: 66.666, ClassroomManagement: 88.888, Professionalism: 99.999, Reflection: 55.555}
	total := Total(s)
	assert.Equal(t, total, math.Round(total*100)/100)
}

func TestRecomputedWhenCriterionChanges(t *testing.T) {
	s := Scores{82, 82, 82, 82, 82}
	before, err := Evaluate(s)
	require.NoError(t, err)

	s.Execution = 100
	after, err := Evaluate(s)
	require.NoError(t, err)
	assert.Equal(t, 87.4, after.Total)
	assert.Equal(t, "A", after.Grade)
	assert.NotEqual(t, before, after)
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		total float64
		grade string
	}{
		{100, "A"}, {85, "A"}, {84.99, "B"}, {70, "B"}, {69.99, "C"},
		{55, "C"}, {54.99, "D"}, {40, "D"}, {39.99, "E"}, {0, "E"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, Grade(tc.total), "total %.2f", tc.total)
	}
}

func TestScoresOutOfRange(t *testing.T) {
	_, err := Evaluate(Scores{Planning: 101, Execution: -1})
	require.ErrorIs(t, err, shared.ErrValidation)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "scores.planning")
	assert.Contains(t, verr.Fields, "scores.execution")
	assert.NotContains(t, verr.Fields, "scores.reflection")
}

func TestResolveRequiresEveryCriterion(t *testing.T) {
	planning := 90.0
	_, err := ScoreInput{Planning: &planning}.Resolve()
	require.ErrorIs(t, err, shared.ErrValidation)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)
	assert.Equal(t, "is required", verr.Fields["scores.reflection"])

	s, err := InputOf(Scores{Planning: 90}).Resolve()
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Execution)
	assert.Equal(t, 90.0, s.Planning)
}

func TestScoresLimitedToTwoDecimals(t *testing.T) {
	_, err := Evaluate(Scores{82.555, 82, 82, 82, 82})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "scores.planning")

	res, err := Evaluate(Scores{82.55, 82.1, 0.01, 99.99, 100})
	require.NoError(t, err)
	assert.Equal(t, res.Total, math.Round(res.Total*100)/100)
}

// Package grading computes weighted evaluation totals and letter grades.
package grading

import (
	"fmt"
	"math"

	"github.com/ppl-hub/practicum/internal/shared"
)

// Criterion names one rubric item.
type Criterion string

const (
	Planning            Criterion = "planning"
	Execution           Criterion = "execution"
	ClassroomManagement Criterion = "classroom_management"
	Professionalism     Criterion = "professionalism"
	Reflection          Criterion = "reflection"
)

// Weights maps every criterion to its share of the total. The weights sum to 1.
var Weights = map[Criterion]float64{
	Planning:            0.20,
	Execution:           0.30,
	ClassroomManagement: 0.20,
	Professionalism:     0.15,
	Reflection:          0.15,
}

// Criteria returns the rubric items in display order.
func Criteria() []Criterion {
	return []Criterion{Planning, Execution, ClassroomManagement, Professionalism, Reflection}
}

// Scores holds one score per criterion, each within [0, 100].
type Scores struct {
	Planning            float64 `json:"planning"`
	Execution           float64 `json:"execution"`
	ClassroomManagement float64 `json:"classroom_management"`
	Professionalism     float64 `json:"professionalism"`
	Reflection          float64 `json:"reflection"`
}

// Get returns the score of c.
func (s Scores) Get(c Criterion) float64 {
	switch c {
	case Planning:
		return s.Planning
	case Execution:
		return s.Execution
	case ClassroomManagement:
		return s.ClassroomManagement
	case Professionalism:
		return s.Professionalism
	case Reflection:
		return s.Reflection
	}
	return 0
}

// Validate checks every score is within range and has at most two decimals,
// matching the NUMERIC(5,2) columns the scores are stored in.
func (s Scores) Validate() error {
	fields := map[string]string{}
	for _, c := range Criteria() {
		if msg := checkScore(s.Get(c)); msg != "" {
			fields["scores."+string(c)] = msg
		}
	}
	if len(fields) > 0 {
		return shared.NewValidationError(fields)
	}
	return nil
}

func checkScore(v float64) string {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return "must be between 0 and 100"
	}
	if math.Abs(v*100-math.Round(v*100)) > 1e-6 {
		return "must have at most 2 decimal places"
	}
	return ""
}

// ScoreInput is the request form of Scores. A criterion left out of the
// payload stays nil and is reported instead of being scored as zero.
type ScoreInput struct {
	Planning            *float64 `json:"planning"`
	Execution           *float64 `json:"execution"`
	ClassroomManagement *float64 `json:"classroom_management"`
	Professionalism     *float64 `json:"professionalism"`
	Reflection          *float64 `json:"reflection"`
}

// InputOf converts a complete score set into its request form.
func InputOf(s Scores) ScoreInput {
	planning, execution, classroom, professionalism, reflection :=
		s.Planning, s.Execution, s.ClassroomManagement, s.Professionalism, s.Reflection
	return ScoreInput{
		Planning:            &planning,
		Execution:           &execution,
		ClassroomManagement: &classroom,
		Professionalism:     &professionalism,
		Reflection:          &reflection,
	}
}

func (in ScoreInput) get(c Criterion) *float64 {
	switch c {
	case Planning:
		return in.Planning
	case Execution:
		return in.Execution
	case ClassroomManagement:
		return in.ClassroomManagement
	case Professionalism:
		return in.Professionalism
	case Reflection:
		return in.Reflection
	}
	return nil
}

// Resolve requires every criterion and validates the resulting Scores.
func (in ScoreInput) Resolve() (Scores, error) {
	var s Scores
	fields := map[string]string{}
	for _, c := range Criteria() {
		v := in.get(c)
		if v == nil {
			fields["scores."+string(c)] = "is required"
			continue
		}
		if msg := checkScore(*v); msg != "" {
			fields["scores."+string(c)] = msg
		}
	}
	if len(fields) > 0 {
		return Scores{}, shared.NewValidationError(fields)
	}
	s.Planning, s.Execution, s.ClassroomManagement = *in.Planning, *in.Execution, *in.ClassroomManagement
	s.Professionalism, s.Reflection = *in.Professionalism, *in.Reflection
	return s, nil
}

// Total is the weighted sum rounded to two decimals.
func Total(s Scores) float64 {
	var sum float64
	for _, c := range Criteria() {
		sum += Weights[c] * s.Get(c)
	}
	return math.Round(sum*100) / 100
}

// Grade buckets a total into a letter.
func Grade(total float64) string {
	switch {
	case total >= 85:
		return "A"
	case total >= 70:
		return "B"
	case total >= 55:
		return "C"
	case total >= 40:
		return "D"
	default:
		return "E"
	}
}

// Result is the computed outcome of a score set.
type Result struct {
	Scores Scores  `json:"scores"`
	Total  float64 `json:"total"`
	Grade  string  `json:"grade"`
}

// Evaluate validates s and computes its total and grade.
func Evaluate(s Scores) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	total := Total(s)
	return Result{Scores: s, Total: total, Grade: Grade(total)}, nil
}

func (r Result) String() string {
	return fmt.Sprintf("%.2f (%s)", r.Total, r.Grade)
}

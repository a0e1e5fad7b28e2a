package evaluations

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/grading"
	"github.com/ppl-hub/practicum/internal/shared"
)

type memoryRepo struct {
	items  map[int64]Evaluation
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[int64]Evaluation{}}
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]Evaluation, int, error) {
	out := make([]Evaluation, 0)
	for _, e := range m.items {
		if filter.StudentID != 0 && e.StudentID != filter.StudentID {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Evaluation, error) {
	e, ok := m.items[id]
	if !ok {
		return Evaluation{}, shared.ErrNotFound
	}
	return e, nil
}

func (m *memoryRepo) Create(_ context.Context, evaluatorID int64, in CreateInput, res grading.Result) (int64, error) {
	for _, e := range m.items {
		if e.StudentID == in.StudentID && e.EvaluatorID == evaluatorID && string(e.Period) == in.Period {
			return 0, shared.ErrConflict
		}
	}
	m.nextID++
	m.items[m.nextID] = Evaluation{
		ID: m.nextID, StudentID: in.StudentID, EvaluatorID: evaluatorID, Period: Period(in.Period),
		Scores: res.Scores, Total: res.Total, Grade: res.Grade, Notes: in.Notes,
	}
	return m.nextID, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, in UpdateInput, res grading.Result) error {
	e, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	e.Scores, e.Total, e.Grade, e.Notes = res.Scores, res.Total, res.Grade, in.Notes
	m.items[id] = e
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

var (
	admin = shared.Identity{UserID: 1, Role: shared.RoleAdmin}
	s1    = shared.Identity{UserID: 100, Role: shared.RoleStudent}
	s2    = shared.Identity{UserID: 101, Role: shared.RoleStudent}
	m1    = shared.Identity{UserID: 200, Role: shared.RoleMentor}
	m2    = shared.Identity{UserID: 201, Role: shared.RoleMentor}
	sup1  = shared.Identity{UserID: 300, Role: shared.RoleSupervisor}
)

func flat(v float64) grading.Scores {
	return grading.Scores{Planning: v, Execution: v, ClassroomManagement: v, Professionalism: v, Reflection: v}
}

func scoresOf(s grading.Scores) grading.ScoreInput {
	return grading.InputOf(s)
}

func TestCreateComputesTotalAndGrade(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	e, err := svc.Create(context.Background(), m1, CreateInput{StudentID: s1.UserID, Period: "midterm", Scores: scoresOf(flat(82))})
	require.NoError(t, err)
	assert.InDelta(t, 82.0, e.Total, 0.001)
	assert.Equal(t, "B", e.Grade)
	assert.Equal(t, m1.UserID, e.EvaluatorID)
}

func TestUpdateRecomputesFromScores(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	e, err := svc.Create(context.Background(), m1, CreateInput{StudentID: s1.UserID, Period: "final", Scores: scoresOf(flat(82))})
	require.NoError(t, err)

	scores := flat(82)
	scores.Execution = 90
	scores.Reflection = 100
	e, err = svc.Update(context.Background(), m1, e.ID, UpdateInput{Scores: scoresOf(scores)})
	require.NoError(t, err)
	assert.InDelta(t, 87.1, e.Total, 0.001)
	assert.Equal(t, "A", e.Grade)

	_, err = svc.Update(context.Background(), m2, e.ID, UpdateInput{Scores: scoresOf(scores)})
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Update(context.Background(), admin, e.ID, UpdateInput{Scores: scoresOf(flat(50))})
	require.NoError(t, err)
}

func TestCreateRejectsOutOfRangeScores(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	scores := flat(80)
	scores.Planning = 101
	_, err := svc.Create(context.Background(), sup1, CreateInput{StudentID: s1.UserID, Period: "final", Scores: scoresOf(scores)})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "scores.planning")

	_, err = svc.Create(context.Background(), sup1, CreateInput{StudentID: s1.UserID, Period: "weekly", Scores: scoresOf(flat(80))})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "period")
}

func TestUpdateRejectsPartialScoreSet(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	e, err := svc.Create(context.Background(), m1, CreateInput{StudentID: s1.UserID, Period: "final", Scores: scoresOf(flat(82))})
	require.NoError(t, err)

	var in UpdateInput
	require.NoError(t, json.Unmarshal([]byte(`{"scores":{"planning":90}}`), &in))
	_, err = svc.Update(context.Background(), m1, e.ID, in)
	require.ErrorIs(t, err, shared.ErrValidation)
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotContains(t, verr.Fields, "scores.planning")
	for _, field := range []string{"scores.execution", "scores.classroom_management", "scores.professionalism", "scores.reflection"} {
		assert.Equal(t, "is required", verr.Fields[field])
	}

	stored, err := svc.Get(context.Background(), m1, e.ID)
	require.NoError(t, err)
	assert.InDelta(t, 82.0, stored.Total, 0.001)
	assert.Equal(t, "B", stored.Grade)
}

func TestCreateRejectsScoresFinerThanStorage(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	scores := flat(80)
	scores.Planning = 82.555
	_, err := svc.Create(context.Background(), m1, CreateInput{StudentID: s1.UserID, Period: "final", Scores: scoresOf(scores)})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must have at most 2 decimal places", verr.Fields["scores.planning"])

	scores.Planning = 82.55
	e, err := svc.Create(context.Background(), m1, CreateInput{StudentID: s1.UserID, Period: "final", Scores: scoresOf(scores)})
	require.NoError(t, err)
	assert.Equal(t, 82.55, e.Scores.Planning)
}

func TestEvaluationAccess(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, err := svc.Create(context.Background(), s1, CreateInput{StudentID: s1.UserID, Period: "final", Scores: scoresOf(flat(100))})
	require.ErrorIs(t, err, shared.ErrForbidden)

	e, err := svc.Create(context.Background(), sup1, CreateInput{StudentID: s1.UserID, Period: "final", Scores: scoresOf(flat(70))})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), sup1, CreateInput{StudentID: s1.UserID, Period: "final", Scores: scoresOf(flat(75))})
	require.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.Get(context.Background(), s1, e.ID)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), s2, e.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	items, _, err := svc.List(context.Background(), s2, ListFilter{StudentID: s1.UserID})
	require.NoError(t, err)
	assert.Empty(t, items)

	require.ErrorIs(t, svc.Delete(context.Background(), sup1, e.ID), shared.ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), admin, e.ID))
}

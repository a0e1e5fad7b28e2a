package practicum

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/internal/workflow"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[int64]Record
	reviews []shared.ReviewEntry
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[int64]Record{}}
}

func (m *memoryRepo) LoadDocument(_ context.Context, id int64) (workflow.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return workflow.Document{}, shared.ErrNotFound
	}
	return rec.document(), nil
}

func (m *memoryRepo) ApplyStep(_ context.Context, step workflow.Step) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[step.ID]
	if !ok || rec.Status != step.From {
		return false, nil
	}
	rec.Status = step.To
	at := step.At
	if step.Action == workflow.ActionSubmit {
		rec.SubmittedAt = &at
	}
	if step.Action.IsReview() {
		reviewer := step.ActorID
		rec.ReviewerID, rec.Feedback, rec.ReviewedAt = &reviewer, step.Note, &at
	}
	m.records[step.ID] = rec
	m.reviews = append(m.reviews, shared.ReviewEntry{Module: module, RefID: step.ID, ActorID: step.ActorID, Action: step.Action.ReviewAction(), Note: step.Note, At: at})
	return true, nil
}

func (m *memoryRepo) AppendReview(_ context.Context, entry shared.ReviewEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews = append(m.reviews, entry)
	return nil
}

func (m *memoryRepo) ListReviews(_ context.Context, id int64) ([]shared.ReviewEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]shared.ReviewEntry, 0)
	for _, e := range m.reviews {
		if e.RefID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]Record, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0)
	for _, rec := range m.records {
		if filter.StudentID != 0 && rec.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return Record{}, shared.ErrNotFound
	}
	return rec, nil
}

func (m *memoryRepo) Create(_ context.Context, studentID int64, in Input) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.records[m.nextID] = Record{
		ID: m.nextID, StudentID: studentID, ActivityDate: in.ActivityDate, Hours: in.Hours,
		Activity: in.Activity, Description: in.Description, Status: workflow.StatusDraft, CreatedAt: time.Now(),
	}
	return m.nextID, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, expected workflow.Status, in Input) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok || rec.Status != expected {
		return false, nil
	}
	rec.ActivityDate, rec.Hours, rec.Activity, rec.Description = in.ActivityDate, in.Hours, in.Activity, in.Description
	m.records[id] = rec
	return true, nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memoryRepo) Revise(_ context.Context, id, actorID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.records[id]
	for _, rec := range m.records {
		if rec.RevisionOf != nil && *rec.RevisionOf == id {
			return 0, shared.ErrConflict
		}
	}
	m.nextID++
	copied := Record{ID: m.nextID, StudentID: old.StudentID, ActivityDate: old.ActivityDate, Hours: old.Hours,
		Activity: old.Activity, Description: old.Description, Status: workflow.StatusDraft, RevisionOf: &id}
	m.records[m.nextID] = copied
	m.reviews = append(m.reviews, shared.ReviewEntry{Module: module, RefID: id, ActorID: actorID, Action: shared.ReviewRevise})
	return m.nextID, nil
}

var (
	admin = shared.Identity{UserID: 1, Role: shared.RoleAdmin}
	s1    = shared.Identity{UserID: 100, Role: shared.RoleStudent}
	s2    = shared.Identity{UserID: 101, Role: shared.RoleStudent}
	m1    = shared.Identity{UserID: 200, Role: shared.RoleMentor}
	sup1  = shared.Identity{UserID: 300, Role: shared.RoleSupervisor}
)

func newService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	engine := workflow.NewEngine(module, workflow.PracticumRecord, repo, nil, nil, nil)
	return NewService(repo, engine, nil), repo
}

func validInput() Input {
	return Input{ActivityDate: "2026-03-02", Hours: 4.5, Activity: "Taught algebra to class 8B"}
}

func TestSubmitApproveScenario(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()

	rec, err := svc.Create(ctx, s1, validInput())
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDraft, rec.Status)

	rec, err = svc.Transition(ctx, s1, rec.ID, workflow.ActionSubmit, "")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusSubmitted, rec.Status)
	require.NotNil(t, rec.SubmittedAt)

	rec, err = svc.Transition(ctx, m1, rec.ID, workflow.ActionApprove, "Good work")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusApproved, rec.Status)
	assert.Equal(t, "Good work", rec.Feedback)
	require.NotNil(t, rec.ReviewerID)
	assert.Equal(t, m1.UserID, *rec.ReviewerID)

	_, err = svc.Update(ctx, s1, rec.ID, validInput())
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	_, err = svc.Feedback(ctx, sup1, rec.ID, "Keep the lesson notes")
	require.NoError(t, err)

	history, err := svc.Reviews(ctx, s1, rec.ID)
	require.NoError(t, err)
	actions := make([]shared.ReviewAction, 0, len(history))
	for _, e := range history {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []shared.ReviewAction{shared.ReviewSubmit, shared.ReviewApprove, shared.ReviewFeedback}, actions)
	assert.Len(t, repo.reviews, 3)
}

func TestCreateValidatesHours(t *testing.T) {
	svc, _ := newService()
	for _, hours := range []float64{0, -1, 24.5} {
		in := validInput()
		in.Hours = hours
		_, err := svc.Create(context.Background(), s1, in)
		require.ErrorIs(t, err, shared.ErrValidation, "hours %v", hours)
	}
	in := validInput()
	in.ActivityDate = "02/03/2026"
	_, err := svc.Create(context.Background(), s1, in)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), m1, validInput())
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestOnlyAuthorEditsAndSubmits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	rec, err := svc.Create(ctx, s1, validInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, s2, rec.ID, validInput())
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Transition(ctx, m1, rec.ID, workflow.ActionSubmit, "")
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Get(ctx, s2, rec.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Transition(ctx, m1, rec.ID, workflow.ActionApprove, "")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestListScopesStudentsToOwnRecords(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	_, err := svc.Create(ctx, s1, validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, s2, validInput())
	require.NoError(t, err)

	items, _, err := svc.List(ctx, s1, ListFilter{StudentID: s2.UserID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, s1.UserID, items[0].StudentID)

	items, page, err := svc.List(ctx, m1, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, page.Total)
}

func TestDeleteRules(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	draft, err := svc.Create(ctx, s1, validInput())
	require.NoError(t, err)
	submitted, err := svc.Create(ctx, s1, validInput())
	require.NoError(t, err)
	_, err = svc.Transition(ctx, s1, submitted.ID, workflow.ActionSubmit, "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, s1, submitted.ID), shared.ErrForbidden)
	require.ErrorIs(t, svc.Delete(ctx, m1, draft.ID), shared.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, s1, draft.ID))
	require.NoError(t, svc.Delete(ctx, admin, submitted.ID))
	require.ErrorIs(t, svc.Delete(ctx, admin, submitted.ID), shared.ErrNotFound)
}

func TestRejectThenRevise(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	rec, err := svc.Create(ctx, s1, validInput())
	require.NoError(t, err)
	_, err = svc.Transition(ctx, s1, rec.ID, workflow.ActionSubmit, "")
	require.NoError(t, err)

	_, err = svc.Transition(ctx, m1, rec.ID, workflow.ActionReject, "  ")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Transition(ctx, m1, rec.ID, workflow.ActionReject, "Hours do not match the logbook")
	require.NoError(t, err)

	_, err = svc.Revise(ctx, s2, rec.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	revision, err := svc.Revise(ctx, s1, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDraft, revision.Status)
	require.NotNil(t, revision.RevisionOf)
	assert.Equal(t, rec.ID, *revision.RevisionOf)

	original, err := svc.Get(ctx, s1, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, original.Status)

	_, err = svc.Revise(ctx, s1, rec.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
	_, err = svc.Revise(ctx, s1, revision.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestConcurrentReviewersExactlyOneWins(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	rec, err := svc.Create(ctx, s1, validInput())
	require.NoError(t, err)
	_, err = svc.Transition(ctx, s1, rec.ID, workflow.ActionSubmit, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Transition(ctx, m1, rec.ID, workflow.ActionApprove, "Good work")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Transition(ctx, sup1, rec.ID, workflow.ActionReject, "Incomplete")
	}()
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, shared.ErrConflict) || errors.Is(err, shared.ErrInvalidTransition), err.Error())
	}
	assert.Equal(t, 1, wins)
}

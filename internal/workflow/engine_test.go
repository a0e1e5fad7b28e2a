package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/shared"
)

type memoryStore struct {
	mu      sync.Mutex
	docs    map[int64]Document
	reviews []shared.ReviewEntry
}

func newMemoryStore(docs ...Document) *memoryStore {
	s := &memoryStore{docs: map[int64]Document{}}
	for _, d := range docs {
		s.docs[d.ID] = d
	}
	return s
}

func (s *memoryStore) LoadDocument(_ context.Context, id int64) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return Document{}, shared.ErrNotFound
	}
	return doc, nil
}

func (s *memoryStore) ApplyStep(_ context.Context, step Step) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[step.ID]
	if !ok || doc.Status != step.From {
		return false, nil
	}
	doc.Status = step.To
	s.docs[step.ID] = doc
	s.reviews = append(s.reviews, shared.ReviewEntry{RefID: step.ID, ActorID: step.ActorID, Action: step.Action.ReviewAction(), Note: step.Note, At: step.At})
	return true, nil
}

func (s *memoryStore) AppendReview(_ context.Context, entry shared.ReviewEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, entry)
	return nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	steps []Step
}

func (n *recordingNotifier) ReviewDecided(_ context.Context, _ string, _ Document, step Step) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.steps = append(n.steps, step)
}

var (
	s1    = shared.Identity{UserID: 100, Role: shared.RoleStudent}
	s2    = shared.Identity{UserID: 101, Role: shared.RoleStudent}
	m1    = shared.Identity{UserID: 200, Role: shared.RoleMentor}
	sup1  = shared.Identity{UserID: 300, Role: shared.RoleSupervisor}
	admin = shared.Identity{UserID: 1, Role: shared.RoleAdmin}
)

func TestEngineSubmitApproveScenario(t *testing.T) {
	store := newMemoryStore(Document{ID: 1, OwnerID: s1.UserID, Status: StatusDraft})
	notifier := &recordingNotifier{}
	engine := NewEngine("practicum_records", PracticumRecord, store, notifier, nil, nil)
	ctx := context.Background()

	_, err := engine.Fire(ctx, s2, 1, ActionSubmit, "")
	require.ErrorIs(t, err, shared.ErrForbidden)

	doc, err := engine.Fire(ctx, s1, 1, ActionSubmit, "")
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, doc.Status)

	_, err = engine.Fire(ctx, s1, 1, ActionApprove, "self approval")
	require.ErrorIs(t, err, shared.ErrForbidden)

	doc, err = engine.Fire(ctx, m1, 1, ActionApprove, "Good work")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, doc.Status)

	require.ErrorIs(t, engine.CheckEdit(s1, doc), shared.ErrInvalidTransition)
	_, err = engine.Fire(ctx, s1, 1, ActionSubmit, "")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	require.Len(t, store.reviews, 2)
	assert.Equal(t, shared.ReviewApprove, store.reviews[1].Action)
	assert.Equal(t, "Good work", store.reviews[1].Note)
	require.Len(t, notifier.steps, 1)
	assert.Equal(t, ActionApprove, notifier.steps[0].Action)
}

func TestEngineRejectRequiresFeedback(t *testing.T) {
	store := newMemoryStore(Document{ID: 1, OwnerID: s1.UserID, Status: StatusSubmitted})
	engine := NewEngine("practicum_records", PracticumRecord, store, nil, nil, nil)

	_, err := engine.Fire(context.Background(), m1, 1, ActionReject, "  ")
	require.ErrorIs(t, err, shared.ErrValidation)

	doc, err := engine.Fire(context.Background(), sup1, 1, ActionReject, "hours do not match the log book")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, doc.Status)
}

func TestEngineApproveOutsideSubmitted(t *testing.T) {
	store := newMemoryStore(Document{ID: 1, OwnerID: s1.UserID, Status: StatusDraft})
	engine := NewEngine("practicum_records", PracticumRecord, store, nil, nil, nil)
	_, err := engine.Fire(context.Background(), m1, 1, ActionApprove, "")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestEngineUnsupportedAction(t *testing.T) {
	store := newMemoryStore(Document{ID: 1, OwnerID: s1.UserID, Status: StatusSubmitted})
	engine := NewEngine("practicum_records", PracticumRecord, store, nil, nil, nil)
	_, err := engine.Fire(context.Background(), m1, 1, ActionRequestRevision, "more detail")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestEngineMissingRecord(t *testing.T) {
	engine := NewEngine("practicum_records", PracticumRecord, newMemoryStore(), nil, nil, nil)
	_, err := engine.Fire(context.Background(), m1, 9, ActionApprove, "")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestConcurrentApproveRejectExactlyOneWins(t *testing.T) {
	for round := 0; round < 50; round++ {
		store := newMemoryStore(Document{ID: 1, OwnerID: s1.UserID, Status: StatusSubmitted})
		engine := NewEngine("practicum_records", PracticumRecord, store, nil, nil, nil)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, errs[0] = engine.Fire(context.Background(), m1, 1, ActionApprove, "ok")
		}()
		go func() {
			defer wg.Done()
			<-start
			_, errs[1] = engine.Fire(context.Background(), sup1, 1, ActionReject, "not ok")
		}()
		close(start)
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			// the loser either lost the compare-and-set or read the already final state
			if !assert.True(t, errorsIsAny(err, shared.ErrConflict, shared.ErrInvalidTransition), err.Error()) {
				return
			}
		}
		require.Equal(t, 1, wins)
		require.Len(t, store.reviews, 1)
	}
}

func TestFeedbackAfterFinal(t *testing.T) {
	store := newMemoryStore(
		Document{ID: 1, OwnerID: s1.UserID, Status: StatusApproved},
		Document{ID: 2, OwnerID: s1.UserID, Status: StatusDraft},
	)
	engine := NewEngine("lesson_plans", LessonPlan, store, nil, nil, nil)

	entry, err := engine.Feedback(context.Background(), m1, 1, "Consider adding a reflection paragraph")
	require.NoError(t, err)
	assert.Equal(t, shared.ReviewFeedback, entry.Action)

	_, err = engine.Feedback(context.Background(), s1, 1, "me too")
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = engine.Feedback(context.Background(), m1, 2, "too early")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestCheckDelete(t *testing.T) {
	engine := NewEngine("practicum_records", PracticumRecord, newMemoryStore(), nil, nil, nil)
	draft := Document{ID: 1, OwnerID: s1.UserID, Status: StatusDraft}
	submitted := Document{ID: 2, OwnerID: s1.UserID, Status: StatusSubmitted}

	require.NoError(t, engine.CheckDelete(s1, draft))
	require.ErrorIs(t, engine.CheckDelete(s1, submitted), shared.ErrForbidden)
	require.ErrorIs(t, engine.CheckDelete(m1, draft), shared.ErrForbidden)
	require.NoError(t, engine.CheckDelete(admin, submitted))
}

func TestCheckRevise(t *testing.T) {
	engine := NewEngine("practicum_records", PracticumRecord, newMemoryStore(), nil, nil, nil)
	require.NoError(t, engine.CheckRevise(s1, Document{ID: 1, OwnerID: s1.UserID, Status: StatusRejected}))
	require.ErrorIs(t, engine.CheckRevise(s1, Document{ID: 1, OwnerID: s1.UserID, Status: StatusApproved}), shared.ErrInvalidTransition)
	require.ErrorIs(t, engine.CheckRevise(s2, Document{ID: 1, OwnerID: s1.UserID, Status: StatusRejected}), shared.ErrForbidden)
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func TestNotifiersFanOutSkipsNil(t *testing.T) {
	first := &recordingNotifier{}
	second := &recordingNotifier{}
	fan := Notifiers{first, nil, second}

	fan.ReviewDecided(context.Background(), "lesson_plans", Document{ID: 1, OwnerID: 2}, Step{Action: ActionReject})
	require.Len(t, first.steps, 1)
	require.Len(t, second.steps, 1)
	assert.Equal(t, ActionReject, second.steps[0].Action)
}

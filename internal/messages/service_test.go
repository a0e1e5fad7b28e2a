package messages

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/shared"
)

type memoryRepo struct {
	items  map[int64]Message
	nextID int64
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]Message, int, error) {
	out := make([]Message, 0)
	for _, msg := range m.items {
		owner := msg.RecipientID
		if filter.Box == Sent {
			owner = msg.SenderID
		}
		if owner != filter.UserID || (filter.UnreadOnly && msg.ReadAt != nil) {
			continue
		}
		out = append(out, msg)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Message, error) {
	msg, ok := m.items[id]
	if !ok {
		return Message{}, shared.ErrNotFound
	}
	return msg, nil
}

func (m *memoryRepo) Create(_ context.Context, senderID int64, in Input) (int64, error) {
	m.nextID++
	m.items[m.nextID] = Message{ID: m.nextID, SenderID: senderID, RecipientID: in.RecipientID, Subject: in.Subject, Body: in.Body}
	return m.nextID, nil
}

func (m *memoryRepo) MarkRead(_ context.Context, id int64, at time.Time) error {
	msg := m.items[id]
	if msg.ReadAt == nil {
		msg.ReadAt = &at
	}
	m.items[id] = msg
	return nil
}

var (
	s1    = shared.Identity{UserID: 100, Role: shared.RoleStudent}
	m1    = shared.Identity{UserID: 200, Role: shared.RoleMentor}
	admin = shared.Identity{UserID: 1, Role: shared.RoleAdmin}
)

func TestSendReadFlow(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryRepo{items: map[int64]Message{}}, nil)

	msg, err := svc.Send(ctx, s1, Input{RecipientID: m1.UserID, Subject: "  Logbook   question ", Body: "Can I log Saturday hours?"})
	require.NoError(t, err)
	assert.Equal(t, "Logbook question", msg.Subject)

	inbox, page, err := svc.List(ctx, m1, Inbox, true, shared.PageRequest{})
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, 1, page.Total)

	sent, _, err := svc.List(ctx, s1, Sent, false, shared.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, sent, 1)

	_, err = svc.MarkRead(ctx, s1, msg.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	read, err := svc.MarkRead(ctx, m1, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)

	inbox, _, err = svc.List(ctx, m1, Inbox, true, shared.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestGetLimitedToParticipants(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryRepo{items: map[int64]Message{}}, nil)
	msg, err := svc.Send(ctx, s1, Input{RecipientID: m1.UserID, Subject: "Hi", Body: "Hello"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, m1, msg.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, admin, msg.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Send(ctx, s1, Input{RecipientID: s1.UserID, Subject: "Me", Body: "Me"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

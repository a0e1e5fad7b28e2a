package announcements

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/shared"
)

type memoryRepo struct {
	items  map[int64]Announcement
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[int64]Announcement{}}
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]Announcement, int, error) {
	out := make([]Announcement, 0)
	for _, a := range m.items {
		if filter.All || a.Visible(filter.Audiences, filter.Now) || (filter.AuthorID != 0 && a.AuthorID == filter.AuthorID) {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Announcement, error) {
	a, ok := m.items[id]
	if !ok {
		return Announcement{}, shared.ErrNotFound
	}
	return a, nil
}

func (m *memoryRepo) Create(_ context.Context, authorID int64, in Input) (int64, error) {
	m.nextID++
	m.items[m.nextID] = Announcement{ID: m.nextID, AuthorID: authorID, Title: in.Title, Body: in.Body,
		Audience: Audience(in.Audience), PublishedAt: in.PublishedAt, ExpiresAt: in.ExpiresAt}
	return m.nextID, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, in Input) error {
	a, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.Title, a.Body, a.Audience, a.PublishedAt, a.ExpiresAt = in.Title, in.Body, Audience(in.Audience), in.PublishedAt, in.ExpiresAt
	m.items[id] = a
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryRepo) Unpublish(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for id, a := range m.items {
		if a.PublishedAt != nil && a.ExpiresAt != nil && !a.ExpiresAt.After(now) {
			a.PublishedAt = nil
			m.items[id] = a
			n++
		}
	}
	return n, nil
}

var (
	admin = shared.Identity{UserID: 1, Role: shared.RoleAdmin}
	s1    = shared.Identity{UserID: 100, Role: shared.RoleStudent}
	m1    = shared.Identity{UserID: 200, Role: shared.RoleMentor}
	sup1  = shared.Identity{UserID: 300, Role: shared.RoleSupervisor}
	sup2  = shared.Identity{UserID: 301, Role: shared.RoleSupervisor}
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newService() (*Service, *memoryRepo) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func seed(t *testing.T, svc *Service) {
	t.Helper()
	for _, aud := range []string{"public", "all", "student", "mentor"} {
		_, err := svc.Create(context.Background(), sup1, Input{Title: "Notice " + aud, Body: "Body", Audience: aud})
		require.NoError(t, err)
	}
}

func TestListFiltersByAudience(t *testing.T) {
	svc, _ := newService()
	seed(t, svc)

	cases := []struct {
		name  string
		actor shared.Identity
		want  int
	}{
		{"anonymous", shared.Identity{}, 1},
		{"student", s1, 3},
		{"mentor", m1, 3},
		{"other supervisor", sup2, 2},
		{"author", sup1, 4},
		{"admin", admin, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, page, err := svc.List(context.Background(), tc.actor, shared.PageRequest{})
			require.NoError(t, err)
			assert.Len(t, items, tc.want)
			assert.Equal(t, tc.want, page.Total)
		})
	}
}

func TestGetHidesOtherAudiences(t *testing.T) {
	svc, _ := newService()
	seed(t, svc)

	_, err := svc.Get(context.Background(), shared.Identity{}, 3)
	require.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.Get(context.Background(), s1, 3)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), m1, 3)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestModifyByAuthorOrAdmin(t *testing.T) {
	svc, _ := newService()
	a, err := svc.Create(context.Background(), sup1, Input{Title: "Schedule", Body: "Week 1", Audience: "all"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), sup2, a.ID, Input{Title: "x", Body: "y", Audience: "all"})
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Update(context.Background(), s1, a.ID, Input{Title: "x", Body: "y", Audience: "all"})
	require.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := svc.Update(context.Background(), sup1, a.ID, Input{Title: "Schedule", Body: "Week 2", Audience: "all"})
	require.NoError(t, err)
	assert.Equal(t, "Week 2", updated.Body)

	require.NoError(t, svc.Delete(context.Background(), admin, a.ID))
	_, err = svc.Create(context.Background(), m1, Input{Title: "x", Body: "y", Audience: "all"})
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestExpiryWindow(t *testing.T) {
	svc, _ := newService()
	past := now.Add(-time.Hour)
	_, err := svc.Create(context.Background(), sup1, Input{Title: "Old", Body: "b", Audience: "public", ExpiresAt: &past})
	require.ErrorIs(t, err, shared.ErrValidation)

	published := now.Add(-48 * time.Hour)
	_, err = svc.Create(context.Background(), sup1, Input{Title: "Old", Body: "b", Audience: "public", PublishedAt: &published, ExpiresAt: &past})
	require.NoError(t, err)

	items, _, err := svc.List(context.Background(), shared.Identity{}, shared.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, items)

	n, err := svc.ExpireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

package personnel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/shared"
)

type memoryRepo struct {
	mentors     map[int64]Mentor
	supervisors map[int64]Supervisor
}

func newMemoryRepo() *memoryRepo {
	school := int64(7)
	return &memoryRepo{
		mentors: map[int64]Mentor{
			20: {UserID: 20, Username: "m1", FullName: "Sri Wahyuni", SchoolID: &school},
		},
		supervisors: map[int64]Supervisor{
			30: {UserID: 30, Username: "sup1", FullName: "Agus Salim", Department: "Mathematics Education"},
		},
	}
}

func (m *memoryRepo) ListMentors(_ context.Context, filter ListFilter) ([]Mentor, int, error) {
	out := make([]Mentor, 0, len(m.mentors))
	for _, v := range m.mentors {
		if filter.SchoolID != 0 && (v.SchoolID == nil || *v.SchoolID != filter.SchoolID) {
			continue
		}
		out = append(out, v)
	}
	return out, len(out), nil
}

func (m *memoryRepo) GetMentor(_ context.Context, id int64) (Mentor, error) {
	v, ok := m.mentors[id]
	if !ok {
		return Mentor{}, shared.ErrNotFound
	}
	return v, nil
}

func (m *memoryRepo) UpdateMentor(_ context.Context, id int64, in MentorInput) error {
	v, ok := m.mentors[id]
	if !ok {
		return shared.ErrNotFound
	}
	v.FullName, v.EmployeeNumber, v.SchoolID = in.FullName, in.EmployeeNumber, in.SchoolID
	m.mentors[id] = v
	return nil
}

func (m *memoryRepo) ListSupervisors(_ context.Context, _ ListFilter) ([]Supervisor, int, error) {
	out := make([]Supervisor, 0, len(m.supervisors))
	for _, v := range m.supervisors {
		out = append(out, v)
	}
	return out, len(out), nil
}

func (m *memoryRepo) GetSupervisor(_ context.Context, id int64) (Supervisor, error) {
	v, ok := m.supervisors[id]
	if !ok {
		return Supervisor{}, shared.ErrNotFound
	}
	return v, nil
}

func (m *memoryRepo) UpdateSupervisor(_ context.Context, id int64, in SupervisorInput) error {
	v, ok := m.supervisors[id]
	if !ok {
		return shared.ErrNotFound
	}
	v.FullName, v.EmployeeNumber, v.Department = in.FullName, in.EmployeeNumber, in.Department
	m.supervisors[id] = v
	return nil
}

var (
	admin   = shared.Identity{UserID: 1, Role: shared.RoleAdmin}
	mentor  = shared.Identity{UserID: 20, Role: shared.RoleMentor}
	other   = shared.Identity{UserID: 21, Role: shared.RoleMentor}
	student = shared.Identity{UserID: 10, Role: shared.RoleStudent}
	sup     = shared.Identity{UserID: 30, Role: shared.RoleSupervisor}
)

func int64Ptr(v int64) *int64 { return &v }

func TestMentorUpdatesOwnProfile(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	updated, err := svc.UpdateMentor(context.Background(), mentor, 20, MentorInput{FullName: "sri  wahyuni", EmployeeNumber: "1978", SchoolID: int64Ptr(7)})
	require.NoError(t, err)
	assert.Equal(t, "Sri Wahyuni", updated.FullName)
	assert.Equal(t, "1978", updated.EmployeeNumber)
}

func TestMentorCannotEditOthersOrMoveSchool(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, err := svc.UpdateMentor(context.Background(), other, 20, MentorInput{FullName: "X", SchoolID: int64Ptr(7)})
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.UpdateMentor(context.Background(), mentor, 20, MentorInput{FullName: "X", SchoolID: int64Ptr(8)})
	require.ErrorIs(t, err, shared.ErrForbidden)

	moved, err := svc.UpdateMentor(context.Background(), admin, 20, MentorInput{FullName: "X", SchoolID: int64Ptr(8)})
	require.NoError(t, err)
	assert.Equal(t, int64(8), *moved.SchoolID)
}

func TestSupervisorUpdate(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, err := svc.UpdateSupervisor(context.Background(), student, 30, SupervisorInput{FullName: "Nope"})
	require.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := svc.UpdateSupervisor(context.Background(), sup, 30, SupervisorInput{FullName: "agus salim", Department: " Physics  Education "})
	require.NoError(t, err)
	assert.Equal(t, "Physics Education", updated.Department)

	_, err = svc.UpdateSupervisor(context.Background(), sup, 30, SupervisorInput{})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestListAndGetAreOpenToAuthenticatedUsers(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	items, page, err := svc.ListMentors(context.Background(), student, ListFilter{SchoolID: 7})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, page.Total)

	_, err = svc.GetSupervisor(context.Background(), student, 99)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, _, err = svc.ListSupervisors(context.Background(), shared.Identity{}, ListFilter{})
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

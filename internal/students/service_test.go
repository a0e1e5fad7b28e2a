package students

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/shared"
)

type memoryRepo struct {
	items map[int64]Student
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[int64]Student{
		10: {UserID: 10, Username: "s1", StudentNumber: "2101001", FullName: "Dewi Lestari", Program: "Mathematics Education"},
		11: {UserID: 11, Username: "s2", StudentNumber: "2101002", FullName: "Rudi Hartono"},
	}}
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]Student, int, error) {
	out := make([]Student, 0)
	for _, s := range m.items {
		if filter.MentorID != 0 && (s.MentorID == nil || *s.MentorID != filter.MentorID) {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Student, error) {
	s, ok := m.items[id]
	if !ok {
		return Student{}, shared.ErrNotFound
	}
	return s, nil
}

func (m *memoryRepo) UpdateProfile(_ context.Context, id int64, in ProfileInput) error {
	s, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.StudentNumber, s.FullName, s.Program = in.StudentNumber, in.FullName, in.Program
	m.items[id] = s
	return nil
}

func (m *memoryRepo) Assign(_ context.Context, id int64, a Assignment) error {
	s, ok := m.items[id]
	if !ok {
		return shared.ErrNotFound
	}
	s.SchoolID, s.MentorID, s.SupervisorID = a.SchoolID, a.MentorID, a.SupervisorID
	m.items[id] = s
	return nil
}

type memoryAudit struct {
	logs []shared.AuditLog
}

func (a *memoryAudit) Record(_ context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

var (
	admin  = shared.Identity{UserID: 1, Role: shared.RoleAdmin}
	s1     = shared.Identity{UserID: 10, Role: shared.RoleStudent}
	s2     = shared.Identity{UserID: 11, Role: shared.RoleStudent}
	mentor = shared.Identity{UserID: 20, Role: shared.RoleMentor}
)

func ptr(v int64) *int64 { return &v }

func TestStudentsCannotList(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, _, err := svc.List(context.Background(), s1, ListFilter{})
	require.ErrorIs(t, err, shared.ErrForbidden)

	items, page, err := svc.List(context.Background(), mentor, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, shared.DefaultLimit, page.Limit)
}

func TestGetOwnerOrStaff(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, err := svc.Get(context.Background(), s1, 10)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), s2, 10)
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Get(context.Background(), mentor, 10)
	require.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	updated, err := svc.UpdateProfile(context.Background(), s1, 10, ProfileInput{StudentNumber: "2101001", FullName: "dewi  lestari", Program: "Math Ed"})
	require.NoError(t, err)
	assert.Equal(t, "Dewi Lestari", updated.FullName)

	_, err = svc.UpdateProfile(context.Background(), s1, 10, ProfileInput{StudentNumber: "9999", FullName: "Dewi"})
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.UpdateProfile(context.Background(), mentor, 10, ProfileInput{StudentNumber: "2101001", FullName: "Dewi"})
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.UpdateProfile(context.Background(), admin, 10, ProfileInput{StudentNumber: "9999", FullName: "Dewi"})
	require.NoError(t, err)
}

func TestAssignIsAdminOnly(t *testing.T) {
	audit := &memoryAudit{}
	svc := NewService(newMemoryRepo(), audit, nil)
	a := Assignment{SchoolID: ptr(3), MentorID: ptr(20), SupervisorID: ptr(30)}

	_, err := svc.Assign(context.Background(), s1, 10, a)
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Assign(context.Background(), mentor, 10, a)
	require.ErrorIs(t, err, shared.ErrForbidden)

	student, err := svc.Assign(context.Background(), admin, 10, a)
	require.NoError(t, err)
	assert.Equal(t, int64(20), *student.MentorID)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "STUDENT_ASSIGN", audit.logs[0].Action)

	_, err = svc.Assign(context.Background(), admin, 99, a)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/auth"
	"github.com/ppl-hub/practicum/internal/personnel"
	"github.com/ppl-hub/practicum/internal/shared"
	"github.com/ppl-hub/practicum/internal/students"
)

type memoryRepo struct {
	users       map[int64]User
	hashes      map[int64]string
	students    map[int64]students.ProfileInput
	mentors     map[int64]personnel.MentorInput
	supervisors map[int64]personnel.SupervisorInput
	audits      []shared.AuditLog
	nextID      int64
	failProfile bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:       map[int64]User{1: {ID: 1, Username: "admin", Role: shared.RoleAdmin, IsActive: true}},
		hashes:      map[int64]string{},
		students:    map[int64]students.ProfileInput{},
		mentors:     map[int64]personnel.MentorInput{},
		supervisors: map[int64]personnel.SupervisorInput{},
		nextID:      1,
	}
}

// WithTx stages writes and applies them only when fn succeeds.
func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: m, users: map[int64]User{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, u := range tx.users {
		m.users[id] = u
	}
	m.nextID = tx.nextID
	for _, apply := range tx.pending {
		apply()
	}
	return nil
}

type memoryTx struct {
	repo    *memoryRepo
	users   map[int64]User
	nextID  int64
	pending []func()
}

func (t *memoryTx) InsertUser(_ context.Context, in CreateInput, hash string) (int64, error) {
	for _, u := range t.repo.users {
		if u.Username == in.Username {
			return 0, shared.FieldError("username", "is already taken")
		}
	}
	t.nextID = t.repo.nextID + 1
	t.users[t.nextID] = User{ID: t.nextID, Username: in.Username, Email: in.Email, Role: shared.Role(in.Role), IsActive: true}
	id := t.nextID
	t.pending = append(t.pending, func() { t.repo.hashes[id] = hash })
	return id, nil
}

func (t *memoryTx) InsertStudent(_ context.Context, id int64, in students.ProfileInput) error {
	if t.repo.failProfile {
		return errors.New("insert student: boom")
	}
	t.pending = append(t.pending, func() { t.repo.students[id] = in })
	return nil
}

func (t *memoryTx) InsertMentor(_ context.Context, id int64, in personnel.MentorInput) error {
	t.pending = append(t.pending, func() { t.repo.mentors[id] = in })
	return nil
}

func (t *memoryTx) InsertSupervisor(_ context.Context, id int64, in personnel.SupervisorInput) error {
	t.pending = append(t.pending, func() { t.repo.supervisors[id] = in })
	return nil
}

func (t *memoryTx) Audit(_ context.Context, log shared.AuditLog) error {
	t.pending = append(t.pending, func() { t.repo.audits = append(t.repo.audits, log) })
	return nil
}

func (m *memoryRepo) ListUsers(_ context.Context, filter ListFilter) ([]User, int, error) {
	out := make([]User, 0)
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Active != nil && u.IsActive != *filter.Active {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *memoryRepo) GetUser(_ context.Context, id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) SetActive(_ context.Context, id int64, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	m.users[id] = u
	return nil
}

var (
	admin  = shared.Identity{UserID: 1, Role: shared.RoleAdmin}
	mentor = shared.Identity{UserID: 20, Role: shared.RoleMentor}
)

func TestCreateStudentWritesProfileAndAudit(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	user, err := svc.CreateUser(context.Background(), admin, CreateInput{
		Username:      " S1 ",
		Email:         "s1@campus.ac.id",
		Password:      "secret-pass",
		Role:          "student",
		FullName:      "dewi lestari",
		StudentNumber: "2101001",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", user.Username)
	assert.Equal(t, shared.RoleStudent, user.Role)
	assert.Equal(t, "2101001", repo.students[user.ID].StudentNumber)
	assert.Equal(t, "Dewi Lestari", repo.students[user.ID].FullName)
	assert.True(t, auth.CheckPassword(repo.hashes[user.ID], "secret-pass"))
	require.Len(t, repo.audits, 1)
	assert.Equal(t, "USER_CREATE", repo.audits[0].Action)
}

func TestCreateRollsBackWhenProfileFails(t *testing.T) {
	repo := newMemoryRepo()
	repo.failProfile = true
	svc := NewService(repo, nil, nil)

	_, err := svc.CreateUser(context.Background(), admin, CreateInput{
		Username: "s1", Email: "s1@campus.ac.id", Password: "secret-pass",
		Role: "student", FullName: "Dewi", StudentNumber: "2101001",
	})
	require.Error(t, err)
	assert.Len(t, repo.users, 1)
	assert.Empty(t, repo.audits)
}

func TestCreateValidatesRoleSpecificFields(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	_, err := svc.CreateUser(context.Background(), admin, CreateInput{
		Username: "s1", Email: "s1@campus.ac.id", Password: "secret-pass", Role: "student", FullName: "Dewi",
	})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "student_number")

	_, err = svc.CreateUser(context.Background(), admin, CreateInput{
		Username: "root2", Email: "root2@campus.ac.id", Password: "secret-pass", Role: "janitor",
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "role")

	created, err := svc.CreateUser(context.Background(), admin, CreateInput{
		Username: "m1", Email: "m1@school.sch.id", Password: "secret-pass", Role: "mentor", FullName: "Budi",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.RoleMentor, created.Role)
}

func TestCreateAcceptsTwoCharacterUsernames(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	s1, err := svc.CreateUser(context.Background(), admin, CreateInput{
		Username: "s1", Email: "s1@campus.ac.id", Password: "secret-pass",
		Role: "student", FullName: "dewi lestari", StudentNumber: "2101001",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", s1.Username)

	m1, err := svc.CreateUser(context.Background(), admin, CreateInput{
		Username: "M1", Email: "m1@school.sch.id", Password: "secret-pass", Role: "mentor", FullName: "budi  santoso",
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", m1.Username)
	assert.Equal(t, "Budi Santoso", repo.mentors[m1.ID].FullName)

	_, err = svc.CreateUser(context.Background(), admin, CreateInput{
		Username: "x", Email: "x@campus.ac.id", Password: "secret-pass", Role: "mentor", FullName: "Budi",
	})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be at least 2", verr.Fields["username"])
}

func TestUserManagementIsAdminOnly(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, _, err := svc.ListUsers(context.Background(), mentor, ListFilter{})
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.CreateUser(context.Background(), mentor, CreateInput{})
	require.ErrorIs(t, err, shared.ErrForbidden)
	_, err = svc.Deactivate(context.Background(), mentor, 1)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestDeactivateAndActivate(t *testing.T) {
	repo := newMemoryRepo()
	repo.users[5] = User{ID: 5, Username: "s1", Role: shared.RoleStudent, IsActive: true}
	svc := NewService(repo, nil, nil)

	_, err := svc.Deactivate(context.Background(), admin, admin.UserID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	u, err := svc.Deactivate(context.Background(), admin, 5)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	inactive := false
	items, _, err := svc.ListUsers(context.Background(), admin, ListFilter{Active: &inactive})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(5), items[0].ID)

	u, err = svc.Activate(context.Background(), admin, 5)
	require.NoError(t, err)
	assert.True(t, u.IsActive)

	_, err = svc.Activate(context.Background(), admin, 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

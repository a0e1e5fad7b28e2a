package shared

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageRequestClamps(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, Limit: DefaultLimit}, NewPageRequest(0, 0))
	assert.Equal(t, PageRequest{Page: 3, Limit: MaxLimit}, NewPageRequest(3, 500))
	assert.Equal(t, 20, NewPageRequest(3, 10).Offset())

	req := httptest.NewRequest("GET", "/x?page=2&limit=abc", nil)
	assert.Equal(t, PageRequest{Page: 2, Limit: DefaultLimit}, PageRequestFromQuery(req))
}

func TestNewPaginationRoundsUp(t *testing.T) {
	p := NewPagination(PageRequest{Page: 2, Limit: 10}, 21)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 21, p.Total)

	empty := NewPagination(PageRequest{}, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, 1, empty.Page)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Mentor ")
	require.True(t, ok)
	assert.Equal(t, RoleMentor, role)

	_, ok = ParseRole("principal")
	assert.False(t, ok)
}

func TestAuthenticationErrorsShareSentinel(t *testing.T) {
	for _, err := range []error{ErrInvalidCredentials, ErrAccountInactive, ErrTokenInvalid, ErrTokenExpired, ErrUserNotFound} {
		assert.True(t, errors.Is(err, ErrUnauthenticated), err.Error())
		assert.False(t, errors.Is(err, ErrForbidden), err.Error())
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError(map[string]string{"hours": "must be greater than 0", "activity": "is required"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: activity: is required; hours: must be greater than 0", err.Error())
}

func TestReviewEntryValidate(t *testing.T) {
	assert.Error(t, ReviewEntry{RefID: 1, ActorID: 1, Action: ReviewSubmit}.Validate())
	assert.NoError(t, ReviewEntry{Module: "lesson_plan", RefID: 1, ActorID: 1, Action: ReviewSubmit}.Validate())
}

func TestNormalizeHelpers(t *testing.T) {
	assert.Equal(t, "Siti Nurhaliza", NormalizeName("  siti   NURHALIZA "))
	assert.Equal(t, "andi.p", NormalizeUsername("  Andi.P "))
	assert.Equal(t, "a b", CleanString(" a \t b "))
}

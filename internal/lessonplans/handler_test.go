package lessonplans

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppl-hub/practicum/internal/platform/httpx"
	"github.com/ppl-hub/practicum/internal/rbac"
	"github.com/ppl-hub/practicum/internal/shared"
)

type staticTokens map[string]shared.Identity

func (s staticTokens) ValidateToken(_ context.Context, token string) (shared.Identity, error) {
	id, ok := s[token]
	if !ok {
		return shared.Identity{}, shared.ErrTokenInvalid
	}
	return id, nil
}

func (s staticTokens) OptionalValidate(ctx context.Context, token string) (shared.Identity, bool) {
	id, err := s.ValidateToken(ctx, token)
	return id, err == nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newService()
	guard := rbac.Middleware{
		Tokens: staticTokens{"s1": s1, "m1": m1, "admin": admin},
		Errors: httpx.ErrorResponder{},
	}
	r := chi.NewRouter()
	r.Route("/lesson-plans", NewHandler(nil, svc, guard).MountRoutes)
	return r
}

func do(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestReviewEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodPost, "/lesson-plans", "s1", `{"title":"Fractions","subject":"Mathematics"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(router, http.MethodPost, "/lesson-plans/1/submit", "s1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"submitted"`)

	rec = do(router, http.MethodPost, "/lesson-plans/1/approve", "s1", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodPost, "/lesson-plans/1/request-revision", "m1", `{"feedback":"Add objectives"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"revision_required"`)

	rec = do(router, http.MethodPost, "/lesson-plans/1/approve", "m1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(router, http.MethodGet, "/lesson-plans/1/reviews", "s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "REQUEST_REVISION")

	rec = do(router, http.MethodGet, "/lesson-plans/1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = do(router, http.MethodGet, "/lesson-plans/42", "m1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

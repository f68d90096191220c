package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"southcoast-promotion/internal/models"
)

type stubUserLoader struct {
	users map[int]*models.User
}

func (s *stubUserLoader) GetUser(id int) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func newAuthFixture() (*AuthMiddleware, sessions.Store, *stubUserLoader) {
	store := sessions.NewCookieStore([]byte("test-secret"))
	loader := &stubUserLoader{users: map[int]*models.User{
		1: {ID: 1, Email: "jordan@example.com", Role: models.UserRoleCustomer},
		2: {ID: 2, Email: "admin@example.com", Role: models.UserRoleAdmin},
	}}
	return NewAuthMiddleware(store, loader), store, loader
}

func loginRequest(t *testing.T, store sessions.Store, userID int) *http.Request {
	t.Helper()

	// Build a request carrying a session cookie for the given user
	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	session, err := store.Get(seed, SessionName)
	require.NoError(t, err)
	session.Values["user_id"] = userID
	require.NoError(t, session.Save(seed, rec))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func TestLoadUserAttachesUser(t *testing.T) {
	mw, store, _ := newAuthFixture()

	var got *models.User
	handler := mw.LoadUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), loginRequest(t, store, 1))

	require.NotNil(t, got)
	assert.Equal(t, "jordan@example.com", got.Email)
}

func TestLoadUserAnonymousPassesThrough(t *testing.T) {
	mw, _, _ := newAuthFixture()

	called := false
	handler := mw.LoadUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, UserFromContext(r.Context()))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	mw, _, _ := newAuthFixture()

	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	mw, _, loader := newAuthFixture()

	handler := mw.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Customer is forbidden
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), loader.users[1])))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admin passes
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), loader.users[2])))
	assert.Equal(t, http.StatusOK, rec.Code)
}

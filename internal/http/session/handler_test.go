package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/user"
)

func newRouter(t *testing.T) (http.Handler, *user.MockRepository, *auth.Tokens) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)
	tokens := auth.NewTokens("secret", time.Hour)

	h := NewHandler(user.NewService(repo).WithHashCost(bcrypt.MinCost), tokens, CookieConfig{Name: "session"})

	r := chi.NewRouter()
	h.PublicRoutes(r)
	h.Routes(r)

	return r, repo, tokens
}

func TestHandler_Login(t *testing.T) {
	router, repo, tokens := newRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &user.User{ID: uuid.New(), Username: "admin", PasswordHash: string(hash), IsStaff: true, IsActive: true}
	repo.EXPECT().GetByUsername(gomock.Any(), "admin").Return(u, nil)
	repo.EXPECT().SetLastLogin(gomock.Any(), u.ID, gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"s3cret"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Username string `json:"username"`
			IsStaff  bool   `json:"is_staff"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "admin", body.User.Username)
	assert.True(t, body.User.IsStaff)
	assert.NotContains(t, rec.Body.String(), "password")

	claims, err := tokens.Parse(body.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, body.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	router, repo, _ := newRouter(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.EXPECT().GetByUsername(gomock.Any(), "admin").
		Return(&user.User{ID: uuid.New(), Username: "admin", PasswordHash: string(hash), IsActive: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"nope"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid username or password"}`, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
}

func TestHandler_Logout(t *testing.T) {
	router, _, _ := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestHandler_Me(t *testing.T) {
	router, repo, _ := newRouter(t)

	id := uuid.New()
	repo.EXPECT().GetUser(gomock.Any(), id).Return(&user.User{ID: id, Username: "viewer", IsActive: true}, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req = req.WithContext(auth.WithPrincipal(context.Background(), auth.Principal{UserID: id, IsActive: true}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"viewer"`)
}

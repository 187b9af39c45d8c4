package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
)

type loaderFunc func(ctx context.Context, id uuid.UUID) (auth.Principal, error)

func (f loaderFunc) Principal(ctx context.Context, id uuid.UUID) (auth.Principal, error) {
	return f(ctx, id)
}

func TestAuthenticator_Require(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	userID := uuid.New()

	token, _, err := tokens.Issue(userID, "alice")
	require.NoError(t, err)

	active := loaderFunc(func(_ context.Context, id uuid.UUID) (auth.Principal, error) {
		return auth.Principal{UserID: id, Username: "alice", IsActive: true, IsStaff: true}, nil
	})
	gone := loaderFunc(func(context.Context, uuid.UUID) (auth.Principal, error) {
		return auth.Principal{}, auth.ErrNotAuthenticated
	})
	broken := loaderFunc(func(context.Context, uuid.UUID) (auth.Principal, error) {
		return auth.Principal{}, errors.New("db down")
	})

	tests := []struct {
		name       string
		loader     PrincipalLoader
		setup      func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "Bearer",
			loader:     active,
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "Cookie",
			loader:     active,
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "session", Value: token}) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "Missing",
			loader:     active,
			setup:      func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Garbage",
			loader:     active,
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "DeletedUser",
			loader:     gone,
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "StoreFailure",
			loader:     broken,
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got auth.Principal
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = auth.PrincipalFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/api/transactions/", nil)
			tt.setup(r)

			rec := httptest.NewRecorder()
			NewAuthenticator(tokens, tt.loader, "session").Require(next).ServeHTTP(rec, r)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID, got.UserID)
				assert.True(t, got.IsStaff)
			}
		})
	}
}

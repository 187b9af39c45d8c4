package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
)

// PrincipalLoader resolves the user behind a session token.
type PrincipalLoader interface {
	Principal(ctx context.Context, id uuid.UUID) (auth.Principal, error)
}

// Authenticator attaches the caller's principal to the request context.
type Authenticator struct {
	tokens     *auth.Tokens
	users      PrincipalLoader
	cookieName string
}

func NewAuthenticator(tokens *auth.Tokens, users PrincipalLoader, cookieName string) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, cookieName: cookieName}
}

// Token returns the bearer token or, failing that, the session cookie.
func (a *Authenticator) Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}

	if c, err := r.Cookie(a.cookieName); err == nil {
		return c.Value
	}

	return ""
}

// Require rejects requests without a valid session with 401.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := a.Token(r)
		if token == "" {
			render.Error(w, r, auth.ErrNotAuthenticated)
			return
		}

		claims, err := a.tokens.Parse(token)
		if err != nil {
			render.Error(w, r, auth.ErrNotAuthenticated)
			return
		}

		p, err := a.users.Principal(r.Context(), claims.UserID)
		if err != nil {
			if apperror.KindOf(err) == apperror.KindInternal {
				slog.Error("failed to load session user", "user_id", claims.UserID, "error", err)
			}

			render.Error(w, r, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

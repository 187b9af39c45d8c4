package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/employee"
	"github.com/MrJamesThe3rd/backoffice/internal/export"
	employeeHandler "github.com/MrJamesThe3rd/backoffice/internal/http/employee"
	exportHandler "github.com/MrJamesThe3rd/backoffice/internal/http/export"
	"github.com/MrJamesThe3rd/backoffice/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/backoffice/internal/http/matching"
	authmw "github.com/MrJamesThe3rd/backoffice/internal/http/middleware"
	monthlyHandler "github.com/MrJamesThe3rd/backoffice/internal/http/monthly"
	"github.com/MrJamesThe3rd/backoffice/internal/http/session"
	txHandler "github.com/MrJamesThe3rd/backoffice/internal/http/transaction"
	userHandler "github.com/MrJamesThe3rd/backoffice/internal/http/user"
	warehouseHandler "github.com/MrJamesThe3rd/backoffice/internal/http/warehouse"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/matching"
	"github.com/MrJamesThe3rd/backoffice/internal/monthly"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
	"github.com/MrJamesThe3rd/backoffice/internal/user"
	"github.com/MrJamesThe3rd/backoffice/internal/warehouse"
)

type fixture struct {
	router http.Handler
	tokens *auth.Tokens
	users  *user.MockRepository
	txs    *transaction.MockRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		tokens: auth.NewTokens("test-secret", time.Hour),
		users:  user.NewMockRepository(ctrl),
		txs:    transaction.NewMockRepository(ctrl),
	}

	var (
		userService        = user.NewService(f.users)
		transactionService = transaction.NewService(f.txs)
		matchingService    = matching.NewService(matching.NewMockRepository(ctrl))
	)

	f.router = New(
		authmw.NewAuthenticator(f.tokens, userService, "session"),
		Handlers{
			Session:      session.NewHandler(userService, f.tokens, session.CookieConfig{Name: "session"}),
			Users:        userHandler.NewHandler(userService),
			Transactions: txHandler.NewHandler(transactionService),
			Import:       importcsv.NewHandler(importer.NewService(), transactionService, matchingService),
			Matching:     matchingHandler.NewHandler(matchingService),
			Export:       exportHandler.NewHandler(export.NewService(transactionService)),
			Employees:    employeeHandler.NewHandler(employee.NewService(employee.NewMockRepository(ctrl))),
			Monthly:      monthlyHandler.NewHandler(monthly.NewService(monthly.NewMockRepository(ctrl))),
			Warehouse:    warehouseHandler.NewHandler(warehouse.NewService(warehouse.NewMockRepository(ctrl))),
		},
		[]string{"http://localhost:3000"},
	)

	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func TestRouter_Healthz(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_RequiresSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/methods/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRouter_LoginIsPublic(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login/", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	rec := f.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "username")
}

func TestRouter_AuthenticatedRequest(t *testing.T) {
	f := newFixture(t)

	userID := uuid.New()
	token, _, err := f.tokens.Issue(userID, "alice")
	require.NoError(t, err)

	f.users.EXPECT().GetUser(gomock.Any(), userID).
		Return(&user.User{ID: userID, Username: "alice", IsActive: true}, nil)
	f.txs.EXPECT().ListMethods(gomock.Any()).
		Return([]*transaction.Method{{ID: uuid.New(), Name: "Cash"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/methods/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Cash"`)
}

func TestRouter_RejectsUnsupportedContentType(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("username=alice"))
	req.Header.Set("Content-Type", "text/plain")

	rec := f.do(req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/transactions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := f.do(req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

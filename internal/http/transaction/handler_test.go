package transaction

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

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

var (
	staff  = auth.Principal{UserID: uuid.New(), IsStaff: true, IsActive: true}
	viewer = auth.Principal{UserID: uuid.New(), IsActive: true}
)

func serve(t *testing.T, repo *transaction.MockRepository, p auth.Principal, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := chi.NewRouter()
	NewHandler(transaction.NewService(repo)).Routes(r)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(auth.WithPrincipal(context.Background(), p))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Create(t *testing.T) {
	methodID := uuid.New()
	body := `{"type":"income","amount":"1500000","description":"Flour sale","date":"2026-01-30","method":"` + methodID.String() + `"}`

	tests := []struct {
		name       string
		principal  auth.Principal
		body       string
		setupMock  func(m *transaction.MockRepository)
		wantStatus int
		wantBody   string
	}{
		{
			name:      "Staff",
			principal: staff,
			body:      body,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.Equal(t, int64(1500000), tx.Amount)
						assert.Equal(t, transaction.CurrencyUZS, tx.Currency)
						assert.Equal(t, methodID, tx.MethodID)
						assert.Equal(t, time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC), tx.Date)
						tx.ID = uuid.New()
						return nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "NonStaff",
			principal:  viewer,
			body:       body,
			wantStatus: http.StatusForbidden,
			wantBody:   `{"success":false,"error":"Permission denied. Only staff users can perform this action."}`,
		},
		{
			name:       "InvalidType",
			principal:  staff,
			body:       `{"type":"gift","amount":1,"date":"2026-01-30","method":"` + methodID.String() + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "InvalidCurrency",
			principal:  staff,
			body:       `{"type":"income","amount":1,"date":"2026-01-30","currency":"eur","method":"` + methodID.String() + `"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"error":"currency must be one of: uzs, usd, afn"}`,
		},
		{
			name:       "NonNumericAmount",
			principal:  staff,
			body:       `{"type":"income","amount":"lots","date":"2026-01-30","method":"` + methodID.String() + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:      "UnknownMethod",
			principal: staff,
			body:      body,
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(transaction.ErrUnknownMethod)
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"success":false,"error":"payment method not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := serve(t, repo, tt.principal, http.MethodPost, "/transaction/create", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, true, resp["success"])
				assert.NotEmpty(t, resp["id"])
			}
		})
	}
}

func TestHandler_List_Filters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	methodID := uuid.New()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
			require.NotNil(t, f.Type)
			assert.Equal(t, transaction.TypeExpense, *f.Type)
			require.NotNil(t, f.Currency)
			assert.Equal(t, transaction.CurrencyUSD, *f.Currency)
			require.NotNil(t, f.MethodID)
			assert.Equal(t, methodID, *f.MethodID)
			require.NotNil(t, f.DateFrom)
			assert.Nil(t, f.DateTo)

			return []*transaction.Transaction{{
				ID:          uuid.New(),
				Type:        transaction.TypeExpense,
				Currency:    transaction.CurrencyUSD,
				Amount:      250,
				Description: "Fuel",
				Date:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
				MethodID:    methodID,
				MethodName:  "Card",
			}}, nil
		})

	rec := serve(t, repo, viewer, http.MethodGet,
		"/transactions?type=expense&currency=USD&method="+methodID.String()+"&date_from=2026-01-01", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transactions []map[string]any `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "2026-02-01", resp.Transactions[0]["date"])
	assert.Equal(t, "Card", resp.Transactions[0]["method_name"])
	assert.Equal(t, "usd", resp.Transactions[0]["currency"])
}

func TestHandler_List_BadFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := serve(t, transaction.NewMockRepository(ctrl), viewer, http.MethodGet, "/transactions?date_to=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().SumByCurrency(gomock.Any(), gomock.Any()).Return([]transaction.Sum{
		{Currency: transaction.CurrencyUZS, Type: transaction.TypeIncome, Total: 1000},
		{Currency: transaction.CurrencyUZS, Type: transaction.TypeExpense, Total: 400},
		{Currency: transaction.CurrencyAFN, Type: transaction.TypeExpense, Total: 50},
	}, nil)

	rec := serve(t, repo, viewer, http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"incomes_uzs": 1000, "expenses_uzs": 400, "balance_uzs": 600,
		"incomes_usd": 0, "expenses_usd": 0, "balance_usd": 0,
		"incomes_afn": 0, "expenses_afn": 50, "balance_afn": -50
	}`, rec.Body.String())
}

func TestHandler_Get_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().GetTransaction(gomock.Any(), id).Return(nil, transaction.ErrNotFound)

	rec := serve(t, repo, viewer, http.MethodGet, "/transaction/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Transaction not found"}`, rec.Body.String())
}

func TestHandler_Update_Partial(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	existing := &transaction.Transaction{
		ID:          id,
		Type:        transaction.TypeIncome,
		Currency:    transaction.CurrencyUZS,
		Amount:      100,
		Description: "old",
		Date:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		MethodID:    uuid.New(),
	}

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().GetTransaction(gomock.Any(), id).Return(existing, nil)
	repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
			assert.Equal(t, int64(250), tx.Amount)
			assert.Equal(t, "old", tx.Description)
			assert.Equal(t, transaction.CurrencyUSD, tx.Currency)
			return nil
		})

	rec := serve(t, repo, staff, http.MethodPost, "/transaction/"+id.String()+"/update", `{"amount":250,"currency":"usd"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		principal  auth.Principal
		repoErr    error
		callRepo   bool
		wantStatus int
	}{
		{name: "Deleted", principal: staff, callRepo: true, wantStatus: http.StatusOK},
		{name: "Missing", principal: staff, callRepo: true, repoErr: transaction.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "NonStaff", principal: viewer, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			id := uuid.New()
			repo := transaction.NewMockRepository(ctrl)
			if tt.callRepo {
				repo.EXPECT().DeleteTransaction(gomock.Any(), id).Return(tt.repoErr)
			}

			rec := serve(t, repo, tt.principal, http.MethodPost, "/transaction/"+id.String()+"/delete", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_CreateMethod(t *testing.T) {
	tests := []struct {
		name       string
		principal  auth.Principal
		body       string
		callRepo   bool
		wantStatus int
	}{
		{name: "Staff", principal: staff, body: `{"name":"Payme"}`, callRepo: true, wantStatus: http.StatusOK},
		{name: "StaffMalformedBody", principal: staff, body: `{"name":`, wantStatus: http.StatusBadRequest},
		{name: "NonStaff", principal: viewer, body: `{"name":"Payme"}`, wantStatus: http.StatusForbidden},
		{name: "NonStaffMalformedBody", principal: viewer, body: `{"name":`, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.callRepo {
				repo.EXPECT().CreateMethod(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, m *transaction.Method) error {
						assert.Equal(t, "Payme", m.Name)
						m.ID = uuid.New()
						return nil
					})
			}

			rec := serve(t, repo, tt.principal, http.MethodPost, "/method/create", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_DeleteMethod_InUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().DeleteMethod(gomock.Any(), id).Return(transaction.ErrMethodInUse)

	rec := serve(t, repo, staff, http.MethodPost, "/method/"+id.String()+"/delete", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

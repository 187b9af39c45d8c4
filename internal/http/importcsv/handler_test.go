package importcsv

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
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
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/matching"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

var staff = auth.Principal{UserID: uuid.New(), IsStaff: true, IsActive: true}

const statement = `Дата;Назначение платежа;Дебет;Кредит
03.02.2026;Оплата за упаковку;1 250 000,00;
05.02.2026;Поступление от покупателя;;4 800 000,00
`

type fixture struct {
	router  http.Handler
	txRepo  *transaction.MockRepository
	itx     *transaction.MockImportTx
	matches *matching.MockRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		txRepo:  transaction.NewMockRepository(ctrl),
		itx:     transaction.NewMockImportTx(ctrl),
		matches: matching.NewMockRepository(ctrl),
	}

	h := NewHandler(importer.NewService(), transaction.NewService(f.txRepo), matching.NewService(f.matches))

	r := chi.NewRouter()
	h.Routes(r)
	f.router = r

	return f
}

func upload(t *testing.T, fields map[string]string, file string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	fw, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(file))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/transactions/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req.WithContext(auth.WithPrincipal(context.Background(), staff))
}

func TestHandler_Import_Created(t *testing.T) {
	f := newFixture(t)
	methodID := uuid.New()

	f.matches.EXPECT().FindMatch(gomock.Any(), "Оплата за упаковку").
		Return(&matching.Rule{Description: "Packaging"}, nil)
	f.matches.EXPECT().FindMatch(gomock.Any(), "Поступление от покупателя").Return(nil, nil)

	f.txRepo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(f.itx, nil)
	f.itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return(nil, nil)
	f.itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
			require.Len(t, txs, 2)
			assert.Equal(t, "Packaging", txs[0].Description)
			assert.Equal(t, transaction.TypeExpense, txs[0].Type)
			assert.Equal(t, transaction.CurrencyUSD, txs[0].Currency)
			assert.Equal(t, methodID, txs[0].MethodID)
			assert.Equal(t, int64(4800000), txs[1].Amount)
			return nil
		})
	f.itx.EXPECT().Commit().Return(nil)
	f.itx.EXPECT().Rollback().Return(nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, upload(t, map[string]string{"method": methodID.String(), "currency": "usd"}, statement))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp importSuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Imported)
}

func TestHandler_Import_Conflicts(t *testing.T) {
	f := newFixture(t)
	methodID := uuid.New()

	f.matches.EXPECT().FindMatch(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		Type:        transaction.TypeExpense,
		Currency:    transaction.CurrencyUZS,
		Amount:      1250000,
		Description: "Оплата за упаковку",
		Date:        time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		MethodID:    methodID,
	}

	f.txRepo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(f.itx, nil)
	f.itx.EXPECT().FindDuplicates(gomock.Any(), gomock.Any()).Return([]*transaction.Transaction{existing}, nil)
	f.itx.EXPECT().Rollback().Return(nil)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, upload(t, map[string]string{"method": methodID.String()}, statement))

	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	var resp importConflictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Conflicts, 1)
	require.Len(t, resp.New, 1)
	assert.Equal(t, existing.ID, resp.Conflicts[0].Existing.ID)
	assert.Equal(t, "Поступление от покупателя", resp.New[0].Description)
}

func TestHandler_Import_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		principal  auth.Principal
		fields     map[string]string
		file       string
		wantStatus int
	}{
		{
			name:       "NonStaff",
			principal:  auth.Principal{UserID: uuid.New(), IsActive: true},
			fields:     map[string]string{"method": uuid.NewString()},
			file:       statement,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "MissingMethod",
			principal:  staff,
			file:       statement,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownLayout",
			principal:  staff,
			fields:     map[string]string{"method": uuid.NewString()},
			file:       "foo;bar\n1;2\n",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			req := upload(t, tt.fields, tt.file)
			req = req.WithContext(auth.WithPrincipal(context.Background(), tt.principal))

			rec := httptest.NewRecorder()
			f.router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Confirm(t *testing.T) {
	f := newFixture(t)
	methodID := uuid.New()

	f.txRepo.EXPECT().BeginImport(gomock.Any(), gomock.Any(), gomock.Any()).Return(f.itx, nil)
	f.itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
			require.Len(t, txs, 1)
			assert.Equal(t, transaction.CurrencyUZS, txs[0].Currency)
			assert.Equal(t, int64(700), txs[0].Amount)
			return nil
		})
	f.itx.EXPECT().Commit().Return(nil)
	f.itx.EXPECT().Rollback().Return(nil)

	body := `{"params":[{"type":"income","amount":"700","description":"Cash","date":"2026-02-05","method_id":"` + methodID.String() + `"}]}`
	req := httptest.NewRequest(http.MethodPost, "/transactions/import/confirm", strings.NewReader(body))
	req = req.WithContext(auth.WithPrincipal(context.Background(), staff))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestHandler_Confirm_NonStaffMalformedBody(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/transactions/import/confirm", strings.NewReader(`{"params":[`))
	req = req.WithContext(auth.WithPrincipal(context.Background(), auth.Principal{UserID: uuid.New(), IsActive: true}))

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

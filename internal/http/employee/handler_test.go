package employee

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
	"github.com/MrJamesThe3rd/backoffice/internal/employee"
)

var (
	staff  = auth.Principal{UserID: uuid.New(), IsStaff: true, IsActive: true}
	viewer = auth.Principal{UserID: uuid.New(), IsActive: true}
)

func serve(repo *employee.MockRepository, p auth.Principal, method, target, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	NewHandler(employee.NewService(repo)).Routes(r)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(auth.WithPrincipal(context.Background(), p)))

	return rec
}

func TestHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hired := time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC)

	repo := employee.NewMockRepository(ctrl)
	repo.EXPECT().ListEmployees(gomock.Any(), employee.ListFilter{Active: new(true)}).
		Return([]*employee.Employee{
			{ID: uuid.New(), FirstName: "Aziz", LastName: "Karimov", HiredDate: &hired, IsActive: true},
			{ID: uuid.New(), FirstName: "Dilnoza", LastName: "Saidova", IsActive: true},
		}, nil)

	rec := serve(repo, viewer, http.MethodGet, "/employees?active=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Employees []map[string]any `json:"employees"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Employees, 2)
	assert.Equal(t, "Karimov Aziz", resp.Employees[0]["full_name"])
	assert.Equal(t, "2023-05-02", resp.Employees[0]["hired_date"])
	assert.Nil(t, resp.Employees[1]["hired_date"])
}

func TestHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := employee.NewMockRepository(ctrl)
	repo.EXPECT().CreateEmployee(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *employee.Employee) error {
			assert.Equal(t, "Aziz", e.FirstName)
			require.NotNil(t, e.HiredDate)
			assert.Equal(t, 2024, e.HiredDate.Year())
			e.ID = uuid.New()
			return nil
		})

	rec := serve(repo, viewer, http.MethodPost, "/employee/create",
		`{"first_name":"Aziz","last_name":"Karimov","hired_date":"2024-03-01"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_Create_Invalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := serve(employee.NewMockRepository(ctrl), staff, http.MethodPost, "/employee/create",
		`{"last_name":"Karimov","email":"not-an-email"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "first_name")
}

func TestHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		principal  auth.Principal
		repoErr    error
		callRepo   bool
		wantStatus int
	}{
		{name: "Staff", principal: staff, callRepo: true, wantStatus: http.StatusOK},
		{name: "Missing", principal: staff, callRepo: true, repoErr: employee.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "NonStaff", principal: viewer, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			id := uuid.New()
			repo := employee.NewMockRepository(ctrl)
			if tt.callRepo {
				repo.EXPECT().DeleteEmployee(gomock.Any(), id).Return(tt.repoErr)
			}

			rec := serve(repo, tt.principal, http.MethodPost, "/employee/"+id.String()+"/delete", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

package employee

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/employee"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
)

type Handler struct {
	svc *employee.Service
}

func NewHandler(svc *employee.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/employees", h.list)
	r.Post("/employee/create", h.create)
	r.Get("/employee/{id}", h.get)
	r.Post("/employee/{id}", h.update)
	r.Post("/employee/{id}/update", h.update)
	r.Post("/employee/{id}/delete", h.delete)
}

type employeeResponse struct {
	ID         uuid.UUID    `json:"id"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	MiddleName string       `json:"middle_name"`
	FullName   string       `json:"full_name"`
	Position   string       `json:"position"`
	Phone      string       `json:"phone"`
	Email      string       `json:"email"`
	HiredDate  *render.Date `json:"hired_date"`
	IsActive   bool         `json:"is_active"`
	CreatedAt  time.Time    `json:"created_at"`
}

func toResponse(e *employee.Employee) employeeResponse {
	resp := employeeResponse{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		MiddleName: e.MiddleName,
		FullName:   e.FullName(),
		Position:   e.Position,
		Phone:      e.Phone,
		Email:      e.Email,
		IsActive:   e.IsActive,
		CreatedAt:  e.CreatedAt,
	}

	if e.HiredDate != nil {
		resp.HiredDate = &render.Date{Time: *e.HiredDate}
	}

	return resp
}

type createRequest struct {
	FirstName  string       `json:"first_name" validate:"required,max=100"`
	LastName   string       `json:"last_name" validate:"max=100"`
	MiddleName string       `json:"middle_name" validate:"max=100"`
	Position   string       `json:"position" validate:"max=100"`
	Phone      string       `json:"phone" validate:"max=20"`
	Email      string       `json:"email" validate:"omitempty,email"`
	HiredDate  *render.Date `json:"hired_date"`
	IsActive   *bool        `json:"is_active"`
}

type updateRequest struct {
	FirstName  *string      `json:"first_name" validate:"omitempty,max=100"`
	LastName   *string      `json:"last_name" validate:"omitempty,max=100"`
	MiddleName *string      `json:"middle_name" validate:"omitempty,max=100"`
	Position   *string      `json:"position" validate:"omitempty,max=100"`
	Phone      *string      `json:"phone" validate:"omitempty,max=20"`
	Email      *string      `json:"email" validate:"omitempty,email"`
	HiredDate  *render.Date `json:"hired_date"`
	IsActive   *bool        `json:"is_active"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	active, err := render.QueryBool(r, "active")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	employees, err := h.svc.List(r.Context(), employee.ListFilter{Active: active})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]employeeResponse, len(employees))
	for i, e := range employees {
		resp[i] = toResponse(e)
	}

	render.JSON(w, http.StatusOK, map[string]any{"employees": resp})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(e))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	e, err := h.svc.Create(r.Context(), auth.PrincipalFrom(r.Context()), employee.CreateParams{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Position:   req.Position,
		Phone:      req.Phone,
		Email:      req.Email,
		HiredDate:  req.HiredDate.Ptr(),
		IsActive:   req.IsActive,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"id": e.ID})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var req updateRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	e, err := h.svc.Update(r.Context(), auth.PrincipalFrom(r.Context()), id, employee.UpdateParams{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Position:   req.Position,
		Phone:      req.Phone,
		Email:      req.Email,
		HiredDate:  req.HiredDate.Ptr(),
		IsActive:   req.IsActive,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"id": e.ID})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), auth.PrincipalFrom(r.Context()), id); err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, nil)
}

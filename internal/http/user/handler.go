package user

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/user"
)

type Handler struct {
	svc *user.Service
}

func NewHandler(svc *user.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/users", h.list)
	r.Post("/user/create", h.create)
	r.Get("/user/{id}", h.get)
	r.Post("/user/{id}", h.update)
	r.Post("/user/{id}/update", h.update)
	r.Post("/user/{id}/delete", h.delete)
}

// Response is the public view of an account; the password hash never leaves
// the service.
type Response struct {
	ID         uuid.UUID  `json:"id"`
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	IsActive   bool       `json:"is_active"`
	IsStaff    bool       `json:"is_staff"`
	DateJoined time.Time  `json:"date_joined"`
	LastLogin  *time.Time `json:"last_login"`
}

func NewResponse(u *user.User) Response {
	return Response{
		ID:         u.ID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		IsActive:   u.IsActive,
		IsStaff:    u.IsStaff,
		DateJoined: u.DateJoined,
		LastLogin:  u.LastLogin,
	}
}

type createRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Email     string `json:"email" validate:"omitempty,email"`
	IsStaff   bool   `json:"is_staff"`
	IsActive  *bool  `json:"is_active"`
}

type updateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Email     *string `json:"email" validate:"omitempty,email"`
	IsStaff   *bool   `json:"is_staff"`
	IsActive  *bool   `json:"is_active"`
	Password  *string `json:"password"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]Response, len(users))
	for i, u := range users {
		resp[i] = NewResponse(u)
	}

	render.JSON(w, http.StatusOK, map[string]any{"users": resp})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	u, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, NewResponse(u))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if err := p.RequireStaff(); err != nil {
		render.Error(w, r, err)
		return
	}

	var req createRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	u, err := h.svc.Create(r.Context(), p, user.CreateParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		IsStaff:   req.IsStaff,
		IsActive:  req.IsActive,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"id": u.ID})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if err := p.RequireStaff(); err != nil {
		render.Error(w, r, err)
		return
	}

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

	u, err := h.svc.Update(r.Context(), p, id, user.UpdateParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		IsStaff:   req.IsStaff,
		IsActive:  req.IsActive,
		Password:  req.Password,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"id": u.ID})
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

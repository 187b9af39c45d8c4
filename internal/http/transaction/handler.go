package transaction

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/transactions", h.list)
	r.Get("/stats", h.stats)
	r.Post("/transaction/create", h.create)
	r.Get("/transaction/{id}", h.get)
	r.Post("/transaction/{id}", h.update)
	r.Post("/transaction/{id}/update", h.update)
	r.Post("/transaction/{id}/delete", h.delete)

	r.Get("/methods", h.listMethods)
	r.Post("/method/create", h.createMethod)
	r.Post("/method/{id}/delete", h.deleteMethod)
}

type createRequest struct {
	Type        string       `json:"type" validate:"required,oneof=income expense"`
	Amount      render.Int64 `json:"amount" validate:"gte=0"`
	Description string       `json:"description"`
	Date        render.Date  `json:"date" validate:"required"`
	Method      uuid.UUID    `json:"method" validate:"required"`
	Currency    string       `json:"currency"`
}

type updateRequest struct {
	Type        *string       `json:"type" validate:"omitempty,oneof=income expense"`
	Amount      *render.Int64 `json:"amount" validate:"omitempty,gte=0"`
	Description *string       `json:"description"`
	Date        *render.Date  `json:"date"`
	Method      *uuid.UUID    `json:"method"`
	Currency    *string       `json:"currency"`
}

func (req updateRequest) params() (transaction.UpdateParams, error) {
	var params transaction.UpdateParams

	if req.Type != nil {
		params.Type = new(transaction.Type(*req.Type))
	}

	if req.Currency != nil {
		c, err := transaction.ParseCurrency(*req.Currency)
		if err != nil {
			return params, err
		}

		params.Currency = &c
	}

	if req.Amount != nil {
		params.Amount = new(int64(*req.Amount))
	}

	params.Description = req.Description
	params.Date = req.Date.Ptr()
	params.MethodID = req.Method

	return params, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, map[string]any{"transactions": toResponseList(txs)})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	stats, err := h.svc.Stats(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, statsResponse(stats))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	// Staff check runs before decoding.
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

	currency, err := transaction.ParseCurrency(req.Currency)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx, err := h.svc.Create(r.Context(), p, transaction.CreateParams{
		Type:        transaction.Type(req.Type),
		Currency:    currency,
		Amount:      int64(req.Amount),
		Description: req.Description,
		Date:        req.Date.Time,
		MethodID:    req.Method,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"id": tx.ID})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(tx))
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

	params, err := req.params()
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx, err := h.svc.Update(r.Context(), p, id, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"id": tx.ID})
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

type createMethodRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) listMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.svc.ListMethods(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]methodResponse, len(methods))
	for i, m := range methods {
		resp[i] = methodResponse{ID: m.ID, Name: m.Name}
	}

	render.JSON(w, http.StatusOK, map[string]any{"methods": resp})
}

func (h *Handler) createMethod(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if err := p.RequireStaff(); err != nil {
		render.Error(w, r, err)
		return
	}

	var req createMethodRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	m, err := h.svc.CreateMethod(r.Context(), p, req.Name)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"id": m.ID})
}

func (h *Handler) deleteMethod(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.svc.DeleteMethod(r.Context(), auth.PrincipalFrom(r.Context()), id); err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, nil)
}

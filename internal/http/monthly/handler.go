package monthly

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/monthly"
)

type Handler struct {
	svc *monthly.Service
}

func NewHandler(svc *monthly.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/monthly", func(r chi.Router) {
		r.Get("/entries", h.listEntries)
		r.Post("/entry/create", h.createEntry)
		r.Post("/entry/current", h.currentEntry)
		r.Get("/entry/{id}", h.getEntry)

		r.Post("/product/add", h.addProduct)
		r.Post("/product/{id}/delete", h.deleteProduct)

		r.Post("/payment/add", h.addPayment)
		r.Post("/payment/{id}/delete", h.deletePayment)
	})
}

type createEntryRequest struct {
	EmployeeID uuid.UUID `json:"employee_id" validate:"required"`
	Month      string    `json:"month" validate:"required"`
}

type currentEntryRequest struct {
	EmployeeID uuid.UUID `json:"employee_id" validate:"required"`
}

type addProductRequest struct {
	EntryID      uuid.UUID        `json:"entry_id" validate:"required"`
	Name         string           `json:"product_name" validate:"required,max=200"`
	Quantity     render.Int64     `json:"quantity" validate:"gt=0"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit" validate:"required"`
}

type addPaymentRequest struct {
	EntryID     uuid.UUID        `json:"entry_id" validate:"required"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Description string           `json:"description" validate:"max=255"`
	PaymentDate render.Date      `json:"payment_date" validate:"required"`
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	employeeID, err := render.QueryUUID(r, "employee")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	filter := monthly.ListFilter{EmployeeID: employeeID}

	if s := r.URL.Query().Get("month"); s != "" {
		month, err := monthly.ParseMonth(s)
		if err != nil {
			render.Error(w, r, err)
			return
		}

		filter.Month = &month
	}

	entries, err := h.svc.ListEntries(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toEntryResponse(e)
	}

	render.JSON(w, http.StatusOK, map[string]any{"entries": resp})
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	month, err := monthly.ParseMonth(req.Month)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	e, err := h.svc.CreateEntry(r.Context(), auth.PrincipalFrom(r.Context()), req.EmployeeID, month)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"id": e.ID})
}

func (h *Handler) currentEntry(w http.ResponseWriter, r *http.Request) {
	var req currentEntryRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	e, err := h.svc.CurrentEntry(r.Context(), auth.PrincipalFrom(r.Context()), req.EmployeeID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"entry": toEntryResponse(e)})
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	d, err := h.svc.GetEntry(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toDetailResponse(d))
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	product, entry, err := h.svc.AddProduct(r.Context(), auth.PrincipalFrom(r.Context()), monthly.AddProductParams{
		EntryID:      req.EntryID,
		Name:         req.Name,
		Quantity:     int64(req.Quantity),
		PricePerUnit: *req.PricePerUnit,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{
		"id":          product.ID,
		"new_balance": entry.Balance,
	})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	entry, err := h.svc.DeleteProduct(r.Context(), auth.PrincipalFrom(r.Context()), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"new_balance": entry.Balance})
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	var req addPaymentRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	payment, entry, err := h.svc.AddPayment(r.Context(), auth.PrincipalFrom(r.Context()), monthly.AddPaymentParams{
		EntryID:     req.EntryID,
		Amount:      *req.Amount,
		Description: req.Description,
		PaymentDate: req.PaymentDate.Time,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{
		"id":          payment.ID,
		"new_balance": entry.Balance,
	})
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	entry, err := h.svc.DeletePayment(r.Context(), auth.PrincipalFrom(r.Context()), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"new_balance": entry.Balance})
}

package warehouse

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/warehouse"
)

type Handler struct {
	svc *warehouse.Service
}

func NewHandler(svc *warehouse.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/warehouse", func(r chi.Router) {
		r.Get("/items", h.listItems)
		r.Post("/item/create", h.createItem)
		r.Get("/item/{id}", h.getItem)
		r.Post("/item/{id}/update", h.updateItem)
		r.Post("/item/{id}/delete", h.deleteItem)

		r.Post("/entry/add", h.addMovement)
		r.Post("/entry/{id}/delete", h.deleteMovement)
	})
}

type itemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Quantity    int64           `json:"quantity"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toItemResponse(item *warehouse.Item) itemResponse {
	return itemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		QuantityKg:  item.QuantityKg,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

type movementResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Quantity    int64           `json:"quantity"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
	Date        render.Date     `json:"date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

type itemDetailResponse struct {
	itemResponse
	Movements []movementResponse `json:"entries"`
}

type createItemRequest struct {
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description"`
	Quantity    render.Int64     `json:"quantity" validate:"gte=0"`
	QuantityKg  *decimal.Decimal `json:"quantity_kg"`
}

type updateItemRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description"`
	Quantity    *render.Int64    `json:"quantity" validate:"omitempty,gte=0"`
	QuantityKg  *decimal.Decimal `json:"quantity_kg"`
}

func (req updateItemRequest) params() warehouse.UpdateItemParams {
	params := warehouse.UpdateItemParams{
		Name:        req.Name,
		Description: req.Description,
		QuantityKg:  req.QuantityKg,
	}

	if req.Quantity != nil {
		params.Quantity = new(int64(*req.Quantity))
	}

	return params
}

type addMovementRequest struct {
	ItemID      uuid.UUID        `json:"item_id" validate:"required"`
	Type        string           `json:"type" validate:"required,oneof=in out"`
	Quantity    render.Int64     `json:"quantity" validate:"gte=0"`
	QuantityKg  *decimal.Decimal `json:"quantity_kg"`
	Date        render.Date      `json:"date"`
	Description string           `json:"description" validate:"max=255"`
}

func kgOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}

	return *d
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListItems(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]itemResponse, len(items))
	for i, item := range items {
		resp[i] = toItemResponse(item)
	}

	render.JSON(w, http.StatusOK, map[string]any{"items": resp})
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	d, err := h.svc.GetItem(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := itemDetailResponse{
		itemResponse: toItemResponse(&d.Item),
		Movements:    make([]movementResponse, len(d.Movements)),
	}

	for i, m := range d.Movements {
		resp.Movements[i] = movementResponse{
			ID:          m.ID,
			Type:        string(m.Type),
			Quantity:    m.Quantity,
			QuantityKg:  m.QuantityKg,
			Date:        render.Date{Time: m.Date},
			Description: m.Description,
			CreatedAt:   m.CreatedAt,
		}
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if err := p.RequireStaff(); err != nil {
		render.Error(w, r, err)
		return
	}

	var req createItemRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	item, err := h.svc.CreateItem(r.Context(), p, warehouse.CreateItemParams{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    int64(req.Quantity),
		QuantityKg:  kgOrZero(req.QuantityKg),
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"id": item.ID})
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
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

	var req updateItemRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	item, err := h.svc.UpdateItem(r.Context(), p, id, req.params())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{"id": item.ID})
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.svc.DeleteItem(r.Context(), auth.PrincipalFrom(r.Context()), id); err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, nil)
}

func (h *Handler) addMovement(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if err := p.RequireStaff(); err != nil {
		render.Error(w, r, err)
		return
	}

	var req addMovementRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	m, item, err := h.svc.AddMovement(r.Context(), p, warehouse.AddMovementParams{
		ItemID:      req.ItemID,
		Type:        warehouse.MovementType(req.Type),
		Quantity:    int64(req.Quantity),
		QuantityKg:  kgOrZero(req.QuantityKg),
		Date:        req.Date.Time,
		Description: req.Description,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{
		"id":              m.ID,
		"new_quantity":    item.Quantity,
		"new_quantity_kg": item.QuantityKg,
	})
}

func (h *Handler) deleteMovement(w http.ResponseWriter, r *http.Request) {
	id, err := render.PathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	item, err := h.svc.DeleteMovement(r.Context(), auth.PrincipalFrom(r.Context()), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusOK, map[string]any{
		"new_quantity":    item.Quantity,
		"new_quantity_kg": item.QuantityKg,
	})
}

package matching

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/matching/suggest", h.suggest)
	r.Get("/matching", h.list)
	r.Post("/matching", h.learn)
}

type suggestResponse struct {
	Description          string     `json:"description"`
	PreferredDescription string     `json:"preferred_description"`
	MethodID             *uuid.UUID `json:"method_id"`
	Matched              bool       `json:"matched"`
}

type ruleResponse struct {
	ID                   uuid.UUID  `json:"id"`
	RawPattern           string     `json:"raw_pattern"`
	PreferredDescription string     `json:"preferred_description"`
	MethodID             *uuid.UUID `json:"method_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	desc := r.URL.Query().Get("description")
	if desc == "" {
		render.Error(w, r, apperror.Validation("description query parameter is required"))
		return
	}

	suggestion, err := h.svc.Suggest(r.Context(), desc)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := suggestResponse{Description: desc}
	if suggestion != nil {
		resp.PreferredDescription = suggestion.Description
		resp.MethodID = suggestion.MethodID
		resp.Matched = true
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.Rules(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]ruleResponse, len(rules))
	for i, rule := range rules {
		resp[i] = ruleResponse{
			ID:                   rule.ID,
			RawPattern:           rule.Pattern,
			PreferredDescription: rule.Description,
			MethodID:             rule.MethodID,
		}
	}

	render.JSON(w, http.StatusOK, map[string]any{"rules": resp})
}

type learnRequest struct {
	RawPattern           string     `json:"raw_pattern" validate:"required"`
	PreferredDescription string     `json:"preferred_description" validate:"required"`
	MethodID             *uuid.UUID `json:"method_id"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if err := p.RequireStaff(); err != nil {
		render.Error(w, r, err)
		return
	}

	var req learnRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	rule, err := h.svc.Learn(r.Context(), p, matching.LearnParams{
		Pattern:     req.RawPattern,
		Description: req.PreferredDescription,
		MethodID:    req.MethodID,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.Success(w, http.StatusCreated, map[string]any{"id": rule.ID})
}

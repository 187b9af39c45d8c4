package export

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	httptransaction "github.com/MrJamesThe3rd/backoffice/internal/http/transaction"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/transactions/export", h.download)
	r.Get("/transactions/export/summary", h.summary)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filter, err := httptransaction.ParseFilter(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	// Buffered so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.svc.WriteXLSX(r.Context(), &buf, filter); err != nil {
		render.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("transactions_%s.xlsx", h.now().Format("20060102_150405"))

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)

	_, _ = buf.WriteTo(w)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := httptransaction.ParseFilter(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	text, err := h.svc.Text(r.Context(), filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

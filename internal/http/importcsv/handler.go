package importcsv

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/apperror"
	"github.com/MrJamesThe3rd/backoffice/internal/auth"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/matching"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
	matchSvc  *matching.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service, matchSvc *matching.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
		matchSvc:  matchSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/transactions/import", h.importCSV)
	r.Post("/transactions/import/confirm", h.confirmImport)
}

type transactionResponse struct {
	ID          uuid.UUID            `json:"id"`
	Type        transaction.Type     `json:"type"`
	Currency    transaction.Currency `json:"currency"`
	Amount      int64                `json:"amount"`
	Description string               `json:"description"`
	Date        render.Date          `json:"date"`
	MethodID    uuid.UUID            `json:"method_id"`
	CreatedAt   time.Time            `json:"created_at"`
}

type importSuccessResponse struct {
	Success      bool                  `json:"success"`
	Imported     int                   `json:"imported"`
	Transactions []transactionResponse `json:"transactions"`
}

type createParamsDTO struct {
	Type        transaction.Type     `json:"type" validate:"required,oneof=income expense"`
	Currency    transaction.Currency `json:"currency" validate:"omitempty,oneof=uzs usd afn"`
	Amount      render.Int64         `json:"amount" validate:"gte=0"`
	Description string               `json:"description"`
	Date        render.Date          `json:"date" validate:"required"`
	MethodID    uuid.UUID            `json:"method_id" validate:"required"`
}

type conflictDTO struct {
	Incoming createParamsDTO     `json:"incoming"`
	Existing transactionResponse `json:"existing"`
}

type importConflictResponse struct {
	Success   bool              `json:"success"`
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params" validate:"required,dive"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if err := p.RequireStaff(); err != nil {
		render.Error(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		render.Error(w, r, apperror.Validation("failed to parse form: %v", err))
		return
	}

	methodID, err := uuid.Parse(r.FormValue("method"))
	if err != nil {
		render.Error(w, r, apperror.Validation("method field is required"))
		return
	}

	currency, err := transaction.ParseCurrency(r.FormValue("currency"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.Error(w, r, apperror.Validation("file field is required"))
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file, importer.Defaults{
		Currency: currency,
		MethodID: methodID,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.matchSvc.Apply(r.Context(), params); err != nil {
		render.Error(w, r, err)
		return
	}

	result, err := h.txSvc.ImportBatch(r.Context(), p, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, row := range result.New {
			resp.New = append(resp.New, toParamsDTO(row))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toTxResponse(c.Existing),
			})
		}

		render.JSON(w, http.StatusConflict, resp)

		return
	}

	render.JSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFrom(r.Context())
	if err := p.RequireStaff(); err != nil {
		render.Error(w, r, err)
		return
	}

	var req confirmRequest
	if err := render.Decode(r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	params := make([]transaction.CreateParams, 0, len(req.Params))
	for _, row := range req.Params {
		params = append(params, transaction.CreateParams{
			Type:        row.Type,
			Currency:    row.Currency,
			Amount:      int64(row.Amount),
			Description: row.Description,
			Date:        row.Date.Time,
			MethodID:    row.MethodID,
		})
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), p, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toSuccessResponse(txs))
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	responses := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		responses = append(responses, toTxResponse(tx))
	}

	return importSuccessResponse{
		Success:      true,
		Imported:     len(txs),
		Transactions: responses,
	}
}

func toTxResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        tx.Type,
		Currency:    tx.Currency,
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        render.Date{Time: tx.Date},
		MethodID:    tx.MethodID,
		CreatedAt:   tx.CreatedAt,
	}
}

func toParamsDTO(p transaction.CreateParams) createParamsDTO {
	return createParamsDTO{
		Type:        p.Type,
		Currency:    p.Currency,
		Amount:      render.Int64(p.Amount),
		Description: p.Description,
		Date:        render.Date{Time: p.Date},
		MethodID:    p.MethodID,
	}
}

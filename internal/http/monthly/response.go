package monthly

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/monthly"
)

type entryResponse struct {
	ID           uuid.UUID       `json:"id"`
	EmployeeID   uuid.UUID       `json:"employee_id"`
	EmployeeName string          `json:"employee_name"`
	Month        string          `json:"month"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toEntryResponse(e *monthly.Entry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		EmployeeName: e.EmployeeName,
		Month:        e.Month.Format("2006-01"),
		Balance:      e.Balance,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

type productResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"product_name"`
	Quantity     int64           `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

type paymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	PaymentDate render.Date     `json:"payment_date"`
	CreatedAt   time.Time       `json:"created_at"`
}

type entryDetailResponse struct {
	entryResponse
	Products []productResponse `json:"products"`
	Payments []paymentResponse `json:"payments"`
}

func toDetailResponse(d *monthly.EntryDetail) entryDetailResponse {
	resp := entryDetailResponse{
		entryResponse: toEntryResponse(&d.Entry),
		Products:      make([]productResponse, len(d.Products)),
		Payments:      make([]paymentResponse, len(d.Payments)),
	}

	for i, p := range d.Products {
		resp.Products[i] = productResponse{
			ID:           p.ID,
			Name:         p.Name,
			Quantity:     p.Quantity,
			PricePerUnit: p.PricePerUnit,
			TotalAmount:  p.TotalAmount,
			CreatedAt:    p.CreatedAt,
		}
	}

	for i, p := range d.Payments {
		resp.Payments[i] = paymentResponse{
			ID:          p.ID,
			Amount:      p.Amount,
			Description: p.Description,
			PaymentDate: render.Date{Time: p.PaymentDate},
			CreatedAt:   p.CreatedAt,
		}
	}

	return resp
}

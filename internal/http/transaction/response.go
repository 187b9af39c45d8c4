package transaction

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
	"github.com/MrJamesThe3rd/backoffice/internal/transaction"
)

type transactionResponse struct {
	ID          uuid.UUID            `json:"id"`
	Type        transaction.Type     `json:"type"`
	Currency    transaction.Currency `json:"currency"`
	Amount      int64                `json:"amount"`
	Description string               `json:"description"`
	Date        render.Date          `json:"date"`
	MethodID    uuid.UUID            `json:"method_id"`
	MethodName  string               `json:"method_name"`
	CreatedAt   time.Time            `json:"created_at"`
}

type methodResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Type:        tx.Type,
		Currency:    tx.Currency,
		Amount:      tx.Amount,
		Description: tx.Description,
		Date:        render.Date{Time: tx.Date},
		MethodID:    tx.MethodID,
		MethodName:  tx.MethodName,
		CreatedAt:   tx.CreatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}

// statsResponse flattens per-currency totals into incomes_uzs, balance_usd
// and so on.
func statsResponse(stats transaction.Stats) map[string]int64 {
	resp := make(map[string]int64, 3*len(transaction.Currencies))

	for _, c := range transaction.Currencies {
		t := stats[c]
		resp["incomes_"+string(c)] = t.Incomes
		resp["expenses_"+string(c)] = t.Expenses
		resp["balance_"+string(c)] = t.Balance
	}

	return resp
}

package transaction

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/http/respond"
	"github.com/smartledger/smartledger/internal/transaction"
)

type transactionResponse struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	Amount      json.Number      `json:"amount"`
	Type        transaction.Type `json:"type"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Date        respond.Date     `json:"date"`
	CreatedAt   time.Time        `json:"created_at"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Amount:      respond.Money(tx.Amount),
		Type:        tx.Type,
		Category:    tx.Category,
		Description: tx.Description,
		Date:        respond.Date(tx.Date),
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

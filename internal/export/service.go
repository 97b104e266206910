// Package export writes a user's transactions as CSV.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/importer"
	"github.com/smartledger/smartledger/internal/transaction"
)

type Lister interface {
	List(ctx context.Context, owner uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

// Service handles the export of transactions.
type Service struct {
	transactions Lister
}

func NewService(transactions Lister) *Service {
	return &Service{transactions: transactions}
}

// Export writes owner's transactions matching filter to w, newest first, in
// the column layout the importer reads back. It returns the number of rows
// written.
func (s *Service) Export(ctx context.Context, owner uuid.UUID, filter transaction.ListFilter, w io.Writer) (int, error) {
	txs, err := s.transactions.List(ctx, owner, filter)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	if err := Write(w, txs); err != nil {
		return 0, err
	}

	return len(txs), nil
}

// Write encodes txs in the order given.
func Write(w io.Writer, txs []*transaction.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(importer.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.Format(time.DateOnly),
			string(tx.Type),
			tx.Category,
			tx.Amount.String(),
			tx.Description,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

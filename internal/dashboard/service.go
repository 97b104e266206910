package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=dashboard
type TransactionLister interface {
	List(ctx context.Context, owner uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Service struct {
	txs TransactionLister
	now func() time.Time
}

func NewService(txs TransactionLister, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{txs: txs, now: now}
}

func (s *Service) Summary(ctx context.Context, owner uuid.UUID) (Summary, error) {
	txs, err := s.txs.List(ctx, owner, transaction.ListFilter{})
	if err != nil {
		return Summary{}, fmt.Errorf("loading transactions: %w", err)
	}

	return Summarize(txs, s.now()), nil
}

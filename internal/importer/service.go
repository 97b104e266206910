package importer

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=importer
type BatchCreator interface {
	CreateBatch(ctx context.Context, owner uuid.UUID, params []transaction.CreateParams) ([]*transaction.Transaction, error)
}

type Service struct {
	parser Importer
	txs    BatchCreator
}

func NewService(txs BatchCreator) *Service {
	return &Service{
		parser: NewCSV(),
		txs:    txs,
	}
}

// Import parses r and stores every row for owner in one batch. It returns
// the number of transactions created; on any error none are.
func (s *Service) Import(ctx context.Context, owner uuid.UUID, r io.Reader) (int, error) {
	params, err := s.parser.Parse(r)
	if err != nil {
		return 0, err
	}

	if len(params) == 0 {
		return 0, nil
	}

	created, err := s.txs.CreateBatch(ctx, owner, params)
	if err != nil {
		return 0, err
	}

	return len(created), nil
}

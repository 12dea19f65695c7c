package query

import (
	"context"

	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
)

type AccountReader interface {
	GetByName(ctx context.Context, name string, isTest bool) (*models.AccountView, error)
	ListHistory(ctx context.Context, name string, isTest bool, limit int64) ([]models.HistoryEntry, error)
}

type AccountQueryService struct {
	readRepo AccountReader
}

func NewAccountQueryService(readRepo AccountReader) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo}
}

func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	name, err := utils.NormalizeName(q.Name)
	if err != nil {
		return nil, err
	}
	return s.readRepo.GetByName(ctx, name, q.IsTest)
}

// ListHistory returns the projected movements of an account, newest first.
func (s *AccountQueryService) ListHistory(ctx context.Context, q cqrs.ListHistoryQuery) ([]models.HistoryEntry, error) {
	name, err := utils.NormalizeName(q.Name)
	if err != nil {
		return nil, err
	}
	return s.readRepo.ListHistory(ctx, name, q.IsTest, q.Limit)
}

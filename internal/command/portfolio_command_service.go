package command

import (
	"context"

	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
)

type PortfolioCommandService struct {
	portfolios PortfolioStore
}

func NewPortfolioCommandService(portfolios PortfolioStore) *PortfolioCommandService {
	return &PortfolioCommandService{portfolios: portfolios}
}

// MergePortfolio adds the given coins to the stored portfolio and writes the
// whole list back.
func (s *PortfolioCommandService) MergePortfolio(ctx context.Context, cmd cqrs.MergePortfolioCommand) (*models.Portfolio, error) {
	name, err := utils.NormalizeName(cmd.Name)
	if err != nil {
		return nil, err
	}
	portfolio, err := s.portfolios.Get(ctx, name, cmd.IsTest)
	if err != nil {
		return nil, appError("merge portfolio", err)
	}
	portfolio.Merge(cmd.Coins)
	if _, err := s.portfolios.Put(ctx, portfolio, cmd.IsTest); err != nil {
		return nil, appError("merge portfolio", err)
	}
	return portfolio, nil
}

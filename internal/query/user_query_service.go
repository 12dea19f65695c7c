package query

import (
	"context"

	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
)

type UserReader interface {
	GetByName(ctx context.Context, name string, isTest bool) (*models.User, error)
}

type PortfolioReader interface {
	Get(ctx context.Context, name string, isTest bool) (*models.Portfolio, error)
}

type UserQueryService struct {
	users      UserReader
	portfolios PortfolioReader
}

func NewUserQueryService(users UserReader, portfolios PortfolioReader) *UserQueryService {
	return &UserQueryService{users: users, portfolios: portfolios}
}

// GetUser returns the public view; the password hash never leaves this package.
func (s *UserQueryService) GetUser(ctx context.Context, q cqrs.GetUserQuery) (*models.UserView, error) {
	name, err := utils.NormalizeName(q.Name)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByName(ctx, name, q.IsTest)
	if err != nil {
		return nil, err
	}
	return &models.UserView{Name: user.Name}, nil
}

func (s *UserQueryService) GetPortfolio(ctx context.Context, q cqrs.GetPortfolioQuery) (*models.Portfolio, error) {
	name, err := utils.NormalizeName(q.Name)
	if err != nil {
		return nil, err
	}
	return s.portfolios.Get(ctx, name, q.IsTest)
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
)

const coinsField = "coins"

type PortfolioRepository struct {
	store store.KeyValueStore
	table string
}

func NewPortfolioRepository(kv store.KeyValueStore, table string) *PortfolioRepository {
	return &PortfolioRepository{store: kv, table: table}
}

func (r *PortfolioRepository) Get(ctx context.Context, name string, isTest bool) (*models.Portfolio, error) {
	item, err := r.store.Get(ctx, utils.TableName(r.table, isTest), name)
	if err != nil {
		return nil, err
	}
	portfolio := &models.Portfolio{Name: name, Coins: []models.Coin{}}
	if raw := item[coinsField]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &portfolio.Coins); err != nil {
			return nil, fmt.Errorf("portfolio %s has corrupt coins: %w", name, err)
		}
	}
	return portfolio, nil
}

// Put overwrites the whole portfolio row.
func (r *PortfolioRepository) Put(ctx context.Context, portfolio *models.Portfolio, isTest bool) (store.Outcome, error) {
	coins := portfolio.Coins
	if coins == nil {
		coins = []models.Coin{}
	}
	raw, err := json.Marshal(coins)
	if err != nil {
		return store.OutcomeNotApplied, fmt.Errorf("failed to encode portfolio: %w", err)
	}
	return r.store.Put(ctx, utils.TableName(r.table, isTest), store.Item{
		store.KeyField: portfolio.Name,
		coinsField:     string(raw),
	})
}

func (r *PortfolioRepository) Delete(ctx context.Context, name string, isTest bool) (store.Outcome, error) {
	return r.store.Delete(ctx, utils.TableName(r.table, isTest), name)
}

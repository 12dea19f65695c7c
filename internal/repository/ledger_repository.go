package repository

import (
	"context"
	"fmt"

	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
	"github.com/shopspring/decimal"
)

const balanceField = "balance"

// LedgerRepository reads and writes account balances. It does no
// concurrency control: SetBalance is a blind overwrite, so concurrent
// read-modify-write cycles on the same account end with the last write.
type LedgerRepository struct {
	store store.KeyValueStore
	table string
}

func NewLedgerRepository(kv store.KeyValueStore, table string) *LedgerRepository {
	return &LedgerRepository{store: kv, table: table}
}

// Table returns the table a request in the given mode is routed to.
func (r *LedgerRepository) Table(isTest bool) string {
	return utils.TableName(r.table, isTest)
}

// GetBalance returns store.ErrNotFound when the account does not exist.
func (r *LedgerRepository) GetBalance(ctx context.Context, name string, isTest bool) (*models.Account, error) {
	item, err := r.store.Get(ctx, r.Table(isTest), name)
	if err != nil {
		return nil, err
	}
	balance, err := decimal.NewFromString(item[balanceField])
	if err != nil {
		return nil, fmt.Errorf("account %s has a corrupt balance %q: %w", name, item[balanceField], err)
	}
	return &models.Account{Name: name, Balance: balance}, nil
}

// CreateAccount writes a new row. An existing row with the same name is overwritten.
func (r *LedgerRepository) CreateAccount(ctx context.Context, name string, balance decimal.Decimal, isTest bool) (store.Outcome, error) {
	return r.store.Put(ctx, r.Table(isTest), store.Item{
		store.KeyField: name,
		balanceField:   balance.String(),
	})
}

// SetBalance overwrites the balance field. The outcome is OutcomeNotApplied
// when the row no longer exists.
func (r *LedgerRepository) SetBalance(ctx context.Context, name string, balance decimal.Decimal, isTest bool) (store.Outcome, error) {
	return r.store.UpdateField(ctx, r.Table(isTest), name, balanceField, balance.String())
}

// DeleteAccount mirrors the store's delete semantics; a missing row is not an error.
func (r *LedgerRepository) DeleteAccount(ctx context.Context, name string, isTest bool) (store.Outcome, error) {
	return r.store.Delete(ctx, r.Table(isTest), name)
}

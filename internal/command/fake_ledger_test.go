package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
	"github.com/shopspring/decimal"
)

var errBackend = errors.New("connection reset by peer")

// fakeLedger is an in-memory ledger with per-call fault injection.
type fakeLedger struct {
	balances map[string]decimal.Decimal
	calls    []string

	getErr map[string]error
	// setHook may override the result of the n-th SetBalance call (1-based).
	setHook func(n int, name string) (store.Outcome, bool, error)
	sets    int
}

func newFakeLedger(balances map[string]string) *fakeLedger {
	l := &fakeLedger{balances: map[string]decimal.Decimal{}, getErr: map[string]error{}}
	for name, b := range balances {
		l.balances[name] = decimal.RequireFromString(b)
	}
	return l
}

func (l *fakeLedger) Table(isTest bool) string {
	return utils.TableName("ledger", isTest)
}

func (l *fakeLedger) GetBalance(_ context.Context, name string, isTest bool) (*models.Account, error) {
	l.calls = append(l.calls, fmt.Sprintf("get %s", name))
	if err := l.getErr[name]; err != nil {
		return nil, err
	}
	b, ok := l.balances[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &models.Account{Name: name, Balance: b}, nil
}

func (l *fakeLedger) SetBalance(_ context.Context, name string, balance decimal.Decimal, isTest bool) (store.Outcome, error) {
	l.sets++
	l.calls = append(l.calls, fmt.Sprintf("set %s %s", name, balance.StringFixed(2)))
	if l.setHook != nil {
		if outcome, ok, err := l.setHook(l.sets, name); ok {
			return outcome, err
		}
	}
	if _, ok := l.balances[name]; !ok {
		return store.OutcomeNotApplied, nil
	}
	l.balances[name] = balance
	return store.OutcomeUpdated, nil
}

func (l *fakeLedger) CreateAccount(_ context.Context, name string, balance decimal.Decimal, isTest bool) (store.Outcome, error) {
	l.calls = append(l.calls, fmt.Sprintf("create %s", name))
	l.balances[name] = balance
	return store.OutcomeInserted, nil
}

func (l *fakeLedger) DeleteAccount(_ context.Context, name string, isTest bool) (store.Outcome, error) {
	l.calls = append(l.calls, fmt.Sprintf("delete %s", name))
	delete(l.balances, name)
	return store.OutcomeDeleted, nil
}

func (l *fakeLedger) balance(name string) string {
	return l.balances[name].StringFixed(2)
}

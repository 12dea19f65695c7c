package command

import (
	"context"
	"errors"
	"testing"

	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func intent(sender, receiver, amount string) models.TransactionIntent {
	return models.TransactionIntent{Sender: sender, Receiver: receiver, Amount: decimal.RequireFromString(amount)}
}

func TestTransfer_MovesFunds(t *testing.T) {
	ledger := newFakeLedger(map[string]string{"david": "100.00", "kovax": "50.00"})
	c := NewTransactionCoordinator(ledger, zap.NewNop())

	result, err := c.Transfer(context.Background(), intent("david", "kovax", "30.00"), false)
	require.NoError(t, err)
	assert.Equal(t, "70.00", result.SenderBalance.StringFixed(2))
	assert.Equal(t, "80.00", result.ReceiverBalance.StringFixed(2))
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "70.00", ledger.balance("david"))
	assert.Equal(t, "80.00", ledger.balance("kovax"))
}

func TestTransfer_ReplayMovesFundsAgain(t *testing.T) {
	ledger := newFakeLedger(map[string]string{"david": "100.00", "kovax": "50.00"})
	c := NewTransactionCoordinator(ledger, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := c.Transfer(context.Background(), intent("david", "kovax", "30.00"), false)
		require.NoError(t, err)
	}
	assert.Equal(t, "40.00", ledger.balance("david"))
	assert.Equal(t, "110.00", ledger.balance("kovax"))
}

func TestTransfer_CreditNotAppliedLeavesSenderDebited(t *testing.T) {
	ledger := newFakeLedger(map[string]string{"david": "100.00", "kovax": "50.00"})
	ledger.setHook = func(n int, name string) (store.Outcome, bool, error) {
		if name == "kovax" {
			return store.OutcomeNotApplied, true, nil
		}
		return 0, false, nil
	}
	c := NewTransactionCoordinator(ledger, zap.NewNop())

	_, err := c.Transfer(context.Background(), intent("david", "kovax", "30.00"), false)
	require.ErrorIs(t, err, ErrTransactionFailed)

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, LegCredit, txErr.Leg)
	assert.False(t, txErr.CompensationAttempted)
	assert.Equal(t, "70.00", ledger.balance("david"))
	assert.Equal(t, "50.00", ledger.balance("kovax"))
	assert.Equal(t, 2, ledger.sets, "no compensating write is issued")
}

func TestTransfer_DebitNotApplied(t *testing.T) {
	ledger := newFakeLedger(map[string]string{"david": "100.00", "kovax": "50.00"})
	ledger.setHook = func(n int, name string) (store.Outcome, bool, error) {
		return store.OutcomeNotApplied, true, nil
	}
	c := NewTransactionCoordinator(ledger, zap.NewNop())

	_, err := c.Transfer(context.Background(), intent("david", "kovax", "30.00"), false)
	require.ErrorIs(t, err, ErrTransactionFailed)
	assert.Equal(t, []string{"get david", "set david 70.00"}, ledger.calls)
}

func TestTransfer_StoreErrorRestoresSender(t *testing.T) {
	tests := []struct {
		name    string
		arrange func(l *fakeLedger)
		leg     Leg
		cause   error
	}{
		{
			name: "credit write error",
			arrange: func(l *fakeLedger) {
				l.setHook = func(n int, name string) (store.Outcome, bool, error) {
					if n == 2 {
						return store.OutcomeNotApplied, true, errBackend
					}
					return 0, false, nil
				}
			},
			leg:   LegCredit,
			cause: errBackend,
		},
		{
			name:    "receiver missing",
			arrange: func(l *fakeLedger) { delete(l.balances, "kovax") },
			leg:     LegCredit,
			cause:   store.ErrNotFound,
		},
		{
			name: "debit write error",
			arrange: func(l *fakeLedger) {
				l.setHook = func(n int, name string) (store.Outcome, bool, error) {
					if n == 1 {
						return store.OutcomeNotApplied, true, errBackend
					}
					return 0, false, nil
				}
			},
			leg:   LegDebit,
			cause: errBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger(map[string]string{"david": "100.00", "kovax": "50.00"})
			tt.arrange(ledger)
			c := NewTransactionCoordinator(ledger, zap.NewNop())

			_, err := c.Transfer(context.Background(), intent("david", "kovax", "30.00"), false)
			require.ErrorIs(t, err, tt.cause)
			assert.NotErrorIs(t, err, ErrRollbackFailed)

			var txErr *TransactionError
			require.ErrorAs(t, err, &txErr)
			assert.Equal(t, tt.leg, txErr.Leg)
			assert.True(t, txErr.CompensationAttempted)
			assert.True(t, txErr.Compensated)
			assert.Equal(t, "100.00", ledger.balance("david"))
			assert.Contains(t, ledger.calls, "set david 100.00")
		})
	}
}

func TestTransfer_RollbackFailure(t *testing.T) {
	ledger := newFakeLedger(map[string]string{"david": "100.00", "kovax": "50.00"})
	ledger.setHook = func(n int, name string) (store.Outcome, bool, error) {
		if n >= 2 {
			return store.OutcomeNotApplied, true, errBackend
		}
		return 0, false, nil
	}
	c := NewTransactionCoordinator(ledger, zap.NewNop())

	_, err := c.Transfer(context.Background(), intent("david", "kovax", "30.00"), false)
	require.ErrorIs(t, err, ErrRollbackFailed)
	assert.Contains(t, err.Error(), "rollback failed")

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	assert.False(t, txErr.Compensated)
	assert.Equal(t, 3, ledger.sets, "exactly one compensating write")
	assert.Equal(t, "70.00", ledger.balance("david"))
}

func TestTransfer_SenderReadError(t *testing.T) {
	ledger := newFakeLedger(map[string]string{"david": "100.00", "kovax": "50.00"})
	ledger.getErr["david"] = errBackend
	c := NewTransactionCoordinator(ledger, zap.NewNop())

	_, err := c.Transfer(context.Background(), intent("david", "kovax", "30.00"), false)
	require.ErrorIs(t, err, errBackend)
	assert.Zero(t, ledger.sets)
}

func TestTransfer_RejectsBadIntent(t *testing.T) {
	tests := []struct {
		name     string
		intent   models.TransactionIntent
		expected error
	}{
		{name: "zero amount", intent: intent("david", "kovax", "0"), expected: ErrInvalidAmount},
		{name: "negative amount", intent: intent("david", "kovax", "-5.00"), expected: ErrInvalidAmount},
		{name: "self transfer", intent: intent("david", "david", "5.00"), expected: ErrSelfTransfer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newFakeLedger(map[string]string{"david": "100.00", "kovax": "50.00"})
			c := NewTransactionCoordinator(ledger, zap.NewNop())

			_, err := c.Transfer(context.Background(), tt.intent, false)
			assert.True(t, errors.Is(err, tt.expected))
			assert.Empty(t, ledger.calls)
		})
	}
}

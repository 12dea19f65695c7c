package command

import (
	"context"

	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/metrics"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceStore is the part of the ledger a transfer touches.
type BalanceStore interface {
	GetBalance(ctx context.Context, name string, isTest bool) (*models.Account, error)
	SetBalance(ctx context.Context, name string, balance decimal.Decimal, isTest bool) (store.Outcome, error)
}

type TransferResult struct {
	ID              string          `json:"id"`
	Sender          string          `json:"sender"`
	Receiver        string          `json:"receiver"`
	Amount          decimal.Decimal `json:"amount"`
	SenderBalance   decimal.Decimal `json:"senderBalance"`
	ReceiverBalance decimal.Decimal `json:"receiverBalance"`
}

// TransactionCoordinator moves money between two accounts with one write per
// leg and at most one compensating write. It holds no locks and keeps no
// idempotency record, so a replayed intent moves funds again.
type TransactionCoordinator struct {
	ledger BalanceStore
	logger *zap.Logger
}

func NewTransactionCoordinator(ledger BalanceStore, logger *zap.Logger) *TransactionCoordinator {
	return &TransactionCoordinator{ledger: ledger, logger: logger}
}

// Transfer debits the sender and then credits the receiver.
//
// A credit write that reports OutcomeNotApplied fails the transfer while
// the sender stays debited. A store error after the debit was attempted
// restores the sender's original balance instead.
func (c *TransactionCoordinator) Transfer(ctx context.Context, intent models.TransactionIntent, isTest bool) (*TransferResult, error) {
	if !intent.Amount.IsPositive() {
		metrics.RecordTransfer("rejected")
		return nil, ErrInvalidAmount
	}
	if intent.Sender == intent.Receiver {
		metrics.RecordTransfer("rejected")
		return nil, ErrSelfTransfer
	}

	logger := c.logger.With(
		zap.String("sender", intent.Sender),
		zap.String("receiver", intent.Receiver),
		zap.String("amount", intent.Amount.String()),
		zap.Bool("is_test", isTest),
	)

	sender, err := c.ledger.GetBalance(ctx, intent.Sender, isTest)
	if err != nil {
		return nil, c.fail(logger, &TransactionError{Leg: LegDebit, Err: err})
	}
	senderNew := sender.Balance.Sub(intent.Amount)

	outcome, err := c.ledger.SetBalance(ctx, intent.Sender, senderNew, isTest)
	if err != nil {
		return nil, c.fail(logger, c.compensate(ctx, logger, LegDebit, sender, isTest, err))
	}
	if outcome != store.OutcomeUpdated {
		return nil, c.fail(logger, &TransactionError{Leg: LegDebit, Err: ErrTransactionFailed})
	}

	receiver, err := c.ledger.GetBalance(ctx, intent.Receiver, isTest)
	if err != nil {
		return nil, c.fail(logger, c.compensate(ctx, logger, LegCredit, sender, isTest, err))
	}
	receiverNew := receiver.Balance.Add(intent.Amount)

	outcome, err = c.ledger.SetBalance(ctx, intent.Receiver, receiverNew, isTest)
	if err != nil {
		return nil, c.fail(logger, c.compensate(ctx, logger, LegCredit, sender, isTest, err))
	}
	if outcome != store.OutcomeUpdated {
		// The debit is not reverted here.
		logger.Warn("credit not applied, sender remains debited",
			zap.String("sender_balance", senderNew.String()))
		return nil, c.fail(logger, &TransactionError{Leg: LegCredit, Err: ErrTransactionFailed})
	}

	metrics.RecordTransfer("completed")
	result := &TransferResult{
		ID:              uuid.NewString(),
		Sender:          intent.Sender,
		Receiver:        intent.Receiver,
		Amount:          intent.Amount,
		SenderBalance:   senderNew,
		ReceiverBalance: receiverNew,
	}
	logger.Info("transfer completed", zap.String("transaction_id", result.ID))
	return result, nil
}

// compensate writes the sender's original balance back once.
func (c *TransactionCoordinator) compensate(ctx context.Context, logger *zap.Logger, leg Leg, sender *models.Account, isTest bool, cause error) *TransactionError {
	txErr := &TransactionError{Leg: leg, CompensationAttempted: true, Err: cause}

	// Absolute write of the balance read before the debit, not a re-credit of
	// the amount: a concurrent write to the sender between the two is lost.
	outcome, err := c.ledger.SetBalance(ctx, sender.Name, sender.Balance, isTest)
	if err == nil && outcome != store.OutcomeUpdated {
		err = ErrTransactionFailed
	}
	if err != nil {
		metrics.RecordCompensation("failed")
		txErr.RollbackErr = err
		logger.Error("rollback failed",
			zap.String("leg", string(leg)),
			zap.String("original_balance", sender.Balance.String()),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return txErr
	}

	metrics.RecordCompensation("succeeded")
	txErr.Compensated = true
	logger.Info("sender balance restored", zap.String("leg", string(leg)))
	return txErr
}

func (c *TransactionCoordinator) fail(logger *zap.Logger, err *TransactionError) error {
	metrics.RecordTransfer("failed")
	logger.Warn("transfer failed",
		zap.String("leg", string(err.Leg)),
		zap.Bool("compensated", err.Compensated),
		zap.Error(err))
	return err
}

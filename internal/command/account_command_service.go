package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/gojenga/gojenga/internal/store"
	"github.com/gojenga/gojenga/shared/cqrs"
	"github.com/gojenga/gojenga/shared/events"
	"github.com/gojenga/gojenga/shared/metrics"
	"github.com/gojenga/gojenga/shared/models"
	"github.com/gojenga/gojenga/shared/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger is the account store the write side mutates.
type Ledger interface {
	BalanceStore
	Table(isTest bool) string
	CreateAccount(ctx context.Context, name string, balance decimal.Decimal, isTest bool) (store.Outcome, error)
	DeleteAccount(ctx context.Context, name string, isTest bool) (store.Outcome, error)
}

type Transferer interface {
	Transfer(ctx context.Context, intent models.TransactionIntent, isTest bool) (*TransferResult, error)
}

// AccountProjection is the read model kept in step with ledger writes.
type AccountProjection interface {
	InvalidateAccountView(ctx context.Context, name string, isTest bool)
	AppendHistory(ctx context.Context, table, name string, entry models.HistoryEntry) error
	DeleteHistory(ctx context.Context, table, name string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// AccountCommandService owns every balance mutation. Names are normalised
// before the ledger is touched.
type AccountCommandService struct {
	ledger      Ledger
	coordinator Transferer
	projection  AccountProjection
	publisher   EventPublisher
	logger      *zap.Logger
}

func NewAccountCommandService(
	ledger Ledger,
	coordinator Transferer,
	projection AccountProjection,
	publisher EventPublisher,
	logger *zap.Logger,
) *AccountCommandService {
	return &AccountCommandService{
		ledger:      ledger,
		coordinator: coordinator,
		projection:  projection,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (store.Outcome, error) {
	name, err := utils.NormalizeName(cmd.Name)
	if err != nil {
		return store.OutcomeNotApplied, err
	}
	outcome, err := s.ledger.CreateAccount(ctx, name, cmd.Balance, cmd.IsTest)
	if err != nil {
		return outcome, appError("create account", err)
	}
	s.projection.InvalidateAccountView(ctx, name, cmd.IsTest)
	s.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{
		Table:   s.ledger.Table(cmd.IsTest),
		Account: name,
		Balance: cmd.Balance.StringFixed(2),
	})
	return outcome, nil
}

// UpdateAccount overwrites the balance.
func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (store.Outcome, error) {
	name, err := utils.NormalizeName(cmd.Name)
	if err != nil {
		return store.OutcomeNotApplied, err
	}
	current, err := s.ledger.GetBalance(ctx, name, cmd.IsTest)
	if err != nil {
		return store.OutcomeNotApplied, appError("update account", err)
	}
	if err := s.setBalance(ctx, name, cmd.Balance, cmd.IsTest); err != nil {
		return store.OutcomeNotApplied, appError("update account", err)
	}
	s.balanceUpdated(ctx, "set", name, cmd.Balance.Sub(current.Balance), cmd.Balance, cmd.IsTest)
	return store.OutcomeUpdated, nil
}

// ModifyAccount adds delta to the stored balance. The read and the write are
// not atomic; a concurrent writer may be overwritten.
func (s *AccountCommandService) ModifyAccount(ctx context.Context, cmd cqrs.ModifyAccountCommand) (*models.AccountView, error) {
	name, err := utils.NormalizeName(cmd.Name)
	if err != nil {
		return nil, err
	}
	account, err := s.ledger.GetBalance(ctx, name, cmd.IsTest)
	if err != nil {
		return nil, appError("modify account", err)
	}
	balance := account.Balance.Add(cmd.Delta)
	if err := s.setBalance(ctx, name, balance, cmd.IsTest); err != nil {
		return nil, appError("modify account", err)
	}
	operation := "deposit"
	if cmd.Delta.IsNegative() {
		operation = "withdrawal"
	}
	s.balanceUpdated(ctx, operation, name, cmd.Delta, balance, cmd.IsTest)
	return models.AccountToView(&models.Account{Name: name, Balance: balance}), nil
}

func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) (store.Outcome, error) {
	name, err := utils.NormalizeName(cmd.Name)
	if err != nil {
		return store.OutcomeNotApplied, err
	}
	outcome, err := s.ledger.DeleteAccount(ctx, name, cmd.IsTest)
	if err != nil {
		return outcome, appError("delete account", err)
	}
	s.projection.InvalidateAccountView(ctx, name, cmd.IsTest)
	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{
		Table:   s.ledger.Table(cmd.IsTest),
		Account: name,
	})
	return outcome, nil
}

// Transaction transfers cmd.Amount from sender to receiver.
func (s *AccountCommandService) Transaction(ctx context.Context, cmd cqrs.TransactionCommand) (*TransferResult, error) {
	sender, err := utils.NormalizeName(cmd.Sender)
	if err != nil {
		return nil, err
	}
	receiver, err := utils.NormalizeName(cmd.Receiver)
	if err != nil {
		return nil, err
	}

	table := s.ledger.Table(cmd.IsTest)
	result, err := s.coordinator.Transfer(ctx, models.TransactionIntent{
		Sender:   sender,
		Receiver: receiver,
		Amount:   cmd.Amount,
	}, cmd.IsTest)

	// Either leg may have been written before a failure.
	s.projection.InvalidateAccountView(ctx, sender, cmd.IsTest)
	s.projection.InvalidateAccountView(ctx, receiver, cmd.IsTest)

	if err != nil {
		var txErr *TransactionError
		if errors.As(err, &txErr) {
			s.publish(ctx, events.TransactionFailed, events.TransactionFailedEvent{
				Table:       table,
				Sender:      sender,
				Receiver:    receiver,
				Amount:      cmd.Amount.StringFixed(2),
				Leg:         string(txErr.Leg),
				Compensated: txErr.Compensated,
				Reason:      txErr.Error(),
			})
		}
		return nil, appError("transaction", err)
	}

	s.publish(ctx, events.TransactionCompleted, events.TransactionCompletedEvent{
		Table:           table,
		TransactionID:   result.ID,
		Sender:          sender,
		Receiver:        receiver,
		Amount:          result.Amount.StringFixed(2),
		SenderBalance:   result.SenderBalance.StringFixed(2),
		ReceiverBalance: result.ReceiverBalance.StringFixed(2),
	})
	return result, nil
}

// HandleLedgerEvent projects a ledger event into the per-account history.
func (s *AccountCommandService) HandleLedgerEvent(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.BalanceUpdated:
		var data events.BalanceUpdatedEvent
		if err := events.Decode(event, &data); err != nil {
			return err
		}
		return s.projection.AppendHistory(ctx, data.Table, data.Account, models.HistoryEntry{
			ID:        uuid.NewString(),
			Type:      data.Operation,
			Change:    data.Change,
			Balance:   data.NewBalance,
			CreatedAt: event.Timestamp,
		})

	case events.TransactionCompleted:
		var data events.TransactionCompletedEvent
		if err := events.Decode(event, &data); err != nil {
			return err
		}
		amount, err := decimal.NewFromString(data.Amount)
		if err != nil {
			return fmt.Errorf("invalid transfer amount %q: %w", data.Amount, err)
		}
		if err := s.projection.AppendHistory(ctx, data.Table, data.Sender, models.HistoryEntry{
			ID:           data.TransactionID,
			Type:         "transfer_out",
			Counterparty: data.Receiver,
			Change:       amount.Neg().StringFixed(2),
			Balance:      data.SenderBalance,
			CreatedAt:    event.Timestamp,
		}); err != nil {
			return err
		}
		return s.projection.AppendHistory(ctx, data.Table, data.Receiver, models.HistoryEntry{
			ID:           data.TransactionID,
			Type:         "transfer_in",
			Counterparty: data.Sender,
			Change:       data.Amount,
			Balance:      data.ReceiverBalance,
			CreatedAt:    event.Timestamp,
		})

	case events.TransactionFailed:
		var data events.TransactionFailedEvent
		if err := events.Decode(event, &data); err != nil {
			return err
		}
		return s.projection.AppendHistory(ctx, data.Table, data.Sender, models.HistoryEntry{
			ID:           uuid.NewString(),
			Type:         "transfer_failed",
			Counterparty: data.Receiver,
			Change:       "0.00",
			Detail:       data.Reason,
			CreatedAt:    event.Timestamp,
		})

	case events.AccountDeleted:
		var data events.AccountDeletedEvent
		if err := events.Decode(event, &data); err != nil {
			return err
		}
		return s.projection.DeleteHistory(ctx, data.Table, data.Account)

	default:
		return nil
	}
}

func (s *AccountCommandService) setBalance(ctx context.Context, name string, balance decimal.Decimal, isTest bool) error {
	outcome, err := s.ledger.SetBalance(ctx, name, balance, isTest)
	if err != nil {
		return err
	}
	if outcome != store.OutcomeUpdated {
		return store.ErrNotFound
	}
	return nil
}

func (s *AccountCommandService) balanceUpdated(ctx context.Context, operation, name string, change, balance decimal.Decimal, isTest bool) {
	metrics.RecordBalanceChange(operation)
	s.projection.InvalidateAccountView(ctx, name, isTest)
	s.publish(ctx, events.BalanceUpdated, events.BalanceUpdatedEvent{
		Table:      s.ledger.Table(isTest),
		Account:    name,
		Operation:  operation,
		Change:     change.StringFixed(2),
		NewBalance: balance.StringFixed(2),
	})
}

func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.LedgerEventsStream, eventType, data); err != nil {
		s.logger.Warn("failed to publish ledger event", zap.String("type", eventType), zap.Error(err))
	}
}

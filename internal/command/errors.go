package command

import (
	"errors"
	"fmt"
)

var (
	// ErrTransactionFailed is the cause of a transfer whose leg was not applied.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrRollbackFailed matches a TransactionError whose compensating write failed.
	ErrRollbackFailed = errors.New("rollback failed")

	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrSelfTransfer  = errors.New("sender and receiver must differ")
	ErrUserExists    = errors.New("user already exists")
)

// Leg names the side of a transfer that failed.
type Leg string

const (
	LegDebit  Leg = "debit"
	LegCredit Leg = "credit"
)

// TransactionError reports a transfer that did not complete.
type TransactionError struct {
	Leg                   Leg
	CompensationAttempted bool
	Compensated           bool
	Err                   error
	RollbackErr           error
}

func (e *TransactionError) Error() string {
	msg := fmt.Sprintf("%s leg failed: %v", e.Leg, e.Err)
	if e.CompensationAttempted && !e.Compensated {
		msg += fmt.Sprintf("; %v: %v", ErrRollbackFailed, e.RollbackErr)
	}
	return msg
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

func (e *TransactionError) Is(target error) bool {
	return target == ErrRollbackFailed && e.CompensationAttempted && !e.Compensated
}

// ApplicationError is returned by the services. The cause stays reachable
// through errors.Is and errors.As.
type ApplicationError struct {
	Op  string
	Err error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

func appError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{Op: op, Err: err}
}

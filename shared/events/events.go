package events

import "time"

// Event types
const (
	AccountCreated = "account.created"
	AccountDeleted = "account.deleted"

	BalanceUpdated       = "balance.updated"
	TransactionCompleted = "transaction.completed"
	TransactionFailed    = "transaction.failed"
)

// LedgerEventsStream carries every ledger mutation, live and test tables alike.
const LedgerEventsStream = "ledger.events"

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Account events
type AccountCreatedEvent struct {
	Table   string `json:"table"`
	Account string `json:"account"`
	Balance string `json:"balance"`
}

type AccountDeletedEvent struct {
	Table   string `json:"table"`
	Account string `json:"account"`
}

// Balance events. Amounts are exact decimal strings.
type BalanceUpdatedEvent struct {
	Table      string `json:"table"`
	Account    string `json:"account"`
	Operation  string `json:"operation"`
	Change     string `json:"change"`
	NewBalance string `json:"newBalance"`
}

// Transaction events
type TransactionCompletedEvent struct {
	Table           string `json:"table"`
	TransactionID   string `json:"transactionId"`
	Sender          string `json:"sender"`
	Receiver        string `json:"receiver"`
	Amount          string `json:"amount"`
	SenderBalance   string `json:"senderBalance"`
	ReceiverBalance string `json:"receiverBalance"`
}

type TransactionFailedEvent struct {
	Table       string `json:"table"`
	Sender      string `json:"sender"`
	Receiver    string `json:"receiver"`
	Amount      string `json:"amount"`
	Leg         string `json:"leg"`
	Compensated bool   `json:"compensated"`
	Reason      string `json:"reason"`
}

package cqrs

import (
	"github.com/gojenga/gojenga/shared/models"
	"github.com/shopspring/decimal"
)

// Every command carries IsTest; it only selects the live or test table.

type CreateUserCommand struct {
	Name     string
	Password string
	IsTest   bool
}

type UpdateUserCommand struct {
	Name     string
	Password string
	IsTest   bool
}

type DeleteUserCommand struct {
	Name   string
	IsTest bool
}

type CreateAccountCommand struct {
	Name    string
	Balance decimal.Decimal
	IsTest  bool
}

// UpdateAccountCommand overwrites the balance.
type UpdateAccountCommand struct {
	Name    string
	Balance decimal.Decimal
	IsTest  bool
}

// ModifyAccountCommand moves the balance by Delta; positive credits, negative debits.
type ModifyAccountCommand struct {
	Name   string
	Delta  decimal.Decimal
	IsTest bool
}

type DeleteAccountCommand struct {
	Name   string
	IsTest bool
}

type TransactionCommand struct {
	Sender   string
	Receiver string
	Amount   decimal.Decimal
	IsTest   bool
}

type MergePortfolioCommand struct {
	Name   string
	Coins  []models.Coin
	IsTest bool
}

type LoginCommand struct {
	Username string
	Password string
	IsTest   bool
}

type RefreshTokenCommand struct {
	Token string
}

package models

import "time"

// UserView is the public projection of a user. It never exposes PasswordHash.
type UserView struct {
	Name string `json:"name"`
}

// AccountView is the read projection of an account, cached by the read side.
// Balance is rendered with exactly two fractional digits.
type AccountView struct {
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// HistoryEntry is one projected ledger movement for an account.
type HistoryEntry struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Counterparty string    `json:"counterparty,omitempty"`
	Change       string    `json:"change"`
	Balance      string    `json:"balance,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"createdTimestamp"`
}

func AccountToView(a *Account) *AccountView {
	return &AccountView{
		Name:    a.Name,
		Balance: a.Balance.StringFixed(2),
	}
}

package models

import "github.com/shopspring/decimal"

type User struct {
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}

// Account is a ledger row. Balance is never held in binary floating point.
type Account struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// TransactionIntent describes a transfer before it is applied. It is never persisted.
type TransactionIntent struct {
	Sender   string
	Receiver string
	Amount   decimal.Decimal
}

type Coin struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

type Portfolio struct {
	Name  string `json:"name"`
	Coins []Coin `json:"coins"`
}

// Merge adds the incoming quantities to the matching symbols and appends
// symbols the portfolio does not hold yet. Symbol order is preserved.
func (p *Portfolio) Merge(coins []Coin) {
	index := make(map[string]int, len(p.Coins))
	for i, c := range p.Coins {
		index[c.Symbol] = i
	}
	for _, c := range coins {
		if i, ok := index[c.Symbol]; ok {
			p.Coins[i].Quantity = p.Coins[i].Quantity.Add(c.Quantity)
			continue
		}
		index[c.Symbol] = len(p.Coins)
		p.Coins = append(p.Coins, c)
	}
}

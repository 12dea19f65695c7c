package cqrs

// GetUserQuery fetches a single user by name.
type GetUserQuery struct {
	Name   string
	IsTest bool
}

// GetAccountQuery fetches a single account by name.
type GetAccountQuery struct {
	Name   string
	IsTest bool
}

// ListHistoryQuery fetches the most recent projected ledger movements.
type ListHistoryQuery struct {
	Name   string
	IsTest bool
	Limit  int64
}

type GetPortfolioQuery struct {
	Name   string
	IsTest bool
}

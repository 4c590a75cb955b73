package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementEntry is one bank transaction line.
type StatementEntry struct {
	ID          string
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = withdrawal, positive = deposit
	Account     string
}

// IsDeposit reports whether the entry credits the account.
func (e StatementEntry) IsDeposit() bool {
	return e.Amount.IsPositive()
}

// IsWithdrawal reports whether the entry debits the account.
func (e StatementEntry) IsWithdrawal() bool {
	return e.Amount.IsNegative()
}

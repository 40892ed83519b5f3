package domain

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places every persisted amount carries.
const MoneyScale = 2

// maxMoney is the exclusive upper bound of numeric(18,2).
var maxMoney = decimal.New(1, 16)

// ValidateAmount checks a ledger amount: strictly positive, at most two decimal
// places and inside numeric(18,2).
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	return checkRange(amount)
}

// ValidateBalance checks an opening balance or a minimum balance: zero or more,
// at most two decimal places and inside numeric(18,2).
func ValidateBalance(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	return checkRange(amount)
}

func checkRange(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return ErrInvalidAmount
	}
	if amount.Abs().GreaterThanOrEqual(maxMoney) {
		return ErrInvalidAmount
	}
	return nil
}

// ParseAmount parses a decimal string coming from an untrusted caller.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, Wrap(ErrInvalidAmount, err)
	}
	return d, nil
}

package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits kept for every amount,
// matching the NUMERIC(14,2) columns.
const MoneyScale = 2

// maxMoney is the first magnitude NUMERIC(14,2) cannot hold.
var maxMoney = decimal.New(1, 12)

// Money rounds d to MoneyScale places, half away from zero like PostgreSQL.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// NullMoney is Money for an optional amount.
func NullMoney(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(Money(d.Decimal))
}

// Amount parses a literal such as "12.50" into a present optional amount.
// It panics on malformed input.
func Amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func validateMoney(field string, d decimal.NullDecimal) error {
	if d.Valid && Money(d.Decimal).Abs().GreaterThanOrEqual(maxMoney) {
		return NewValidationError("%s is out of range", field)
	}
	return nil
}

func formatMoney(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(MoneyScale)
}

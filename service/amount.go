package service

import (
	"go-bank-console/common"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// maxInputLength caps the text handed to the number parsers.
	maxInputLength = 32
	// maxAmountScale is the number of fractional digits an amount may carry.
	maxAmountScale = 8
)

// maxAmount is the largest single deposit or withdrawal.
var maxAmount = decimal.New(1, 15)

// ParseAmount parses operator input for a deposit or withdrawal. Anything that
// is not a decimal number greater than zero, with at most maxAmountScale
// fractional digits and not above maxAmount, yields ErrInvalidAmount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxInputLength {
		return decimal.Zero, ErrInvalidAmount
	}
	// decimal rejects hex floats, Inf and NaN; float parsing bounds the exponent.
	if _, err := decimal.NewFromString(raw); err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero, ErrInvalidAmount
	}

	amount := decimal.NewFromFloat(f)
	if !amount.IsPositive() || amount.Exponent() < -maxAmountScale || amount.GreaterThan(maxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// ParseBalance reads the balance field of the create and edit forms. Empty
// input is zero; the sign is checked later by validation.
func ParseBalance(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	balance, err := strconv.ParseFloat(raw, 64)
	if err != nil || len(raw) > maxInputLength || math.IsNaN(balance) || math.IsInf(balance, 0) {
		return 0, &common.ValidationError{Fields: []string{"Balance must be a number"}}
	}
	return balance, nil
}

// writtenBalance converts the computed balance to the float sent to the
// accounts API. A result that float64 cannot hold exactly, such as a tiny
// amount added to a huge balance, is rejected so the written balance always
// equals the computed one.
func writtenBalance(balance decimal.Decimal) (float64, error) {
	f := balance.InexactFloat64()
	if math.IsInf(f, 0) || !decimal.NewFromFloat(f).Equal(balance) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// Package ledger provides exact wei arithmetic for the arcade payment flows.
//
// Amounts are wei-denominated and always integral. Every split in this
// package is exact: the parts always sum back to the input amount, with any
// division remainder assigned to a documented side. The engines use these
// helpers to compute payment obligations; actually moving funds is the job of
// an injected Treasury.
package ledger

import (
	"github.com/shopspring/decimal"

	apperrors "github.com/pixelfount/arcade/internal/platform/errors"
)

// ErrAmountInvalid indicates a negative, fractional, or otherwise unusable amount.
var ErrAmountInvalid = apperrors.New(apperrors.CodeAmountInvalid, "amount must be a non-negative integer")

var (
	two        = decimal.NewFromInt(2)
	oneHundred = decimal.NewFromInt(100)
)

// IsIntegral reports whether the amount has no fractional part.
func IsIntegral(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(0))
}

// ValidateAmount rejects amounts that are negative or fractional.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || !IsIntegral(amount) {
		return ErrAmountInvalid
	}
	return nil
}

// HalfSplit divides an amount into a floored first share and a second share
// carrying the remainder, so first + second always equals amount exactly.
func HalfSplit(amount decimal.Decimal) (first, second decimal.Decimal) {
	first, _ = amount.QuoRem(two, 0)
	second = amount.Sub(first)
	return first, second
}

// PercentFloor returns floor(amount * percent / 100).
func PercentFloor(amount decimal.Decimal, percent int64) decimal.Decimal {
	scaled := amount.Mul(decimal.NewFromInt(percent))
	q, _ := scaled.QuoRem(oneHundred, 0)
	return q
}

// MulDivFloor returns floor(amount * num / den). den must be positive.
func MulDivFloor(amount decimal.Decimal, num, den int64) decimal.Decimal {
	scaled := amount.Mul(decimal.NewFromInt(num))
	q, _ := scaled.QuoRem(decimal.NewFromInt(den), 0)
	return q
}

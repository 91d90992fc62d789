package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Wallet identifies a fund recipient.
type Wallet string

// IsZero reports whether the wallet is unset.
func (w Wallet) IsZero() bool {
	return w == ""
}

// Obligation is a computed fund movement the caller must execute.
type Obligation struct {
	To     Wallet
	Amount decimal.Decimal
	// Memo names the flow for audit purposes (e.g. "project-share").
	Memo string
}

// Treasury executes fund transfers the engines only compute.
//
// The engines never call Transfer themselves; the application layer does,
// keeping the rule engines deterministic and unit-testable without a live
// bank. Implementations must treat a returned error as "no funds moved".
type Treasury interface {
	Transfer(ctx context.Context, to Wallet, amount decimal.Decimal) error
}

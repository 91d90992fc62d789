package event

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PixelChanged is the payload for TypePixelChanged.
type PixelChanged struct {
	X             int             `json:"x"`
	Y             int             `json:"y"`
	Owner         string          `json:"owner"`
	Color         uint32          `json:"color"`
	NewHeat       int             `json:"new_heat"`
	AmountCharged decimal.Decimal `json:"amount_charged"`
	Locked        bool            `json:"locked"`
	PlacedAt      time.Time       `json:"placed_at"`
}

// PixelLocked is the payload for TypePixelLocked.
type PixelLocked struct {
	X             int             `json:"x"`
	Y             int             `json:"y"`
	LockedBy      string          `json:"locked_by"`
	AmountCharged decimal.Decimal `json:"amount_charged"`
	LockedUntil   time.Time       `json:"locked_until"`
}

// CoinTossed is the payload for TypeCoinTossed.
type CoinTossed struct {
	RoundID     uint64          `json:"round_id"`
	Caller      string          `json:"caller"`
	EntryFee    decimal.Decimal `json:"entry_fee"`
	PlatformFee decimal.Decimal `json:"platform_fee"`
	NewPool     decimal.Decimal `json:"new_pool"`
}

// RoundStarted is the payload for TypeRoundStarted.
type RoundStarted struct {
	RoundID      uint64          `json:"round_id"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	StartingPool decimal.Decimal `json:"starting_pool"`
}

// WinnerSelected is the payload for TypeWinnerSelected.
type WinnerSelected struct {
	RoundID        uint64          `json:"round_id"`
	Winner         string          `json:"winner"`
	WinnerAmount   decimal.Decimal `json:"winner_amount"`
	PlatformFee    decimal.Decimal `json:"platform_fee"`
	RolloverAmount decimal.Decimal `json:"rollover_amount"`
	Participants   int             `json:"participants"`
}

// MarshalPayload encodes a payload struct for the PayloadJSON field.
func MarshalPayload(payload any) ([]byte, error) {
	return json.Marshal(payload)
}

package arcade

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pixelfount/arcade/internal/chroma"
	"github.com/pixelfount/arcade/internal/fountain"
	"github.com/pixelfount/arcade/internal/ledger"
	"github.com/pixelfount/arcade/internal/platform/config"
	apperrors "github.com/pixelfount/arcade/internal/platform/errors"
)

// Config holds the arcade's wallets and game constants.
type Config struct {
	// ProjectWallet receives the project half of canvas payments and the
	// lottery platform fees.
	ProjectWallet ledger.Wallet
	Canvas        chroma.Config
	Lottery       fountain.Config
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.ProjectWallet.IsZero() {
		return apperrors.WithMetadata(apperrors.CodeConfigInvalid, "project wallet is required", map[string]string{"field": "ProjectWallet"})
	}
	if err := c.Canvas.Validate(); err != nil {
		return err
	}
	return c.Lottery.Validate()
}

type envConfig struct {
	ProjectWallet      string        `env:"PIXELFOUNT_ARCADE_PROJECT_WALLET"`
	BasePrice          string        `env:"PIXELFOUNT_ARCADE_BASE_PRICE" envDefault:"100000000000000"`
	EntryFee           string        `env:"PIXELFOUNT_ARCADE_ENTRY_FEE" envDefault:"1000000000000000"`
	HeatDecayPeriod    time.Duration `env:"PIXELFOUNT_ARCADE_HEAT_DECAY_PERIOD" envDefault:"1h"`
	UserCooldown       time.Duration `env:"PIXELFOUNT_ARCADE_USER_COOLDOWN" envDefault:"60s"`
	LockDuration       time.Duration `env:"PIXELFOUNT_ARCADE_LOCK_DURATION" envDefault:"24h"`
	RoundDuration      time.Duration `env:"PIXELFOUNT_ARCADE_ROUND_DURATION" envDefault:"24h"`
	LockMultiplier     int64         `env:"PIXELFOUNT_ARCADE_LOCK_MULTIPLIER" envDefault:"50"`
	PlatformFeePercent int64         `env:"PIXELFOUNT_ARCADE_PLATFORM_FEE_PERCENT" envDefault:"5"`
	WinnerPercent      int64         `env:"PIXELFOUNT_ARCADE_WINNER_PERCENT" envDefault:"85"`
}

// ConfigFromEnv loads the arcade configuration from PIXELFOUNT_ARCADE_*
// environment variables, falling back to the production defaults.
func ConfigFromEnv() (Config, error) {
	var raw envConfig
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, err
	}

	basePrice, err := decimal.NewFromString(raw.BasePrice)
	if err != nil {
		return Config{}, apperrors.Wrap(apperrors.CodeConfigInvalid, "base price is not a number", err)
	}
	entryFee, err := decimal.NewFromString(raw.EntryFee)
	if err != nil {
		return Config{}, apperrors.Wrap(apperrors.CodeConfigInvalid, "entry fee is not a number", err)
	}

	cfg := Config{
		ProjectWallet: ledger.Wallet(raw.ProjectWallet),
		Canvas: chroma.Config{
			BasePrice:       basePrice,
			HeatDecayPeriod: raw.HeatDecayPeriod,
			UserCooldown:    raw.UserCooldown,
			LockDuration:    raw.LockDuration,
			LockMultiplier:  raw.LockMultiplier,
		},
		Lottery: fountain.Config{
			EntryFee:           entryFee,
			RoundDuration:      raw.RoundDuration,
			PlatformFeePercent: raw.PlatformFeePercent,
			WinnerPercent:      raw.WinnerPercent,
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the production game constants with the provided
// project wallet.
func DefaultConfig(projectWallet ledger.Wallet) Config {
	return Config{
		ProjectWallet: projectWallet,
		Canvas: chroma.Config{
			BasePrice:       decimal.RequireFromString("100000000000000"),
			HeatDecayPeriod: time.Hour,
			UserCooldown:    60 * time.Second,
			LockDuration:    24 * time.Hour,
			LockMultiplier:  50,
		},
		Lottery: fountain.Config{
			EntryFee:           decimal.RequireFromString("1000000000000000"),
			RoundDuration:      24 * time.Hour,
			PlatformFeePercent: 5,
			WinnerPercent:      85,
		},
	}
}

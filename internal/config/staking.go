package config

import (
	"fmt"

	"cosmossdk.io/math"
)

// StakingConfig carries the initial global parameters of the ledger. They
// seed the global_params document on first start only; afterwards the stored
// document is authoritative and mutated through owner admin calls.
type StakingConfig struct {
	// Owner is the account allowed to run admin operations.
	Owner string `mapstructure:"owner"`
	// TokenContract is the asset ledger identity whose transfer
	// notifications are accepted as deposits.
	TokenContract string `mapstructure:"token-contract"`
	// RequiredStakeAmount is the exact principal an account must reach,
	// as a base-10 unsigned integer string.
	RequiredStakeAmount string `mapstructure:"required-stake-amount"`
	// LockDurationSecs is the minimum time in seconds between the last
	// completing deposit and an eligible withdrawal.
	LockDurationSecs int64 `mapstructure:"lock-duration-secs"`
}

func (cfg *StakingConfig) Validate() error {
	if cfg.Owner == "" {
		return fmt.Errorf("staking owner is required")
	}
	if cfg.TokenContract == "" {
		return fmt.Errorf("staking token-contract is required")
	}
	amount, err := math.ParseUint(cfg.RequiredStakeAmount)
	if err != nil {
		return fmt.Errorf("invalid required-stake-amount: %w", err)
	}
	if amount.IsZero() {
		return fmt.Errorf("required-stake-amount must be greater than 0")
	}
	if cfg.LockDurationSecs <= 0 {
		return fmt.Errorf("lock-duration-secs must be positive")
	}
	return nil
}

// RequiredStakeAmountUint returns the parsed required stake amount. Validate
// must have succeeded before calling it.
func (cfg *StakingConfig) RequiredStakeAmountUint() math.Uint {
	return math.NewUintFromString(cfg.RequiredStakeAmount)
}

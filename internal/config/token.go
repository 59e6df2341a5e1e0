package config

import (
	"fmt"
	"time"
)

// TokenConfig configures the outbound client against the token ledger.
type TokenConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
}

func (cfg *TokenConfig) Validate() error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("token endpoint is required")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("token timeout must be positive")
	}
	if cfg.MaxRetryTimes == 0 {
		return fmt.Errorf("token max-retry-times must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return fmt.Errorf("token retry-interval must be positive")
	}
	return nil
}

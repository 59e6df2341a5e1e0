package config

import (
	"fmt"
	"time"
)

// QueueConfig configures the RabbitMQ connection carrying settlement events.
type QueueConfig struct {
	Url               string        `mapstructure:"url"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	SettlementQueue   string        `mapstructure:"settlement-queue"`
	ProcessingTimeout time.Duration `mapstructure:"processing-timeout"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.Url == "" {
		return fmt.Errorf("queue url is required")
	}
	if cfg.SettlementQueue == "" {
		return fmt.Errorf("queue settlement-queue is required")
	}
	if cfg.ProcessingTimeout <= 0 {
		return fmt.Errorf("queue processing-timeout must be positive")
	}
	return nil
}

// ConnectionURL builds the full AMQP URL including credentials.
func (cfg *QueueConfig) ConnectionURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s", cfg.User, cfg.Password, cfg.Url)
}

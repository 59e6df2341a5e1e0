package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/PublicAI01/publicai-staking/internal/config"
	"github.com/PublicAI01/publicai-staking/internal/observability/metrics"
	"github.com/PublicAI01/publicai-staking/internal/types"
)

// SettlementHandler processes one settlement event. It must be idempotent:
// the queue delivers at least once and redeliveries after a crash are
// expected.
type SettlementHandler func(ctx context.Context, ev *types.SettlementEvent) error

// Consumer reads settlement events for in-flight withdrawals from RabbitMQ
// and hands them to the settlement coordinator. It is the only invoker of
// the finalize step; the event is never accepted over HTTP.
type Consumer struct {
	cfg     *config.QueueConfig
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewConsumer(cfg *config.QueueConfig) (*Consumer, error) {
	conn, err := amqp.Dial(cfg.ConnectionURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to queue: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open queue channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		cfg.SettlementQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare settlement queue: %w", err)
	}

	return &Consumer{
		cfg:     cfg,
		conn:    conn,
		channel: channel,
	}, nil
}

// Start consumes settlement messages until the context is cancelled.
// Messages are acked only after the handler succeeds; handler failures are
// requeued, malformed payloads are dropped.
func (c *Consumer) Start(ctx context.Context, handler SettlementHandler) error {
	deliveries, err := c.channel.ConsumeWithContext(
		ctx,
		c.cfg.SettlementQueue,
		"publicai-staking", // consumer tag
		false,              // autoAck
		false,              // exclusive
		false,              // noLocal
		false,              // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming settlement queue: %w", err)
	}

	go func() {
		for delivery := range deliveries {
			c.handleDelivery(ctx, delivery, handler)
		}
		log.Ctx(ctx).Info().Msg("Settlement queue delivery channel closed")
	}()

	log.Ctx(ctx).Info().
		Str("queue", c.cfg.SettlementQueue).
		Msg("Settlement queue consumer started")
	return nil
}

func (c *Consumer) handleDelivery(
	ctx context.Context, delivery amqp.Delivery, handler SettlementHandler,
) {
	var ev types.SettlementEvent
	if err := json.Unmarshal(delivery.Body, &ev); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("body", string(delivery.Body)).
			Msg("Malformed settlement message, dropping")
		metrics.RecordQueueConsumeError()
		if err := delivery.Nack(false, false); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to nack settlement message")
		}
		return
	}

	handlerCtx, cancel := context.WithTimeout(ctx, c.cfg.ProcessingTimeout)
	defer cancel()

	if err := handler(handlerCtx, &ev); err != nil {
		log.Ctx(ctx).Error().
			Err(err).
			Str("account", ev.Account).
			Str("request_id", ev.RequestID).
			Msg("Failed to process settlement event, requeueing")
		metrics.RecordQueueConsumeError()
		if err := delivery.Nack(false, true); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to nack settlement message")
		}
		return
	}

	if err := delivery.Ack(false); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to ack settlement message")
	}
}

// Shutdown gracefully stops the interaction with the queue, ensuring all
// resources are properly released.
func (c *Consumer) Shutdown() {
	log.Info().Msg("Shutting down settlement queue consumer")
	if err := c.channel.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close queue channel")
	}
	if err := c.conn.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close queue connection")
	}
}

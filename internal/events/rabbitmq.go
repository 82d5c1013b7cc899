package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"order-service/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// RabbitMQPublisher publishes order events as persistent JSON messages to a durable queue.
type RabbitMQPublisher struct {
	pool      *ChannelPool
	queueName string
	logger    zerolog.Logger
}

// NewRabbitMQPublisher creates a publisher that routes every event to queueName on the default exchange.
func NewRabbitMQPublisher(pool *ChannelPool, queueName string, logger zerolog.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		pool:      pool,
		queueName: queueName,
		logger:    logger.With().Str("component", "event-publisher").Logger(),
	}
}

// Publish sends event to the queue.
func (p *RabbitMQPublisher) Publish(ctx context.Context, event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ch, err := p.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get channel from pool: %w", err)
	}
	defer p.pool.Put(ch)

	err = ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         event.Type,
			MessageId:    event.OrderID.String(),
			AppId:        config.ServiceName,
			Timestamp:    event.OccurredAt,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.Debug().
		Str("type", event.Type).
		Str("order_id", event.OrderID.String()).
		Msg("order event published")

	return nil
}

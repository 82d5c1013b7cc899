package events

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// ChannelPool shares a fixed set of AMQP channels over a single connection.
type ChannelPool struct {
	conn      *amqp.Connection
	channels  chan *amqp.Channel
	mu        sync.Mutex
	closed    bool
	queueName string
	logger    zerolog.Logger
}

// NewChannelPool dials url and pre-creates size channels, each declaring queueName.
func NewChannelPool(url, queueName string, size int, logger zerolog.Logger) (*ChannelPool, error) {
	if size <= 0 {
		size = 1
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	pool := &ChannelPool{
		conn:      conn,
		channels:  make(chan *amqp.Channel, size),
		queueName: queueName,
		logger:    logger.With().Str("component", "amqp-pool").Logger(),
	}

	for i := 0; i < size; i++ {
		ch, err := pool.createChannel()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create channel %d: %w", i, err)
		}
		pool.channels <- ch
	}

	pool.logger.Info().
		Int("channels", size).
		Str("queue", queueName).
		Msg("RabbitMQ channel pool created")

	return pool, nil
}

func (p *ChannelPool) createChannel() (*amqp.Channel, error) {
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		p.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return ch, nil
}

// Get takes a channel from the pool, waiting until one is returned or ctx is done.
// An empty or closed slot is refilled with a fresh channel. If that fails the slot goes back
// to the pool empty so a later Get can retry.
func (p *ChannelPool) Get(ctx context.Context) (*amqp.Channel, error) {
	select {
	case ch, ok := <-p.channels:
		if !ok {
			return nil, fmt.Errorf("channel pool is closed")
		}
		if ch != nil && !ch.IsClosed() {
			return ch, nil
		}

		p.logger.Warn().Msg("replacing closed AMQP channel")
		fresh, err := p.createChannel()
		if err != nil {
			p.release(nil)
			return nil, fmt.Errorf("failed to replace AMQP channel: %w", err)
		}
		return fresh, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for AMQP channel: %w", ctx.Err())
	}
}

// Put returns ch to the pool. A nil or closed channel still gives its slot back, empty.
func (p *ChannelPool) Put(ch *amqp.Channel) {
	if ch != nil && ch.IsClosed() {
		ch = nil
	}
	p.release(ch)
}

// release puts ch, possibly nil, back into a free slot.
func (p *ChannelPool) release(ch *amqp.Channel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		if ch != nil {
			ch.Close()
		}
		return
	}

	select {
	case p.channels <- ch:
	default:
		if ch != nil {
			ch.Close()
		}
	}
}

// Close closes all pooled channels and the connection.
func (p *ChannelPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true

	close(p.channels)
	for ch := range p.channels {
		if ch != nil {
			ch.Close()
		}
	}
	if p.conn != nil {
		p.conn.Close()
	}

	p.logger.Info().Msg("RabbitMQ channel pool closed")
}

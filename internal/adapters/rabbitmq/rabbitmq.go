package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rafaelleal24/catalog/internal/adapters/config"
	"github.com/rafaelleal24/catalog/internal/core/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQAdapter publishes events to the "exchange.<entity>" exchange with
// the event name as routing key.
type RabbitMQAdapter struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	config  config.RabbitMQConfig
}

func NewRabbitMQAdapter(cfg config.RabbitMQConfig) (*RabbitMQAdapter, error) {
	adapter := &RabbitMQAdapter{config: cfg}

	if err := adapter.connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	return adapter, nil
}

func ExchangeFor(entityName string) string {
	return "exchange." + entityName
}

func (r *RabbitMQAdapter) connect() error {
	conn, err := amqp.Dial(r.config.URL)
	if err != nil {
		return fmt.Errorf("failed to dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	for _, ec := range r.config.ExchangeConfigs {
		if err := ch.ExchangeDeclare(ec.Name, ec.Type, ec.Durable, ec.AutoDelete, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return fmt.Errorf("failed to declare exchange %s: %w", ec.Name, err)
		}
	}

	r.conn = conn
	r.channel = ch
	return nil
}

func (r *RabbitMQAdapter) reconnect() error {
	r.closeLocked()
	return r.connect()
}

func (r *RabbitMQAdapter) PublishRaw(ctx context.Context, eventName, entityName string, data []byte) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Type:         eventName,
	}
	exchange := ExchangeFor(entityName)

	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.config.RetryDelay):
			}
		}

		if lastErr = r.publishOnce(ctx, exchange, eventName, msg); lastErr == nil {
			return nil
		}
		logger.Error(ctx, "publish: failed", lastErr, map[string]any{
			"attempt":  attempt + 1,
			"exchange": exchange,
			"event":    eventName,
		})
	}

	return fmt.Errorf("failed to publish after %d attempts: %w", r.config.MaxRetries+1, lastErr)
}

func (r *RabbitMQAdapter) publishOnce(ctx context.Context, exchange, routingKey string, msg amqp.Publishing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channel == nil {
		if err := r.reconnect(); err != nil {
			return fmt.Errorf("reconnect failed: %w", err)
		}
	}

	if err := r.channel.PublishWithContext(ctx, exchange, routingKey, false, false, msg); err != nil {
		// force a fresh channel on the next attempt
		r.channel = nil
		return err
	}
	return nil
}

func (r *RabbitMQAdapter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.closeLocked()
}

func (r *RabbitMQAdapter) closeLocked() error {
	var errs []error
	if r.channel != nil {
		if err := r.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("closing channel: %w", err))
		}
		r.channel = nil
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("closing connection: %w", err))
		}
		r.conn = nil
	}
	return errors.Join(errs...)
}

func (r *RabbitMQAdapter) HealthCheck() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		return errors.New("connection is closed")
	}
	if r.channel == nil {
		return errors.New("channel is nil")
	}
	return nil
}

package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// MeshExchange is the central exchange all mesh notification events flow
// through. Direct type: routing key equality is the whole matching model.
const MeshExchange = "mesh.events"

// AMQP is a Bus backed by a RabbitMQ broker. Each registered domain gets a
// durable queue (its endpoint handle) bound to MeshExchange by the domain's
// detail type; queue declaration and binding are idempotent on the broker,
// which is what makes domain re-registration safe.
type AMQP struct {
	logger zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewAMQP connects to the broker and declares the mesh exchange.
func NewAMQP(logger zerolog.Logger, url string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	b := &AMQP{
		logger: logger.With().Str("component", "eventbus").Logger(),
		conn:   conn,
	}

	if err := b.withChannel(func(ch *amqp.Channel) error {
		return ch.ExchangeDeclare(
			MeshExchange, // name
			"direct",     // type
			true,         // durable
			false,        // auto-deleted
			false,        // internal
			false,        // no-wait
			nil,          // arguments
		)
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", MeshExchange, err)
	}

	return b, nil
}

func (b *AMQP) withChannel(fn func(ch *amqp.Channel) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	return fn(ch)
}

func (b *AMQP) Bind(ctx context.Context, detailType, endpoint string) error {
	return b.withChannel(func(ch *amqp.Channel) error {
		if _, err := ch.QueueDeclare(
			endpoint, // name
			true,     // durable
			false,    // delete when unused
			false,    // exclusive
			false,    // no-wait
			nil,      // arguments
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", endpoint, err)
		}
		if err := ch.QueueBind(endpoint, detailType, MeshExchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", endpoint, detailType, err)
		}
		b.logger.Info().Str("queue", endpoint).Str("detail_type", detailType).Msg("installed routing rule")
		return nil
	})
}

func (b *AMQP) Unbind(ctx context.Context, detailType, endpoint string) error {
	return b.withChannel(func(ch *amqp.Channel) error {
		if err := ch.QueueUnbind(endpoint, detailType, MeshExchange, nil); err != nil {
			return fmt.Errorf("unbind queue %s from %s: %w", endpoint, detailType, err)
		}
		return nil
	})
}

func (b *AMQP) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return b.withChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			MeshExchange,
			event.DetailType, // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    event.ID,
				Timestamp:    event.Time,
				Type:         event.DetailType,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", MeshExchange, event.DetailType, err)
		}
		return nil
	})
}

// Close closes the broker connection.
func (b *AMQP) Close() error {
	return b.conn.Close()
}

package rabbit

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const consumerTag = "anveshan-notifier"

type Config struct {
	URL      string
	Exchange string
	Queue    string
	// Prefetch bounds unacknowledged deliveries held by this consumer.
	Prefetch int
}

type Rabbiter interface {
	Close()
	Publish(ctx context.Context, message []byte) error
	Consume(handler func([]byte) error) error
}

var _ Rabbiter = (*Client)(nil)

// Client owns one connection and one channel. The queue name doubles as the
// routing key on a durable direct exchange.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     Config
	log     *zerolog.Logger
}

func NewRabbit(cfg Config, log *zerolog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	c := &Client{conn: conn, channel: ch, cfg: cfg, log: log}
	if err := c.declareTopology(); err != nil {
		c.Close()
		return nil, err
	}

	go c.watchClose(conn.NotifyClose(make(chan *amqp.Error, 1)))

	log.Info().
		Str("exchange", cfg.Exchange).
		Str("queue", cfg.Queue).
		Msg("RabbitMQ initialized")
	return c, nil
}

func (c *Client) declareTopology() error {
	if err := c.channel.ExchangeDeclare(c.cfg.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.cfg.Exchange, err)
	}
	if _, err := c.channel.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}
	if err := c.channel.QueueBind(c.cfg.Queue, c.cfg.Queue, c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", c.cfg.Queue, err)
	}
	if c.cfg.Prefetch > 0 {
		if err := c.channel.Qos(c.cfg.Prefetch, 0, false); err != nil {
			return fmt.Errorf("set prefetch: %w", err)
		}
	}
	return nil
}

// watchClose logs broker-initiated closes. A nil error means Close was called.
func (c *Client) watchClose(closed <-chan *amqp.Error) {
	if amqpErr, ok := <-closed; ok && amqpErr != nil {
		c.log.Error().
			Int("code", amqpErr.Code).
			Str("reason", amqpErr.Reason).
			Msg("RabbitMQ connection lost")
	}
}

func (c *Client) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.log.Info().Msg("RabbitMQ connection closed")
}

func (c *Client) Publish(ctx context.Context, message []byte) error {
	err := c.channel.PublishWithContext(ctx, c.cfg.Exchange, c.cfg.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         message,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", c.cfg.Exchange, err)
	}
	c.log.Debug().Str("exchange", c.cfg.Exchange).Msg("message published")
	return nil
}

// Consume delivers every message to handler exactly once. A handler error
// drops the message instead of requeueing it.
func (c *Client) Consume(handler func([]byte) error) error {
	msgs, err := c.channel.Consume(c.cfg.Queue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.cfg.Queue, err)
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Body); err != nil {
				c.log.Warn().Err(err).Uint64("delivery_tag", d.DeliveryTag).Msg("dropping unprocessable message")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
		c.log.Info().Str("queue", c.cfg.Queue).Msg("delivery channel closed")
	}()

	c.log.Info().Str("queue", c.cfg.Queue).Msg("Started consuming")
	return nil
}

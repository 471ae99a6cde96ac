package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/giobyte8/thumbvariants/internal/models"
	"github.com/giobyte8/thumbvariants/internal/telemetry"
	"github.com/giobyte8/thumbvariants/internal/telemetry/metrics"
)

// Holds the config params for the consumer
type AMQPConfig struct {
	AMQPUri  string
	Exchange string

	OriginalSavedQueueName   string
	OriginalDeletedQueueName string
}

// EventProcessor handles decoded original events.
type EventProcessor interface {
	ProcessSaved(ctx context.Context, evt models.OriginalEvent) error
	ProcessDeleted(ctx context.Context, evt models.OriginalEvent) error
}

type eventHandler func(ctx context.Context, evt models.OriginalEvent) error

type AMQPConsumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	config    AMQPConfig
	processor EventProcessor
	telemetry *telemetry.TelemetrySvc
}

// Creates a new AMQPConsumer instance ready to connect to broker
func NewAMQPConsumer(
	config AMQPConfig,
	processor EventProcessor,
	telemetry *telemetry.TelemetrySvc,
) (*AMQPConsumer, error) {

	if config.AMQPUri == "" {
		return nil, fmt.Errorf("AMQP URI cannot be empty in config")
	}
	if config.Exchange == "" {
		return nil, fmt.Errorf("AMQP exchange cannot be empty in config")
	}
	if config.OriginalSavedQueueName == "" {
		return nil, fmt.Errorf(
			"AMQP original saved queue name cannot be empty in config",
		)
	}
	if config.OriginalDeletedQueueName == "" {
		return nil, fmt.Errorf(
			"AMQP original deleted queue name cannot be empty in config",
		)
	}

	return &AMQPConsumer{
		config:    config,
		processor: processor,
		telemetry: telemetry,
	}, nil
}

// Connects to AMQP broker, declares exchange and queues and
// starts consuming messages
func (c *AMQPConsumer) Start(ctx context.Context) error {
	slog.Debug("AMQP - Initializing AMQP Consumer")

	var err error
	c.conn, err = amqp.Dial(c.config.AMQPUri)
	if err != nil {
		return fmt.Errorf("AMQP - Connection to broker failed: %w", err)
	}

	c.channel, err = c.conn.Channel()
	if err != nil {
		c.conn.Close()
		return fmt.Errorf("AMQP - Failed to open channel: %w", err)
	}

	err = c.channel.ExchangeDeclare(
		c.config.Exchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		c.channel.Close()
		c.conn.Close()
		return fmt.Errorf("AMQP - Failed to declare exchange: %w", err)
	}

	// Helper function to declare and bind a given queue
	declareAndBind := func(queueName string) error {
		_, err := c.channel.QueueDeclare(
			queueName,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			return err
		}

		return c.channel.QueueBind(
			queueName,         // Queue
			queueName,         // Routing key
			c.config.Exchange, // Exchange
			false,             // No-wait
			nil,               // Arguments
		)
	}

	queues := []struct {
		name    string
		tag     string
		handler eventHandler
	}{
		{c.config.OriginalSavedQueueName, "thumbnailer-saved", c.processor.ProcessSaved},
		{c.config.OriginalDeletedQueueName, "thumbnailer-deleted", c.processor.ProcessDeleted},
	}

	for _, q := range queues {
		if err := declareAndBind(q.name); err != nil {
			c.channel.Close()
			c.conn.Close()
			return fmt.Errorf(
				"AMQP - Failed to declare/bind queue %s: %w",
				q.name,
				err,
			)
		}
	}

	for _, q := range queues {
		msgs, err := c.channel.Consume(
			q.name,
			q.tag, // Consumer tag
			false, // Auto-acknowledge
			false, // Exclusive
			false, // No-local
			false, // No-wait
			nil,   // Arguments
		)
		if err != nil {
			c.channel.Close()
			c.conn.Close()
			return fmt.Errorf(
				"AMQP - Failed to create consumer for queue %s: %w",
				q.name,
				err,
			)
		}

		go c.consume(ctx, q.name, msgs, q.handler)
	}

	return nil
}

// Gracefully stops the AMQP consumer
func (c *AMQPConsumer) Stop() {
	slog.Info("AMQP - Stopping AMQP Consumer...")

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			slog.Error("AMQP - Failed to close channel", "error", err)
		} else {
			slog.Debug("AMQP - Channel closed")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			slog.Error("AMQP - Failed to close connection", "error", err)
		} else {
			slog.Debug("AMQP - Connection closed")
		}
	}

	slog.Info("AMQP - AMQP Consumer stopped")
}

func (c *AMQPConsumer) consume(
	ctx context.Context,
	queue string,
	msgs <-chan amqp.Delivery,
	handler eventHandler,
) {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				slog.Info(
					"AMQP - Message channel closed. goroutine exiting",
					"queue", queue,
				)
				return
			}

			c.handleDelivery(ctx, queue, msg, handler)

		case <-ctx.Done():
			slog.Info(
				"AMQP - Context done signal received, stopping consumption goroutine...",
				"queue", queue,
			)
			return
		}
	}
}

// Decodes and processes one message. Messages are acked on success and
// nacked without requeue otherwise.
func (c *AMQPConsumer) handleDelivery(
	ctx context.Context,
	queue string,
	msg amqp.Delivery,
	handler eventHandler,
) {
	var evt models.OriginalEvent
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		slog.Error(
			"AMQP - Failed to unmarshal message",
			"queue", queue,
			"error", err,
			"message", string(msg.Body),
		)
		nack(queue, msg)
		return
	}

	c.telemetry.Metrics().Increment(
		metrics.OriginalEventReceived,
		map[string]string{"queue": queue},
	)

	if err := handler(ctx, evt); err != nil {
		slog.Error(
			"AMQP - Failed to process original event",
			"queue", queue,
			"requestId", evt.RequestID,
			"filePath", evt.FilePath,
			"error", err,
		)
		nack(queue, msg)
		return
	}

	if err := msg.Ack(false); err != nil {
		slog.Error(
			"AMQP - Failed to acknowledge message",
			"queue", queue,
			"error", err,
		)
	}
}

func nack(queue string, msg amqp.Delivery) {
	if err := msg.Nack(false, false); err != nil {
		slog.Error(
			"AMQP - Failed to nack message",
			"queue", queue,
			"error", err,
		)
	}
}

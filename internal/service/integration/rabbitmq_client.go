package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/config"
	"github.com/RubachokBoss/classroom-gradebook/internal/models"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

var ErrBrokerUnavailable = errors.New("message broker unavailable")

// EventPublisher publishes gradebook domain events and export jobs.
type EventPublisher interface {
	PublishSettingsUpdated(ctx context.Context, event *models.SettingsUpdatedEvent) error
	PublishGradesChanged(ctx context.Context, event *models.GradesChangedEvent) error
	PublishExportRequested(ctx context.Context, event *models.ExportRequestedEvent) error
	Close() error
}

type RabbitMQClient interface {
	EventPublisher
	Channel() *amqp091.Channel
	ExportQueue() string
}

type rabbitMQClient struct {
	conn        *amqp091.Connection
	channel     *amqp091.Channel
	exchange    string
	exportQueue string
	logger      zerolog.Logger
}

func NewRabbitMQClient(cfg config.RabbitMQConfig, logger zerolog.Logger) (RabbitMQClient, error) {
	conn, err := amqp091.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		cfg.Exchange, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	queue, err := channel.QueueDeclare(
		cfg.ExportQueue, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	err = channel.QueueBind(
		queue.Name,                       // queue name
		models.RoutingKeyExportRequested, // routing key
		cfg.Exchange,                     // exchange
		false,                            // no-wait
		nil,                              // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	logger.Info().
		Str("exchange", cfg.Exchange).
		Str("queue", queue.Name).
		Str("routing_key", models.RoutingKeyExportRequested).
		Msg("Connected to RabbitMQ")

	return &rabbitMQClient{
		conn:        conn,
		channel:     channel,
		exchange:    cfg.Exchange,
		exportQueue: queue.Name,
		logger:      logger,
	}, nil
}

func (c *rabbitMQClient) Channel() *amqp091.Channel {
	return c.channel
}

func (c *rabbitMQClient) ExportQueue() string {
	return c.exportQueue
}

func (c *rabbitMQClient) PublishSettingsUpdated(ctx context.Context, event *models.SettingsUpdatedEvent) error {
	if err := c.publish(ctx, models.RoutingKeySettingsUpdated, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("classroom_id", event.ClassroomID).
		Msg("Settings updated event published")
	return nil
}

func (c *rabbitMQClient) PublishGradesChanged(ctx context.Context, event *models.GradesChangedEvent) error {
	if err := c.publish(ctx, models.RoutingKeyGradesChanged, event); err != nil {
		return err
	}

	c.logger.Debug().
		Str("classroom_id", event.ClassroomID).
		Str("student_id", event.StudentID).
		Str("item_type", event.ItemType).
		Str("item_id", event.ItemID).
		Msg("Grades changed event published")
	return nil
}

func (c *rabbitMQClient) PublishExportRequested(ctx context.Context, event *models.ExportRequestedEvent) error {
	if err := c.publish(ctx, models.RoutingKeyExportRequested, event); err != nil {
		return err
	}

	c.logger.Info().
		Str("export_id", event.ExportID).
		Str("classroom_id", event.ClassroomID).
		Msg("Export requested event published")
	return nil
}

func (c *rabbitMQClient) publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		c.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent, // Сохраняем сообщение
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func (c *rabbitMQClient) Close() error {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	return nil
}

// noopPublisher stands in when the broker is unreachable at startup.
type noopPublisher struct {
	logger zerolog.Logger
}

func NewNoopPublisher(logger zerolog.Logger) EventPublisher {
	return &noopPublisher{logger: logger}
}

func (p *noopPublisher) PublishSettingsUpdated(_ context.Context, event *models.SettingsUpdatedEvent) error {
	p.logger.Debug().Str("classroom_id", event.ClassroomID).Msg("Broker disabled, settings event dropped")
	return nil
}

func (p *noopPublisher) PublishGradesChanged(_ context.Context, event *models.GradesChangedEvent) error {
	p.logger.Debug().Str("classroom_id", event.ClassroomID).Msg("Broker disabled, grades event dropped")
	return nil
}

func (p *noopPublisher) PublishExportRequested(context.Context, *models.ExportRequestedEvent) error {
	return ErrBrokerUnavailable
}

func (p *noopPublisher) Close() error {
	return nil
}

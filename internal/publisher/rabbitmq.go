package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"

	"results_sync/internal/domain"
	"results_sync/internal/platform/logging"
)

const ActionResultsSynced = "results_synced"

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type RabbitMQ struct {
	conn       *amqp.Connection
	channel    channel
	exchange   string
	routingKey string
	logger     *logging.Logger
	now        func() time.Time
}

type Config struct {
	URL        string
	Exchange   string
	RoutingKey string
	QueueName  string
}

func NewRabbitMQ(cfg Config, logger *logging.Logger) (*RabbitMQ, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	err = ch.QueueBind(
		q.Name,
		cfg.RoutingKey,
		cfg.Exchange,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	logger.Info("connected to rabbitmq",
		"exchange", cfg.Exchange,
		"queue", cfg.QueueName,
		"routing_key", cfg.RoutingKey,
	)

	return &RabbitMQ{
		conn:       conn,
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// ResultsSyncedMessage announces a fresh result set for an event.
type ResultsSyncedMessage struct {
	Action   string                   `json:"action"`
	EventID  int64                    `json:"event_id"`
	RunID    string                   `json:"run_id"`
	Count    int                      `json:"count"`
	SyncedAt time.Time                `json:"synced_at"`
	Results  []domain.CanonicalResult `json:"results"`
}

func newMessage(result *domain.SyncResult, syncedAt time.Time) ResultsSyncedMessage {
	msg := ResultsSyncedMessage{
		Action:   ActionResultsSynced,
		EventID:  result.EventID,
		Count:    len(result.Results),
		SyncedAt: syncedAt.UTC(),
		Results:  result.Results,
	}
	if result.Stats != nil {
		msg.RunID = result.Stats.RunID
	}
	if msg.Results == nil {
		msg.Results = []domain.CanonicalResult{}
	}
	return msg
}

func (r *RabbitMQ) Publish(ctx context.Context, result *domain.SyncResult) error {
	now := r.now()
	msg := newMessage(result, now)

	body, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = r.channel.PublishWithContext(
		ctx,
		r.exchange,
		r.routingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    msg.RunID,
			Body:         body,
			Timestamp:    now,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	r.logger.DebugContext(ctx, "published results",
		"event_id", result.EventID,
		"run_id", msg.RunID,
		"count", msg.Count,
	)

	return nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	RoutingTestSubmitted    = "test.submitted"
	RoutingSatTestSubmitted = "sat_test.submitted"
)

// SubmissionEvent tells the notification service that an attempt was graded.
type SubmissionEvent struct {
	TestID      uint           `json:"test_id"`
	AttemptID   uint           `json:"attempt_id"`
	UserID      uint           `json:"user_id"`
	Score       int            `json:"score"`
	Sections    map[string]int `json:"sections,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

type Publisher interface {
	PublishSubmission(ctx context.Context, routingKey string, event SubmissionEvent) error
	Close() error
}

type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	enabled  bool
}

// NewEventPublisher connects to RabbitMQ and declares a durable topic
// exchange. An empty url yields a disabled publisher.
func NewEventPublisher(url, exchange string) (*EventPublisher, error) {
	if url == "" {
		log.Warn().Msg("RabbitMQ URL is empty, submission events are disabled")
		return &EventPublisher{enabled: false}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	log.Info().Str("exchange", exchange).Msg("RabbitMQ publisher ready")
	return &EventPublisher{conn: conn, channel: channel, exchange: exchange, enabled: true}, nil
}

// Disabled returns a publisher that drops every event.
func Disabled() *EventPublisher {
	return &EventPublisher{enabled: false}
}

func (p *EventPublisher) PublishSubmission(ctx context.Context, routingKey string, event SubmissionEvent) error {
	if !p.enabled {
		log.Debug().Str("routingKey", routingKey).Uint("attemptID", event.AttemptID).Msg("Event publishing disabled, skipping")
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *EventPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

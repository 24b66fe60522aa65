package event

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

const (
	QuizCreated    = "quiz.created"
	QuizUpdated    = "quiz.updated"
	QuizDeleted    = "quiz.deleted"
	QuizSubmitted  = "quiz.submitted"
	QuizTerminated = "quiz.terminated"
)

// Publisher emits domain events. Implementations must be safe for
// concurrent use by request handlers.
type Publisher interface {
	Publish(eventType string, payload interface{}) error
}

type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
	Service   string      `json:"service"`
}

type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	service  string
	// amqp channels are not safe for concurrent publishes
	mu sync.Mutex
}

func NewEventPublisher(amqpURL, exchange, service string) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange, service: service}, nil
}

func (p *EventPublisher) Publish(eventType string, payload interface{}) error {
	body, err := Encode(eventType, payload, p.service, time.Now())
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// the event type doubles as the routing key on the topic exchange
	return p.channel.Publish(
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *EventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Encode builds the JSON body shared by every event.
func Encode(eventType string, payload interface{}, service string, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Envelope{
		Type:      eventType,
		Payload:   payload,
		Timestamp: at,
		Service:   service,
	})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return body, nil
}

// LogPublisher only logs events; it is used when RabbitMQ is not configured.
type LogPublisher struct{}

func (LogPublisher) Publish(eventType string, payload interface{}) error {
	log.Printf("[EVENT] %s: %v", eventType, payload)
	return nil
}

package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// QueueName is the durable queue auth lifecycle events are published to
const QueueName = "auth_events"

// Publisher emits auth lifecycle events (registration, login, revocation) to
// RabbitMQ. Publishing is best-effort: the server runs fine without a broker
// and failed publishes are logged, never surfaced to the request.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher connects to RabbitMQ and declares the auth events queue
func NewPublisher() (*Publisher, error) {
	host := getEnv("RABBITMQ_HOST", "localhost")
	port := getEnv("RABBITMQ_PORT", "5672")
	user := getEnv("RABBITMQ_USER", "guest")
	pass := getEnv("RABBITMQ_PASS", "guest")

	url := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		QueueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logrus.Info("Audit event publisher initialized")
	return &Publisher{conn: conn, channel: channel}, nil
}

// Publish sends a single auth event. A nil receiver is a no-op so callers
// never have to branch on whether the broker is configured.
func (p *Publisher) Publish(event string, userID uint, extra map[string]interface{}) {
	if p == nil || p.channel == nil {
		return
	}

	message := map[string]interface{}{
		"event":     event,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if userID != 0 {
		message["user_id"] = userID
	}
	for k, v := range extra {
		message[k] = v
	}

	body, err := json.Marshal(message)
	if err != nil {
		logrus.Warnf("Failed to marshal audit event %s: %v", event, err)
		return
	}

	err = p.channel.Publish(
		"",        // exchange
		QueueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	if err != nil {
		logrus.Warnf("Failed to publish audit event %s: %v", event, err)
	}
}

// Close closes the RabbitMQ connection
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			logrus.Warnf("Error closing audit channel: %v", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			logrus.Warnf("Error closing audit connection: %v", err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package rabbitmq publishes user notifications to a durable AMQP queue.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	apperrors "github.com/lorrc/user-registry/internal/core/errors"
	"github.com/lorrc/user-registry/internal/core/ports"
)

// Config describes the broker connection and target queue.
type Config struct {
	Host        string
	Port        int
	Username    string
	Password    string
	VHost       string
	Queue       string
	DialTimeout time.Duration
}

// URI renders the AMQP connection string.
func (c Config) URI() string {
	vhost := c.VHost
	if vhost == "" {
		vhost = "/"
	}
	return amqp.URI{
		Scheme:   "amqp",
		Host:     c.Host,
		Port:     c.Port,
		Username: c.Username,
		Password: c.Password,
		Vhost:    vhost,
	}.String()
}

// Envelope is the JSON body of every published notification.
type Envelope struct {
	Message   string `json:"message"`
	Recipient string `json:"recipient"`
}

// Publisher owns one connection and one channel. Publishes are serialized
// because an AMQP channel must not be written concurrently.
type Publisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger *slog.Logger
}

var _ ports.Sender = (*Publisher)(nil)

// Dial connects, opens a channel and declares the durable queue.
func Dial(cfg Config, logger *slog.Logger) (*Publisher, error) {
	if cfg.Queue == "" {
		return nil, fmt.Errorf("%w: rabbitmq queue is required", apperrors.ErrSend)
	}
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	conn, err := amqp.DialConfig(cfg.URI(), amqp.Config{
		Dial: amqp.DefaultDial(timeout),
	})
	if err != nil {
		return nil, classifyDial(err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %w", apperrors.ErrNetwork, err)
	}

	if _, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare queue %s: %w", apperrors.ErrNetwork, cfg.Queue, err)
	}

	logger = logger.With("component", "rabbitmq_publisher", "queue", cfg.Queue)
	logger.Info("connected to rabbitmq", "host", cfg.Host, "port", cfg.Port)

	return &Publisher{
		conn:   conn,
		ch:     ch,
		queue:  cfg.Queue,
		logger: logger,
	}, nil
}

// Send publishes a persistent JSON message to the queue.
func (p *Publisher) Send(ctx context.Context, message, recipient string) error {
	body, err := json.Marshal(Envelope{Message: message, Recipient: recipient})
	if err != nil {
		return fmt.Errorf("%w: encode: %w", apperrors.ErrSend, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return fmt.Errorf("%w: publisher is closed", apperrors.ErrSend)
	}

	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: publish to %s: %w", apperrors.ErrSend, p.queue, err)
	}

	p.logger.DebugContext(ctx, "notification published", "recipient", recipient)
	return nil
}

// Ping reports whether the connection is still open.
func (p *Publisher) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("%w: rabbitmq connection closed", apperrors.ErrNetwork)
	}
	return nil
}

// Close closes the channel, then the connection. It is safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return nil
	}
	err := errors.Join(p.ch.Close(), p.conn.Close())
	p.ch, p.conn = nil, nil
	return err
}

func classifyDial(err error) error {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: dial rabbitmq: %w", apperrors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: dial rabbitmq: %w", apperrors.ErrNetwork, err)
}

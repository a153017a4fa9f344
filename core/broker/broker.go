package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"mulligan/core/progress"

	"github.com/nats-io/nats.go"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
}

// Connect opens a NATS connection from the configuration.
func Connect(cfg Config) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("mulligan catalog sync"),
	}

	// if token provided
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return conn, nil
}

// Publisher sends progress events as JSON on a subject.
type Publisher struct {
	conn    Conn
	subject string
}

// NewPublisher creates a progress sink publishing on subject.
func NewPublisher(conn Conn, subject string) *Publisher {
	return &Publisher{conn: conn, subject: subject}
}

// Publish implements progress.Sink.
func (p *Publisher) Publish(_ context.Context, ev progress.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode progress event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish progress event: %w", err)
	}
	return nil
}

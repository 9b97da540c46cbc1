package rabbit

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	heartbeat      = 10 * time.Second
	publishTimeout = 5 * time.Second
)

type Conn struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

// Dial opens a connection and one channel. The connection carries the service
// name so it can be told apart in the broker's management UI.
func Dial(url, service string) (*Conn, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat:  heartbeat,
		Locale:     "en_US",
		Properties: amqp.Table{"connection_name": service},
	})
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	return &Conn{Conn: conn, Ch: ch}, nil
}

func (c *Conn) Close() error {
	if c.Ch != nil {
		_ = c.Ch.Close()
	}
	if c.Conn != nil {
		return c.Conn.Close()
	}
	return nil
}

// Closed yields the broker's reason once the connection drops. Workers treat
// it as fatal and leave reconnecting to the process supervisor.
func (c *Conn) Closed() <-chan *amqp.Error {
	return c.Conn.NotifyClose(make(chan *amqp.Error, 1))
}

func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, publishTimeout)
}

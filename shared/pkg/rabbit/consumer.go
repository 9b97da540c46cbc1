package rabbit

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumeChannel is the part of *amqp.Channel a consumer needs.
type ConsumeChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Consumer struct {
	ch  ConsumeChannel
	tag string
}

func NewConsumer(ch ConsumeChannel, tag string) *Consumer {
	return &Consumer{ch: ch, tag: tag}
}

// Consume starts manual-ack delivery. prefetch <= 0 leaves the broker default.
func (c *Consumer) Consume(queue string, prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch > 0 {
		if err := c.ch.Qos(prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("qos %d: %w", prefetch, err)
		}
	}
	deliveries, err := c.ch.Consume(queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", queue, err)
	}
	return deliveries, nil
}

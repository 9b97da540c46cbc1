package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"ecommerce-storefront/shared/pkg/models"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Consumer turns orders.created events into customer confirmations. Delivery
// is a log line for now; malformed events are rejected to the DLQ.
type Consumer struct {
	Log       zerolog.Logger
	Processed *prometheus.CounterVec
}

func NewProcessedCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_processed_total",
		Help: "Order events handled by the notification worker",
	}, []string{"result"})
	reg.MustRegister(c)
	return c
}

func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.Log.Info().Msg("notification consumer stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				c.Log.Info().Msg("deliveries closed")
				return
			}
			c.handle(d)
		}
	}
}

func (c *Consumer) handle(d amqp.Delivery) {
	if d.RoutingKey != models.EventOrderPlaced {
		c.Log.Warn().Str("rk", d.RoutingKey).Msg("unexpected routing key -> ack")
		c.count("skipped")
		_ = d.Ack(false)
		return
	}

	var evt models.Event[models.OrderPlacedPayload]
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		c.Log.Error().Err(err).Str("rk", d.RoutingKey).Msg("bad json -> dlq")
		c.count("rejected")
		_ = d.Nack(false, false)
		return
	}
	if err := evt.Check(); err != nil || evt.Payload.Email == "" {
		c.Log.Error().Err(err).Str("rk", d.RoutingKey).Str("event_id", evt.ID).Msg("incomplete event -> dlq")
		c.count("rejected")
		_ = d.Nack(false, false)
		return
	}

	c.Log.Info().
		Str("order_id", evt.OrderID).
		Str("email", evt.Payload.Email).
		Str("total", evt.Payload.TotalAmount).
		Msg(Confirmation(evt.Payload))

	c.count("sent")
	_ = d.Ack(false)
}

func (c *Consumer) count(result string) {
	if c.Processed != nil {
		c.Processed.WithLabelValues(result).Inc()
	}
}

// Confirmation renders the message a customer receives for a placed order.
func Confirmation(p models.OrderPlacedPayload) string {
	noun := "items"
	if p.Items == 1 {
		noun = "item"
	}
	return fmt.Sprintf("Hi %s %s, we received your order of %d %s totalling %s. It will ship to %s.",
		p.Firstname, p.Lastname, p.Items, noun, p.TotalAmount, p.Address)
}

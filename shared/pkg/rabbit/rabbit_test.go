package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	published []published
	err       error

	exchanges []string
	queues    map[string]amqp.Table
	binds     []string
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.exchanges = append(f.exchanges, name+":"+kind)
	return f.err
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if f.queues == nil {
		f.queues = map[string]amqp.Table{}
	}
	f.queues[name] = args
	return amqp.Queue{Name: name}, f.err
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	f.binds = append(f.binds, exchange+"/"+key+"->"+name)
	return f.err
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := NewPublisher(ch, ExchangeEvents)

	err := p.Publish(context.Background(), "orders.created", []byte(`{"id":"e1"}`), amqp.Table{"x-attempts": int32(0)})
	require.NoError(t, err)

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, ExchangeEvents, got.exchange)
	assert.Equal(t, "orders.created", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, int32(0), got.msg.Headers["x-attempts"])

	var body map[string]string
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "e1", body["id"])
}

func TestPublisher_PropagatesError(t *testing.T) {
	p := NewPublisher(&fakeChannel{err: errors.New("channel closed")}, ExchangeEvents)
	assert.EqualError(t, p.Publish(context.Background(), "k", []byte("{}"), nil), "channel closed")
}

func TestDeclareQueueWithDLQ(t *testing.T) {
	ch := &fakeChannel{}

	require.NoError(t, DeclareBase(ch))
	require.NoError(t, DeclareQueueWithDLQ(ch, QueueSpec{
		Name:     "notification.q",
		BindKeys: []string{"orders.created"},
		DLQ:      "notification.dlq",
	}))

	assert.Equal(t, []string{"orders.events:topic", "orders.dlx:topic"}, ch.exchanges)
	assert.Equal(t, ExchangeDLX, ch.queues["notification.q"]["x-dead-letter-exchange"])
	assert.Equal(t, "notification.dlq", ch.queues["notification.q"]["x-dead-letter-routing-key"])
	assert.Contains(t, ch.queues, "notification.dlq")
	assert.Equal(t, []string{
		"orders.events/orders.created->notification.q",
		"orders.dlx/notification.dlq->notification.dlq",
	}, ch.binds)
}

type fakeConsumeChannel struct {
	prefetch int
	queue    string
	tag      string
	autoAck  bool
	qosErr   error
}

func (f *fakeConsumeChannel) Qos(prefetchCount, _ int, _ bool) error {
	f.prefetch = prefetchCount
	return f.qosErr
}

func (f *fakeConsumeChannel) Consume(queue, consumer string, autoAck, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	f.queue, f.tag, f.autoAck = queue, consumer, autoAck
	return make(chan amqp.Delivery), nil
}

func TestConsumer_Consume(t *testing.T) {
	ch := &fakeConsumeChannel{}

	d, err := NewConsumer(ch, "notification-service").Consume("notification.q", 50)
	require.NoError(t, err)
	assert.NotNil(t, d)
	assert.Equal(t, 50, ch.prefetch)
	assert.Equal(t, "notification.q", ch.queue)
	assert.Equal(t, "notification-service", ch.tag)
	assert.False(t, ch.autoAck)
}

func TestConsumer_ZeroPrefetchSkipsQos(t *testing.T) {
	ch := &fakeConsumeChannel{qosErr: errors.New("should not be called")}

	_, err := NewConsumer(ch, "t").Consume("q", 0)
	require.NoError(t, err)
	assert.Zero(t, ch.prefetch)
}

func TestConsumer_QosError(t *testing.T) {
	ch := &fakeConsumeChannel{qosErr: errors.New("channel closed")}

	_, err := NewConsumer(ch, "t").Consume("q", 10)
	assert.EqualError(t, err, "qos 10: channel closed")
}

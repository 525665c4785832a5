package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/swimdesk/internal/domain"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisherPublishEnrollment(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{channel: ch, exchange: "swimschool.enrollments"}

	usage := domain.CapacityResult{Filled: 3, EffectiveCapacity: 6, OpenSeats: 3}
	err := p.PublishEnrollment(context.Background(), EnrollmentEvent{
		Type:         KeyEnrollmentCreated,
		EnrollmentID: 40,
		SessionID:    12,
		SwimmerID:    7,
		ClassRatio:   "1:1",
		Usage:        &usage,
	})
	require.NoError(t, err)
	require.Len(t, ch.sent, 1)

	sent := ch.sent[0]
	assert.Equal(t, "swimschool.enrollments", sent.exchange)
	assert.Equal(t, "enrollment.created", sent.key)
	assert.Equal(t, "application/json", sent.msg.ContentType)
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
	assert.False(t, sent.msg.Timestamp.IsZero())

	var body EnrollmentEvent
	require.NoError(t, json.Unmarshal(sent.msg.Body, &body))
	assert.Equal(t, int64(40), body.EnrollmentID)
	assert.Equal(t, usage, *body.Usage)
}

func TestRabbitPublisherKeepsOccurredAt(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{channel: ch, exchange: "x"}
	at := time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC)

	require.NoError(t, p.PublishEnrollment(context.Background(), EnrollmentEvent{Type: KeyEnrollmentCanceled, OccurredAt: at}))
	assert.Equal(t, at, ch.sent[0].msg.Timestamp)
}

func TestRabbitPublisherError(t *testing.T) {
	p := &RabbitPublisher{channel: &fakeChannel{err: errors.New("channel closed")}, exchange: "x"}
	err := p.PublishEnrollment(context.Background(), EnrollmentEvent{Type: KeyEnrollmentTransferred})
	assert.ErrorContains(t, err, "enrollment.transferred")
}

func TestRabbitPublisherClose(t *testing.T) {
	ch := &fakeChannel{}
	p := &RabbitPublisher{channel: ch}
	assert.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishEnrollment(context.Background(), EnrollmentEvent{}))
	assert.NoError(t, p.Close())
}

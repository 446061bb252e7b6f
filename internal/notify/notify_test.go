package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/bursar/internal/application"
	"github.com/MrJamesThe3rd/bursar/internal/notify"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	published  []published
	publishErr error
	closed     bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, _, _, _, _ bool, _ amqp.Table) error {
	c.declared = append(c.declared, name+":"+kind)
	return nil
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.publishErr != nil {
		return c.publishErr
	}

	c.published = append(c.published, published{exchange: exchange, key: key, msg: msg})

	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func event(to application.Status) application.Event {
	return application.Event{
		ApplicationID: uuid.New(),
		URN:           "URN-2026-000001",
		From:          application.StatusApprovedBySAG,
		To:            to,
		ActorRole:     application.RoleSystem,
		Timestamp:     time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC),
	}
}

func TestPublisher_Notify(t *testing.T) {
	ch := &fakeChannel{}

	p, err := notify.NewPublisher(ch, "bursar.events")
	require.NoError(t, err)
	assert.Equal(t, []string{"bursar.events:topic"}, ch.declared)

	e := event(application.StatusPendingFinance)
	require.NoError(t, p.Notify(context.Background(), e))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "bursar.events", got.exchange)
	assert.Equal(t, "application.pending_finance", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "PENDING_FINANCE", body["to_status"])
	assert.Equal(t, "APPROVED_BY_SAG", body["from_status"])
	assert.Equal(t, "system", body["actor_role"])
	assert.NotContains(t, body, "actor_id")

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_NotifyError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}

	p, err := notify.NewPublisher(ch, "bursar.events")
	require.NoError(t, err)

	assert.Error(t, p.Notify(context.Background(), event(application.StatusPaid)))
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "application.rejected_by_sag", notify.RoutingKey(application.StatusRejectedBySAG))
	assert.Equal(t, "application.paid", notify.RoutingKey(application.StatusPaid))
}

type countingEmitter struct {
	calls int
	err   error
}

func (c *countingEmitter) Notify(context.Context, application.Event) error {
	c.calls++
	return c.err
}

func TestMulti(t *testing.T) {
	failing := &countingEmitter{err: errors.New("broker down")}
	ok := &countingEmitter{}

	m := notify.Multi{notify.Logger{}, failing, ok}

	err := m.Notify(context.Background(), event(application.StatusPaid))
	assert.ErrorIs(t, err, failing.err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)

	assert.NoError(t, notify.Multi{ok}.Notify(context.Background(), event(application.StatusPaid)))
}

package listeners

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedidos-system/internal/lifecycle"
	"pedidos-system/pkg/constants"
)

type capturePublisher struct {
	queue string
	msgs  []amqp.Publishing
	err   error
}

func (c *capturePublisher) Publish(_ context.Context, queue string, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.queue = queue
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestBuildMirrorPublishing(t *testing.T) {
	e := concludedEvent(carlaActor)

	msg, err := BuildMirrorPublishing(e)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, constants.NotifyPedidoConcluido, msg.Type)

	var decoded MirrorMessage
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, int64(10), decoded.PedidoID)
	assert.Equal(t, "Granjas", decoded.Setor)
	assert.Equal(t, "concluded", decoded.Transition)
	assert.Equal(t, "carla@araldi.com", decoded.Actor)
	assert.True(t, decoded.OccurredAt.Equal(time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)))
	require.Len(t, decoded.Changes, 1)
	assert.Empty(t, decoded.SetorAnterior)
}

func TestBuildMirrorPublishingCarriesPreviousSector(t *testing.T) {
	e := concludedEvent(carlaActor)
	e.Order.Setor = "Oficina"
	e.Diffs = append(e.Diffs, lifecycle.Diff{Field: lifecycle.FieldSetor, Label: "Setor", Old: "Granjas", New: "Oficina"})

	msg, err := BuildMirrorPublishing(e)
	require.NoError(t, err)

	var decoded MirrorMessage
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "Oficina", decoded.Setor)
	assert.Equal(t, "Granjas", decoded.SetorAnterior)
}

func TestAMQPMirrorPublishesToQueue(t *testing.T) {
	pub := &capturePublisher{}
	l := NewAMQPMirrorListener(pub, "pedidos.eventos", zap.NewNop())

	require.NoError(t, l.handleOrderChanged(context.Background(), concludedEvent(carlaActor)))
	assert.Equal(t, "pedidos.eventos", pub.queue)
	assert.Len(t, pub.msgs, 1)
}

func TestAMQPMirrorReturnsPublishError(t *testing.T) {
	pub := &capturePublisher{err: errors.New("connection refused")}
	l := NewAMQPMirrorListener(pub, "pedidos.eventos", zap.NewNop())

	assert.Error(t, l.handleOrderChanged(context.Background(), concludedEvent(carlaActor)))
}

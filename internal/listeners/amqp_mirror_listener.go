package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"pedidos-system/internal/events"
	"pedidos-system/internal/lifecycle"
	"pedidos-system/pkg/eventbus"
)

// QueuePublisher публикует одно сообщение в очередь.
type QueuePublisher interface {
	Publish(ctx context.Context, queue string, msg amqp.Publishing) error
}

// dialPublisher открывает соединение на каждую публикацию. Событий мало,
// держать канал открытым незачем.
type dialPublisher struct {
	url string
}

func NewDialPublisher(url string) QueuePublisher {
	return &dialPublisher{url: url}
}

func (p *dialPublisher) Publish(ctx context.Context, queue string, msg amqp.Publishing) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	return ch.PublishWithContext(ctx, "", queue, false, false, msg)
}

// MirrorMessage - событие заказа в том виде, в котором оно уходит в очередь.
type MirrorMessage struct {
	Kind          string           `json:"kind"`
	PedidoID      int64            `json:"pedido_id"`
	Setor         string           `json:"setor"`
	SetorAnterior string           `json:"setor_anterior,omitempty"`
	Status        string           `json:"status"`
	Transition    string           `json:"transition"`
	Actor         string           `json:"actor"`
	Changes       []lifecycle.Diff `json:"changes,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

type AMQPMirrorListener struct {
	publisher QueuePublisher
	queue     string
	logger    *zap.Logger
}

func NewAMQPMirrorListener(publisher QueuePublisher, queue string, logger *zap.Logger) *AMQPMirrorListener {
	return &AMQPMirrorListener{publisher: publisher, queue: queue, logger: logger}
}

func (l *AMQPMirrorListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderChanged, l.handleOrderChanged)
	l.logger.Info("AMQPMirrorListener подписан на событие", zap.String("event", events.OrderChanged), zap.String("queue", l.queue))
}

func (l *AMQPMirrorListener) handleOrderChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderChangedEvent)
	if !ok {
		return nil
	}
	msg, err := BuildMirrorPublishing(e)
	if err != nil {
		return err
	}
	if err := l.publisher.Publish(ctx, l.queue, msg); err != nil {
		return fmt.Errorf("не удалось опубликовать событие в %s: %w", l.queue, err)
	}
	l.logger.Debug("Событие отправлено в очередь", zap.Int64("orderID", e.Order.ID), zap.String("queue", l.queue))
	return nil
}

func BuildMirrorPublishing(e events.OrderChangedEvent) (amqp.Publishing, error) {
	prev, _ := e.PreviousSetor()
	body, err := json.Marshal(MirrorMessage{
		Kind:          e.Kind,
		PedidoID:      e.Order.ID,
		Setor:         e.Setor(),
		SetorAnterior: prev,
		Status:        e.Order.Status,
		Transition:    e.Transition.String(),
		Actor:         e.Actor.Username,
		Changes:       e.Diffs,
		OccurredAt:    e.OccurredAt,
	})
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         e.Kind,
		Body:         body,
	}, nil
}

package listeners

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pedidos-system/internal/authz"
	"pedidos-system/internal/entities"
	"pedidos-system/internal/events"
	"pedidos-system/internal/repositories"
	"pedidos-system/pkg/config"
	"pedidos-system/pkg/constants"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/eventbus"
	"pedidos-system/pkg/utils"
	"pedidos-system/pkg/websocket"
)

// SessionDirectory - чтение из реестра подключений.
type SessionDirectory interface {
	SessionsOf(name string) []websocket.Session
}

type NotificationListener struct {
	userRepo repositories.UserRepositoryInterface
	sessions SessionDirectory
	cfg      config.NotificationConfig
	logger   *zap.Logger
}

func NewNotificationListener(
	userRepo repositories.UserRepositoryInterface,
	sessions SessionDirectory,
	cfg config.NotificationConfig,
	logger *zap.Logger,
) *NotificationListener {
	return &NotificationListener{
		userRepo: userRepo,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OrderChanged, l.handleOrderChanged)
	l.logger.Info("NotificationListener подписан на событие", zap.String("event", events.OrderChanged))
}

func (l *NotificationListener) handleOrderChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.OrderChangedEvent)
	if !ok {
		return nil
	}

	recipients, err := l.Route(ctx, e)
	if err != nil {
		return fmt.Errorf("не удалось определить получателей: %w", err)
	}
	if len(recipients) == 0 {
		l.logger.Debug("Нет получателей уведомления", zap.Int64("orderID", e.Order.ID))
		return nil
	}

	envelope := websocket.NewEnvelope(websocket.MessageNotification, BuildPayload(e))
	pushed := l.deliver(recipients, envelope, e.Order.ID)

	l.logger.Info("Уведомление разослано",
		zap.Int64("orderID", e.Order.ID),
		zap.String("kind", e.Kind),
		zap.Int("recipients", len(recipients)),
		zap.Int("sessions", pushed),
	)
	return nil
}

// Route решает, кому отправить уведомление. Каждый пользователь
// рассматривается один раз, автор события исключается всегда.
func (l *NotificationListener) Route(ctx context.Context, e events.OrderChangedEvent) ([]string, error) {
	users, err := l.userRepo.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	setores := make([]string, 0, 2)
	for _, s := range e.Setores() {
		setores = append(setores, utils.NormalizeSector(s))
	}
	seen := make(map[string]struct{}, len(users))
	recipients := make([]string, 0, len(users))

	for i := range users {
		u := &users[i]
		if u.Username == "" || u.Username == e.Actor.Username {
			continue
		}
		if _, dup := seen[u.Username]; dup {
			continue
		}
		if !l.wants(u, setores, e.Order.ID) {
			continue
		}
		seen[u.Username] = struct{}{}
		recipients = append(recipients, u.Username)
	}
	return recipients, nil
}

func (l *NotificationListener) wants(u *entities.User, setores []string, orderID int64) bool {
	if authz.Privileged(u) {
		return true
	}
	userSetor := utils.NormalizeSector(u.Setor)
	for _, setor := range setores {
		if userSetor == setor {
			return true
		}
	}
	// Сравнение точное: "granjas" и "Granjas" - разные setor.
	if l.cfg.WarnSectorMismatch {
		for _, setor := range setores {
			if strings.EqualFold(userSetor, setor) {
				l.logger.Warn("Setor пользователя отличается от setor заказа только регистром, уведомление не отправлено",
					zap.String("username", u.Username),
					zap.String("userSetor", u.Setor),
					zap.String("orderSetor", setor),
					zap.Int64("orderID", orderID),
				)
			}
		}
	}
	return false
}

// deliver отправляет конверт во все сессии получателей. Ошибка одной сессии
// не прерывает остальные. Возвращает число успешных отправок.
func (l *NotificationListener) deliver(recipients []string, envelope websocket.Envelope, orderID int64) int {
	pushed := 0
	for _, username := range recipients {
		for _, session := range l.sessions.SessionsOf(username) {
			utils.BestEffort(l.logger, "push_notificacao", func() error {
				if err := session.Push(envelope); err != nil {
					return fmt.Errorf("%w: %v", apperrors.ErrDeliveryFailed, err)
				}
				pushed++
				return nil
			}, zap.String("username", username), zap.String("session", session.ID()), zap.Int64("orderID", orderID))
		}
	}
	return pushed
}

// BuildPayload собирает уведомление о событии заказа.
func BuildPayload(e events.OrderChangedEvent) websocket.NotificationPayload {
	title, message := describe(e)

	var changes []websocket.ChangeInfo
	for _, d := range e.Diffs {
		changes = append(changes, websocket.ChangeInfo{Field: d.Label, Old: d.Old, New: d.New})
	}

	return websocket.NotificationPayload{
		EventID:   uuid.NewString(),
		Type:      e.Kind,
		Title:     title,
		Message:   message,
		Actor:     websocket.ActorInfo{Name: e.Actor.Nome},
		Pedido:    e.Order,
		Changes:   changes,
		CreatedAt: e.OccurredAt,
	}
}

func describe(e events.OrderChangedEvent) (title, message string) {
	id, actor := e.Order.ID, e.Actor.Nome
	switch e.Kind {
	case constants.NotifyPedidoCriado:
		return "Novo pedido", fmt.Sprintf("%s criou o pedido #%d: %s", actor, id, e.Order.Descricao)
	case constants.NotifyPedidoConcluido:
		return "Pedido concluído", fmt.Sprintf("%s concluiu o pedido #%d", actor, id)
	case constants.NotifyPedidoCancelado:
		return "Pedido cancelado", fmt.Sprintf("%s cancelou o pedido #%d", actor, id)
	}
	return "Pedido atualizado", fmt.Sprintf("%s atualizou o pedido #%d", actor, id)
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"pedidos-system/internal/authz"
	"pedidos-system/internal/dto"
	"pedidos-system/internal/entities"
	"pedidos-system/internal/events"
	"pedidos-system/internal/lifecycle"
	"pedidos-system/internal/repositories"
	"pedidos-system/pkg/constants"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/eventbus"
	"pedidos-system/pkg/types"
)

// EventPublisher - то, что нужно сервису от шины. Publish не блокирует.
type EventPublisher interface {
	Publish(event eventbus.Event)
}

type OrderServiceInterface interface {
	MutateOrder(ctx context.Context, orderID int64, patch lifecycle.Patch, actorIdentity string, meta *dto.RequestMeta) (*entities.Order, error)
	GetHistory(ctx context.Context, orderID int64, actorIdentity string) ([]entities.HistoryRecord, error)
	CreateOrder(ctx context.Context, patch lifecycle.Patch, actorIdentity string, meta *dto.RequestMeta) (*entities.Order, error)
	ListOrders(ctx context.Context, filter types.Filter, actorIdentity string) ([]entities.Order, uint64, error)
	FindOrder(ctx context.Context, orderID int64, actorIdentity string) (*entities.Order, error)
}

type OrderService struct {
	txManager repositories.TxManagerInterface
	orderRepo repositories.OrderRepositoryInterface
	auth      AuthServiceInterface
	audit     AuditRecorderInterface
	activity  ActivityLoggerInterface
	evaluator *authz.Evaluator
	machine   *lifecycle.Machine
	bus       EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrderService(
	txManager repositories.TxManagerInterface,
	orderRepo repositories.OrderRepositoryInterface,
	auth AuthServiceInterface,
	audit AuditRecorderInterface,
	activity ActivityLoggerInterface,
	evaluator *authz.Evaluator,
	machine *lifecycle.Machine,
	bus EventPublisher,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		txManager: txManager,
		orderRepo: orderRepo,
		auth:      auth,
		audit:     audit,
		activity:  activity,
		evaluator: evaluator,
		machine:   machine,
		bus:       bus,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *OrderService) authorize(action authz.Action, actor *entities.User, order *entities.Order) error {
	decision := s.evaluator.Evaluate(action, actor, order)
	if decision.Allowed {
		return nil
	}
	s.logger.Info("Доступ запрещён",
		zap.String("verb", action.Verb),
		zap.String("actor", actor.Username),
		zap.Int64("orderID", order.ID),
		zap.String("reason", decision.Reason),
	)
	return apperrors.NewPermissionDenied(decision.Reason)
}

// MutateOrder: authz -> машина состояний -> запись заказа и истории в одной
// транзакции -> журнал активности -> событие для рассылки. Ответ не ждет рассылку.
func (s *OrderService) MutateOrder(ctx context.Context, orderID int64, patch lifecycle.Patch, actorIdentity string, meta *dto.RequestMeta) (*entities.Order, error) {
	start := s.now()

	actor, err := s.auth.ResolveIdentity(ctx, actorIdentity)
	if err != nil {
		return nil, err
	}
	current, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	action := authz.Action{Verb: authz.PedidosEdit, Fields: patch.Touches(current)}
	if err := s.authorize(action, actor, current); err != nil {
		return nil, err
	}

	res, err := s.machine.Apply(current, patch, lifecycle.Options{Privileged: authz.Privileged(actor), Now: start})
	if err != nil {
		return nil, err
	}
	if len(res.Diffs) == 0 {
		s.logger.Debug("Патч ничего не изменил", zap.Int64("orderID", orderID))
		return current, nil
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.orderRepo.PersistOrderInTx(ctx, tx, res.Order); err != nil {
			return err
		}
		return s.audit.RecordInTx(ctx, tx, orderID, res.Diffs, actor.Nome, start.UTC())
	})
	if err != nil {
		return nil, err
	}

	tipo, descricao := describeMutation(res, actor)
	s.activity.Log(ctx, ActivityEntry{
		Tipo:      tipo,
		Descricao: descricao,
		Actor:     actor.Nome,
		PedidoID:  orderID,
		Meta:      meta,
		Extra:     map[string]interface{}{"campos": diffLabels(res.Diffs)},
	})

	s.bus.Publish(events.OrderChangedEvent{
		Kind:       notificationKind(res.Transition),
		Order:      *res.Order,
		Diffs:      res.Diffs,
		Transition: res.Transition,
		Actor:      events.Actor{Username: actor.Username, Nome: actor.Nome},
		OccurredAt: start.UTC(),
	})

	s.logger.Info("Pedido atualizado com sucesso",
		zap.Int64("orderID", orderID),
		zap.String("actor", actor.Username),
		zap.String("transition", res.Transition.String()),
		zap.Int("diffs", len(res.Diffs)),
	)
	return res.Order, nil
}

func (s *OrderService) CreateOrder(ctx context.Context, patch lifecycle.Patch, actorIdentity string, meta *dto.RequestMeta) (*entities.Order, error) {
	start := s.now()

	actor, err := s.auth.ResolveIdentity(ctx, actorIdentity)
	if err != nil {
		return nil, err
	}
	order, err := s.machine.New(patch, actor, start)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(authz.Action{Verb: authz.PedidosCreate}, actor, order); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		id, err := s.orderRepo.NextIDInTx(ctx, tx)
		if err != nil {
			return err
		}
		order.ID = id
		return s.orderRepo.PersistOrderInTx(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Log(ctx, ActivityEntry{
		Tipo:      constants.ActivityCriacao,
		Descricao: fmt.Sprintf("Pedido #%d criado por %s", order.ID, actor.Nome),
		Actor:     actor.Nome,
		PedidoID:  order.ID,
		Meta:      meta,
	})
	s.bus.Publish(events.OrderChangedEvent{
		Kind:       constants.NotifyPedidoCriado,
		Order:      *order,
		Actor:      events.Actor{Username: actor.Username, Nome: actor.Nome},
		OccurredAt: start.UTC(),
	})

	s.logger.Info("Pedido criado com sucesso", zap.Int64("orderID", order.ID), zap.String("actor", actor.Username))
	return order, nil
}

// ListOrders: comum видит только свой setor, что бы ни пришло в filter[setor].
func (s *OrderService) ListOrders(ctx context.Context, filter types.Filter, actorIdentity string) ([]entities.Order, uint64, error) {
	actor, err := s.auth.ResolveIdentity(ctx, actorIdentity)
	if err != nil {
		return nil, 0, err
	}
	if !authz.Privileged(actor) {
		if filter.Filter == nil {
			filter.Filter = make(map[string]string)
		}
		filter.Filter["setor"] = actor.Setor
	}
	return s.orderRepo.List(ctx, filter)
}

func (s *OrderService) FindOrder(ctx context.Context, orderID int64, actorIdentity string) (*entities.Order, error) {
	actor, err := s.auth.ResolveIdentity(ctx, actorIdentity)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(authz.Action{Verb: authz.PedidosView}, actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetHistory - те же правила видимости, что и у чтения заказа. Новые записи первыми.
func (s *OrderService) GetHistory(ctx context.Context, orderID int64, actorIdentity string) ([]entities.HistoryRecord, error) {
	if _, err := s.FindOrder(ctx, orderID, actorIdentity); err != nil {
		return nil, err
	}
	return s.audit.History(ctx, orderID)
}

func notificationKind(t lifecycle.Transition) string {
	switch t {
	case lifecycle.TransitionConcluded:
		return constants.NotifyPedidoConcluido
	case lifecycle.TransitionCancelled:
		return constants.NotifyPedidoCancelado
	}
	return constants.NotifyPedidoAtualizado
}

func describeMutation(res *lifecycle.Result, actor *entities.User) (tipo, descricao string) {
	id := res.Order.ID
	switch res.Transition {
	case lifecycle.TransitionConcluded:
		return constants.ActivityConclusao, fmt.Sprintf("Pedido #%d concluído por %s", id, actor.Nome)
	case lifecycle.TransitionCancelled:
		return constants.ActivityCancelamento, fmt.Sprintf("Pedido #%d cancelado por %s", id, actor.Nome)
	case lifecycle.TransitionReopened:
		return constants.ActivityReabertura, fmt.Sprintf("Pedido #%d reaberto por %s", id, actor.Nome)
	}
	return constants.ActivityEdicao, fmt.Sprintf("Pedido #%d editado por %s", id, actor.Nome)
}

func diffLabels(diffs []lifecycle.Diff) []string {
	out := make([]string, len(diffs))
	for i, d := range diffs {
		out[i] = d.Label
	}
	return out
}

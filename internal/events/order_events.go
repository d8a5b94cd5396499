package events

import (
	"time"

	"pedidos-system/internal/entities"
	"pedidos-system/internal/lifecycle"
)

const OrderChanged = "order.changed"

// Actor - кто совершил действие. Username - identity в реестре подключений.
type Actor struct {
	Username string
	Nome     string
}

// OrderChangedEvent публикуется после успешной записи заказа: создание,
// правка, смена статуса.
type OrderChangedEvent struct {
	Kind       string
	Order      entities.Order
	Diffs      []lifecycle.Diff
	Transition lifecycle.Transition
	Actor      Actor
	OccurredAt time.Time
}

// Name - реализуем интерфейс eventbus.Event
func (e OrderChangedEvent) Name() string {
	return OrderChanged
}

// Setor - текущий setor заказа.
func (e OrderChangedEvent) Setor() string {
	return e.Order.Setor
}

// PreviousSetor - откуда заказ перенесли, если правка меняла setor.
func (e OrderChangedEvent) PreviousSetor() (string, bool) {
	for _, d := range e.Diffs {
		if d.Field == lifecycle.FieldSetor && d.Old != "" && d.Old != d.New {
			return d.Old, true
		}
	}
	return "", false
}

// Setores, по которым маршрутизируются уведомления: текущий и, при переносе,
// прежний. Прежний setor тоже должен узнать, что заказ ушел.
func (e OrderChangedEvent) Setores() []string {
	setores := []string{e.Order.Setor}
	if prev, ok := e.PreviousSetor(); ok {
		setores = append(setores, prev)
	}
	return setores
}

package lifecycle

import (
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"pedidos-system/internal/entities"
	"pedidos-system/pkg/constants"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/utils"
)

type Transition int

const (
	TransitionNone Transition = iota
	TransitionConcluded
	TransitionCancelled
	TransitionReopened
)

func (t Transition) String() string {
	switch t {
	case TransitionConcluded:
		return "concluded"
	case TransitionCancelled:
		return "cancelled"
	case TransitionReopened:
		return "reopened"
	}
	return "none"
}

func transitionOf(before, after string) Transition {
	if before == after {
		return TransitionNone
	}
	switch {
	case after == constants.StatusConcluido:
		return TransitionConcluded
	case after == constants.StatusCancelado:
		return TransitionCancelled
	case after == constants.StatusPendente && constants.IsFinalStatus(before):
		return TransitionReopened
	}
	return TransitionNone
}

type Options struct {
	// Privileged - актор admin или gestor. Без этого setor из патча игнорируется.
	Privileged bool
	Now        time.Time
}

type Result struct {
	Order      *entities.Order
	Diffs      []Diff
	Transition Transition
}

type Machine struct {
	logger *zap.Logger
}

func NewMachine(logger *zap.Logger) *Machine {
	return &Machine{logger: logger}
}

// Apply применяет патч к копии заказа. При ошибке исходный заказ не тронут и
// диффов нет.
func (m *Machine) Apply(order *entities.Order, patch Patch, opts Options) (*Result, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	next := order.Clone()
	if err := m.applyFields(next, order.ID, patch, opts.Privileged); err != nil {
		return nil, err
	}

	explicitConclusao, err := m.conclusionFromPatch(order.ID, patch, now)
	if err != nil {
		return nil, err
	}

	if patch.Status.Set {
		if patch.Status.Null {
			return nil, apperrors.NewValidationError(FieldStatus, "status não pode ser nulo")
		}
		status := NormalizeStatus(strings.TrimSpace(patch.Status.Value))
		if !constants.IsValidStatus(status) {
			return nil, apperrors.NewValidationError(FieldStatus, "status desconhecido: %q", patch.Status.Value)
		}
		next.Status = status
	}

	switch {
	case next.Status != constants.StatusConcluido:
		next.ConclusaoData = null.Time{}
	case explicitConclusao.Valid:
		next.ConclusaoData = explicitConclusao
	case order.Status != constants.StatusConcluido || !next.ConclusaoData.Valid:
		next.ConclusaoData = null.TimeFrom(now)
	}

	next.UpdatedAt = now
	return &Result{
		Order:      next,
		Diffs:      Compute(order, next),
		Transition: transitionOf(order.Status, next.Status),
	}, nil
}

// New собирает новый заказ в статусе Pendente по тем же правилам разбора.
func (m *Machine) New(patch Patch, creator *entities.User, now time.Time) (*entities.Order, error) {
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	if !patch.Descricao.Present() || strings.TrimSpace(patch.Descricao.Value) == "" {
		return nil, apperrors.NewValidationError(FieldDescricao, "descrição é obrigatória")
	}
	if patch.Status.Set {
		if patch.Status.Null || strings.TrimSpace(patch.Status.Value) != constants.StatusPendente {
			return nil, apperrors.NewValidationError(FieldStatus, "novo pedido é sempre criado como %s", constants.StatusPendente)
		}
		patch.Status = Optional[string]{}
	}
	if !patch.Setor.Present() || strings.TrimSpace(patch.Setor.Value) == "" {
		patch.Setor = Some(creator.Setor)
	}

	base := &entities.Order{
		Quantidade:  1,
		Urgencia:    constants.UrgenciaPadrao,
		Status:      constants.StatusPendente,
		UsuarioNome: creator.Nome,
	}
	// Setor нового заказа задается всегда, право на него проверяет authz.
	res, err := m.Apply(base, patch, Options{Privileged: true, Now: now})
	if err != nil {
		return nil, err
	}
	res.Order.CreatedAt = now
	return res.Order, nil
}

func (m *Machine) applyFields(next *entities.Order, orderID int64, p Patch, privileged bool) error {
	if p.Descricao.Set {
		if p.Descricao.Null || strings.TrimSpace(p.Descricao.Value) == "" {
			return apperrors.NewValidationError(FieldDescricao, "descrição não pode ser vazia")
		}
		next.Descricao = strings.TrimSpace(p.Descricao.Value)
	}

	if p.Quantidade.Set {
		if p.Quantidade.Null {
			return apperrors.NewValidationError(FieldQuantidade, "quantidade não pode ser nula")
		}
		q, err := parseQuantidade(p.Quantidade.Value)
		if err != nil {
			return err
		}
		next.Quantidade = q
	}

	if p.Categoria.Set {
		next.Categoria = strings.TrimSpace(p.Categoria.Value)
	}

	if p.Urgencia.Set {
		u := constants.UrgenciaPadrao
		if p.Urgencia.Present() && p.Urgencia.Value != "" {
			u = p.Urgencia.Value
		}
		if !constants.IsValidUrgencia(u) {
			return apperrors.NewValidationError(FieldUrgencia, "urgência inválida: %q", p.Urgencia.Value)
		}
		next.Urgencia = u
	}

	if p.Setor.Set {
		if privileged {
			setor := utils.NormalizeSector(p.Setor.Value)
			if p.Setor.Null || !constants.IsValidSetor(setor) {
				return apperrors.NewValidationError(FieldSetor, "setor inválido: %q", p.Setor.Value)
			}
			next.Setor = setor
		} else if utils.NormalizeSector(p.Setor.Value) != next.Setor {
			m.logger.Warn("Изменение setor без прав проигнорировано",
				zap.Int64("orderID", orderID),
				zap.String("setor", p.Setor.Value),
			)
		}
	}

	if p.Observacao.Set {
		next.Observacao = optionalString(p.Observacao)
	}
	if p.Anexo.Set {
		next.Anexo = optionalString(p.Anexo)
	}

	if p.DeliveryDate.Set {
		if p.DeliveryDate.Null {
			next.DeliveryDate = null.Time{}
		} else {
			t, err := parseDate(FieldDeliveryDate, p.DeliveryDate.Value)
			if err != nil {
				return err
			}
			next.DeliveryDate = null.TimeFrom(t)
		}
	}

	if p.OrcamentoPrevisto.Set {
		v, err := optionalMoney(FieldOrcamentoPrevisto, p.OrcamentoPrevisto)
		if err != nil {
			return err
		}
		next.OrcamentoPrevisto = v
	}
	if p.CustoReal.Set {
		v, err := optionalMoney(FieldCustoReal, p.CustoReal)
		if err != nil {
			return err
		}
		next.CustoReal = v
	}
	return nil
}

// conclusionFromPatch: явный conclusao_data важнее completionDate. Неверный
// conclusao_data - ошибка, неверный completionDate - now и предупреждение.
func (m *Machine) conclusionFromPatch(orderID int64, p Patch, now time.Time) (null.Time, error) {
	if p.ConclusaoData.Present() {
		t, err := parseDate(FieldConclusaoData, p.ConclusaoData.Value)
		if err != nil {
			return null.Time{}, err
		}
		return null.TimeFrom(t), nil
	}
	if p.ConclusaoData.Set {
		return null.Time{}, nil
	}

	if !p.CompletionDate.Set {
		return null.Time{}, nil
	}
	if p.CompletionDate.Null {
		return null.TimeFrom(now), nil
	}
	t, err := parseDate(FieldCompletionDate, p.CompletionDate.Value)
	if err != nil {
		m.logger.Warn("Некорректный completionDate, используется текущее время",
			zap.Int64("orderID", orderID),
			zap.String("completionDate", p.CompletionDate.Value),
		)
		return null.TimeFrom(now), nil
	}
	return null.TimeFrom(t), nil
}

func optionalString(v Optional[string]) null.String {
	if v.Null || strings.TrimSpace(v.Value) == "" {
		return null.String{}
	}
	return null.StringFrom(v.Value)
}

func optionalMoney(field string, v Optional[string]) (null.Float64, error) {
	if v.Null || strings.TrimSpace(v.Value) == "" {
		return null.Float64{}, nil
	}
	f, err := parseMoney(field, v.Value)
	if err != nil {
		return null.Float64{}, err
	}
	return null.Float64From(f), nil
}

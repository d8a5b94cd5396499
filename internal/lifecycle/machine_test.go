package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pedidos-system/internal/entities"
	"pedidos-system/pkg/constants"
	apperrors "pedidos-system/pkg/errors"
)

var fixedNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

func pendingOrder() *entities.Order {
	return &entities.Order{
		ID:          10,
		Descricao:   "Ração para lote 7",
		Quantidade:  3,
		Urgencia:    constants.UrgenciaPadrao,
		Status:      constants.StatusPendente,
		Setor:       "Granjas",
		UsuarioNome: "Ana",
	}
}

func newMachine() *Machine {
	return NewMachine(zap.NewNop())
}

func TestApplyConcludeSetsConclusionDate(t *testing.T) {
	order := pendingOrder()
	start := time.Now().UTC()

	res, err := newMachine().Apply(order, Patch{Status: Some("CONCLUIDO")}, Options{Privileged: true})
	require.NoError(t, err)

	assert.Equal(t, constants.StatusConcluido, res.Order.Status)
	require.True(t, res.Order.ConclusaoData.Valid)
	assert.False(t, res.Order.ConclusaoData.Time.Before(start.Truncate(time.Second)))
	assert.Equal(t, TransitionConcluded, res.Transition)

	require.Len(t, res.Diffs, 2)
	assert.Equal(t, LabelStatus, res.Diffs[0].Label)
	assert.Equal(t, "Pendente", res.Diffs[0].Old)
	assert.Equal(t, "Concluído", res.Diffs[0].New)
	assert.Equal(t, LabelConclusao, res.Diffs[1].Label)
	assert.Equal(t, "", res.Diffs[1].Old)

	assert.Equal(t, constants.StatusPendente, order.Status, "исходный заказ не меняется")
	assert.False(t, order.ConclusaoData.Valid)
}

func TestApplyExplicitConclusionDateWins(t *testing.T) {
	res, err := newMachine().Apply(pendingOrder(), Patch{
		Status:        Some("Concluído"),
		ConclusaoData: Some("2024-05-01"),
	}, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), res.Order.ConclusaoData.Time)
}

func TestApplyCompletionDate(t *testing.T) {
	tests := []struct {
		name  string
		value Optional[string]
		want  time.Time
		warn  bool
	}{
		{"null means now", Null[string](), fixedNow, false},
		{"iso parsed", Some("2024-04-30T08:00:00Z"), time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC), false},
		{"garbage defaults to now", Some("ontem"), fixedNow, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			m := NewMachine(zap.New(core))

			res, err := m.Apply(pendingOrder(), Patch{Status: Some("concluido"), CompletionDate: tt.value}, Options{Now: fixedNow})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Order.ConclusaoData.Time)
			assert.Equal(t, tt.warn, logs.Len() == 1)
		})
	}
}

func TestApplyLeavingConcludedClearsConclusionDate(t *testing.T) {
	order := pendingOrder()
	order.Status = constants.StatusConcluido
	order.ConclusaoData = null.TimeFrom(fixedNow.Add(-time.Hour))

	res, err := newMachine().Apply(order, Patch{Status: Some("Pendente")}, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.False(t, res.Order.ConclusaoData.Valid)
	assert.Equal(t, TransitionReopened, res.Transition)
	require.Len(t, res.Diffs, 2)
	assert.Equal(t, "", res.Diffs[1].New)
}

func TestApplyCancel(t *testing.T) {
	res, err := newMachine().Apply(pendingOrder(), Patch{Status: Some("Cancelado")}, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, TransitionCancelled, res.Transition)
	assert.False(t, res.Order.ConclusaoData.Valid)
	require.Len(t, res.Diffs, 1)
}

func TestApplyMoney(t *testing.T) {
	res, err := newMachine().Apply(pendingOrder(), Patch{
		OrcamentoPrevisto: Some("1.234,50"),
		CustoReal:         Some("99.9"),
	}, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 1234.5, res.Order.OrcamentoPrevisto.Float64)
	assert.Equal(t, 99.9, res.Order.CustoReal.Float64)

	require.Len(t, res.Diffs, 2)
	assert.Equal(t, "Orçamento Previsto", res.Diffs[0].Label)
	assert.Equal(t, "1234.50", res.Diffs[0].New)
	assert.Equal(t, "Custo Real", res.Diffs[1].Label)
}

func TestApplyValidationErrors(t *testing.T) {
	tests := map[string]Patch{
		"money not numeric":  {CustoReal: Some("doze")},
		"money negative":     {OrcamentoPrevisto: Some("-1")},
		"bad delivery date":  {DeliveryDate: Some("31/12/2024")},
		"bad conclusao_data": {Status: Some("Concluído"), ConclusaoData: Some("amanhã")},
		"unknown status":     {Status: Some("Arquivado")},
		"lowercase pendente": {Status: Some("pendente")},
		"null status":        {Status: Null[string]()},
		"empty descricao":    {Descricao: Some("  ")},
		"zero quantidade":    {Quantidade: Some("0")},
		"bad urgencia":       {Urgencia: Some("Imediato")},
	}
	for name, patch := range tests {
		t.Run(name, func(t *testing.T) {
			order := pendingOrder()
			res, err := newMachine().Apply(order, patch, Options{Privileged: true, Now: fixedNow})
			require.Error(t, err)
			assert.Nil(t, res)

			var verr *apperrors.ValidationError
			assert.True(t, errors.As(err, &verr))
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Equal(t, pendingOrder(), order)
		})
	}
}

func TestApplySetorIgnoredUnlessPrivileged(t *testing.T) {
	patch := Patch{Setor: Some("Oficina"), Descricao: Some("Nova descrição")}

	res, err := newMachine().Apply(pendingOrder(), patch, Options{Privileged: false, Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, "Granjas", res.Order.Setor)
	require.Len(t, res.Diffs, 1)
	assert.Equal(t, "Descrição", res.Diffs[0].Label)

	res, err = newMachine().Apply(pendingOrder(), patch, Options{Privileged: true, Now: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, "Oficina", res.Order.Setor)
	require.Len(t, res.Diffs, 2)
	assert.Equal(t, "Setor", res.Diffs[1].Label)
}

func TestApplyPrivilegedRejectsUnknownSetor(t *testing.T) {
	_, err := newMachine().Apply(pendingOrder(), Patch{Setor: Some("Marte")}, Options{Privileged: true, Now: fixedNow})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestApplyDiffOrder(t *testing.T) {
	res, err := newMachine().Apply(pendingOrder(), Patch{
		Observacao:   Some("entregar no galpão 2"),
		Status:       Some("concluído"),
		Descricao:    Some("Ração especial"),
		DeliveryDate: Some("2024-06-01"),
	}, Options{Privileged: true, Now: fixedNow})
	require.NoError(t, err)

	var labels []string
	for _, d := range res.Diffs {
		labels = append(labels, d.Label)
	}
	assert.Equal(t, []string{"Descrição", "Data de Entrega", "Observação", "Status", "Data de Conclusão"}, labels)
}

func TestApplyNoChanges(t *testing.T) {
	res, err := newMachine().Apply(pendingOrder(), Patch{Descricao: Some("Ração para lote 7"), Setor: Some("Granjas")}, Options{Now: fixedNow})
	require.NoError(t, err)
	assert.Empty(t, res.Diffs)
	assert.Equal(t, TransitionNone, res.Transition)
}

func TestTouches(t *testing.T) {
	order := pendingOrder()
	order.DeliveryDate = null.TimeFrom(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	same := Patch{Setor: Some(" Granjas "), DeliveryDate: Some("2024-06-01"), Descricao: Some("x")}
	assert.Equal(t, []string{FieldDescricao}, same.Touches(order))

	changed := Patch{Setor: Some("Oficina"), DeliveryDate: Some("2024-07-01")}
	assert.Equal(t, []string{FieldSetor, FieldDeliveryDate}, changed.Touches(order))

	assert.True(t, Patch{}.IsEmpty())
}

func TestNewOrder(t *testing.T) {
	creator := &entities.User{Nome: "Ana", Setor: "Granjas", TipoUsuario: constants.RoleComum}

	order, err := newMachine().New(Patch{Descricao: Some("Milho"), Quantidade: Some("5"), CustoReal: Some("10,5")}, creator, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "Granjas", order.Setor)
	assert.Equal(t, "Ana", order.UsuarioNome)
	assert.Equal(t, constants.StatusPendente, order.Status)
	assert.Equal(t, constants.UrgenciaPadrao, order.Urgencia)
	assert.Equal(t, 5, order.Quantidade)
	assert.Equal(t, 10.5, order.CustoReal.Float64)
	assert.False(t, order.ConclusaoData.Valid)
	assert.Equal(t, fixedNow, order.CreatedAt)

	_, err = newMachine().New(Patch{Quantidade: Some("1")}, creator, fixedNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = newMachine().New(Patch{Descricao: Some("Milho"), Status: Some("Concluído")}, creator, fixedNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

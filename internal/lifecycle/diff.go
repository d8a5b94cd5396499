package lifecycle

import (
	"strconv"

	"github.com/aarondl/null/v8"

	"pedidos-system/internal/entities"
)

type DiffKind string

const (
	KindField      DiffKind = "field"
	KindStatus     DiffKind = "status"
	KindConclusion DiffKind = "conclusion"
)

const (
	LabelStatus    = "Status"
	LabelConclusao = "Data de Conclusão"
)

// Diff - одно изменившееся поле. Label попадает в historico_pedidos.campo_alterado.
type Diff struct {
	Field string   `json:"field"`
	Label string   `json:"label"`
	Kind  DiffKind `json:"kind"`
	Old   string   `json:"old"`
	New   string   `json:"new"`
}

type fieldSpec struct {
	key   string
	label string
	value func(*entities.Order) string
}

// Порядок объявления задает порядок записей в истории.
var trackedFields = []fieldSpec{
	{FieldDescricao, "Descrição", func(o *entities.Order) string { return o.Descricao }},
	{FieldQuantidade, "Quantidade", func(o *entities.Order) string { return strconv.Itoa(o.Quantidade) }},
	{FieldCategoria, "Categoria", func(o *entities.Order) string { return o.Categoria }},
	{FieldUrgencia, "Urgência", func(o *entities.Order) string { return o.Urgencia }},
	{FieldSetor, "Setor", func(o *entities.Order) string { return o.Setor }},
	{FieldDeliveryDate, "Data de Entrega", func(o *entities.Order) string { return formatTime(o.DeliveryDate, dateFormat) }},
	{FieldOrcamentoPrevisto, "Orçamento Previsto", func(o *entities.Order) string { return formatMoney(o.OrcamentoPrevisto) }},
	{FieldCustoReal, "Custo Real", func(o *entities.Order) string { return formatMoney(o.CustoReal) }},
	{FieldAnexo, "Anexo", func(o *entities.Order) string { return o.Anexo.String }},
	{FieldObservacao, "Observação", func(o *entities.Order) string { return o.Observacao.String }},
}

// Compute: сначала обычные поля, затем "Status", затем "Data de Conclusão".
func Compute(before, after *entities.Order) []Diff {
	var diffs []Diff
	for _, f := range trackedFields {
		old, cur := f.value(before), f.value(after)
		if old != cur {
			diffs = append(diffs, Diff{Field: f.key, Label: f.label, Kind: KindField, Old: old, New: cur})
		}
	}

	if before.Status != after.Status {
		diffs = append(diffs, Diff{
			Field: FieldStatus, Label: LabelStatus, Kind: KindStatus,
			Old: before.Status, New: after.Status,
		})
	}

	oldConclusao := formatTime(before.ConclusaoData, dateTimeFormat)
	newConclusao := formatTime(after.ConclusaoData, dateTimeFormat)
	if oldConclusao != newConclusao {
		diffs = append(diffs, Diff{
			Field: FieldConclusaoData, Label: LabelConclusao, Kind: KindConclusion,
			Old: oldConclusao, New: newConclusao,
		})
	}
	return diffs
}

func formatTime(t null.Time, layout string) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(layout)
}

func formatMoney(v null.Float64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', 2, 64)
}

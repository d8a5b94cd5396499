package lifecycle

import (
	"pedidos-system/internal/entities"
	"pedidos-system/pkg/utils"
)

// Ключи полей заказа, как они приходят в JSON.
const (
	FieldDescricao         = "descricao"
	FieldQuantidade        = "quantidade"
	FieldCategoria         = "categoria"
	FieldUrgencia          = "urgencia"
	FieldStatus            = "status"
	FieldSetor             = "setor"
	FieldObservacao        = "observacao"
	FieldDeliveryDate      = "deliveryDate"
	FieldConclusaoData     = "conclusao_data"
	FieldCompletionDate    = "completionDate"
	FieldOrcamentoPrevisto = "orcamento_previsto"
	FieldCustoReal         = "custo_real"
	FieldAnexo             = "anexo"
)

// Patch - явный набор изменяемых полей. Даты, суммы и количество хранятся
// в сыром виде и разбираются в Machine.Apply.
type Patch struct {
	Descricao         Optional[string]
	Quantidade        Optional[string]
	Categoria         Optional[string]
	Urgencia          Optional[string]
	Status            Optional[string]
	Setor             Optional[string]
	Observacao        Optional[string]
	DeliveryDate      Optional[string]
	ConclusaoData     Optional[string]
	CompletionDate    Optional[string]
	OrcamentoPrevisto Optional[string]
	CustoReal         Optional[string]
	Anexo             Optional[string]
}

func (p Patch) IsEmpty() bool {
	return len(p.sent()) == 0
}

func (p Patch) sent() []string {
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	add(p.Descricao.Set, FieldDescricao)
	add(p.Quantidade.Set, FieldQuantidade)
	add(p.Categoria.Set, FieldCategoria)
	add(p.Urgencia.Set, FieldUrgencia)
	add(p.Status.Set, FieldStatus)
	add(p.Setor.Set, FieldSetor)
	add(p.Observacao.Set, FieldObservacao)
	add(p.DeliveryDate.Set, FieldDeliveryDate)
	add(p.ConclusaoData.Set, FieldConclusaoData)
	add(p.CompletionDate.Set, FieldCompletionDate)
	add(p.OrcamentoPrevisto.Set, FieldOrcamentoPrevisto)
	add(p.CustoReal.Set, FieldCustoReal)
	add(p.Anexo.Set, FieldAnexo)
	return keys
}

// Touches - поля, которые патч пытается изменить. setor и deliveryDate
// попадают сюда, только если отличаются от текущих: клиент часто присылает
// заказ целиком.
func (p Patch) Touches(order *entities.Order) []string {
	var out []string
	for _, key := range p.sent() {
		switch key {
		case FieldSetor:
			if p.Setor.Null || utils.NormalizeSector(p.Setor.Value) != order.Setor {
				out = append(out, key)
			}
		case FieldDeliveryDate:
			if !sameDate(p.DeliveryDate, order) {
				out = append(out, key)
			}
		default:
			out = append(out, key)
		}
	}
	return out
}

func sameDate(v Optional[string], order *entities.Order) bool {
	if v.Null {
		return !order.DeliveryDate.Valid
	}
	t, err := parseDate(FieldDeliveryDate, v.Value)
	if err != nil || !order.DeliveryDate.Valid {
		return false
	}
	return t.Equal(order.DeliveryDate.Time)
}

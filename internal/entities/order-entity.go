package entities

import (
	"github.com/aarondl/null/v8"

	"pedidos-system/pkg/types"
)

// Order - заказ (pedido). UsuarioNome задается при создании и больше не меняется.
type Order struct {
	ID                int64        `json:"id" db:"id"`
	Descricao         string       `json:"descricao" db:"descricao"`
	Quantidade        int          `json:"quantidade" db:"quantidade"`
	Categoria         string       `json:"categoria" db:"categoria"`
	Urgencia          string       `json:"urgencia" db:"urgencia"`
	Status            string       `json:"status" db:"status"`
	Setor             string       `json:"setor" db:"setor"`
	UsuarioNome       string       `json:"usuario_nome" db:"usuario_nome"`
	Observacao        null.String  `json:"observacao" db:"observacao"`
	DeliveryDate      null.Time    `json:"deliveryDate" db:"delivery_date"`
	ConclusaoData     null.Time    `json:"conclusao_data" db:"conclusao_data"`
	OrcamentoPrevisto null.Float64 `json:"orcamento_previsto" db:"orcamento_previsto"`
	CustoReal         null.Float64 `json:"custo_real" db:"custo_real"`
	Anexo             null.String  `json:"anexo" db:"anexo"`

	types.BaseEntity
}

// Clone возвращает независимую копию. Все поля значимые, так что хватает
// присваивания.
func (o *Order) Clone() *Order {
	c := *o
	return &c
}

package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// ActivityRecord - грубый журнал событий, в том числе не связанных с заказом (login).
type ActivityRecord struct {
	ID              int64                  `json:"id" db:"id"`
	Tipo            string                 `json:"tipo" db:"tipo"`
	Descricao       string                 `json:"descricao" db:"descricao"`
	UsuarioNome     string                 `json:"usuario_nome" db:"usuario_nome"`
	PedidoID        null.Int64             `json:"pedido_id" db:"pedido_id"`
	Data            time.Time              `json:"data" db:"data"`
	IPAddress       null.String            `json:"ip_address" db:"ip_address"`
	UserAgent       null.String            `json:"user_agent" db:"user_agent"`
	DadosAdicionais map[string]interface{} `json:"dados_adicionais,omitempty" db:"dados_adicionais"`
}

package entities

import "time"

// HistoryRecord - запись аудита одного поля. Только добавляется.
type HistoryRecord struct {
	ID            int64     `json:"id" db:"id"`
	PedidoID      int64     `json:"pedido_id" db:"pedido_id"`
	CampoAlterado string    `json:"campo_alterado" db:"campo_alterado"`
	ValorAnterior string    `json:"valor_anterior" db:"valor_anterior"`
	ValorNovo     string    `json:"valor_novo" db:"valor_novo"`
	UsuarioNome   string    `json:"usuario_nome" db:"usuario_nome"`
	DataEdicao    time.Time `json:"data_edicao" db:"data_edicao"`
}

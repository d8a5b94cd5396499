package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pedidos-system/internal/entities"
)

const historyTable = "historico_pedidos"

type OrderHistoryRepositoryInterface interface {
	AppendInTx(ctx context.Context, tx pgx.Tx, records []entities.HistoryRecord) error
	FindByOrderID(ctx context.Context, orderID int64) ([]entities.HistoryRecord, error)
}

type OrderHistoryRepository struct {
	storage *pgxpool.Pool
}

func NewOrderHistoryRepository(storage *pgxpool.Pool) OrderHistoryRepositoryInterface {
	return &OrderHistoryRepository{storage: storage}
}

// buildHistoryInsert - один INSERT на все записи, порядок значений сохраняется.
func buildHistoryInsert(records []entities.HistoryRecord) sq.InsertBuilder {
	insert := psql.Insert(historyTable).
		Columns("pedido_id", "campo_alterado", "valor_anterior", "valor_novo", "usuario_nome", "data_edicao")
	for _, h := range records {
		insert = insert.Values(h.PedidoID, h.CampoAlterado, h.ValorAnterior, h.ValorNovo, h.UsuarioNome, h.DataEdicao)
	}
	return insert
}

func (r *OrderHistoryRepository) AppendInTx(ctx context.Context, tx pgx.Tx, records []entities.HistoryRecord) error {
	return appendHistory(ctx, tx, records)
}

func appendHistory(ctx context.Context, q querier, records []entities.HistoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	query, args, err := buildHistoryInsert(records).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка построения запроса истории: %w", err)
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка записи истории заказа %d: %w", records[0].PedidoID, err)
	}
	return nil
}

func buildHistorySelect(orderID int64) sq.SelectBuilder {
	return psql.
		Select("id", "pedido_id", "campo_alterado", "valor_anterior", "valor_novo", "usuario_nome", "data_edicao").
		From(historyTable).
		Where(sq.Eq{"pedido_id": orderID}).
		OrderBy("data_edicao DESC", "id DESC")
}

// FindByOrderID возвращает историю от новых записей к старым. Записи одной
// правки имеют одинаковый data_edicao и идут по id DESC, то есть в обратном
// порядке вставки: "Data de Conclusão" раньше "Status".
func (r *OrderHistoryRepository) FindByOrderID(ctx context.Context, orderID int64) ([]entities.HistoryRecord, error) {
	query, args, err := buildHistorySelect(orderID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса истории: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории заказа %d: %w", orderID, err)
	}
	defer rows.Close()

	history := make([]entities.HistoryRecord, 0)
	for rows.Next() {
		var h entities.HistoryRecord
		if err := rows.Scan(&h.ID, &h.PedidoID, &h.CampoAlterado, &h.ValorAnterior, &h.ValorNovo, &h.UsuarioNome, &h.DataEdicao); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

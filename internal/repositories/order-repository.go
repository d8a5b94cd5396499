package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pedidos-system/internal/entities"
	db "pedidos-system/internal/infrastructure/bd"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/types"
)

const orderTable = "pedidos"

var orderColumns = []string{
	"id", "descricao", "quantidade", "categoria", "urgencia", "status", "setor",
	"usuario_nome", "observacao", "delivery_date", "conclusao_data",
	"orcamento_previsto", "custo_real", "anexo", "created_at", "updated_at",
}

// json-имя -> колонка для filter[...] и sort[...].
var orderAllowedFields = map[string]string{
	"id":           "id",
	"status":       "status",
	"setor":        "setor",
	"urgencia":     "urgencia",
	"categoria":    "categoria",
	"usuario_nome": "usuario_nome",
	"deliveryDate": "delivery_date",
	"created_at":   "created_at",
	"updated_at":   "updated_at",
}

type OrderRepositoryInterface interface {
	FindByID(ctx context.Context, id int64) (*entities.Order, error)
	List(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error)
	NextIDInTx(ctx context.Context, tx pgx.Tx) (int64, error)
	// PersistOrderInTx - единственная точка записи заказа. Версия не
	// проверяется: два параллельных редактирования одного заказа могут
	// перезаписать друг друга.
	PersistOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error
}

type OrderRepository struct {
	storage *pgxpool.Pool
}

func NewOrderRepository(storage *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{storage: storage}
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	err := row.Scan(
		&o.ID, &o.Descricao, &o.Quantidade, &o.Categoria, &o.Urgencia, &o.Status, &o.Setor,
		&o.UsuarioNome, &o.Observacao, &o.DeliveryDate, &o.ConclusaoData,
		&o.OrcamentoPrevisto, &o.CustoReal, &o.Anexo, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*entities.Order, error) {
	query, args, err := psql.Select(orderColumns...).From(orderTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса заказа: %w", err)
	}

	order, err := scanOrder(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Pedido", id)
		}
		return nil, fmt.Errorf("ошибка получения заказа %d: %w", id, err)
	}
	return order, nil
}

// buildOrderListQueries возвращает запрос страницы и запрос COUNT(*) с теми же условиями.
func buildOrderListQueries(filter types.Filter) (sq.SelectBuilder, sq.SelectBuilder) {
	list := psql.Select(orderColumns...).From(orderTable)
	count := psql.Select("COUNT(*)").From(orderTable)

	if filter.Search != "" {
		like := sq.ILike{"descricao": "%" + filter.Search + "%"}
		list = list.Where(like)
		count = count.Where(like)
	}

	list = db.ApplyListParams(list, filter, orderAllowedFields)
	count = db.ApplyFilters(count, filter, orderAllowedFields)
	if len(filter.Sort) == 0 {
		list = list.OrderBy("id DESC")
	}
	return list, count
}

func (r *OrderRepository) List(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	listBuilder, countBuilder := buildOrderListQueries(filter)

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения запроса подсчета: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета заказов: %w", err)
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения запроса списка: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования заказа в списке: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

func (r *OrderRepository) NextIDInTx(ctx context.Context, tx pgx.Tx) (int64, error) {
	var id int64
	if err := tx.QueryRow(ctx, "SELECT nextval('pedidos_id_seq')").Scan(&id); err != nil {
		return 0, fmt.Errorf("не удалось получить следующий ID заказа: %w", err)
	}
	return id, nil
}

func buildUpsertOrder(o *entities.Order) sq.InsertBuilder {
	return psql.Insert(orderTable).Columns(orderColumns...).Values(
		o.ID, o.Descricao, o.Quantidade, o.Categoria, o.Urgencia, o.Status, o.Setor,
		o.UsuarioNome, o.Observacao, o.DeliveryDate, o.ConclusaoData,
		o.OrcamentoPrevisto, o.CustoReal, o.Anexo, o.CreatedAt, o.UpdatedAt,
	).Suffix(`ON CONFLICT (id) DO UPDATE SET
		descricao = EXCLUDED.descricao,
		quantidade = EXCLUDED.quantidade,
		categoria = EXCLUDED.categoria,
		urgencia = EXCLUDED.urgencia,
		status = EXCLUDED.status,
		setor = EXCLUDED.setor,
		observacao = EXCLUDED.observacao,
		delivery_date = EXCLUDED.delivery_date,
		conclusao_data = EXCLUDED.conclusao_data,
		orcamento_previsto = EXCLUDED.orcamento_previsto,
		custo_real = EXCLUDED.custo_real,
		anexo = EXCLUDED.anexo,
		updated_at = EXCLUDED.updated_at`)
}

func (r *OrderRepository) PersistOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	query, args, err := buildUpsertOrder(order).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка построения запроса сохранения: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка сохранения заказа %d: %w", order.ID, err)
	}
	return nil
}

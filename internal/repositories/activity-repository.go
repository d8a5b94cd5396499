package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"pedidos-system/internal/entities"
	db "pedidos-system/internal/infrastructure/bd"
	"pedidos-system/pkg/types"
)

const activityTable = "atividades"

var activityColumns = []string{
	"id", "tipo", "descricao", "usuario_nome", "pedido_id", "data", "ip_address", "user_agent", "dados_adicionais",
}

var activityAllowedFields = map[string]string{
	"tipo":         "tipo",
	"usuario_nome": "usuario_nome",
	"pedido_id":    "pedido_id",
	"data":         "data",
	"id":           "id",
}

type ActivityRepositoryInterface interface {
	Append(ctx context.Context, record *entities.ActivityRecord) error
	List(ctx context.Context, filter types.Filter) ([]entities.ActivityRecord, uint64, error)
	// ListForUser - действия пользователя и правки его учетной записи
	// (dados_adicionais.username).
	ListForUser(ctx context.Context, user *entities.User, filter types.Filter) ([]entities.ActivityRecord, uint64, error)
}

type ActivityRepository struct {
	storage *pgxpool.Pool
}

func NewActivityRepository(storage *pgxpool.Pool) ActivityRepositoryInterface {
	return &ActivityRepository{storage: storage}
}

func buildActivityInsert(rec *entities.ActivityRecord) (sq.InsertBuilder, error) {
	var extra []byte
	if len(rec.DadosAdicionais) > 0 {
		var err error
		if extra, err = json.Marshal(rec.DadosAdicionais); err != nil {
			return sq.InsertBuilder{}, fmt.Errorf("не удалось сериализовать dados_adicionais: %w", err)
		}
	}
	return psql.Insert(activityTable).
		Columns("tipo", "descricao", "usuario_nome", "pedido_id", "data", "ip_address", "user_agent", "dados_adicionais").
		Values(rec.Tipo, rec.Descricao, rec.UsuarioNome, rec.PedidoID, rec.Data, rec.IPAddress, rec.UserAgent, extra).
		Suffix("RETURNING id"), nil
}

func (r *ActivityRepository) Append(ctx context.Context, rec *entities.ActivityRecord) error {
	insert, err := buildActivityInsert(rec)
	if err != nil {
		return err
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка построения запроса активности: %w", err)
	}
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&rec.ID); err != nil {
		return fmt.Errorf("ошибка записи активности %q: %w", rec.Tipo, err)
	}
	return nil
}

// userScope - записи, где пользователь автор или объект правки.
func userScope(user *entities.User) sq.Sqlizer {
	return sq.Or{
		sq.Eq{"usuario_nome": user.Nome},
		sq.Expr("dados_adicionais->>'username' = ?", user.Username),
	}
}

func buildActivityListQueries(filter types.Filter, scope sq.Sqlizer) (list, count sq.SelectBuilder) {
	count = db.ApplyFilters(psql.Select("COUNT(*)").From(activityTable), filter, activityAllowedFields)
	list = db.ApplyListParams(psql.Select(activityColumns...).From(activityTable), filter, activityAllowedFields)
	if scope != nil {
		count = count.Where(scope)
		list = list.Where(scope)
	}
	if len(filter.Sort) == 0 {
		list = list.OrderBy("data DESC", "id DESC")
	}
	return list, count
}

func (r *ActivityRepository) List(ctx context.Context, filter types.Filter) ([]entities.ActivityRecord, uint64, error) {
	return r.list(ctx, filter, nil)
}

func (r *ActivityRepository) ListForUser(ctx context.Context, user *entities.User, filter types.Filter) ([]entities.ActivityRecord, uint64, error) {
	return r.list(ctx, filter, userScope(user))
}

func (r *ActivityRepository) list(ctx context.Context, filter types.Filter, scope sq.Sqlizer) ([]entities.ActivityRecord, uint64, error) {
	listQ, countQ := buildActivityListQueries(filter, scope)

	countQuery, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения запроса подсчета: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета активности: %w", err)
	}

	query, args, err := listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка построения запроса активности: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения активности: %w", err)
	}
	defer rows.Close()

	out := make([]entities.ActivityRecord, 0)
	for rows.Next() {
		var a entities.ActivityRecord
		var extra []byte
		if err := rows.Scan(&a.ID, &a.Tipo, &a.Descricao, &a.UsuarioNome, &a.PedidoID, &a.Data, &a.IPAddress, &a.UserAgent, &extra); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования активности: %w", err)
		}
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &a.DadosAdicionais); err != nil {
				return nil, 0, fmt.Errorf("некорректный dados_adicionais у записи %d: %w", a.ID, err)
			}
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

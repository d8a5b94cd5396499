package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pedidos-system/internal/entities"
	apperrors "pedidos-system/pkg/errors"
)

const userTable = "users"

var userColumns = []string{"id", "username", "nome", "tipo_usuario", "setor", "senha", "created_at"}

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id int64) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	// GetUsers - все пользователи. Маршрутизация уведомлений перебирает их целиком.
	GetUsers(ctx context.Context) ([]entities.User, error)
	Create(ctx context.Context, user *entities.User) error
	// Update перезаписывает nome, tipo_usuario, setor и senha. username не меняется.
	Update(ctx context.Context, user *entities.User) error
}

type UserRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{storage: storage}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	if err := row.Scan(&u.ID, &u.Username, &u.Nome, &u.TipoUsuario, &u.Setor, &u.Senha, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	query, args, err := psql.Select(userColumns...).From(userTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса пользователя: %w", err)
	}
	user, err := scanUser(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Usuário", id)
		}
		return nil, fmt.Errorf("ошибка получения пользователя %d: %w", id, err)
	}
	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	query, args, err := psql.Select(userColumns...).From(userTable).Where(sq.Eq{"username": username}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса пользователя: %w", err)
	}
	user, err := scanUser(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Usuário", username)
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]entities.User, error) {
	query, args, err := psql.Select(userColumns...).From(userTable).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка построения запроса пользователей: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	query, args, err := psql.Insert(userTable).
		Columns("username", "nome", "tipo_usuario", "setor", "senha").
		Values(user.Username, user.Nome, user.TipoUsuario, user.Setor, user.Senha).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка построения запроса создания пользователя: %w", err)
	}

	if err := r.storage.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewValidationError("username", "nome de usuário já está em uso")
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

func buildUserUpdate(user *entities.User) sq.UpdateBuilder {
	return psql.Update(userTable).
		Set("nome", user.Nome).
		Set("tipo_usuario", user.TipoUsuario).
		Set("setor", user.Setor).
		Set("senha", user.Senha).
		Where(sq.Eq{"id": user.ID})
}

func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	query, args, err := buildUserUpdate(user).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка построения запроса обновления пользователя: %w", err)
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя %d: %w", user.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFound("Usuário", user.ID)
	}
	return nil
}

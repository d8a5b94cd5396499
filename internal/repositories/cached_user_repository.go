package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"pedidos-system/internal/entities"
)

const (
	usersAllKey   = "pedidos:users:all"
	userKeyPrefix = "pedidos:users:"
)

// cachedUser - то, что кладется в Redis. Хеш пароля в кеш не попадает,
// поэтому логин ходит в некешированный репозиторий.
type cachedUser struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Nome        string    `json:"nome"`
	TipoUsuario string    `json:"tipo_usuario"`
	Setor       string    `json:"setor"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCached(u entities.User) cachedUser {
	return cachedUser{ID: u.ID, Username: u.Username, Nome: u.Nome, TipoUsuario: u.TipoUsuario, Setor: u.Setor, CreatedAt: u.CreatedAt}
}

func (c cachedUser) entity() entities.User {
	return entities.User{ID: c.ID, Username: c.Username, Nome: c.Nome, TipoUsuario: c.TipoUsuario, Setor: c.Setor, CreatedAt: c.CreatedAt}
}

// CachedUserRepository - справочник пользователей через кеш. Ошибки кеша не
// ломают чтение, запрос просто уходит в БД.
type CachedUserRepository struct {
	next   UserRepositoryInterface
	cache  CacheRepositoryInterface
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedUserRepository(next UserRepositoryInterface, cache CacheRepositoryInterface, ttl time.Duration, logger *zap.Logger) UserRepositoryInterface {
	return &CachedUserRepository{next: next, cache: cache, ttl: ttl, logger: logger}
}

// FindByID нужен только администрированию, кеш не используется.
func (r *CachedUserRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	return r.next.FindByID(ctx, id)
}

func (r *CachedUserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	key := userKeyPrefix + username
	var cached cachedUser
	if r.load(ctx, key, &cached) {
		u := cached.entity()
		return &u, nil
	}

	user, err := r.next.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, toCached(*user))
	return user, nil
}

func (r *CachedUserRepository) GetUsers(ctx context.Context) ([]entities.User, error) {
	var cached []cachedUser
	if r.load(ctx, usersAllKey, &cached) {
		users := make([]entities.User, len(cached))
		for i, c := range cached {
			users[i] = c.entity()
		}
		return users, nil
	}

	users, err := r.next.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]cachedUser, len(users))
	for i, u := range users {
		out[i] = toCached(u)
	}
	r.store(ctx, usersAllKey, out)
	return users, nil
}

func (r *CachedUserRepository) Create(ctx context.Context, user *entities.User) error {
	if err := r.next.Create(ctx, user); err != nil {
		return err
	}
	r.invalidate(ctx, user.Username)
	return nil
}

// Update сбрасывает кеш сразу: setor и tipo_usuario решают, кому уходят
// уведомления.
func (r *CachedUserRepository) Update(ctx context.Context, user *entities.User) error {
	if err := r.next.Update(ctx, user); err != nil {
		return err
	}
	r.invalidate(ctx, user.Username)
	return nil
}

func (r *CachedUserRepository) invalidate(ctx context.Context, username string) {
	if err := r.cache.Del(ctx, usersAllKey, userKeyPrefix+username); err != nil {
		r.logger.Warn("Не удалось сбросить кеш пользователей", zap.String("username", username), zap.Error(err))
	}
}

func (r *CachedUserRepository) load(ctx context.Context, key string, dst interface{}) bool {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.Warn("Ошибка чтения кеша", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		r.logger.Warn("Повреждённая запись в кеше", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (r *CachedUserRepository) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("Не удалось сериализовать запись для кеша", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("Ошибка записи в кеш", zap.String("key", key), zap.Error(err))
	}
}

package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"pedidos-system/internal/dto"
	"pedidos-system/internal/entities"
	"pedidos-system/internal/repositories"
	"pedidos-system/pkg/constants"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/eventbus"
	"pedidos-system/pkg/types"
	"pedidos-system/pkg/websocket"
)

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id int64) (*entities.Order, error) {
	args := m.Called(ctx, id)
	if o := args.Get(0); o != nil {
		return o.(*entities.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepository) List(ctx context.Context, filter types.Filter) ([]entities.Order, uint64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]entities.Order), args.Get(1).(uint64), args.Error(2)
}

func (m *mockOrderRepository) NextIDInTx(ctx context.Context, tx pgx.Tx) (int64, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOrderRepository) PersistOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	return m.Called(ctx, tx, order).Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*entities.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*entities.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepository) GetUsers(ctx context.Context) ([]entities.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.User), args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

// fakeTxManager вызывает fn без настоящей транзакции и запоминает, был ли откат.
type fakeTxManager struct {
	calls      int
	rolledBack bool
}

func (f *fakeTxManager) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	err := fn(nil)
	f.rolledBack = err != nil
	return err
}

type fakeHistoryRepository struct {
	mu       sync.Mutex
	records  []entities.HistoryRecord
	failWith error
}

func (f *fakeHistoryRepository) AppendInTx(_ context.Context, _ pgx.Tx, records []entities.HistoryRecord) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeHistoryRepository) FindByOrderID(_ context.Context, orderID int64) ([]entities.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.HistoryRecord
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].PedidoID == orderID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}

type fakeActivityRepository struct {
	mu       sync.Mutex
	records  []entities.ActivityRecord
	failWith error
}

func (f *fakeActivityRepository) Append(_ context.Context, rec *entities.ActivityRecord) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeActivityRepository) List(context.Context, types.Filter) ([]entities.ActivityRecord, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records, uint64(len(f.records)), nil
}

// ListForUser повторяет условие репозитория: автор или объект правки.
func (f *fakeActivityRepository) ListForUser(_ context.Context, user *entities.User, _ types.Filter) ([]entities.ActivityRecord, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entities.ActivityRecord
	for _, r := range f.records {
		if r.UsuarioNome == user.Nome || r.DadosAdicionais["username"] == user.Username {
			out = append(out, r)
		}
	}
	return out, uint64(len(out)), nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (b *fakeBus) Publish(e eventbus.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]string)}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = fmt.Sprint(value)
	return nil
}

func (c *memoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memoryCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *memoryCache) Expire(context.Context, string, time.Duration) error { return nil }

type fakeSession struct {
	id     string
	mu     sync.Mutex
	pushed []websocket.Envelope
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) Push(e websocket.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushed = append(s.pushed, e)
	return nil
}

// stubAuth знает пользователей по username и по "токену" вида "token:<username>".
type stubAuth struct {
	users map[string]*entities.User
}

func newStubAuth(users ...*entities.User) *stubAuth {
	a := &stubAuth{users: make(map[string]*entities.User)}
	for _, u := range users {
		a.users[u.Username] = u
	}
	return a
}

func (a *stubAuth) Resolve(ctx context.Context, credential string) (*entities.User, error) {
	name, ok := strings.CutPrefix(credential, "token:")
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return a.ResolveIdentity(ctx, name)
}

func (a *stubAuth) ResolveIdentity(_ context.Context, identity string) (*entities.User, error) {
	u, ok := a.users[identity]
	if !ok {
		return nil, apperrors.ErrUnauthenticated
	}
	return u, nil
}

func (a *stubAuth) Login(context.Context, dto.LoginDTO, dto.RequestMeta) (*dto.TokenDTO, error) {
	return nil, apperrors.ErrInvalidCredentials
}

var (
	ana   = &entities.User{Username: "ana@araldi.com", Nome: "Ana", TipoUsuario: constants.RoleComum, Setor: "Granjas"}
	bruno = &entities.User{Username: "bruno@araldi.com", Nome: "Bruno", TipoUsuario: constants.RoleComum, Setor: "Escritório"}
	carla = &entities.User{Username: "carla@araldi.com", Nome: "Carla", TipoUsuario: constants.RoleGestor, Setor: "Oficina"}
)

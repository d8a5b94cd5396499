package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedidos-system/internal/dto"
	"pedidos-system/internal/entities"
	"pedidos-system/internal/lifecycle"
	"pedidos-system/internal/services"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/service"
	"pedidos-system/pkg/types"
	"pedidos-system/pkg/validation"
	"pedidos-system/pkg/websocket"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) MutateOrder(ctx context.Context, id int64, patch lifecycle.Patch, actor string, meta *dto.RequestMeta) (*entities.Order, error) {
	args := m.Called(ctx, id, patch, actor, meta)
	if o := args.Get(0); o != nil {
		return o.(*entities.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) GetHistory(ctx context.Context, id int64, actor string) ([]entities.HistoryRecord, error) {
	args := m.Called(ctx, id, actor)
	return args.Get(0).([]entities.HistoryRecord), args.Error(1)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, patch lifecycle.Patch, actor string, meta *dto.RequestMeta) (*entities.Order, error) {
	args := m.Called(ctx, patch, actor, meta)
	if o := args.Get(0); o != nil {
		return o.(*entities.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderService) ListOrders(ctx context.Context, filter types.Filter, actor string) ([]entities.Order, uint64, error) {
	args := m.Called(ctx, filter, actor)
	return args.Get(0).([]entities.Order), args.Get(1).(uint64), args.Error(2)
}

func (m *mockOrderService) FindOrder(ctx context.Context, id int64, actor string) (*entities.Order, error) {
	args := m.Called(ctx, id, actor)
	if o := args.Get(0); o != nil {
		return o.(*entities.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type stubAuthService struct{}

func (stubAuthService) Resolve(context.Context, string) (*entities.User, error) {
	return nil, apperrors.ErrUnauthenticated
}

func (stubAuthService) ResolveIdentity(context.Context, string) (*entities.User, error) {
	return nil, apperrors.ErrUnauthenticated
}

func (stubAuthService) Login(_ context.Context, p dto.LoginDTO, _ dto.RequestMeta) (*dto.TokenDTO, error) {
	if p.Senha != "segredo123" {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &dto.TokenDTO{AccessToken: "t", TokenType: "bearer", Nome: "Ana"}, nil
}

type stubUserService struct{}

func (stubUserService) ListUsers(context.Context, string) ([]dto.UserDTO, error) { return nil, nil }
func (stubUserService) CreateUser(context.Context, string, dto.CreateUserDTO) (*dto.UserDTO, error) {
	return nil, apperrors.NewPermissionDenied("acesso permitido apenas para administradores")
}
func (stubUserService) UpdateUser(_ context.Context, _ string, id int64, p dto.UpdateUserDTO, _ *dto.RequestMeta) (*dto.UserDTO, error) {
	return &dto.UserDTO{ID: id, Setor: p.Setor.String}, nil
}
func (stubUserService) UserLogs(_ context.Context, identity string, _ int64, _ types.Filter) ([]entities.ActivityRecord, uint64, error) {
	if identity != "dani@araldi.com" {
		return nil, 0, apperrors.NewPermissionDenied("acesso permitido apenas para administradores")
	}
	return []entities.ActivityRecord{{ID: 1, Tipo: "usuario_editado"}}, 1, nil
}
func (stubUserService) Me(_ context.Context, identity string) (*dto.UserDTO, error) {
	return &dto.UserDTO{Username: identity}, nil
}

type stubActivityService struct{}

func (stubActivityService) ListActivities(context.Context, types.Filter, string) ([]entities.ActivityRecord, uint64, error) {
	return nil, 0, apperrors.NewPermissionDenied("acesso permitido apenas para gestores e administradores")
}

type stubConnectionService struct{}

func (stubConnectionService) RegisterConnection(context.Context, websocket.Session, string) websocket.Identity {
	return websocket.Anonymous()
}
func (stubConnectionService) UnregisterConnection(websocket.Session) {}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body"`
}

type testServer struct {
	e      *echo.Echo
	orders *mockOrderService
	jwt    service.JWTService
}

func newTestServer() *testServer {
	e := echo.New()
	e.Validator = validation.New()
	orders := new(mockOrderService)
	jwtSvc := service.NewJWTService("segredo", time.Hour)
	RegisterRoutes(e, Services{
		Auth:       stubAuthService{},
		User:       stubUserService{},
		Order:      orders,
		Activity:   stubActivityService{},
		Connection: stubConnectionService{},
	}, jwtSvc, nil, zap.NewNop())
	return &testServer{e: e, orders: orders, jwt: jwtSvc}
}

func (s *testServer) do(t *testing.T, method, path, body, username string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if username != "" {
		token, err := s.jwt.GenerateToken(username, "")
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestSecureRoutesRequireToken(t *testing.T) {
	s := newTestServer()

	rec, env := s.do(t, http.MethodGet, "/api/pedidos", "", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Status)
}

func TestUpdateOrderPermissionDenied(t *testing.T) {
	s := newTestServer()
	s.orders.On("MutateOrder", mock.Anything, int64(10), mock.Anything, "bruno@araldi.com", mock.Anything).
		Return(nil, apperrors.NewPermissionDenied("só o criador pode editar este pedido"))

	rec, env := s.do(t, http.MethodPut, "/api/pedidos/10", `{"status":"Concluido"}`, "bruno@araldi.com")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.Status)
	assert.Equal(t, "só o criador pode editar este pedido", env.Message)
}

func TestUpdateOrderPassesDecodedPatch(t *testing.T) {
	s := newTestServer()
	s.orders.On("MutateOrder", mock.Anything, int64(10), mock.MatchedBy(func(p lifecycle.Patch) bool {
		return p.Status.Present() && p.Status.Value == "CONCLUIDO" && !p.Setor.Set
	}), "carla@araldi.com", mock.AnythingOfType("*dto.RequestMeta")).
		Return(&entities.Order{ID: 10, Status: "Concluído"}, nil)

	rec, env := s.do(t, http.MethodPatch, "/api/pedidos/10", `{"status":"CONCLUIDO"}`, "carla@araldi.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Status)
	s.orders.AssertExpectations(t)
}

func TestUpdateOrderRejectsUnknownField(t *testing.T) {
	s := newTestServer()

	rec, env := s.do(t, http.MethodPut, "/api/pedidos/10", `{"prioridade":"alta"}`, "carla@araldi.com")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Status)
	s.orders.AssertNotCalled(t, "MutateOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFindOrderNotFound(t *testing.T) {
	s := newTestServer()
	s.orders.On("FindOrder", mock.Anything, int64(999), "carla@araldi.com").Return(nil, apperrors.NewNotFound("Pedido", 999))

	rec, _ := s.do(t, http.MethodGet, "/api/pedidos/999", "", "carla@araldi.com")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidOrderID(t *testing.T) {
	s := newTestServer()

	rec, _ := s.do(t, http.MethodGet, "/api/pedidos/abc", "", "carla@araldi.com")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersPaginated(t *testing.T) {
	s := newTestServer()
	s.orders.On("ListOrders", mock.Anything, mock.Anything, "ana@araldi.com").
		Return([]entities.Order{{ID: 10}, {ID: 9}}, uint64(12), nil)

	rec, env := s.do(t, http.MethodGet, "/api/pedidos?limit=2&page=1", "", "ana@araldi.com")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		List       []entities.Order `json:"list"`
		Pagination types.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &body))
	assert.Len(t, body.List, 2)
	assert.Equal(t, uint64(12), body.Pagination.TotalCount)
	assert.Equal(t, 6, body.Pagination.TotalPages)
}

func TestLogin(t *testing.T) {
	s := newTestServer()

	rec, env := s.do(t, http.MethodPost, "/api/auth/login", `{"email":"ana@araldi.com","senha":"segredo123"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Status)

	rec, _ = s.do(t, http.MethodPost, "/api/auth/login", `{"email":"ana@araldi.com","senha":"errada"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/auth/login", `{"email":"ana@araldi.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivitiesForbiddenForComum(t *testing.T) {
	s := newTestServer()

	rec, _ := s.do(t, http.MethodGet, "/api/atividades", "", "ana@araldi.com")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateUser(t *testing.T) {
	s := newTestServer()

	rec, env := s.do(t, http.MethodPut, "/api/users/3", `{"setor":"Oficina","tipo_usuario":"gestor"}`, "dani@araldi.com")
	require.Equal(t, http.StatusOK, rec.Code)
	var user dto.UserDTO
	require.NoError(t, json.Unmarshal(env.Body, &user))
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "Oficina", user.Setor)

	rec, env = s.do(t, http.MethodPatch, "/api/users/3", `{"setor":"Marketing"}`, "dani@araldi.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "setor")

	rec, _ = s.do(t, http.MethodPut, "/api/users/3", `{"senha":"123"}`, "dani@araldi.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(t, http.MethodPut, "/api/users/abc", `{}`, "dani@araldi.com")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ID de usuário inválido", env.Message)
}

func TestUserLogs(t *testing.T) {
	s := newTestServer()

	rec, _ := s.do(t, http.MethodGet, "/api/users/3/logs", "", "carla@araldi.com")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/api/users/3/logs", "", "dani@araldi.com")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		List []entities.ActivityRecord `json:"list"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &body))
	require.Len(t, body.List, 1)
	assert.Equal(t, "usuario_editado", body.List[0].Tipo)
}

var _ services.OrderServiceInterface = (*mockOrderService)(nil)

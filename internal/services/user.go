package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pedidos-system/internal/authz"
	"pedidos-system/internal/dto"
	"pedidos-system/internal/entities"
	"pedidos-system/internal/repositories"
	"pedidos-system/pkg/constants"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/types"
	"pedidos-system/pkg/utils"
)

type UserServiceInterface interface {
	ListUsers(ctx context.Context, actorIdentity string) ([]dto.UserDTO, error)
	CreateUser(ctx context.Context, actorIdentity string, payload dto.CreateUserDTO) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, actorIdentity string, userID int64, payload dto.UpdateUserDTO, meta *dto.RequestMeta) (*dto.UserDTO, error)
	UserLogs(ctx context.Context, actorIdentity string, userID int64, filter types.Filter) ([]entities.ActivityRecord, uint64, error)
	Me(ctx context.Context, actorIdentity string) (*dto.UserDTO, error)
}

type UserService struct {
	users      repositories.UserRepositoryInterface
	auth       AuthServiceInterface
	gatekeeper *authz.Gatekeeper
	activity   ActivityLoggerInterface
	logger     *zap.Logger
}

func NewUserService(
	users repositories.UserRepositoryInterface,
	auth AuthServiceInterface,
	gatekeeper *authz.Gatekeeper,
	activity ActivityLoggerInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{users: users, auth: auth, gatekeeper: gatekeeper, activity: activity, logger: logger}
}

func toUserDTO(u entities.User) dto.UserDTO {
	return dto.UserDTO{ID: u.ID, Username: u.Username, Nome: u.Nome, TipoUsuario: u.TipoUsuario, Setor: u.Setor}
}

func (s *UserService) Me(ctx context.Context, actorIdentity string) (*dto.UserDTO, error) {
	actor, err := s.auth.ResolveIdentity(ctx, actorIdentity)
	if err != nil {
		return nil, err
	}
	out := toUserDTO(*actor)
	return &out, nil
}

func (s *UserService) ListUsers(ctx context.Context, actorIdentity string) ([]dto.UserDTO, error) {
	actor, err := s.auth.ResolveIdentity(ctx, actorIdentity)
	if err != nil {
		return nil, err
	}
	if !s.gatekeeper.Can(actor, authz.UsuariosView) {
		return nil, apperrors.NewPermissionDenied("acesso permitido apenas para gestores e administradores")
	}

	users, err := s.users.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	return out, nil
}

// CreateUser доступен только администратору. Без tipo_usuario создается comum.
func (s *UserService) CreateUser(ctx context.Context, actorIdentity string, payload dto.CreateUserDTO) (*dto.UserDTO, error) {
	actor, err := s.auth.ResolveIdentity(ctx, actorIdentity)
	if err != nil {
		return nil, err
	}
	if !s.gatekeeper.Can(actor, authz.UsuariosCreate) {
		return nil, apperrors.NewPermissionDenied("acesso permitido apenas para administradores")
	}

	hash, err := utils.HashPassword(payload.Senha)
	if err != nil {
		return nil, err
	}
	tipo := payload.TipoUsuario
	if tipo == "" {
		tipo = constants.RoleComum
	}
	user := &entities.User{
		Username:    strings.ToLower(strings.TrimSpace(payload.Username)),
		Nome:        strings.TrimSpace(payload.Nome),
		TipoUsuario: tipo,
		Setor:       utils.NormalizeSector(payload.Setor),
		Senha:       hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Usuário criado com sucesso",
		zap.String("username", user.Username),
		zap.String("tipo_usuario", user.TipoUsuario),
		zap.String("criado_por", actor.Username),
	)
	out := toUserDTO(*user)
	return &out, nil
}

// UpdateUser доступен только администратору. Пустая правка ничего не пишет.
func (s *UserService) UpdateUser(ctx context.Context, actorIdentity string, userID int64, payload dto.UpdateUserDTO, meta *dto.RequestMeta) (*dto.UserDTO, error) {
	actor, err := s.auth.ResolveIdentity(ctx, actorIdentity)
	if err != nil {
		return nil, err
	}
	if !s.gatekeeper.Can(actor, authz.UsuariosUpdate) {
		return nil, apperrors.NewPermissionDenied("acesso permitido apenas para administradores")
	}

	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated := *current
	changes := make(map[string]interface{})
	if payload.Setor.Valid {
		setor := utils.NormalizeSector(payload.Setor.String)
		if !constants.IsValidSetor(setor) {
			return nil, apperrors.NewValidationError("setor", "setor %q desconhecido", payload.Setor.String)
		}
		if setor != current.Setor {
			updated.Setor = setor
			changes["setor"] = map[string]string{"de": current.Setor, "para": setor}
		}
	}
	if payload.TipoUsuario.Valid {
		tipo := payload.TipoUsuario.String
		if !constants.IsValidRole(tipo) {
			return nil, apperrors.NewValidationError("tipo_usuario", "tipo de usuário %q desconhecido", tipo)
		}
		if tipo != current.TipoUsuario {
			updated.TipoUsuario = tipo
			changes["tipo_usuario"] = map[string]string{"de": current.TipoUsuario, "para": tipo}
		}
	}
	if payload.Senha.Valid {
		hash, err := utils.HashPassword(payload.Senha.String)
		if err != nil {
			return nil, err
		}
		updated.Senha = hash
		changes["senha"] = "alterada"
	}

	if len(changes) == 0 {
		out := toUserDTO(*current)
		return &out, nil
	}
	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.activity.Log(ctx, ActivityEntry{
		Tipo:      constants.ActivityUsuarioEdit,
		Descricao: fmt.Sprintf("Usuário %s editado por %s", updated.Username, actor.Nome),
		Actor:     actor.Nome,
		Meta:      meta,
		Extra:     map[string]interface{}{"username": updated.Username, "alteracoes": changes},
	})
	s.logger.Info("Usuário atualizado",
		zap.Int64("userID", updated.ID),
		zap.String("username", updated.Username),
		zap.String("editado_por", actor.Username),
	)
	out := toUserDTO(updated)
	return &out, nil
}

// UserLogs - лента активности пользователя: его действия и правки его учетной записи.
func (s *UserService) UserLogs(ctx context.Context, actorIdentity string, userID int64, filter types.Filter) ([]entities.ActivityRecord, uint64, error) {
	actor, err := s.auth.ResolveIdentity(ctx, actorIdentity)
	if err != nil {
		return nil, 0, err
	}
	if !s.gatekeeper.Can(actor, authz.UsuariosLogs) {
		return nil, 0, apperrors.NewPermissionDenied("acesso permitido apenas para administradores")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.activity.ListForUser(ctx, user, filter)
}

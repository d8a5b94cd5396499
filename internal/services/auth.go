package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pedidos-system/internal/dto"
	"pedidos-system/internal/entities"
	"pedidos-system/internal/repositories"
	"pedidos-system/pkg/config"
	"pedidos-system/pkg/constants"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/service"
	"pedidos-system/pkg/utils"
)

type AuthServiceInterface interface {
	// Resolve переводит bearer-токен в пользователя. Любая неудача - ErrUnauthenticated.
	Resolve(ctx context.Context, credential string) (*entities.User, error)
	// ResolveIdentity - то же по уже проверенному username.
	ResolveIdentity(ctx context.Context, identity string) (*entities.User, error)
	Login(ctx context.Context, payload dto.LoginDTO, meta dto.RequestMeta) (*dto.TokenDTO, error)
}

type AuthService struct {
	users       repositories.UserRepositoryInterface
	credentials repositories.UserRepositoryInterface
	cacheRepo   repositories.CacheRepositoryInterface
	jwtService  service.JWTService
	activity    ActivityLoggerInterface
	cfg         config.AuthConfig
	logger      *zap.Logger
}

// NewAuthService: users - справочник (может быть кешированным), credentials -
// репозиторий с хешами паролей.
func NewAuthService(
	users repositories.UserRepositoryInterface,
	credentials repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	activity ActivityLoggerInterface,
	cfg config.AuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		users:       users,
		credentials: credentials,
		cacheRepo:   cacheRepo,
		jwtService:  jwtService,
		activity:    activity,
		cfg:         cfg,
		logger:      logger,
	}
}

func (s *AuthService) Resolve(ctx context.Context, credential string) (*entities.User, error) {
	if credential == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	claims, err := s.jwtService.ValidateToken(credential)
	if err != nil {
		return nil, errors.Join(apperrors.ErrUnauthenticated, err)
	}
	return s.ResolveIdentity(ctx, claims.Subject)
}

func (s *AuthService) ResolveIdentity(ctx context.Context, identity string) (*entities.User, error) {
	if identity == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	user, err := s.users.FindByUsername(ctx, identity)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO, meta dto.RequestMeta) (*dto.TokenDTO, error) {
	if err := s.checkLockout(ctx, payload.Email); err != nil {
		return nil, err
	}

	user, err := s.credentials.FindByUsername(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Credenciais inválidas fornecidas.", zap.String("email", payload.Email))
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := utils.ComparePasswords(user.Senha, payload.Senha); err != nil {
		s.handleFailedLoginAttempt(ctx, payload.Email)
		s.logger.Warn("Credenciais inválidas fornecidas.", zap.String("email", payload.Email))
		return nil, apperrors.ErrInvalidCredentials
	}
	s.resetLoginAttempts(ctx, payload.Email)

	token, err := s.jwtService.GenerateToken(user.Username, user.Nome)
	if err != nil {
		return nil, fmt.Errorf("не удалось выпустить токен: %w", err)
	}

	s.activity.Log(ctx, ActivityEntry{
		Tipo:      constants.ActivityLogin,
		Descricao: fmt.Sprintf("Login realizado por %s", user.Nome),
		Actor:     user.Nome,
		Meta:      &meta,
	})
	s.logger.Info("Токен выдан", zap.String("username", user.Username))

	return &dto.TokenDTO{
		AccessToken: token,
		TokenType:   "bearer",
		Nome:        user.Nome,
		TipoUsuario: user.TipoUsuario,
		Setor:       user.Setor,
		ExpiresIn:   int64(s.jwtService.GetAccessTokenTTL().Seconds()),
	}, nil
}

func (s *AuthService) checkLockout(ctx context.Context, login string) error {
	if _, err := s.cacheRepo.Get(ctx, "lockout:"+login); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, login string) {
	attemptsKey := "login_attempts:" + login
	utils.BestEffort(s.logger, "login_attempts", func() error {
		attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
		if err != nil {
			return err
		}
		if attempts == 1 {
			if err := s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration); err != nil {
				return err
			}
		}
		if s.cfg.MaxLoginAttempts > 0 && attempts >= int64(s.cfg.MaxLoginAttempts) {
			if err := s.cacheRepo.Set(ctx, "lockout:"+login, "locked", s.cfg.LockoutDuration); err != nil {
				return err
			}
			return s.cacheRepo.Del(ctx, attemptsKey)
		}
		return nil
	})
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, login string) {
	utils.BestEffort(s.logger, "reset_login_attempts", func() error {
		return s.cacheRepo.Del(ctx, "login_attempts:"+login, "lockout:"+login)
	})
}

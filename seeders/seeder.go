package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"pedidos-system/internal/entities"
	"pedidos-system/internal/repositories"
	"pedidos-system/pkg/config"
	"pedidos-system/pkg/constants"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/utils"
)

// SeedUser - пользователь для первичного наполнения. Пароль в открытом виде.
type SeedUser struct {
	Username    string
	Nome        string
	TipoUsuario string
	Setor       string
	Senha       string
}

// DemoUsers - по одному пользователю на каждую роль и setor.
var DemoUsers = []SeedUser{
	{"ana@araldi.com", "Ana", constants.RoleComum, "Granjas", "Password123!"},
	{"bruno@araldi.com", "Bruno", constants.RoleComum, "Escritório", "Password123!"},
	{"carla@araldi.com", "Carla", constants.RoleGestor, "Oficina", "Password123!"},
	{"diego@araldi.com", "Diego", constants.RoleComum, "Fábrica de Ração", "Password123!"},
}

// AdminUser собирает администратора из SEED_ADMIN_*.
func AdminUser(cfg config.SeedConfig) SeedUser {
	return SeedUser{
		Username:    cfg.AdminEmail,
		Nome:        cfg.AdminNome,
		TipoUsuario: constants.RoleAdmin,
		Setor:       "Escritório",
		Senha:       cfg.AdminPassword,
	}
}

// SeedUsers создает пользователей. Уже существующие пропускаются.
func SeedUsers(ctx context.Context, repo repositories.UserRepositoryInterface, users []SeedUser) (created int, err error) {
	for _, u := range users {
		ok, err := seedUser(ctx, repo, u)
		if err != nil {
			return created, fmt.Errorf("пользователь %s: %w", u.Username, err)
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func seedUser(ctx context.Context, repo repositories.UserRepositoryInterface, u SeedUser) (bool, error) {
	if u.Username == "" || u.Senha == "" {
		return false, apperrors.NewValidationError("username", "username e senha são obrigatórios")
	}
	if !constants.IsValidSetor(u.Setor) {
		return false, apperrors.NewValidationError("setor", "setor desconhecido: %q", u.Setor)
	}

	_, err := repo.FindByUsername(ctx, u.Username)
	if err == nil {
		log.Printf("    - Пользователь %s уже существует. Пропускаем.", u.Username)
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return false, err
	}

	hash, err := utils.HashPassword(u.Senha)
	if err != nil {
		return false, err
	}
	if err := repo.Create(ctx, &entities.User{
		Username:    u.Username,
		Nome:        u.Nome,
		TipoUsuario: u.TipoUsuario,
		Setor:       u.Setor,
		Senha:       hash,
	}); err != nil {
		return false, err
	}
	log.Printf("  - Создан пользователь %s (%s)", u.Username, u.TipoUsuario)
	return true, nil
}

package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Username    string `json:"username" validate:"required,email"`
	Nome        string `json:"nome" validate:"required,min=2,max=120"`
	Senha       string `json:"senha" validate:"required,min=6"`
	Setor       string `json:"setor" validate:"required,setor"`
	TipoUsuario string `json:"tipo_usuario" validate:"omitempty,tipo_usuario"`
}

// UpdateUserDTO: меняются только присланные поля. username и nome правкой не
// меняются: nome определяет владельца заказов.
type UpdateUserDTO struct {
	Senha       null.String `json:"senha" validate:"omitempty,min=6"`
	Setor       null.String `json:"setor" validate:"omitempty,setor"`
	TipoUsuario null.String `json:"tipo_usuario" validate:"omitempty,tipo_usuario"`
}

type UserDTO struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Nome        string `json:"nome"`
	TipoUsuario string `json:"tipo_usuario"`
	Setor       string `json:"setor"`
}

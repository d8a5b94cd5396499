package entities

import "time"

type User struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Nome        string    `json:"nome" db:"nome"`
	TipoUsuario string    `json:"tipo_usuario" db:"tipo_usuario"`
	Setor       string    `json:"setor" db:"setor"`
	Senha       string    `json:"-" db:"senha"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

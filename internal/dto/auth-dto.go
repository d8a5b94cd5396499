package dto

type LoginDTO struct {
	Email string `json:"email" validate:"required"`
	Senha string `json:"senha" validate:"required"`
}

type TokenDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Nome        string `json:"nome"`
	TipoUsuario string `json:"tipo_usuario"`
	Setor       string `json:"setor"`
	ExpiresIn   int64  `json:"expires_in"`
}

// RequestMeta - откуда пришел запрос, для журнала активности.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

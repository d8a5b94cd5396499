package contextkeys

type contextKey string

const (
	// UserIdentityKey - username (e-mail) аутентифицированного пользователя.
	UserIdentityKey contextKey = "UserIdentity"
	RequestMetaKey  contextKey = "RequestMeta"
)

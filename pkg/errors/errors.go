package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrAccountLocked      = fmt.Errorf("учётная запись временно заблокирована")

	// Таксономия ядра
	ErrNotFound         = fmt.Errorf("запись не найдена")
	ErrPermissionDenied = fmt.Errorf("доступ запрещён")
	ErrValidation       = fmt.Errorf("ошибка валидации")
	ErrUnauthenticated  = fmt.Errorf("неавторизован")

	// Внутренние, наружу не выходят
	ErrDeliveryFailed = fmt.Errorf("не удалось доставить уведомление")
)

// PermissionDeniedError - отказ Evaluator, Reason показывается клиенту.
type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string { return "permission denied: " + e.Reason }
func (e *PermissionDeniedError) Unwrap() error { return ErrPermissionDenied }

func NewPermissionDenied(reason string) error {
	return &PermissionDeniedError{Reason: reason}
}

// ValidationError - некорректная дата, число или статус.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}
func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError несет имя сущности и ID.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %v não encontrado", e.Entity, e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

func NewNotFound(entity string, id interface{}) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// HttpError - ошибка, готовая к отдаче клиенту.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, details interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Details: details}
}

// FromDomain переводит ошибку таксономии в HttpError. Для неизвестных ошибок
// возвращает nil.
func FromDomain(err error) *HttpError {
	var denied *PermissionDeniedError
	var invalid *ValidationError

	switch {
	case errors.As(err, &denied):
		return NewHttpError(http.StatusForbidden, denied.Reason, nil, nil)
	case errors.As(err, &invalid):
		return NewHttpError(http.StatusBadRequest, invalid.Error(), nil, map[string]string{"field": invalid.Field})
	case errors.Is(err, ErrPermissionDenied):
		return NewHttpError(http.StatusForbidden, "Acesso negado", nil, nil)
	case errors.Is(err, ErrValidation):
		return NewHttpError(http.StatusBadRequest, err.Error(), nil, nil)
	case errors.Is(err, ErrAccountLocked):
		return NewHttpError(http.StatusTooManyRequests, "Muitas tentativas de login. Tente novamente mais tarde.", nil, nil)
	case errors.Is(err, ErrInvalidCredentials):
		return NewHttpError(http.StatusUnauthorized, "E-mail ou senha inválidos", err, nil)
	case errors.Is(err, ErrNotFound):
		return NewHttpError(http.StatusNotFound, err.Error(), nil, nil)
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrEmptyAuthHeader),
		errors.Is(err, ErrInvalidAuthHeader):
		return NewHttpError(http.StatusUnauthorized, "Não autenticado", err, nil)
	}
	return nil
}

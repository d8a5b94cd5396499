package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/types"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HTTPResponse{Status: true, Body: body, Message: message})
}

// ListResponse отдает страницу списка. При withPagination тело оборачивается
// в {list, pagination}.
func ListResponse(ctx echo.Context, list interface{}, filter types.Filter, total uint64, message string) error {
	if !filter.WithPagination {
		return SuccessResponse(ctx, list, message, http.StatusOK)
	}
	body := map[string]interface{}{
		"list":       list,
		"pagination": types.NewPagination(filter, total),
	}
	return SuccessResponse(ctx, body, message, http.StatusOK)
}

func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if !errors.As(err, &httpErr) {
		httpErr = apperrors.FromDomain(err)
	}
	if httpErr != nil {
		if httpErr.Err != nil {
			logger.Warn("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
			)
		}

		response := map[string]interface{}{
			"status":  false,
			"message": httpErr.Message,
		}
		if httpErr.Details != nil {
			response["body"] = httpErr.Details
		}
		return c.JSON(httpErr.Code, response)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var msgs []string
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, map[string]interface{}{"status": false, "message": "Erro de validação: " + strings.Join(msgs, "; ")})
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status":  false,
		"message": "Erro interno do servidor",
	})
}

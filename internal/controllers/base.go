package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"pedidos-system/internal/dto"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/middleware"
	"pedidos-system/pkg/utils"
)

func identityFromCtx(c echo.Context) (string, error) {
	identity, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return "", apperrors.ErrUnauthenticated
	}
	return identity, nil
}

func requestMeta(c echo.Context) *dto.RequestMeta {
	return &dto.RequestMeta{
		IPAddress: utils.ClientIP(c),
		UserAgent: c.Request().UserAgent(),
	}
}

// parseID читает :id. entity попадает в текст ошибки ("pedido", "usuário").
func parseID(c echo.Context, entity string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, fmt.Sprintf("ID de %s inválido", entity), err, nil)
	}
	return id, nil
}

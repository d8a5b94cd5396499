package utils

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Ctx - контекст запроса с таймаутом.
func Ctx(c echo.Context, seconds int) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), time.Duration(seconds)*time.Second)
}

// ClientIP: первый адрес из X-Forwarded-For, иначе адрес соединения.
func ClientIP(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if first != "" {
			return first
		}
	}
	return c.RealIP()
}

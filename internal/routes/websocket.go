package routes

import (
	"github.com/labstack/echo/v4"

	"pedidos-system/internal/controllers"
)

func runWebSocketRouter(e *echo.Echo, wsCtrl *controllers.WebSocketController) {
	e.GET("/ws", wsCtrl.ServeWs)
}

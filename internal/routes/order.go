package routes

import (
	"github.com/labstack/echo/v4"

	"pedidos-system/internal/controllers"
)

func runOrderRouter(secureGroup *echo.Group, orderCtrl *controllers.OrderController) {
	{
		secureGroup.GET("/pedidos", orderCtrl.GetOrders)
		secureGroup.POST("/pedidos", orderCtrl.CreateOrder)
		secureGroup.GET("/pedidos/:id", orderCtrl.FindOrder)
		secureGroup.PUT("/pedidos/:id", orderCtrl.UpdateOrder)
		secureGroup.PATCH("/pedidos/:id", orderCtrl.UpdateOrder)
		secureGroup.GET("/pedidos/:id/historico", orderCtrl.GetHistory)
	}
}

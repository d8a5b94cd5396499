package routes

import (
	"github.com/labstack/echo/v4"

	"pedidos-system/internal/controllers"
)

func runUserRouter(secureGroup *echo.Group, userCtrl *controllers.UserController) {
	secureGroup.GET("/users", userCtrl.GetUsers)
	secureGroup.POST("/users", userCtrl.CreateUser)
	secureGroup.PUT("/users/:id", userCtrl.UpdateUser)
	secureGroup.PATCH("/users/:id", userCtrl.UpdateUser)
	secureGroup.GET("/users/:id/logs", userCtrl.GetUserLogs)
}

package routes

import (
	"github.com/labstack/echo/v4"

	"pedidos-system/internal/controllers"
	"pedidos-system/pkg/middleware"
)

func runAuthRouter(api *echo.Group, authCtrl *controllers.AuthController, authMW *middleware.AuthMiddleware) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authCtrl.Login)
		authGroup.GET("/me", authCtrl.Me, authMW.Auth)
		authGroup.GET("/validate-token", authCtrl.Me, authMW.Auth)
	}
}

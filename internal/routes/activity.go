package routes

import (
	"github.com/labstack/echo/v4"

	"pedidos-system/internal/controllers"
)

func runActivityRouter(secureGroup *echo.Group, activityCtrl *controllers.ActivityController) {
	secureGroup.GET("/atividades", activityCtrl.GetActivities)
}

package controllers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedidos-system/internal/services"
	"pedidos-system/pkg/utils"
)

type ActivityController struct {
	activityService services.ActivityServiceInterface
	logger          *zap.Logger
}

func NewActivityController(activityService services.ActivityServiceInterface, logger *zap.Logger) *ActivityController {
	return &ActivityController{activityService: activityService, logger: logger}
}

func (c *ActivityController) GetActivities(ctx echo.Context) error {
	identity, err := identityFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	list, total, err := c.activityService.ListActivities(ctx.Request().Context(), filter, identity)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.ListResponse(ctx, list, filter, total, "Atividades obtidas com sucesso")
}

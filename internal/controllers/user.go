package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedidos-system/internal/dto"
	"pedidos-system/internal/services"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/utils"
)

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

func (c *UserController) GetUsers(ctx echo.Context) error {
	identity, err := identityFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	users, err := c.userService.ListUsers(ctx.Request().Context(), identity)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, users, "Usuários obtidos com sucesso", http.StatusOK)
}

func (c *UserController) CreateUser(ctx echo.Context) error {
	identity, err := identityFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.CreateUserDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Formato de dados inválido", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	user, err := c.userService.CreateUser(ctx.Request().Context(), identity, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, user, "Usuário criado com sucesso", http.StatusCreated)
}

func (c *UserController) UpdateUser(ctx echo.Context) error {
	identity, err := identityFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx, "usuário")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var payload dto.UpdateUserDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Formato de dados inválido", err, nil), c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	user, err := c.userService.UpdateUser(ctx.Request().Context(), identity, id, payload, requestMeta(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, user, "Usuário atualizado com sucesso", http.StatusOK)
}

func (c *UserController) GetUserLogs(ctx echo.Context) error {
	identity, err := identityFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx, "usuário")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	logs, total, err := c.userService.UserLogs(ctx.Request().Context(), identity, id, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.ListResponse(ctx, logs, filter, total, "Histórico do usuário obtido com sucesso")
}

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

type AuthController struct {
	authService services.AuthServiceInterface
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewAuthController(
	authService services.AuthServiceInterface,
	userService services.UserServiceInterface,
	logger *zap.Logger,
) *AuthController {
	return &AuthController{
		authService: authService,
		userService: userService,
		logger:      logger,
	}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

func (ctrl *AuthController) Login(c echo.Context) error {
	var payload dto.LoginDTO
	if err := c.Bind(&payload); err != nil {
		ctrl.logger.Error("Login: ошибка привязки данных", zap.Error(err))
		return ctrl.errorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "Formato de dados inválido", err, nil))
	}
	if err := c.Validate(&payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	token, err := ctrl.authService.Login(c.Request().Context(), payload, *requestMeta(c))
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, token, "Login realizado com sucesso", http.StatusOK)
}

// Me - текущий пользователь по токену. Фронт вызывает его для проверки токена.
func (ctrl *AuthController) Me(c echo.Context) error {
	identity, err := identityFromCtx(c)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	me, err := ctrl.userService.Me(c.Request().Context(), identity)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, me, "Token válido", http.StatusOK)
}

package controllers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedidos-system/internal/dto"
	"pedidos-system/internal/lifecycle"
	"pedidos-system/internal/services"
	apperrors "pedidos-system/pkg/errors"
	"pedidos-system/pkg/utils"
)

// writeTimeoutSeconds ограничивает транзакцию записи заказа.
const writeTimeoutSeconds = 10

type OrderController struct {
	orderService services.OrderServiceInterface
	logger       *zap.Logger
}

func NewOrderController(orderService services.OrderServiceInterface, logger *zap.Logger) *OrderController {
	return &OrderController{orderService: orderService, logger: logger}
}

// readPatch читает тело как есть: отличить отсутствующее поле от null
// можно только по сырому JSON.
func (c *OrderController) readPatch(ctx echo.Context) (lifecycle.Patch, error) {
	raw, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return lifecycle.Patch{}, apperrors.NewHttpError(http.StatusBadRequest, "Não foi possível ler o corpo da requisição", err, nil)
	}
	return dto.DecodeOrderPatch(raw)
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	identity, err := identityFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	orders, total, err := c.orderService.ListOrders(ctx.Request().Context(), filter, identity)
	if err != nil {
		c.logger.Error("Ошибка при получении списка заказов", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.ListResponse(ctx, orders, filter, total, "Pedidos obtidos com sucesso")
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	identity, err := identityFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx, "pedido")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.orderService.FindOrder(ctx.Request().Context(), id, identity)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Pedido obtido com sucesso", http.StatusOK)
}

func (c *OrderController) CreateOrder(ctx echo.Context) error {
	identity, err := identityFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	patch, err := c.readPatch(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, writeTimeoutSeconds)
	defer cancel()

	order, err := c.orderService.CreateOrder(reqCtx, patch, identity, requestMeta(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Pedido criado com sucesso", http.StatusCreated)
}

// UpdateOrder обслуживает и PUT, и PATCH: в обоих случаях применяются только
// присланные поля.
func (c *OrderController) UpdateOrder(ctx echo.Context) error {
	identity, err := identityFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx, "pedido")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	patch, err := c.readPatch(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.Ctx(ctx, writeTimeoutSeconds)
	defer cancel()

	order, err := c.orderService.MutateOrder(reqCtx, id, patch, identity, requestMeta(ctx))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Pedido atualizado com sucesso", http.StatusOK)
}

func (c *OrderController) GetHistory(ctx echo.Context) error {
	identity, err := identityFromCtx(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseID(ctx, "pedido")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	history, err := c.orderService.GetHistory(ctx.Request().Context(), id, identity)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, history, "Histórico obtido com sucesso", http.StatusOK)
}

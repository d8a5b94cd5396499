package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedidos-system/internal/services"
	appwebsocket "pedidos-system/pkg/websocket"
)

type WebSocketController struct {
	connections services.ConnectionServiceInterface
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewWebSocketController(connections services.ConnectionServiceInterface, allowedOrigins []string, logger *zap.Logger) *WebSocketController {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &WebSocketController{
		connections: connections,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
		logger: logger,
	}
}

// ServeWs не отклоняет подключение без токена: такая сессия остается
// анонимной и адресных уведомлений не получает.
func (c *WebSocketController) ServeWs(ctx echo.Context) error {
	token := ctx.QueryParam("token")

	conn, err := c.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("WebSocket: не удалось улучшить соединение", zap.Error(err))
		return err
	}

	client := appwebsocket.NewClient(conn, c.logger, func(cl *appwebsocket.Client) {
		c.connections.UnregisterConnection(cl)
	})
	identity := c.connections.RegisterConnection(ctx.Request().Context(), client, token)

	go client.WritePump()
	go client.ReadPump()

	c.logger.Info("WebSocket: клиент подключен",
		zap.String("identity", identity.String()),
		zap.String("session", client.ID()),
	)
	return nil
}

package services

import (
	"context"

	"go.uber.org/zap"

	"pedidos-system/pkg/websocket"
)

// ConnectionRegistry - операции реестра, которые нужны сервису.
type ConnectionRegistry interface {
	Connect(id websocket.Identity, s websocket.Session)
	Disconnect(s websocket.Session) (websocket.Identity, bool)
}

type ConnectionServiceInterface interface {
	RegisterConnection(ctx context.Context, session websocket.Session, credential string) websocket.Identity
	UnregisterConnection(session websocket.Session)
}

type ConnectionService struct {
	registry ConnectionRegistry
	auth     AuthServiceInterface
	logger   *zap.Logger
}

func NewConnectionService(registry ConnectionRegistry, auth AuthServiceInterface, logger *zap.Logger) ConnectionServiceInterface {
	return &ConnectionService{registry: registry, auth: auth, logger: logger}
}

// RegisterConnection не отклоняет подключение: если токен не распознан,
// сессия регистрируется как анонимная и адресных уведомлений не получает.
func (s *ConnectionService) RegisterConnection(ctx context.Context, session websocket.Session, credential string) websocket.Identity {
	identity := websocket.Anonymous()
	status := "connected_anonymous"

	user, err := s.auth.Resolve(ctx, credential)
	if err != nil {
		s.logger.Warn("Не удалось определить пользователя WebSocket, подключение анонимное",
			zap.String("session", session.ID()),
			zap.Error(err),
		)
	} else {
		identity = websocket.Known(user.Username)
		if !identity.IsAnonymous() {
			status = "connected"
		}
	}

	s.registry.Connect(identity, session)

	envelope := websocket.NewEnvelope(websocket.MessageConnectionEstablished, websocket.ConnectionStatus{Status: status})
	if err := session.Push(envelope); err != nil {
		s.logger.Warn("Не удалось отправить connection_established",
			zap.String("session", session.ID()),
			zap.Error(err),
		)
	}
	return identity
}

func (s *ConnectionService) UnregisterConnection(session websocket.Session) {
	s.registry.Disconnect(session)
}

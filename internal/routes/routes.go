package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedidos-system/internal/authz"
	"pedidos-system/internal/controllers"
	"pedidos-system/internal/lifecycle"
	"pedidos-system/internal/listeners"
	"pedidos-system/internal/repositories"
	"pedidos-system/internal/services"
	"pedidos-system/pkg/config"
	"pedidos-system/pkg/eventbus"
	"pedidos-system/pkg/middleware"
	"pedidos-system/pkg/service"
	"pedidos-system/pkg/websocket"
)

// Services - все, что нужно HTTP-слою.
type Services struct {
	Auth       services.AuthServiceInterface
	User       services.UserServiceInterface
	Order      services.OrderServiceInterface
	Activity   services.ActivityServiceInterface
	Connection services.ConnectionServiceInterface
}

// InitRouter собирает репозитории, сервисы и слушателей шины и регистрирует маршруты.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	hub *websocket.Hub,
	bus *eventbus.Bus,
	jwtSvc service.JWTService,
	cfg *config.Config,
	logger *zap.Logger,
) {
	logger.Info("InitRouter: Начало создания маршрутов")

	// --- 1. РЕПОЗИТОРИИ ---
	txManager := repositories.NewTxManager(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	userRepo := repositories.NewUserRepository(dbConn)
	cachedUserRepo := repositories.NewCachedUserRepository(userRepo, cacheRepo, cfg.Redis.UserCacheTTL, logger)
	orderRepo := repositories.NewOrderRepository(dbConn)
	historyRepo := repositories.NewOrderHistoryRepository(dbConn)
	activityRepo := repositories.NewActivityRepository(dbConn)

	// --- 2. СЕРВИСЫ ---
	gatekeeper := authz.NewGatekeeper()
	activityLogger := services.NewActivityLogger(activityRepo, logger)
	authService := services.NewAuthService(cachedUserRepo, userRepo, cacheRepo, jwtSvc, activityLogger, cfg.Auth, logger)

	svc := Services{
		Auth: authService,
		User: services.NewUserService(cachedUserRepo, authService, gatekeeper, activityLogger, logger),
		Order: services.NewOrderService(
			txManager,
			orderRepo,
			authService,
			services.NewAuditRecorder(historyRepo),
			activityLogger,
			authz.NewEvaluator(gatekeeper),
			lifecycle.NewMachine(logger),
			bus,
			logger,
		),
		Activity:   services.NewActivityService(authService, gatekeeper, activityLogger),
		Connection: services.NewConnectionService(hub, authService, logger),
	}

	// --- 3. СЛУШАТЕЛИ ШИНЫ ---
	listeners.NewNotificationListener(cachedUserRepo, hub, cfg.Notifications, logger).Register(bus)
	if cfg.Notifications.AMQPURL != "" {
		publisher := listeners.NewDialPublisher(cfg.Notifications.AMQPURL)
		listeners.NewAMQPMirrorListener(publisher, cfg.Notifications.AMQPQueue, logger).Register(bus)
	}

	RegisterRoutes(e, svc, jwtSvc, cfg.Server.CORSOrigins, logger)
	logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}

// RegisterRoutes вешает контроллеры на /api и /ws.
func RegisterRoutes(e *echo.Echo, svc Services, jwtSvc service.JWTService, corsOrigins []string, logger *zap.Logger) {
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)
	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, controllers.NewAuthController(svc.Auth, svc.User, logger), authMW)
	runUserRouter(secureGroup, controllers.NewUserController(svc.User, logger))
	runOrderRouter(secureGroup, controllers.NewOrderController(svc.Order, logger))
	runActivityRouter(secureGroup, controllers.NewActivityController(svc.Activity, logger))
	runWebSocketRouter(e, controllers.NewWebSocketController(svc.Connection, corsOrigins, logger))
}

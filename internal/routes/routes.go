package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"counsel-dispatch/internal/controllers"
	"counsel-dispatch/internal/listeners"
	"counsel-dispatch/internal/repositories"
	"counsel-dispatch/internal/services"
	"counsel-dispatch/pkg/config"
	"counsel-dispatch/pkg/eventbus"
	"counsel-dispatch/pkg/middleware"
	"counsel-dispatch/pkg/service"
)

// InitRouter wires the whole dispatch engine: repositories over the shared
// pool, services on top, controllers at the edge, all routes behind auth.
func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, cfg *config.Config, logger *zap.Logger) {
	apiGroup := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)

	bus := eventbus.New(logger)
	notifier := listeners.NewLogNotifier(logger)
	listeners.NewNotificationListener(notifier, logger).Register(bus)

	counselorRepo := repositories.NewCounselorRepository(dbConn, logger)
	requestRepo := repositories.NewRequestRepository(dbConn, logger)
	appointmentRepo := repositories.NewAppointmentRepository(dbConn, logger)
	claimRepo := repositories.NewClaimRepository(dbConn, logger)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	reportRepo := repositories.NewReportRepository(dbConn)

	presenceSvc := services.NewPresenceService(counselorRepo, cacheRepo, cfg.Dispatch.PresenceTTL, logger)
	directorySvc := services.NewDirectoryService(counselorRepo, presenceSvc, logger)
	counselorSvc := services.NewCounselorService(counselorRepo, logger)
	dispatcherSvc := services.NewDispatcherService(requestRepo, directorySvc, bus, cfg.Dispatch, logger)
	chatCreator := services.NewLogChatSessionCreator(logger)
	arbiterSvc := services.NewArbiterService(claimRepo, requestRepo, chatCreator, bus, logger)
	schedulerSvc := services.NewSchedulerService(claimRepo, appointmentRepo, cfg.Dispatch, logger)
	lifecycleSvc := services.NewLifecycleService(claimRepo, bus, logger)
	reportSvc := services.NewReportService(reportRepo, logger)

	requestCtrl := controllers.NewRequestController(dispatcherSvc, arbiterSvc, lifecycleSvc, logger)
	appointmentCtrl := controllers.NewAppointmentController(schedulerSvc, arbiterSvc, logger)
	counselorCtrl := controllers.NewCounselorController(counselorSvc, directorySvc, presenceSvc, logger)
	reportCtrl := controllers.NewReportController(reportSvc, logger)

	secureGroup := apiGroup.Group("", authMW.Auth)

	runRequestRouter(secureGroup, requestCtrl)
	runAppointmentRouter(secureGroup, appointmentCtrl)
	runCounselorRouter(secureGroup, counselorCtrl)
	runReportRouter(secureGroup, reportCtrl)

	logger.Info("router initialized")
}

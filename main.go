package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"travel-service/internal/cache"
	"travel-service/internal/config"
	"travel-service/internal/cqrs"
	"travel-service/internal/db"
	"travel-service/internal/events"
	"travel-service/internal/groupchat"
	"travel-service/internal/handlers"
	"travel-service/internal/logger"
	"travel-service/internal/middleware"
	"travel-service/internal/notifications"
	"travel-service/internal/observability"
	"travel-service/internal/rabbitmq"
	"travel-service/internal/repositories"
	"travel-service/internal/saga"
	"travel-service/internal/telemetry"
	"travel-service/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, "travel-service", cfg.App.OTLPAddr)
	if err != nil {
		zlog.Fatal("failed to set up tracing", zap.Error(err))
	}
	defer shutdownTracing(ctx)

	database, err := db.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("failed to connect to db", zap.Error(err))
	}
	defer database.Close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	}
	unreadCache := cache.NewUnreadCache(redisClient)

	publisher := rabbitmq.NewPublisher(zlog, cfg.AMQP.URL, cfg.AMQP.Exchange)
	defer publisher.Close()
	audit := telemetry.NewAuditEmitter(publisher, zlog, "audit.travel", "travel-service", cfg.App.Environment)

	groupRepo := repositories.NewGroupRepo(database)
	messageRepo := repositories.NewGroupMessageRepo(database)
	reactionRepo := repositories.NewReactionRepo(database)
	invitationRepo := repositories.NewInvitationRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)
	activityRepo := repositories.NewActivityLogRepo(database)

	hub := ws.NewHub(zlog)
	bus := cqrs.NewBus()
	eventBus := cqrs.NewEventBus(zlog)

	notificationService := notifications.NewService(notificationRepo, hub, unreadCache, eventBus, zlog, cfg.Paging.DefaultPageSize)
	groupService := groupchat.NewService(groupRepo, messageRepo, reactionRepo, invitationRepo, hub, eventBus, zlog, cfg.Paging.DefaultPageSize, cfg.Paging.MaxPageSize)

	if err := notificationService.Register(bus); err != nil {
		zlog.Fatal("failed to register notification handlers", zap.Error(err))
	}
	if err := groupService.Register(bus); err != nil {
		zlog.Fatal("failed to register group handlers", zap.Error(err))
	}
	if err := saga.RegisterHandlers(bus, activityRepo); err != nil {
		zlog.Fatal("failed to register saga handlers", zap.Error(err))
	}

	notificationService.SubscribeEvents(eventBus)
	events.MirrorToBroker(eventBus, publisher)

	activitySaga := saga.NewActivityLogSaga(bus, cfg.Saga.Window(), zlog)
	activitySaga.Register(eventBus)
	activitySaga.Start()
	defer activitySaga.Stop(ctx)

	auth := middleware.NewAuthenticator(cfg.JWT.Secret)
	authMiddleware := middleware.AuthMiddleware(auth)

	notificationHandler := handlers.NewNotificationHandler(bus, audit)
	groupHandler := handlers.NewGroupHandler(bus, audit)
	gateway := ws.NewGatewayHandler(hub, groupRepo, auth)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("travel-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/notifications", authMiddleware, notificationHandler.Create)
	router.GET("/notifications", authMiddleware, notificationHandler.List)
	router.GET("/notifications/unread-count", authMiddleware, notificationHandler.UnreadCount)
	router.POST("/notifications/mark-all-read", authMiddleware, notificationHandler.MarkAllRead)

	router.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	router.GET("/groups", authMiddleware, groupHandler.ListGroups)
	router.POST("/groups/:group_id/messages", authMiddleware, groupHandler.PostMessage)
	router.GET("/groups/:group_id/messages", authMiddleware, groupHandler.GetMessages)
	router.DELETE("/groups/:group_id/messages/:message_id", authMiddleware, groupHandler.DeleteMessage)
	router.POST("/groups/:group_id/messages/:message_id/pin", authMiddleware, groupHandler.PinMessage)
	router.DELETE("/groups/:group_id/messages/:message_id/pin", authMiddleware, groupHandler.UnpinMessage)

	router.POST("/messages/:message_id/reactions", authMiddleware, groupHandler.AddReaction)
	router.DELETE("/messages/:message_id/reactions", authMiddleware, groupHandler.RemoveReaction)
	router.GET("/messages/:message_id/reactions", authMiddleware, groupHandler.GetReactions)

	router.POST("/groups/:group_id/invitations", authMiddleware, groupHandler.Invite)
	router.GET("/invitations", authMiddleware, groupHandler.ListInvitations)
	router.POST("/invitations/:invitation_id/respond", authMiddleware, groupHandler.RespondInvitation)

	router.GET("/ws", gateway.Handle)

	zlog.Info("starting server", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}

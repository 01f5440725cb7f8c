package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chat-broker/internal/auth"
	"chat-broker/internal/broker"
	"chat-broker/internal/db"
	"chat-broker/internal/handlers"
	"chat-broker/internal/middleware"
	"chat-broker/internal/observability"
	"chat-broker/internal/rabbitmq"
	"chat-broker/internal/repositories"
	"chat-broker/internal/telemetry"
	"chat-broker/internal/transcript"
	"chat-broker/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	userRepo := repositories.NewUserRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	transcriptRepo := repositories.NewTranscriptRepo(database)

	publisher := rabbitmq.NewPublisher(os.Getenv("AMQP_URL"), getEnv("AMQP_EXCHANGE", "chat_broker_events"))
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))
	observability.SetPublisher(publisher)

	audit := telemetry.NewAuditEmitter(publisher, "audit.chat_broker", "chat-broker", getEnv("ENVIRONMENT", "dev"))
	verifier := auth.NewVerifier(getEnv("JWT_SECRET", "dev-secret-change-me"), "chat-broker")
	exporter := transcript.NewFileExporter(getEnv("TRANSCRIPT_DIR", "logs"), func(username string) string {
		user, err := userRepo.Get(context.Background(), username)
		if err != nil {
			return username
		}
		return user.DisplayName()
	})

	registry := broker.NewPresenceRegistry()
	dispatcher := broker.NewDispatcher(registry)
	membership := broker.NewMembershipStore(groupRepo, userRepo)
	messageRouter := broker.NewMessageRouter(userRepo, messageRepo, membership, dispatcher)
	lifecycle := broker.NewLifecycleCoordinator(membership, registry, dispatcher, userRepo, messageRepo, transcriptRepo, exporter)

	chatHandler := handlers.NewChatHandler(messageRouter, registry, messageRepo, audit)
	groupHandler := handlers.NewGroupHandler(lifecycle, messageRouter, membership, groupRepo, messageRepo, audit)
	presenceWS := ws.NewPresenceHandler(registry, userRepo, verifier)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.POST("/messages/direct", authMiddleware, chatHandler.SendDirectMessage)
	router.GET("/messages/:peer", authMiddleware, chatHandler.GetDirectMessages)
	router.GET("/online", authMiddleware, chatHandler.ListOnlineUsers)

	router.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	router.GET("/groups", authMiddleware, groupHandler.ListGroups)
	router.GET("/groups/all", authMiddleware, groupHandler.ListAllGroups)
	router.POST("/groups/:group/members", authMiddleware, groupHandler.JoinGroup)
	router.DELETE("/groups/:group/members/:username", authMiddleware, groupHandler.LeaveGroup)
	router.POST("/groups/:group/messages", authMiddleware, groupHandler.PostGroupMessage)
	router.GET("/groups/:group/messages", authMiddleware, groupHandler.GetGroupMessages)

	router.GET("/ws", presenceWS.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterDebugRoutes(router, audit, verifier, getEnv("DEBUG_ROUTES", "") == "true")

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"newsbot/internal/ai"
	appsvc "newsbot/internal/app"
	"newsbot/internal/bootstrap"
	"newsbot/internal/chatlog"
	"newsbot/internal/platform/rabbitmq"
	"newsbot/internal/realtime"
	"newsbot/internal/repository"
	"newsbot/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	articleRepo := repository.NewArticleRepository(app.MySQL)
	log := newChatLog(app)
	fanout := newFanout(app)

	llmClient := ai.NewClient(ai.Config{
		BaseURL:        app.Config.LLM.BaseURL,
		APIKey:         app.Config.LLM.APIKey,
		ChatModel:      app.Config.LLM.ChatModel,
		EmbeddingModel: app.Config.LLM.EmbeddingModel,
	})

	chatService := appsvc.NewChatService(
		articleRepo,
		log,
		llmClient,
		llmClient,
		fanout,
		appsvc.ChatOptions{
			TopK:         app.Config.Chat.TopK,
			ExcerptChars: app.Config.Chat.ExcerptChars,
		},
		app.Logger,
	)
	backfillService := appsvc.NewBackfillService(
		articleRepo,
		llmClient,
		time.Duration(app.Config.Backfill.IntervalMillis)*time.Millisecond,
		app.Logger,
	)

	var transcriptService *appsvc.TranscriptService
	if app.MQConn != nil {
		publisher := rabbitmq.NewTranscriptPublisher(app.MQConn, app.Config.RabbitMQ.TranscriptQueue)
		transcriptService = appsvc.NewTranscriptService(log, publisher)
	}

	chatHandler := handler.NewChatHandler(chatService, fanout)
	articleHandler := handler.NewArticleHandler(chatService)
	adminHandler := handler.NewAdminHandler(backfillService, transcriptService)

	api := router.Group("/api")
	api.POST("/chat", chatHandler.Send)
	api.GET("/chat/:sessionId", chatHandler.History)
	api.DELETE("/chat/:sessionId", chatHandler.Clear)
	api.GET("/chat/:sessionId/stream", chatHandler.Stream)
	api.GET("/articles", articleHandler.List)
	api.POST("/admin/seed-embeddings", adminHandler.SeedEmbeddings)
	api.POST("/sessions/:sessionId/transcripts", adminHandler.ArchiveTranscript)

	return router
}

func newChatLog(app *bootstrap.App) chatlog.Log {
	switch app.Config.Chat.HistoryBackend {
	case "redis":
		ttl := time.Duration(app.Config.Chat.HistoryTTLSeconds) * time.Second
		return chatlog.NewRedisLog(app.Redis, ttl)
	case "memory":
		return chatlog.NewMemoryLog()
	default:
		return chatlog.NewSQLLog(app.MySQL)
	}
}

func newFanout(app *bootstrap.App) realtime.Fanout {
	if app.Config.Chat.FanoutBackend == "redis" {
		return realtime.NewRedisFanout(app.Redis)
	}
	return realtime.NewHub()
}

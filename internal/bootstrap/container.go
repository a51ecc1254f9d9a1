package bootstrap

import (
	"log"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/controller"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/implementation"
	"ai-chat-be/internal/service"
	"ai-chat-be/pkg/chat/assembler"
	"ai-chat-be/pkg/chat/suggest"
	"ai-chat-be/pkg/embedding"
	"ai-chat-be/pkg/extractor"
	"ai-chat-be/pkg/llm/factory"
	"ai-chat-be/pkg/objectstore"
	"ai-chat-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	SessionController controller.ISessionController
	UploadController  controller.IUploadController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	chatMapper := mapper.NewChatMapper()

	sessionRepo := implementation.NewChatSessionRepository(db, chatMapper)
	messageRepo := implementation.NewChatMessageRepository(db, chatMapper)
	systemLogRepo := implementation.NewSystemLogRepository(db)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.OllamaBaseURL)
	if err != nil {
		log.Panicf("Unable to initialize LLM provider: %v", err)
	}
	embeddingProvider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)

	// 4. Retrieval & Extraction
	gateway := retrieval.NewPgGateway(db, embeddingProvider)
	ocrClient := extractor.NewOcrClient(cfg.Ocr.BaseURL, cfg.Ocr.ParseMode, cfg.Ocr.TimeoutSeconds)
	contextAssembler := assembler.NewAssembler(gateway, ocrClient, sysLogger, cfg.Ai.UploadedDocMaxLen)
	suggester := suggest.NewSuggester(llmProvider, sysLogger, cfg.Ai.AnswerExcerptLen)

	// 5. Object Storage
	objectStore, err := objectstore.NewMinioStore(
		cfg.ObjectStore.Endpoint,
		cfg.ObjectStore.AccessKey,
		cfg.ObjectStore.SecretKey,
		cfg.ObjectStore.Bucket,
		cfg.ObjectStore.UseSSL,
	)
	if err != nil {
		log.Panicf("Unable to initialize object store: %v", err)
	}

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.TurnEventTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.TurnEventTopic, systemLogRepo, sysLogger)

	chatService := service.NewChatService(
		sessionRepo,
		messageRepo,
		contextAssembler,
		suggester,
		llmProvider,
		publisherService,
		sysLogger,
	)
	sessionService := service.NewSessionService(sessionRepo, messageRepo, sysLogger)
	uploadService := service.NewUploadService(objectStore, sysLogger)

	return &Container{
		ChatController:    controller.NewChatController(chatService),
		SessionController: controller.NewSessionController(sessionService),
		UploadController:  controller.NewUploadController(uploadService),

		ConsumerService: consumerService,

		Logger: sysLogger,
	}
}

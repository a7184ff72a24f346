package bootstrap

import (
	"context"
	"log"
	"time"

	"docai-platform-be/internal/config"
	"docai-platform-be/internal/controller"
	"docai-platform-be/internal/pkg/logger"
	"docai-platform-be/internal/pkg/mailer"
	"docai-platform-be/internal/repository/graphstore"
	"docai-platform-be/internal/repository/implementation"
	"docai-platform-be/internal/repository/unitofwork"
	"docai-platform-be/internal/service"
	"docai-platform-be/pkg/diff"
	"docai-platform-be/pkg/embedding"
	"docai-platform-be/pkg/embedding/jina"
	"docai-platform-be/pkg/llm/factory"
	"docai-platform-be/pkg/retrieval"
	"docai-platform-be/pkg/versioning"

	pktNats "docai-platform-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController controller.IDocumentController
	VersionController  controller.IVersionController
	QueryController    controller.IQueryController

	// Background Services (Exposed for main.go to run)
	DiffConsumerService  service.IDiffConsumerService
	EventConsumerService service.IEventConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// Initialize LLM Provider based on Config
	llmKey := cfg.Keys.GoogleGemini
	if cfg.Ai.LLMProvider == "huggingface" {
		llmKey = cfg.Keys.HuggingFace
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		llmKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis (review queue storage)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	reviewQueue := implementation.NewReviewQueueRepository(rdb)

	// 3. Versioning Core
	graphStore := graphstore.NewGormGraphStore(db)
	eventSink := service.NewVersionEventSink(natsPub, emailService, cfg.App.OperatorEmail, sysLogger)

	similarityProvider := service.NewSimilarityProvider(uowFactory, embeddingProvider)
	finder := versioning.NewFinder(similarityProvider, sysLogger)
	judge := versioning.NewJudge(llmProvider, time.Duration(cfg.Ai.JudgeTimeoutSec)*time.Second, sysLogger)
	linker := versioning.NewLinker(graphStore, eventSink, sysLogger)

	// 4. Diff Engine
	chunkSource := diff.NewRepositoryChunkSource(implementation.NewDocumentChunkRepository(db))
	semanticAnalyzer := diff.NewSemanticAnalyzer(llmProvider, time.Duration(cfg.Ai.AnalysisTimeoutSec)*time.Second, sysLogger)
	diffRepository := implementation.NewVersionDiffRepository(db)
	diffEngine := diff.NewEngine(graphStore, chunkSource, diffRepository, semanticAnalyzer, sysLogger)

	// 5. Retrieval
	policy := retrieval.NewPolicy(graphStore, sysLogger)
	router := retrieval.NewRouter(llmProvider, 0, sysLogger)

	// 6. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Versioning.DiffTopic)
	diffConsumerService := service.NewDiffConsumerService(
		pubSub,
		cfg.Versioning.DiffTopic,
		cfg.Versioning.DiffWorkerCount,
		diffEngine,
		sysLogger,
	)

	documentService := service.NewDocumentService(
		uowFactory,
		finder,
		judge,
		linker,
		reviewQueue,
		embeddingProvider,
		publisherService,
		sysLogger,
	)
	versionService := service.NewVersionService(graphStore, linker, diffEngine, reviewQueue, sysLogger)
	queryService := service.NewQueryService(router, policy, diffRepository, publisherService, sysLogger)
	eventConsumerService := service.NewVersionEventConsumerService(natsSub, reviewQueue, sysLogger)

	// 7. Controllers
	return &Container{
		DocumentController:   controller.NewDocumentController(documentService),
		VersionController:    controller.NewVersionController(versionService),
		QueryController:      controller.NewQueryController(queryService),
		DiffConsumerService:  diffConsumerService,
		EventConsumerService: eventConsumerService,
	}
}

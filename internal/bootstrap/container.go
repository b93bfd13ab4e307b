package bootstrap

import (
	"context"
	"fmt"
	"log"

	"voice-shopping-be/internal/config"
	"voice-shopping-be/internal/controller"
	"voice-shopping-be/internal/handler"
	"voice-shopping-be/internal/metrics"
	"voice-shopping-be/internal/pkg/logger"
	"voice-shopping-be/internal/pkg/serverutils"
	"voice-shopping-be/internal/repository/cache"
	"voice-shopping-be/internal/repository/filesystem"
	"voice-shopping-be/internal/repository/memory"
	"voice-shopping-be/internal/repository/unitofwork"
	"voice-shopping-be/internal/service"
	"voice-shopping-be/internal/websocket"
	"voice-shopping-be/pkg/agent/answer"
	"voice-shopping-be/pkg/agent/graph"
	"voice-shopping-be/pkg/agent/planner"
	"voice-shopping-be/pkg/agent/retriever"
	"voice-shopping-be/pkg/agent/router"
	"voice-shopping-be/pkg/catalog"
	"voice-shopping-be/pkg/embedding"
	embeddingOpenAI "voice-shopping-be/pkg/embedding/openai"
	"voice-shopping-be/pkg/events"
	"voice-shopping-be/pkg/llm/factory"
	"voice-shopping-be/pkg/speech"
	speechOpenAI "voice-shopping-be/pkg/speech/openai"

	pktNats "voice-shopping-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// embeddingCacheSize bounds the in-process query vector cache
const embeddingCacheSize = 1024

type Container struct {
	Logger   logger.ILogger
	Registry *prometheus.Registry

	// Controllers
	HealthController    controller.IHealthController
	AssistantController controller.IAssistantController
	SpeechController    controller.ISpeechController
	AdminController     controller.IAdminController

	// Services (exposed for main.go and the CLIs)
	AssistantService service.IAssistantService
	SpeechService    service.ISpeechService
	CatalogService   service.ICatalogService
	ConsumerService  service.IConsumerService
	AnalyticsService service.IAnalyticsService

	// EventSubscriber is nil when NATS is unreachable
	EventSubscriber *pktNats.Subscriber

	// WebSockets
	VoiceHandler *handler.VoiceHandler
	WebSocketHub *websocket.Hub

	closers []func()
}

// NewContainer wires every component. Optional infrastructure (Redis, NATS,
// OpenAI speech) degrades to a warning when it is missing or unreachable.
// ctx bounds the lifetime of voice sessions.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	voiceLogger := logger.NewIsolatedLogger(cfg.App.VoiceLogFilePath)

	c := &Container{Logger: sysLogger}
	c.closers = append(c.closers, func() { _ = sysLogger.Sync(); _ = voiceLogger.Sync() })

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Registry = registry
	appMetrics := metrics.New(registry)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. AI Providers
	embeddingProvider, err := newEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("Bootstrap", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"model":    cfg.Ai.EmbeddingModel,
	})

	// The chat backend is built on first use so the server starts without it
	llmProvider := factory.NewLazyLLMProvider(factory.Settings{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  llmBaseURL(cfg),
		APIKey:   cfg.Ai.OpenAIAPIKey,
	})
	sysLogger.Info("Bootstrap", "LLM provider configured", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. Infrastructure
	// NATS
	var eventPublisher events.Publisher
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
	} else {
		eventPublisher = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
	} else {
		c.EventSubscriber = natsSub
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	redisUp := true
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
		redisUp = false
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	var answerStore service.AnswerStore
	var cacheFlusher service.CacheFlusher
	if cfg.Cache.Enabled && redisUp {
		answerCache := cache.NewAnswerCache(rdb, cfg.Cache.TTL)
		answerStore = answerCache
		cacheFlusher = answerCache
	}

	// WebSocket Hub
	var hubRedis *redis.Client
	if redisUp {
		hubRedis = rdb
	}
	c.WebSocketHub = websocket.NewHub(hubRedis, voiceLogger)

	// 5. Speech
	var synthesizer speech.Synthesizer
	var transcriber speech.Transcriber
	if cfg.Ai.OpenAIAPIKey != "" {
		speechClient := speechOpenAI.NewClient(cfg.Ai.OpenAIAPIKey, cfg.Ai.OpenAIBaseURL, cfg.Speech.ASRModel)
		synthesizer = speechClient
		transcriber = speechClient
	} else {
		sysLogger.Warn("Bootstrap", "OPENAI_API_KEY not set, TTS and ASR disabled", nil)
	}

	audioStore, err := filesystem.NewAudioStore(cfg.App.AudioDir)
	if err != nil {
		return nil, fmt.Errorf("audio store: %w", err)
	}

	c.SpeechService = service.NewSpeechService(
		synthesizer,
		transcriber,
		audioStore,
		eventPublisher,
		appMetrics,
		sysLogger,
		service.SpeechServiceConfig{
			Model:    cfg.Speech.TTSModel,
			Voice:    cfg.Speech.TTSVoice,
			Language: cfg.Speech.Language,
		},
	)

	// 6. Shopping Pipeline
	localRetriever := retriever.NewLocalRetriever(
		retriever.NewLazySearcher(func() (retriever.VectorSearcher, error) {
			sqlDB, err := db.DB()
			if err != nil {
				return nil, err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return nil, err
			}
			return service.NewCatalogSearcher(uowFactory, embeddingProvider), nil
		}),
		sysLogger,
	)

	pipeline := graph.NewPipeline(graph.Dependencies{
		Extractor: router.NewExtractor(llmProvider, sysLogger),
		Planner:   planner.NewPlanner(llmProvider, sysLogger),
		Local:     localRetriever,
		Web:       newWebRetriever(cfg),
		Answerer:  answer.NewSynthesizer(llmProvider),
		Logger:    sysLogger,
		Observer:  appMetrics,
		K:         cfg.Ai.RetrievalK,
	})

	c.AssistantService = service.NewAssistantService(
		pipeline,
		c.SpeechService,
		answerStore,
		eventPublisher,
		appMetrics,
		sysLogger,
	)

	// 7. Catalog Indexing
	var enricher service.RowEnricher
	if cfg.Ai.EnrichCatalog {
		enricher = catalog.NewEnricher(llmProvider, sysLogger)
	}
	publisherService := service.NewPublisherService(pubSub, cfg.App.IndexTopic)
	c.CatalogService = service.NewCatalogService(
		publisherService,
		uowFactory,
		embeddingProvider,
		enricher,
		cacheFlusher,
		appMetrics,
		c.WebSocketHub,
		sysLogger,
	)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.IndexTopic, c.CatalogService, sysLogger)
	c.AnalyticsService = service.NewAnalyticsService(appMetrics, sysLogger)

	// 8. Handlers & Controllers
	c.VoiceHandler = handler.NewVoiceHandler(
		ctx,
		c.WebSocketHub,
		c.AssistantService,
		c.SpeechService,
		memory.NewAudioSessionRepository(),
		voiceLogger,
	)

	c.HealthController = controller.NewHealthController(cfg.App.Version, c.SpeechService, llmProvider.Ready)
	c.AssistantController = controller.NewAssistantController(c.AssistantService)
	c.SpeechController = controller.NewSpeechController(c.SpeechService)
	c.AdminController = controller.NewAdminController(
		c.SpeechService,
		c.CatalogService,
		serverutils.NewJwtMiddleware(cfg.Auth.JWTSecret),
	)

	if cfg.Auth.JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET is empty, admin routes will reject every token")
	}

	return c, nil
}

// Close releases connections in reverse order of creation
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	var inner embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		inner = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	case "openai":
		if cfg.Ai.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("openai embeddings require OPENAI_API_KEY")
		}
		inner = embeddingOpenAI.NewProvider(cfg.Ai.OpenAIAPIKey, cfg.Ai.OpenAIBaseURL, cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDims)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}

	cached, err := embedding.NewCachedProvider(inner, embeddingCacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMBaseURL != "" {
		return cfg.Ai.LLMBaseURL
	}
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.OpenAIBaseURL
}

func newWebRetriever(cfg *config.Config) retriever.Retriever {
	if cfg.Web.SearchURL == "" {
		return retriever.StubWebRetriever{}
	}
	sel := retriever.DefaultSelectors
	sel.Item = cfg.Web.ItemSelector
	sel.Title = cfg.Web.TitleSelector
	sel.Price = cfg.Web.PriceSelector
	sel.Link = cfg.Web.LinkSelector
	sel.Brand = cfg.Web.BrandSelector
	sel.Material = cfg.Web.MaterialSelector
	return retriever.NewHTMLRetriever(cfg.Web.SearchURL, sel)
}

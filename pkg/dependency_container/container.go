package dependency_container

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/NeuralTrust/DoctourGate/pkg/app/consultation"
	appSafety "github.com/NeuralTrust/DoctourGate/pkg/app/safety"
	"github.com/NeuralTrust/DoctourGate/pkg/config"
	"github.com/NeuralTrust/DoctourGate/pkg/domain/conversation"
	handlers "github.com/NeuralTrust/DoctourGate/pkg/handlers/http"
	wsHandlers "github.com/NeuralTrust/DoctourGate/pkg/handlers/websocket"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache/channel"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache/event"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/cache/subscriber"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/httpx"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/jwt"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/prometheus"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/providers"
	providersFactory "github.com/NeuralTrust/DoctourGate/pkg/infra/providers/factory"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/repository"
	"github.com/NeuralTrust/DoctourGate/pkg/infra/rules"
	infraWebsocket "github.com/NeuralTrust/DoctourGate/pkg/infra/websocket"
	"github.com/NeuralTrust/DoctourGate/pkg/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const sessionSweepInterval = time.Minute

type Container struct {
	InstanceID          string
	Cache               cache.Client
	RedisListener       cache.EventListener
	RedisPublisher      cache.EventPublisher
	Pipeline            *appSafety.Pipeline
	Watcher             *rules.Watcher
	Responder           *consultation.Responder
	SessionRepository   conversation.Repository
	JWTManager          jwt.Manager
	HandlerTransport    handlers.HandlerTransport
	WSHandlerTransport  wsHandlers.HandlerTransport
	MiddlewareTransport *middleware.Transport

	logger       *logrus.Logger
	memorySweep  *repository.MemorySessionRepository
	stopSweeping chan struct{}
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// RulesPath overrides Cfg.Safety.RulesPath when set.
	RulesPath string
}

// NewPipeline loads the rule file and builds the safety pipeline. It never
// fails: an unreadable file yields an unloaded rule set governed by the
// configured fail mode.
func NewPipeline(cfg *config.Config, logger *logrus.Logger, rulesPath string) (*appSafety.Pipeline, error) {
	failMode, err := appSafety.ParseFailMode(cfg.Safety.FailMode)
	if err != nil {
		return nil, err
	}
	if rulesPath == "" {
		rulesPath = cfg.Safety.RulesPath
	}
	loader := rules.NewLoader(logger)
	return appSafety.NewPipeline(logger, loader, loader.Load(rulesPath), appSafety.Options{
		FailMode:          failMode,
		ParallelDetectors: cfg.Safety.ParallelDetectors,
		Advisories:        cfg.Safety.Advisories,
	}), nil
}

// NewGenerator resolves the configured provider and guards it with a circuit
// breaker.
func NewGenerator(cfg *config.Config, logger *logrus.Logger) (consultation.Generator, error) {
	client, err := providersFactory.NewProviderLocator().Get(cfg.Model.Provider)
	if err != nil {
		return nil, err
	}
	breaker := httpx.NewCircuitBreaker(httpx.BreakerConfig{
		Name:        "provider-" + cfg.Model.Provider,
		Timeout:     config.Duration(cfg.Model.Breaker.Timeout, 30*time.Second),
		MaxFailures: cfg.Model.Breaker.MaxFailures,
		MaxRequests: cfg.Model.Breaker.MaxRequests,
	}, logger)
	return consultation.NewProviderGenerator(client, providers.Config{
		Credentials: providers.Credentials{
			ApiKey:  cfg.Model.APIKey,
			BaseURL: cfg.Model.BaseURL,
		},
		Model:        cfg.Model.Name,
		MaxTokens:    cfg.Model.MaxTokens,
		Temperature:  cfg.Model.Temperature,
		SystemPrompt: cfg.Model.SystemPrompt,
	}, breaker), nil
}

// reloadOnChange reloads the watched file only while it is still the active
// source. An admin reload from another path is not reverted by later writes.
func reloadOnChange(logger *logrus.Logger, pipeline *appSafety.Pipeline, watched string) func(ctx context.Context) {
	watched = filepath.Clean(watched)
	return func(ctx context.Context) {
		active := pipeline.RuleSet().Source()
		if active != "" && filepath.Clean(active) != watched {
			logger.WithFields(logrus.Fields{
				"path":   watched,
				"active": active,
			}).Info("rule file changed but another source is active, skipping reload")
			return
		}
		_, _ = pipeline.Reload(ctx, watched, appSafety.TriggerWatcher)
	}
}

func NewContainer(di ContainerDI) (*Container, error) {
	cfg := di.Cfg
	c := &Container{
		InstanceID:   uuid.NewString(),
		logger:       di.Logger,
		stopSweeping: make(chan struct{}),
	}

	prometheus.Initialize(prometheus.MetricsConfig{
		EnableLatency:    cfg.Metrics.EnableLatency,
		EnableTermLabels: cfg.Metrics.EnableTermLabels,
	})

	pipeline, err := NewPipeline(cfg, di.Logger, di.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build safety pipeline: %w", err)
	}
	c.Pipeline = pipeline

	if cfg.Safety.Watch {
		path := pipeline.RuleSet().Source()
		watcher, err := rules.NewWatcher(path, config.Duration(cfg.Safety.WatchDebounce, 0), di.Logger, reloadOnChange(di.Logger, pipeline, path))
		if err != nil {
			di.Logger.WithError(err).Warn("rule file watching disabled")
		} else {
			c.Watcher = watcher
		}
	}

	c.RedisPublisher = cache.NewNoopPublisher()
	if cfg.Redis.Enabled {
		tlsConfig, err := config.BuildRedisTLSConfig(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to build redis tls config: %w", err)
		}
		cacheInstance, err := cache.NewClient(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS:      tlsConfig,
		}, di.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		c.Cache = cacheInstance
		c.RedisPublisher = cache.NewRedisEventPublisher(cacheInstance, channel.SafetyEvents)
		c.RedisListener = cache.NewRedisEventListener(di.Logger, cacheInstance, event.Registry)
		cache.RegisterEventSubscriber[event.RuleSetReloadEvent](
			c.RedisListener,
			subscriber.NewRuleSetReloadEventSubscriber(di.Logger, pipeline, c.InstanceID),
		)
	}

	sessionTTL := config.Duration(cfg.Conversation.TTL, 24*time.Hour)
	switch cfg.Conversation.Store {
	case config.StoreRedis:
		if c.Cache == nil {
			return nil, fmt.Errorf("conversation store %q requires redis.enabled", cfg.Conversation.Store)
		}
		c.SessionRepository = repository.NewSessionRepository(c.Cache, sessionTTL)
	case config.StoreMemory:
		c.memorySweep = repository.NewMemorySessionRepository(sessionTTL)
		c.SessionRepository = c.memorySweep
	default:
		return nil, fmt.Errorf("unsupported conversation store: %s", cfg.Conversation.Store)
	}

	generator, err := NewGenerator(cfg, di.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation provider: %w", err)
	}
	c.Responder = consultation.NewResponder(
		di.Logger,
		pipeline,
		generator,
		consultation.NewNoopRetriever(),
		c.SessionRepository,
		consultation.Options{
			MaxTurns:         cfg.Conversation.MaxTurns,
			MaxContextTokens: cfg.Conversation.MaxContextTokens,
			TopK:             cfg.Conversation.TopK,
		},
	)

	c.JWTManager = jwt.NewJwtManager(cfg.Server.SecretKey, config.Duration(cfg.Server.TokenTTL, 24*time.Hour))

	c.MiddlewareTransport = &middleware.Transport{
		AdminAuthMiddleware:    middleware.NewAdminAuthMiddleware(di.Logger, c.JWTManager),
		MetricsMiddleware:      middleware.NewMetricsMiddleware(di.Logger),
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(di.Logger),
		WebsocketMiddleware: middleware.NewWebsocketMiddleware(
			di.Logger,
			infraWebsocket.NewSemaphore(cfg.WebSocket.MaxConnections),
		),
	}

	c.HandlerTransport = &handlers.HandlerTransportDTO{
		// Safety
		ValidateHandler:   handlers.NewValidateHandler(di.Logger, pipeline),
		DetectHandler:     handlers.NewDetectHandler(di.Logger, pipeline),
		GetRuleSetHandler: handlers.NewGetRuleSetHandler(di.Logger, pipeline),
		// Consultation
		ConsultHandler:       handlers.NewConsultHandler(di.Logger, c.Responder),
		GetSessionHandler:    handlers.NewGetSessionHandler(di.Logger, c.Responder),
		DeleteSessionHandler: handlers.NewDeleteSessionHandler(di.Logger, c.Responder),
		// Admin
		ReloadRulesHandler: handlers.NewReloadRulesHandler(di.Logger, pipeline, c.RedisPublisher, c.InstanceID),
		GetVersionHandler:  handlers.NewGetVersionHandler(di.Logger),
	}

	c.WSHandlerTransport = &wsHandlers.HandlerTransportDTO{
		ConsultHandler: wsHandlers.NewConsultHandler(di.Logger, c.Responder, wsHandlers.Config{
			PongWait:   config.Duration(cfg.WebSocket.PongWait, 0),
			PingPeriod: config.Duration(cfg.WebSocket.PingPeriod, 0),
		}),
	}

	return c, nil
}

// Start runs the background workers: rule file watching, the peer reload
// listener and the in-memory session sweeper.
func (c *Container) Start(ctx context.Context) {
	if c.Watcher != nil {
		if err := c.Watcher.Start(ctx); err != nil {
			c.logger.WithError(err).Warn("failed to watch safety rule file")
		}
	}
	if c.RedisListener != nil {
		go c.RedisListener.Listen(ctx, channel.SafetyEvents)
	}
	if c.memorySweep != nil {
		go c.sweepSessions(ctx)
	}
}

func (c *Container) sweepSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopSweeping:
			return
		case <-ticker.C:
			if n := c.memorySweep.Sweep(); n > 0 {
				c.logger.WithField("expired", n).Debug("expired conversation sessions removed")
			}
		}
	}
}

func (c *Container) Close() error {
	select {
	case <-c.stopSweeping:
	default:
		close(c.stopSweeping)
	}
	if c.Watcher != nil {
		c.Watcher.Stop()
	}
	if c.Cache != nil {
		return c.Cache.RedisClient().Close()
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/db"
	"github.com/ignatzorin/proposal-backend/internal/domain/repository"
	"github.com/ignatzorin/proposal-backend/internal/goroutine"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/cache"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/events"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/proposal-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/handler"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/middleware"
	"github.com/ignatzorin/proposal-backend/internal/interface/http/router"
	"github.com/ignatzorin/proposal-backend/internal/logger"
	"github.com/ignatzorin/proposal-backend/internal/projection"
	"github.com/ignatzorin/proposal-backend/internal/service"
	"github.com/ignatzorin/proposal-backend/internal/usecase/proposal"
	"github.com/ignatzorin/proposal-backend/internal/usecase/template"
	"github.com/ignatzorin/proposal-backend/internal/usecase/version"
	"github.com/ignatzorin/proposal-backend/internal/ws"
)

// repositories: хранилище, выбранное по STORE_DRIVER.
type repositories struct {
	proposals repository.ProposalRepository
	versions  repository.VersionRepository
	templates repository.TemplateRepository
	conn      *sqlx.DB
}

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}
	mainLog := logger.Component("main")

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		mainLog.WithError(err).Fatal("не удалось подготовить хранилище")
	}
	if repos.conn != nil {
		defer safeClose(repos.conn)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.ShareLinkSecret, cfg.AccessTokenTTL, cfg.ShareBaseURL)
	checks := map[string]handler.Pinger{}
	if repos.conn != nil {
		checks["database"] = repos.conn
	}

	// Вебсокеты.
	hub := ws.NewHub(ctx)
	go hub.Run()

	// События: исполнитель получает их по вебсокету, внешние системы через RabbitMQ.
	publishers := events.Fanout{events.NewWSNotifier(hub)}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			mainLog.WithError(err).Fatal("не удалось подключиться к брокеру")
		}
		defer amqpPublisher.Close()
		publishers = append(publishers, amqpPublisher)
		checks["amqp"] = amqpPinger{amqpPublisher}
	}
	publisher := events.NewAsync(publishers, 5*time.Second)

	// Redis общий для кэша просмотра и счётчиков лимита запросов.
	var (
		reviews     cache.ReviewCache
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient, err = cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			mainLog.WithError(err).Fatal("не удалось подключиться к Redis")
		}
		defer redisClient.Close()
		reviews = cache.NewRedisCache(redisClient)
		checks["redis"] = redisPinger{redisClient}
	} else {
		memoryCache := cache.NewMemoryCache(time.Minute)
		defer memoryCache.Close()
		reviews = memoryCache
	}

	rateLimitStore, err := middleware.NewRateLimitStore(redisClient)
	if err != nil {
		mainLog.WithError(err).Fatal("не удалось подготовить лимит запросов")
	}

	templates, err := projection.DefaultRegistry(cfg.DefaultTemplate)
	if err != nil {
		mainLog.WithError(err).Fatal("не удалось подготовить шаблоны")
	}

	// Use cases.
	getProposal := proposal.NewGetProposalUseCase(repos.proposals)
	lifecycle := projection.Lifecycle{
		Get:    getProposal,
		Sign:   proposal.NewSignProposalUseCase(repos.proposals, publisher),
		Accept: proposal.NewAcceptProposalUseCase(repos.proposals, publisher),
		Reject: proposal.NewRejectProposalUseCase(repos.proposals, publisher),
	}

	handlers := router.Handlers{
		Health: handler.NewHealthHandler(checks),
		Proposals: handler.NewProposalHandler(handler.ProposalUseCases{
			Create:        proposal.NewCreateProposalUseCase(repos.proposals, repos.templates),
			Get:           getProposal,
			List:          proposal.NewListProposalsUseCase(repos.proposals),
			UpdateDetails: proposal.NewUpdateDetailsUseCase(repos.proposals),
			SaveDocument:  proposal.NewSaveDocumentUseCase(repos.proposals),
			Delete:        proposal.NewDeleteProposalUseCase(repos.proposals),
			Send:          proposal.NewSendProposalUseCase(repos.proposals, tokenManager, publisher),
			Duplicate:     proposal.NewDuplicateProposalUseCase(repos.proposals),
		}, reviews),
		Versions: handler.NewVersionHandler(getProposal,
			version.NewListVersionsUseCase(repos.proposals, repos.versions),
			version.NewRestoreVersionUseCase(repos.proposals, repos.versions),
		),
		Templates: handler.NewTemplateHandler(handler.TemplateUseCases{
			Create: template.NewCreateTemplateUseCase(repos.templates, repos.proposals),
			Update: template.NewUpdateTemplateUseCase(repos.templates),
			Get:    template.NewGetTemplateUseCase(repos.templates),
			List:   template.NewListTemplatesUseCase(repos.templates),
			Delete: template.NewDeleteTemplateUseCase(repos.templates),
		}),
		Reviews: handler.NewReviewHandler(tokenManager, getProposal, lifecycle, templates, reviews, cfg.ReviewCacheTTL),
		WS:      handler.NewWSHandler(hub, tokenManager, cfg.AllowedOrigins),
	}

	engine := router.SetupRouter(cfg, handlers, tokenManager, rateLimitStore)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLog.WithError(err).Error("ошибка остановки http сервера")
		}
	}()

	mainLog.WithFields(logrus.Fields{
		"port":     cfg.HTTPPort,
		"store":    cfg.StoreDriver,
		"template": templates.Default(),
	}).Info("HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		mainLog.WithError(err).Fatal("сервер завершился с ошибкой")
	}

	// Дожидаемся фоновой доставки событий.
	goroutine.Wait()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Component("main").Warn("данные хранятся в памяти и пропадут при перезапуске")
		store := memory.NewStore()
		return &repositories{
			proposals: store.Proposals,
			versions:  store.Versions,
			templates: store.Templates,
		}, nil
	}

	// Подключение к базе и миграции.
	conn, err := db.NewPostgresWithPool(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(ctx, conn, cfg.MigrationsPath); err != nil {
		safeClose(conn)
		return nil, err
	}

	return &repositories{
		proposals: persistence.NewProposalRepositoryAdapter(conn),
		versions:  persistence.NewVersionRepositoryAdapter(conn),
		templates: persistence.NewTemplateRepositoryAdapter(conn),
		conn:      conn,
	}, nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

type amqpPinger struct {
	publisher *events.AMQPPublisher
}

func (p amqpPinger) PingContext(context.Context) error {
	if !p.publisher.IsConnected() {
		return errors.New("соединение с брокером закрыто")
	}
	return nil
}

// safeClose закрывает соединение с базой.
func safeClose(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Component("main").WithError(err).Error("ошибка закрытия базы")
	}
}

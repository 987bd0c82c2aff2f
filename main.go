package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"subtitle-credit/domain/repository"
	"subtitle-credit/infrastructure/cache"
	"subtitle-credit/infrastructure/clients/paystack"
	"subtitle-credit/infrastructure/clients/subtitle"
	"subtitle-credit/infrastructure/clients/videoinfo"
	youtubeclient "subtitle-credit/infrastructure/clients/youtube"
	"subtitle-credit/infrastructure/configuration"
	"subtitle-credit/infrastructure/logger"
	"subtitle-credit/infrastructure/persistence"
	"subtitle-credit/infrastructure/pubsub"
	"subtitle-credit/infrastructure/realtime"
	"subtitle-credit/infrastructure/servicebus"
	httpHandler "subtitle-credit/interfaces/http"
	"subtitle-credit/interfaces/middleware"
	"subtitle-credit/server"
	"subtitle-credit/usecase"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ledgerStores are the SQL repositories for the selected vendor.
type ledgerStores struct {
	db       *sql.DB
	users    repository.IUser
	ledger   repository.ICreditLedger
	payments repository.IPayment
}

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	if err := run(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(1)
	}
}

func run() error {
	// OS env keeps precedence over the files.
	if loaded := configuration.LoadEnvFromFile("config.env", ".env"); len(loaded) > 0 {
		logger.GetLogger().WithField("files", loaded).Info("Loaded env files")
		configuration.Reload()
	}
	cfg := configuration.C
	if err := requireSecrets(cfg); err != nil {
		return err
	}

	if os.Getenv("ENV") == "production" || os.Getenv("ENV") == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.RegisterValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	stores, err := InitiateDatabase()
	if err != nil {
		return err
	}
	defer stores.db.Close()

	mysqlDb, err := persistence.NewRepositories()
	if err != nil {
		return fmt.Errorf("webhook event store: %w", err)
	}
	webhookRepository := persistence.NewWebhookEventRepository(mysqlDb)

	mongoDb, err := persistence.NewMongoDb(ctx)
	if err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	defer func() { _ = mongoDb.Disconnect(context.Background()) }()
	jobRepository := persistence.NewVideoJobRepository(mongoDb, cfg.Database.Mongo.Name)
	if err := jobRepository.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("video job indexes: %w", err)
	}
	logger.GetLogger().Info("Database connected.")

	redisClient, err := cache.NewCache(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - using in-process job sequence and rate limiter")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	bus, stopBus := initiatePublisher(ctx, cfg)
	defer stopBus()
	eventHub := realtime.NewHub()
	events := usecase.NewFanout(bus, eventHub)

	videoInfo := videoinfo.NewClient(cfg.VideoService.BaseURL, cfg.VideoService.APIKey, seconds(cfg.VideoService.TimeoutSeconds))
	if cfg.YouTube.APIKey != "" {
		yt, err := youtubeclient.NewClient(ctx, cfg.YouTube.APIKey)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to initialize YouTube client - YouTube links go to the video service")
		} else {
			videoInfo = youtubeclient.NewRouter(yt, videoInfo)
		}
	}
	dispatcher := subtitle.NewDispatcher(cfg.SubtitleService.BaseURL, cfg.SubtitleService.APIKey, seconds(cfg.SubtitleService.TimeoutSeconds))
	gateway := paystack.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, seconds(cfg.Paystack.TimeoutSeconds))

	pricingConfig, err := usecase.ParsePricingConfig(
		cfg.Pricing.SrtPerMinute,
		cfg.Pricing.MergePerMinute,
		cfg.Pricing.TranslationPerMinute,
		cfg.Pricing.CustomizationPerMinute,
		cfg.Pricing.MinimumCharge,
	)
	if err != nil {
		return err
	}
	signupCredits, err := decimal.NewFromString(cfg.Credits.Signup)
	if err != nil {
		return fmt.Errorf("credits.signup: %w", err)
	}

	videoConfig := usecase.DefaultVideoConfig()
	videoConfig.TokenTTL = time.Duration(cfg.Estimate.TTLMinutes) * time.Minute
	videoConfig.InfoTimeout = seconds(cfg.VideoService.TimeoutSeconds)
	videoConfig.DispatchTimeout = seconds(cfg.SubtitleService.TimeoutSeconds)

	videoUsecase := usecase.NewVideoUsecase(
		videoConfig,
		usecase.NewPricing(pricingConfig),
		usecase.NewTokenCodec(cfg.Estimate.Secret),
		usecase.NewJobIDGenerator(cache.NewJobSequence(redisClient)),
		videoInfo,
		dispatcher,
		stores.ledger,
		jobRepository,
		events,
	)
	paymentUsecase := usecase.NewPaymentUsecase(
		usecase.PaymentConfig{
			SecretKey:   cfg.Paystack.SecretKey,
			CallbackURL: cfg.Paystack.CallbackURL,
			Currency:    cfg.Paystack.Currency,
		},
		gateway,
		stores.payments,
		webhookRepository,
		stores.ledger,
		events,
	)

	healthHandler := httpHandler.NewHealthHandler(map[string]httpHandler.Pinger{
		"sql":   stores.db.PingContext,
		"mongo": func(ctx context.Context) error { return mongoDb.Ping(ctx, nil) },
	})
	router := server.InitiateRouter(
		server.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			AuthSecret:     cfg.App.SecretKey,
			SignupCredits:  signupCredits,
		},
		healthHandler,
		httpHandler.NewVideoHandler(videoUsecase),
		httpHandler.NewPaymentHandler(paymentUsecase),
		httpHandler.NewWebhookHandler(paymentUsecase, videoUsecase, cfg.SubtitleService.CallbackKey),
		eventHub,
		stores.users,
		cache.NewRateLimiter(redisClient, cfg.RateLimit.Max, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute),
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.GetLogger().WithFields(map[string]interface{}{"port": cfg.App.Port, "tls": cfg.App.TLSEnabled}).Info("Starting application")
		var err error
		if cfg.App.TLSEnabled && cfg.App.TLSCertFile != "" && cfg.App.TLSKeyFile != "" {
			err = httpServer.ListenAndServeTLS(cfg.App.TLSCertFile, cfg.App.TLSKeyFile)
		} else {
			if cfg.App.TLSEnabled {
				logger.GetLogger().Error("TLS enabled but cert or key path empty; falling back to HTTP")
			}
			err = httpServer.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.GetLogger().Info("Application shutdown requested")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// InitiateDatabase uses SQL Server in production or when DB_VENDOR=mssql, PostgreSQL otherwise.
func InitiateDatabase() (ledgerStores, error) {
	env := os.Getenv("ENV")
	if os.Getenv("DB_VENDOR") == "mssql" || env == "production" || env == "prod" {
		db, err := persistence.NewMSSQLDB()
		if err != nil {
			logger.GetLogger().WithField("error", err).Error("Cannot connect to MSSQL")
			return ledgerStores{}, err
		}
		if err := persistence.EnsureLedgerSchemaMSSQL(db); err != nil {
			_ = db.Close()
			return ledgerStores{}, fmt.Errorf("ensure ledger schema: %w", err)
		}
		return ledgerStores{
			db:       db,
			users:    persistence.NewUserRepositoryMSSQL(db),
			ledger:   persistence.NewLedgerRepositoryMSSQL(db),
			payments: persistence.NewPaymentRepositoryMSSQL(db),
		}, nil
	}

	db, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot connect to PostgreSQL")
		return ledgerStores{}, err
	}
	if err := persistence.EnsureLedgerSchema(db); err != nil {
		_ = db.Close()
		return ledgerStores{}, fmt.Errorf("ensure ledger schema: %w", err)
	}
	return ledgerStores{
		db:       db,
		users:    persistence.NewUserRepository(db),
		ledger:   persistence.NewLedgerRepository(db),
		payments: persistence.NewPaymentRepository(db),
	}, nil
}

// initiatePublisher prefers Service Bus when a namespace is configured, then Pub/Sub.
// Without either, events only reach the live stream.
func initiatePublisher(ctx context.Context, cfg configuration.Config) (repository.IEventPublisher, func()) {
	if cfg.ServiceBus.Namespace != "" {
		client, err := servicebus.NewServiceBus(cfg.ServiceBus.Namespace)
		if err == nil {
			logger.GetLogger().WithField("queue", cfg.ServiceBus.Queue).Info("Publishing events to Azure Service Bus")
			return servicebus.NewEventPublisher(client, cfg.ServiceBus.Queue), func() { _ = client.Close(context.Background()) }
		}
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available")
	}
	if cfg.Pubsub.ProjectID != "" {
		client, err := pubsub.NewPubSub(ctx, cfg.Pubsub.ProjectID)
		if err == nil {
			logger.GetLogger().WithField("topic", cfg.Pubsub.Topic).Info("Publishing events to Pub/Sub")
			publisher := pubsub.NewEventPublisher(client, cfg.Pubsub.Topic)
			return publisher, func() {
				if p, ok := publisher.(*pubsub.EventPublisher); ok {
					p.Stop()
				}
				_ = client.Close()
			}
		}
		logger.GetLogger().WithField("error", err).Warn("Error while instantiate PubSub")
	}
	logger.GetLogger().Info("No event bus configured - events go to the live stream only")
	return nil, func() {}
}

// requireSecrets refuses to start with an empty signing key, since HMAC over an empty key is forgeable.
func requireSecrets(cfg configuration.Config) error {
	var missing []string
	if cfg.App.SecretKey == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if cfg.Estimate.Secret == "" {
		missing = append(missing, "ESTIMATE_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing signing secrets: %s", strings.Join(missing, ", "))
	}
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

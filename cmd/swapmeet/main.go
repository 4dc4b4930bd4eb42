package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swapmeet/internal/app/commands"
	chatapp "swapmeet/internal/app/handlers/chat"
	tradeapp "swapmeet/internal/app/handlers/trade"
	"swapmeet/internal/app/middleware"
	appoutbox "swapmeet/internal/app/outbox"
	"swapmeet/internal/app/queries"
	"swapmeet/internal/app/schedule"
	appuow "swapmeet/internal/app/uow"
	domaintrade "swapmeet/internal/domain/trade"
	"swapmeet/internal/infra/broker/kafka"
	"swapmeet/internal/infra/config"
	mongostore "swapmeet/internal/infra/db/mongo"
	ginserver "swapmeet/internal/infra/http/gin"
	"swapmeet/internal/infra/notify"
	"swapmeet/internal/infra/obs"
	infraoutbox "swapmeet/internal/infra/outbox"
	"swapmeet/internal/infra/storage/memory"
	"swapmeet/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("ADS_FIXTURES", "")
	if fixturesPath != "" {
		if err := app.loadAdFixtures(ctx, fixturesPath); err != nil {
			logger.Warn("ad fixtures load failed", "error", err, "path", fixturesPath)
		}
	}

	for _, run := range app.workers {
		go run(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	workers  []func(context.Context)
	ads      domaintrade.AdRepository
	ready    func() error
	logger   *slog.Logger
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	app := application{logger: logger, ready: func() error { return nil }}

	var (
		uowFactory  appuow.UoWFactory
		outboxStore appoutbox.Outbox
	)

	if cfg.MongoURI != "" {
		client, err := mongostore.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		messagesRepo := mongostore.NewMessageRepository(client.DB)
		offersRepo := mongostore.NewOfferRepository(client.DB)
		adsRepo := mongostore.NewAdRepository(client.DB)
		uowFactory = mongostore.Factory{
			DB:           client.DB,
			MessagesRepo: messagesRepo,
			OffersRepo:   offersRepo,
			AdsRepo:      adsRepo,
		}
		store := infraoutbox.NewStore(client.DB)
		outboxStore = store
		app.ads = adsRepo
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}

		if len(cfg.KafkaBrokers) > 0 {
			producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
			if err != nil {
				return application{}, fmt.Errorf("kafka producer: %w", err)
			}
			worker := &infraoutbox.Worker{
				Store:       store,
				Producer:    producer,
				Interval:    cfg.OutboxPollInterval,
				TopicPrefix: cfg.KafkaTopicPrefix,
				Backoff:     cfg.RetryBackoff,
			}
			app.workers = append(app.workers, func(ctx context.Context) {
				if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("outbox worker stopped", "error", err)
				}
			})

			relay := &notify.Relay{Log: logger}
			consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "swapmeet-notify", nil, relay)
			if err != nil {
				return application{}, fmt.Errorf("kafka consumer: %w", err)
			}
			topics := []string{cfg.KafkaTopicPrefix + "chat.events.v1", cfg.KafkaTopicPrefix + "trade.events.v1"}
			app.workers = append(app.workers, func(ctx context.Context) {
				if err := consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("notify consumer stopped", "error", err)
				}
			})
		}
	} else {
		logger.Info("MONGO_URI not set, using in-memory storage")
		messagesRepo := memory.NewMessageRepository()
		offersRepo := memory.NewOfferRepository()
		adsRepo := memory.NewAdRepository()
		uowFactory = memory.Factory{
			MessagesRepo: messagesRepo,
			OffersRepo:   offersRepo,
			AdsRepo:      adsRepo,
		}
		outboxStore = memory.NewOutbox()
		app.ads = adsRepo
	}

	idStore := memory.NewIdempotencyStore()
	janitor := &schedule.Janitor{
		Interval: time.Hour,
		Log:      logger,
		Tasks: []schedule.Task{
			schedule.TaskFunc{
				TaskName: "idempotency-purge",
				Fn: func(ctx context.Context, now time.Time) error {
					_, err := idStore.PurgeExpired(ctx, now, cfg.IdempotencyTTL)
					return err
				},
			},
		},
	}
	app.workers = append(app.workers, janitor.Run)

	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, chatapp.SendMessageCommand{}.Key(), &chatapp.SendMessageHandler{
		UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, chatapp.MarkConversationReadCommand{}.Key(), &chatapp.MarkConversationReadHandler{
		UoWFactory: uowFactory,
	})
	commands.RegisterHandler(commandBus, tradeapp.ProposeTradeCommand{}.Key(), &tradeapp.ProposeTradeHandler{
		UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, tradeapp.ResolveOfferCommand{}.Key(), &tradeapp.ResolveOfferHandler{
		UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, tradeapp.FinishTradeCommand{}.Key(), &tradeapp.FinishTradeHandler{
		UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, tradeapp.FileComplaintCommand{}.Key(), &tradeapp.FileComplaintHandler{
		UoWFactory: uowFactory, Outbox: outboxStore, Encoder: encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, chatapp.ListConversationsQuery{}.Key(), &chatapp.ListConversationsHandler{
		UoWFactory: uowFactory,
	})
	queries.RegisterHandler(queryBus, chatapp.HistoryQuery{}.Key(), &chatapp.HistoryHandler{
		UoWFactory: uowFactory,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(selfValidator{}),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	handlers := ginserver.Handlers{
		Chat: ginserver.ChatHandler{
			Commands: commandBusWithMiddleware,
			Queries:  queryBusWithMiddleware,
		},
		Trade: ginserver.TradeHandler{
			Commands: commandBusWithMiddleware,
		},
		AuthMiddleware: ginserver.AuthMiddleware{
			Secret: []byte(cfg.JWTSecret),
			Logger: logger,
		}.Handle,
	}

	uploader, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("media storage unavailable", "error", err)
	} else {
		handlers.Media = ginserver.MediaHandler{Uploader: uploader}
	}

	app.handlers = handlers
	return app, nil
}

type adFixture struct {
	ID       string `json:"id"`
	OwnerID  string `json:"owner_id"`
	Title    string `json:"title"`
	PhotoURL string `json:"photo_url"`
	Status   string `json:"status"`
}

// loadAdFixtures seeds the ad projection. Ads are owned by the ad-management
// subsystem; in a standalone run they arrive from a fixtures file instead.
func (a application) loadAdFixtures(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []adFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	now := time.Now().UTC()
	for _, fx := range fixtures {
		status := domaintrade.AdActive
		if fx.Status != "" {
			parsed, err := domaintrade.ParseAdStatus(fx.Status)
			if err != nil {
				a.logger.Warn("skipping fixture with bad status", "ad_id", fx.ID, "status", fx.Status)
				continue
			}
			status = parsed
		}
		ad := &domaintrade.Ad{
			ID:        domaintrade.AdID(fx.ID),
			OwnerID:   fx.OwnerID,
			Title:     fx.Title,
			PhotoURL:  fx.PhotoURL,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := a.ads.Save(ctx, ad); err != nil {
			a.logger.Warn("ad fixture save failed", "ad_id", fx.ID, "error", err)
		}
	}
	a.logger.Info("ad fixtures loaded", "count", len(fixtures))
	return nil
}

// selfValidator lets a command or query carry its own shape checks.
type selfValidator struct{}

func (selfValidator) Validate(ctx context.Context, message any) error {
	if v, ok := message.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

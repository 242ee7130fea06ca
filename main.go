// @title CrewTrip API
// @version 1.0
// @description Group trip planning: membership, shared expenses, settlements, activities, chat and flights.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

//go:generate swag init --parseDependency --parseInternal -g main.go -o docs

package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/crewtrip-backend/config"
	"github.com/NomadCrew/crewtrip-backend/db"
	_ "github.com/NomadCrew/crewtrip-backend/docs"
	"github.com/NomadCrew/crewtrip-backend/handlers"
	"github.com/NomadCrew/crewtrip-backend/internal/events"
	"github.com/NomadCrew/crewtrip-backend/internal/store/postgres"
	"github.com/NomadCrew/crewtrip-backend/internal/websocket"
	"github.com/NomadCrew/crewtrip-backend/logger"
	activityservice "github.com/NomadCrew/crewtrip-backend/models/activity/service"
	chatservice "github.com/NomadCrew/crewtrip-backend/models/chat/service"
	expenseservice "github.com/NomadCrew/crewtrip-backend/models/expense/service"
	flightservice "github.com/NomadCrew/crewtrip-backend/models/flight/service"
	settlementservice "github.com/NomadCrew/crewtrip-backend/models/settlement/service"
	tripservice "github.com/NomadCrew/crewtrip-backend/models/trip/service"
	userservice "github.com/NomadCrew/crewtrip-backend/models/user/service"
	"github.com/NomadCrew/crewtrip-backend/pkg/countries"
	"github.com/NomadCrew/crewtrip-backend/pkg/pexels"
	"github.com/NomadCrew/crewtrip-backend/router"
	"github.com/NomadCrew/crewtrip-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := connectDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	redisClient := connectRedis(cfg)
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warnw("Failed to close Redis client", "error", err)
		}
	}()

	// Stores
	txManager := postgres.NewTxManager(pool)
	userStore := postgres.NewUserStore(pool)
	tripStore := postgres.NewTripStore(pool)
	memberStore := postgres.NewMemberStore(pool)
	invitationStore := postgres.NewInvitationStore(pool)
	expenseStore := postgres.NewExpenseStore(pool)
	settlementStore := postgres.NewSettlementStore(pool)
	activityStore := postgres.NewActivityStore(pool)
	chatStore := postgres.NewChatStore(pool)
	pollStore := postgres.NewPollStore(pool)
	flightStore := postgres.NewFlightStore(pool)

	// Infrastructure
	publisher := events.NewRedisPublisher(redisClient, events.Config{
		PublishTimeout:   time.Duration(cfg.EventService.PublishTimeoutSeconds) * time.Second,
		SubscribeTimeout: time.Duration(cfg.EventService.SubscribeTimeoutSeconds) * time.Second,
		EventBufferSize:  cfg.EventService.EventBufferSize,
	})

	workerPool := services.NewWorkerPool(cfg.WorkerPool)
	workerPool.Start()

	rateLimitService := services.NewRateLimitService(redisClient)
	emailService := services.NewEmailService(&cfg.Email)

	var evidence services.EvidenceStorage
	if cfg.Storage.Enabled {
		s3Storage, err := services.NewS3EvidenceStorage(context.Background(), cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize evidence storage: %v", err)
		}
		evidence = s3Storage
	} else {
		log.Info("Evidence storage disabled, payment evidence uploads will be rejected")
	}

	images := pexels.NewClient(cfg.ExternalServices.PexelsAPIKey)
	resolver := countries.NewCachedResolver(
		countries.NewClient(cfg.ExternalServices.CountriesBaseURL, &http.Client{Timeout: 10 * time.Second}),
		redisClient,
		time.Duration(cfg.ExternalServices.CountryCacheTTLHours)*time.Hour,
	)

	baseDaily, err := decimal.NewFromString(cfg.Budget.BaseDailyUSD)
	if err != nil {
		log.Fatalf("Invalid base daily budget %q: %v", cfg.Budget.BaseDailyUSD, err)
	}

	// Services
	gate := tripservice.NewMembershipGate(tripStore, memberStore)
	userService := userservice.NewUserService(userStore)
	tripService := tripservice.NewTripService(txManager, tripStore, memberStore, gate, images, workerPool, publisher)
	memberService := tripservice.NewMemberService(txManager, tripStore, memberStore, gate, evidence, publisher)
	invitationService := tripservice.NewInvitationService(
		txManager, tripStore, memberStore, userStore, invitationStore,
		gate, workerPool, emailService, publisher, cfg.Server.FrontendURL,
	)
	budgetService := tripservice.NewBudgetService(gate, memberStore, expenseStore, resolver, baseDaily)
	expenseService := expenseservice.NewExpenseService(txManager, memberStore, userStore, expenseStore, settlementStore, gate, publisher)
	settlementService := settlementservice.NewSettlementService(
		txManager, tripStore, memberStore, userStore, settlementStore, expenseService, gate, publisher,
	)
	activityService := activityservice.NewActivityService(txManager, activityStore, expenseStore, gate, publisher)
	chatService := chatservice.NewChatService(chatStore, gate, publisher)
	pollService := chatservice.NewPollService(pollStore, gate, publisher)
	flightService := flightservice.NewFlightService(flightStore, gate, publisher)

	hub := websocket.NewHub(publisher, tripStore)
	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version)
	healthService.SetActiveConnectionsGetter(hub.GetConnectionCount)

	var nrApp *newrelic.Application
	if cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			log.Warnw("New Relic disabled", "error", err)
			nrApp = nil
		}
	}

	r := router.SetupRouter(router.Dependencies{
		Config:            cfg,
		Users:             userService,
		RateLimiter:       rateLimitService,
		NewRelic:          nrApp,
		HealthHandler:     handlers.NewHealthHandler(healthService),
		UserHandler:       handlers.NewUserHandler(userService),
		TripHandler:       handlers.NewTripHandler(tripService, budgetService),
		MemberHandler:     handlers.NewMemberHandler(memberService, int64(cfg.Storage.MaxUploadMB)<<20),
		InvitationHandler: handlers.NewInvitationHandler(invitationService),
		ExpenseHandler:    handlers.NewExpenseHandler(expenseService),
		SettlementHandler: handlers.NewSettlementHandler(settlementService),
		ActivityHandler:   handlers.NewActivityHandler(activityService),
		ChatHandler:       handlers.NewChatHandler(chatService),
		PollHandler:       handlers.NewPollHandler(pollService),
		FlightHandler:     handlers.NewFlightHandler(flightService),
		WSHandler:         websocket.NewHandler(hub, &cfg.Server, gate),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout := time.Duration(cfg.WorkerPool.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Close sockets first so Shutdown does not wait on hijacked connections.
	if err := hub.Shutdown(ctx); err != nil {
		log.Warnw("WebSocket hub shutdown incomplete", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	if err := workerPool.Shutdown(ctx); err != nil {
		log.Warnw("Worker pool shutdown incomplete", "error", err)
	}
	if err := publisher.Shutdown(ctx); err != nil {
		log.Warnw("Event publisher shutdown incomplete", "error", err)
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}
	log.Info("Server exited")
}

func connectDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL())
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.Database.MaxConnections)
	}
	if life, err := time.ParseDuration(cfg.Database.ConnMaxLife); err == nil {
		poolConfig.MaxConnLifetime = life
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.GetLogger().Infow("Connected to database",
		"host", cfg.Database.Host,
		"name", cfg.Database.Name,
		"maxConns", poolConfig.MaxConns)
	return pool, nil
}

func connectRedis(cfg *config.Config) *redis.Client {
	opts := &redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}
	if cfg.Redis.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

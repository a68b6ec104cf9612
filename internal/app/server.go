// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"campus-service/internal/config"
	"campus-service/internal/db"
	"campus-service/internal/events"
	entitlementHandler "campus-service/internal/handlers/entitlement"
	subscriptionHandler "campus-service/internal/handlers/subscription"
	tierHandler "campus-service/internal/handlers/tier"
	wsHandler "campus-service/internal/handlers/ws"
	"campus-service/internal/middleware"
	"campus-service/internal/pkg/jwt"
	"campus-service/internal/repository/postgres"
	entitlementService "campus-service/internal/service/entitlement"
	"campus-service/internal/service/payment"
	subscriptionService "campus-service/internal/service/subscription"
	tierService "campus-service/internal/service/tier"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.Default()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisCfg := db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	}

	redisClient, err := db.NewRedisClient(redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- JWT Verifier -----
	verifier, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	tierRepo := postgres.NewTierRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)

	// ----- Payment Gateway -----
	var gateway payment.Gateway
	switch s.cfg.PaymentProvider {
	case "stripe":
		if s.cfg.StripeSecretKey == "" {
			return fmt.Errorf("PAYMENT_PROVIDER=stripe requires STRIPE_SECRET_KEY")
		}
		gateway = payment.NewStripeGateway(s.cfg.StripeSecretKey, logger)
	default:
		gateway = payment.NewManualGateway()
	}

	// ----- Event Hub -----
	hub := events.NewHub(logger)
	go hub.Run(ctx)

	// ----- Entitlement Cache -----
	decisionCache := entitlementService.NewRedisDecisionCache(redisClient)

	// ----- Services -----
	tierSvc := tierService.NewTierService(tierRepo, subscriptionRepo, logger)
	subscriptionSvc := subscriptionService.NewSubscriptionService(
		subscriptionRepo,
		tierRepo,
		userRepo,
		dbWrapper,
		gateway,
		s.cfg.PaymentProvider,
		hub,
		decisionCache,
		logger,
	)
	entitlementSvc := entitlementService.NewEntitlementService(
		catalogRepo,
		userRepo,
		subscriptionRepo,
		tierRepo,
		decisionCache,
		logger,
	)

	// ----- Handlers -----
	tierHandlerInst := tierHandler.NewTierHandler(tierSvc)
	subscriptionHandlerInst := subscriptionHandler.NewSubscriptionHandler(subscriptionSvc)
	entitlementHandlerInst := entitlementHandler.NewEntitlementHandler(entitlementSvc)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, s.cfg.WSAllowedOrigins, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		TierHandler:         tierHandlerInst,
		SubscriptionHandler: subscriptionHandlerInst,
		EntitlementHandler:  entitlementHandlerInst,
		WSHandler:           wsHandlerInst,
		AuthMiddleware:      authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}

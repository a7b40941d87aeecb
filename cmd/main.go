package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/wardrobe-api/wardrobe-shop-service/config"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/auth"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/ledger"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/metrics"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/notification"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/refund"
	"github.com/wardrobe-api/wardrobe-shop-service/internal/shop"
	"github.com/wardrobe-api/wardrobe-shop-service/pkg/httpserver"
	"github.com/wardrobe-api/wardrobe-shop-service/pkg/logger"
	"github.com/wardrobe-api/wardrobe-shop-service/pkg/postgres"
)

func main() {
	_ = godotenv.Load()

	log := logger.NewLogger("debug", &logger.MainLogHook{})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configs: %v", err)
	}

	env, err := config.GetEnvironment()
	if err != nil {
		log.Fatalf(err.Error())
	}

	db, err := postgres.Connect(postgres.Config{
		Host:     env.PgHost,
		Port:     env.PgPort,
		Username: env.PgUser,
		Password: env.PgPassword,
		DBName:   env.PgDbName,
		SSLMode:  env.SSLMode,
		TimeZone: env.TimeZone,
	})
	if err != nil {
		log.Fatalf("failed connection to db: %v", err)
	}

	for _, migrate := range []func(*gorm.DB) error{
		auth.RunMigration,
		shop.RunMigration,
		ledger.RunMigration,
		notification.RunMigration,
		refund.RunMigration,
	} {
		if err := migrate(db); err != nil {
			log.Fatalf("failed migrations: %v", err)
		}
	}

	var sessions auth.SessionStore
	if env.RedisAddr != "" {
		redisSessions := auth.NewRedisSessionStore(env.RedisAddr, env.RedisPassword)
		if err := redisSessions.Ping(context.Background()); err != nil {
			log.Fatalf("failed connection to redis: %v", err)
		}
		sessions = redisSessions
		log.Infof("session store: redis")
	} else {
		sessions = auth.NewMemorySessionStore()
		log.Infof("session store: in-memory")
	}
	defer sessions.Close()

	var mailer notification.Mailer
	if env.SMTPHost != "" {
		mailer = notification.NewSMTPMailer(env.SMTPHost, env.SMTPPort, env.SMTPUser, env.SMTPPassword, env.SMTPFrom)
		log.Infof("notification mailer: smtp")
	}

	notificationLog := logger.NewLogger(env.LogLvl, &notification.NotificationLogHook{})
	notificationStorage := notification.NewStorage(db)
	notifier := notification.NewService(notificationStorage, mailer, notificationLog)

	authLog := logger.NewLogger(env.LogLvl, &auth.AuthLogHook{})
	tokens := auth.NewTokenManager(env.JwtSecret,
		time.Duration(cfg.Auth.AccessTokenTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTokenTTLHours)*time.Hour)
	authService := auth.NewService(auth.NewStorage(db), tokens, sessions, authLog)

	shopLog := logger.NewLogger(env.LogLvl, &shop.ShopLogHook{})
	catalogService := shop.NewService(shop.NewStorage(db), notifier, shopLog)

	ledgerLog := logger.NewLogger(env.LogLvl, &ledger.LedgerLogHook{})
	ledgerService := ledger.NewService(ledger.NewStorage(db), notifier, ledgerLog)

	refundLog := logger.NewLogger(env.LogLvl, &refund.RefundLogHook{})
	refundService := refund.NewService(refund.NewStorage(db), notifier, refundLog)

	metrics.Init()

	router := gin.New()
	router.Use(gin.Recovery(), metrics.RequestID(), metrics.Middleware())
	router.GET("/metrics", metrics.Handler())

	authHandler := auth.NewHandler(authService, authLog)
	authHandler.Register(router)
	authMiddleware := authHandler.Middleware()

	shop.NewHandler(catalogService, shopLog).Register(router, authMiddleware)
	ledger.NewHandler(ledgerService, ledgerLog).Register(router, authMiddleware)
	refund.NewHandler(refundService, refundLog).Register(router, authMiddleware)
	notification.NewHandler(notifier, notificationLog).Register(router, authMiddleware)

	server := new(httpserver.Server)

	go func() {
		if err := server.Run(cfg.Server.Port, router); err != nil {
			log.Fatalf("failed running server: %v", err)
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	oscall := <-interrupt
	log.Infof("Shutdown server, %s", oscall)

	if err := server.Shutdown(context.Background()); err != nil {
		log.Errorf("Error occured on server shutting down: %v", err)
	}
}

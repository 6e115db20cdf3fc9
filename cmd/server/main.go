package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/campuslink/campuslink/internal/auth"
	"github.com/campuslink/campuslink/internal/config"
	"github.com/campuslink/campuslink/internal/database"
	"github.com/campuslink/campuslink/internal/handler"
	"github.com/campuslink/campuslink/internal/middleware"
	"github.com/campuslink/campuslink/internal/queue"
	"github.com/campuslink/campuslink/internal/repository"
	"github.com/campuslink/campuslink/internal/router"
	queue_publisher "github.com/campuslink/campuslink/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	svc := auth.NewService(
		repository.NewUserRepo(db),
		queue_publisher.NewAMQPNotifier(),
		auth.Config{
			JWTSecret:     cfg.JWTSecret,
			SessionTTL:    time.Duration(cfg.SessionTTLHours) * time.Hour,
			ResetTokenTTL: time.Duration(cfg.ResetTTLMin) * time.Minute,
			BcryptCost:    cfg.BcryptCost,
		},
	)

	// Background worker delivering verification/reset tokens.  It runs
	// its own reconnect loop and only returns on a setup failure.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), config.NewRedisClient())
	router.RegisterAuth(e, handler.NewAuthHandler(svc), svc, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

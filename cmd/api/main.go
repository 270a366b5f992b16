package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flashdeck/internal/ai"
	"flashdeck/internal/cache"
	"flashdeck/internal/database"
	"flashdeck/internal/logger"
	"flashdeck/internal/server"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	log, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db := database.New()
	if err := database.Migrate(db.DB()); err != nil {
		log.Fatal("running migrations failed", "error", err)
	}

	var notifier cache.Notifier = cache.Noop{}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisNotifier, err := cache.NewRedisNotifier(addr, log)
		if err != nil {
			log.Fatal("connecting to redis failed", "error", err)
		}
		defer redisNotifier.Close()
		notifier = redisNotifier
	} else {
		log.Warn("REDIS_ADDR not set, view invalidation disabled")
	}

	aiClient, err := ai.NewClient(log)
	if err != nil {
		log.Warn("AI generation disabled", "error", err)
		aiClient = ai.Disabled{}
	}

	srv := server.New(db, log, notifier, aiClient)
	srv.RegisterFiberRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	go func() {
		if err := srv.Listen(":" + port); err != nil {
			log.Fatal("server stopped", "error", err)
		}
	}()
	log.Info("server started", "port", port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	if err := db.Close(); err != nil {
		log.Error("closing database failed", "error", err)
	}
}

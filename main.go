package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/krishkalaria12/car-vault/auth"
	"github.com/krishkalaria12/car-vault/config"
	"github.com/krishkalaria12/car-vault/database"
	"github.com/krishkalaria12/car-vault/handlers"
	"github.com/krishkalaria12/car-vault/models"
	"github.com/krishkalaria12/car-vault/router"
	"github.com/krishkalaria12/car-vault/store"
	"github.com/krishkalaria12/car-vault/uploads"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("close database", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, &models.User{}, &models.Car{}); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	objects, err := uploads.NewGCSStore(context.Background(), cfg.GCSBucket)
	if err != nil {
		logger.Fatal("create object store", zap.Error(err))
	}
	defer objects.Close() //nolint:errcheck

	authSvc := auth.NewService(cfg, db)

	// Log session changes; the notifier drops stale events for slow
	// consumers, so this never backs up a login.
	go func() {
		for ev := range authSvc.Notifier().Subscribe() {
			logger.Info("session change",
				zap.String("user", ev.UserID),
				zap.Bool("signedIn", ev.SignedIn),
				zap.Time("at", ev.At))
		}
	}()

	carStore := store.NewCarStore(db, logger, cfg.IsDevelopment())

	authHandler := handlers.NewAuthHandler(authSvc, logger)
	carHandler := handlers.NewCarHandler(carStore, objects, logger)

	app := fiber.New()
	router.SetupRoutes(app, authHandler, carHandler, authSvc)

	logger.Info("server listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

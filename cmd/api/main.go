package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/bakery-promotion-engine/internal/config"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/handler"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/repository"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/service"
	"github.com/fairyhunter13/bakery-promotion-engine/internal/validator"
	"github.com/fairyhunter13/bakery-promotion-engine/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.ConnectRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      "Bakery Promotion Engine",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())

	validate := validator.New()

	promoRepo := repository.NewPromotionRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)
	stockRepo := repository.NewStockRepository(pool)
	packRepo := repository.NewPackRepository(pool)
	zoneRepo := repository.NewDeliveryZoneRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)

	promoService := service.NewPromotionService(promoRepo, usageRepo)
	stockService := service.NewStockService(pool, stockRepo, settingsRepo)
	packService := service.NewPackService(packRepo, stockRepo, settingsRepo)
	checkoutService := service.NewCheckoutService(pool, service.CheckoutRepositories{
		Promotions: promoRepo,
		Usage:      usageRepo,
		Stock:      stockRepo,
		Packs:      packRepo,
		Zones:      zoneRepo,
		Settings:   settingsRepo,
	}, cfg.Checkout.Timeout())

	handler.RegisterRoutes(app, handler.Handlers{
		Health:     handler.NewHealthHandler(pool),
		Promotions: handler.NewPromotionHandler(promoService, validate),
		Checkout:   handler.NewCheckoutHandler(checkoutService, validate),
		Stock:      handler.NewStockHandler(stockService, validate),
		Settings:   handler.NewSettingsHandler(stockService, validate),
		Packs:      handler.NewPackHandler(packService, validate),
	})

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// In-flight confirmations finish before the pool goes away.
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

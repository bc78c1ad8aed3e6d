package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/madstore/madstore-api/internal/cache"
	h "github.com/madstore/madstore-api/internal/http"
	"github.com/madstore/madstore-api/internal/notifier"
	"github.com/madstore/madstore-api/internal/payment"
	"github.com/madstore/madstore-api/internal/repository"
	"github.com/madstore/madstore-api/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Config struct {
	HTTPPort            string
	DB                  repository.Credentials
	RedisAddr           string
	KafkaBroker         string
	StripeSecretKey     string
	StripeWebhookSecret string
	FrontendBaseURL     string
	DeliveryCharge      decimal.Decimal
	Currency            string
	RequestTimeout      time.Duration
	ShutdownTimeout     time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		DB: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "madstore"),
			MigrationsDirPath: getEnv("MIGRATIONS_DIR", "migrations"),
		},
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker:         getEnv("KAFKA_BROKER", "localhost:9092"),
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		FrontendBaseURL:     getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		DeliveryCharge:      getEnvDecimal("DELIVERY_CHARGE", decimal.New(28000, -2)),
		Currency:            getEnv("CURRENCY", "inr"),
		RequestTimeout:      30 * time.Second,
		ShutdownTimeout:     10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	repo, err := repository.NewRepository(&cfg.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer repo.Close()

	if err := repo.RunMigrations(&cfg.DB); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	cartCache := cache.NewRedisCache(redisClient)

	orderNotifier := notifier.NewKafkaNotifier(cfg.KafkaBroker)
	defer orderNotifier.Close()

	gateway := payment.NewStripeGateway(payment.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	})

	checkoutSvc := service.NewCheckoutService(
		repo, repo, repo,
		gateway,
		orderNotifier,
		cartCache,
		service.CheckoutConfig{
			DeliveryCharge: cfg.DeliveryCharge,
			Currency:       cfg.Currency,
			SuccessURL:     cfg.FrontendBaseURL + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:      cfg.FrontendBaseURL + "/payment/failed",
		},
	)
	cartSvc := service.NewCartService(repo, repo, cartCache)

	checkoutHandler := h.NewCheckoutHandler(checkoutSvc, cfg.RequestTimeout)
	webhookHandler := h.NewWebhookHandler(checkoutSvc, cfg.RequestTimeout)
	cartHandler := h.NewCartHandler(cartSvc, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(repo, cfg.RequestTimeout)
	orderHandler := h.NewOrderHandler(repo, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Webhook sits outside the versioned API so the provider URL stays stable.
	r.Post("/webhook", webhookHandler.Handle)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/search", productHandler.Search)
			r.Get("/{slug}", productHandler.GetBySlug)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/{cart_code}", cartHandler.GetCart)
			r.Get("/{cart_code}/stat", cartHandler.GetCartStat)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{item_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{item_id}", cartHandler.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/session", checkoutHandler.CreateSession)
			r.Post("/finalize", checkoutHandler.Finalize)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orderHandler.ListByEmail)
			r.Post("/", checkoutHandler.PlaceOrder)
			r.Get("/{order_id}", orderHandler.Track)
			r.Post("/{order_id}/received", orderHandler.MarkReceived)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

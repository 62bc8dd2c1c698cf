package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/just-smsm/storefront/internal/cart"
	"github.com/just-smsm/storefront/internal/catalog"
	"github.com/just-smsm/storefront/internal/checkout"
	h "github.com/just-smsm/storefront/internal/http"
	"github.com/just-smsm/storefront/internal/identity"
	"github.com/just-smsm/storefront/internal/order"
	"github.com/just-smsm/storefront/internal/order/events"
	"github.com/just-smsm/storefront/internal/payment"
)

type Config struct {
	HTTPPort string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDBName   string
	MigrationsDir    string

	KafkaBrokers []string

	StripeAPIKey        string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	CatalogAddr  string
	IdentityAddr string

	RequestTimeout  time.Duration
	ExternalTimeout time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:         getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		PostgresHost:        getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:        getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:        getEnv("POSTGRES_USER", "storefront"),
		PostgresPassword:    getEnv("POSTGRES_PASSWORD", "storefront"),
		PostgresDBName:      getEnv("POSTGRES_DB", "storefront"),
		MigrationsDir:       getEnv("MIGRATIONS_DIR", "internal/order/migrations"),
		KafkaBrokers:        []string{getEnv("KAFKA_BROKER", "localhost:9092")},
		StripeAPIKey:        getEnv("STRIPE_API_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:4200/success"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:4200/cancel"),
		CatalogAddr:         getEnv("CATALOG_ADDR", "http://localhost:8081"),
		IdentityAddr:        getEnv("IDENTITY_ADDR", "http://localhost:8082"),
		RequestTimeout:      30 * time.Second,
		ExternalTimeout:     5 * time.Second,
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
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return parsed
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Cart storage
	mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	cartRepo := cart.NewMongoRepository(mongoDB)
	if err := cartRepo.CreateIndexes(ctx); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	cartCache := cart.NewRedisCache(redisClient)

	// Order storage
	creds := &order.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDBName,
		MigrationsDirPath: cfg.MigrationsDir,
	}
	orderRepo, err := order.NewPostgresRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Printf("Connected to postgres at %s:%d", cfg.PostgresHost, cfg.PostgresPort)

	// External collaborators
	catalogClient := catalog.NewHTTPClient(cfg.CatalogAddr, cfg.ExternalTimeout)
	identityResolver := identity.NewHTTPResolver(cfg.IdentityAddr, cfg.ExternalTimeout)
	gateway := payment.NewStripeGateway(cfg.StripeAPIKey)

	// Services
	cartService := cart.NewService(cartRepo, cartCache, catalogClient)
	ledger := order.NewLedger(orderRepo)
	checkoutService := checkout.NewService(
		cartService,
		ledger,
		gateway,
		catalogClient,
		identityResolver,
		cfg.CheckoutSuccessURL,
		cfg.CheckoutCancelURL,
	)

	// Payment confirmation pipeline
	publisher := events.NewPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()
	consumer := events.NewConsumer(ledger, cfg.KafkaBrokers...)
	defer consumer.Close()

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	go consumer.Run(consumerCtx)

	// Handlers
	cartHandler := h.NewCartHandler(cartService, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(ledger, cfg.RequestTimeout)
	webhookHandler := h.NewWebhookHandler(cfg.StripeWebhookSecret, publisher)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The webhook authenticates with the gateway signature, not a principal.
	r.Post("/webhooks/stripe", webhookHandler.HandleStripeEvent)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.PrincipalMiddleware(identityResolver))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/", cartHandler.AddItem)
			r.Put("/", cartHandler.UpdateQuantity)
			r.Delete("/", cartHandler.ClearCart)
			r.Delete("/{productId}", cartHandler.RemoveItem)
			r.Post("/pay", checkoutHandler.Pay)
		})

		r.Route("/order", func(r chi.Router) {
			r.Get("/all", ordersHandler.ListAll)
			r.Get("/my", ordersHandler.ListMine)
			r.Get("/awaiting-delivery", ordersHandler.ListAwaitingDelivery)
			r.Get("/delivered", ordersHandler.ListDelivered)
			r.Post("/deliver", ordersHandler.DeliverOrder)
			r.Get("/{id}", ordersHandler.GetOrder)
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
		log.Printf("Storefront API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

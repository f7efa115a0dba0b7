package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopify-agent-gateway/internal/application"
	"shopify-agent-gateway/internal/application/webhook_handlers"
	"shopify-agent-gateway/internal/domain"
	apiinfra "shopify-agent-gateway/internal/infrastructure/api"
	"shopify-agent-gateway/internal/infrastructure/cache"
	"shopify-agent-gateway/internal/infrastructure/metrics"
	"shopify-agent-gateway/internal/infrastructure/repository"
	shopifyinfra "shopify-agent-gateway/internal/infrastructure/shopify"
)

var installScopes = []string{"read_products", "read_orders", "write_draft_orders"}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("No .env file found, relying on environment")
	}

	mongoURI := envOr("MONGODB_URI", "mongodb://localhost:27017")
	mongoDB := envOr("MONGODB_DATABASE", "agent_gateway")
	redisAddr := envOr("REDIS_ADDR", "localhost:6379")
	appURL := envOr("APP_URL", "http://localhost:8080")
	apiVersion := envOr("SHOPIFY_API_VERSION", "2024-10")
	port := envOr("PORT", "8080")

	apiKey := os.Getenv("SHOPIFY_API_KEY")
	apiSecret := os.Getenv("SHOPIFY_API_SECRET")
	if apiKey == "" || apiSecret == "" {
		logger.Fatal().Msg("SHOPIFY_API_KEY and SHOPIFY_API_SECRET are required")
	}

	ctx := context.Background()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(ctx)
	db := mongoClient.Database(mongoDB)

	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	merchantRepo := repository.NewMongoMerchantRepository(db)
	interactionRepo := repository.NewMongoInteractionRepository(db)
	if err := merchantRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create merchant indexes")
	}
	if err := interactionRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create interaction indexes")
	}

	m := metrics.New()

	catalogClient := shopifyinfra.NewClient(apiVersion, logger,
		shopifyinfra.WithErrorCounter(m.UpstreamErrors))

	recorder := application.NewInteractionRecorder(interactionRepo, logger)
	registry := application.NewRegistry()
	dispatcher := application.NewDispatcher(merchantRepo, catalogClient, recorder, registry, logger)

	discoveryCache := cache.NewRedisCache(redisClient, "ucp:doc")
	discoveryService := application.NewDiscoveryService(merchantRepo, registry, discoveryCache, appURL, logger)

	oauth := shopifyinfra.NewOAuth(apiKey, apiSecret, logger)

	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(recorder, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(merchantRepo, interactionRepo, logger))

	handlers := apiinfra.NewHandlers(dispatcher, discoveryService, merchantRepo, interactionRepo, m, logger)
	webhookHandler := apiinfra.NewWebhookHandler(oauth, webhookDispatcher, m, logger)

	states := newStateStore(10 * time.Minute)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())

	r.Post("/mcp/{shop}", handlers.RPC)
	r.Get("/ucp/{shop}", handlers.Discovery)
	r.Post("/webhooks/shopify", webhookHandler.ServeHTTP)

	r.Get("/merchants/{shop}/profile", handlers.GetProfile)
	r.Put("/merchants/{shop}/profile", handlers.UpdateProfile)
	r.Get("/merchants/{shop}/interactions", handlers.Interactions)
	r.Get("/merchants/{shop}/missed-opportunities", handlers.MissedOpportunities)

	r.Get("/auth/shopify", oauthInitHandler(oauth, states, appURL, logger))
	r.Get("/auth/callback", oauthCallbackHandler(oauth, states, merchantRepo, discoveryService, logger))

	logger.Info().Str("port", port).Msg("Starting agent gateway")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// oauthInitHandler starts the install flow for a shop.
func oauthInitHandler(oauth *shopifyinfra.OAuth, states *stateStore, appURL string, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop := r.URL.Query().Get("shop")
		if shop == "" {
			http.Error(w, "shop parameter is required", http.StatusBadRequest)
			return
		}

		stateBytes := make([]byte, 16)
		if _, err := rand.Read(stateBytes); err != nil {
			logger.Error().Err(err).Msg("Failed to generate state")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		state := hex.EncodeToString(stateBytes)
		states.put(state, shop)

		authURL := oauth.AuthorizeURL(shop, installScopes, appURL+"/auth/callback", state)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// oauthCallbackHandler finishes the install: exchanges the code and creates
// the merchant record with a default profile, enabled.
func oauthCallbackHandler(
	oauth *shopifyinfra.OAuth,
	states *stateStore,
	merchants *repository.MongoMerchantRepository,
	discovery *application.DiscoveryService,
	logger zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		shop := r.URL.Query().Get("shop")
		code := r.URL.Query().Get("code")
		state := r.URL.Query().Get("state")
		if shop == "" || code == "" || state == "" {
			http.Error(w, "Missing required parameters", http.StatusBadRequest)
			return
		}

		if expected, ok := states.take(state); !ok || expected != shop {
			http.Error(w, "Invalid state", http.StatusUnauthorized)
			return
		}

		token, err := oauth.ExchangeToken(ctx, shop, code)
		if err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to exchange token")
			http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			return
		}

		merchant := &domain.Merchant{
			Shop:        shop,
			AccessToken: token,
			Scopes:      installScopes,
			Enabled:     true,
			Profile:     domain.DefaultProfile(),
		}
		if err := merchants.Save(ctx, merchant); err != nil {
			logger.Error().Err(err).Str("shop", shop).Msg("Failed to save merchant")
			http.Error(w, "Failed to complete installation", http.StatusInternalServerError)
			return
		}
		discovery.Invalidate(ctx, shop)

		logger.Info().Str("shop", shop).Msg("Merchant installed")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"installed"}`))
	}
}

// stateStore holds OAuth state values for the duration of an install flow.
type stateStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	values map[string]stateEntry
}

type stateEntry struct {
	shop      string
	expiresAt time.Time
}

func newStateStore(ttl time.Duration) *stateStore {
	return &stateStore{ttl: ttl, values: make(map[string]stateEntry)}
}

func (s *stateStore) put(state, shop string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.values {
		if time.Now().After(v.expiresAt) {
			delete(s.values, k)
		}
	}
	s.values[state] = stateEntry{shop: shop, expiresAt: time.Now().Add(s.ttl)}
}

func (s *stateStore) take(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.values[state]
	delete(s.values, state)
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.shop, true
}

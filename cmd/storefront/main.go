package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/pcforge/storefront-client/internal/basket"
	"github.com/pcforge/storefront-client/internal/cache"
	"github.com/pcforge/storefront-client/internal/catalog"
	"github.com/pcforge/storefront-client/internal/config"
	"github.com/pcforge/storefront-client/internal/database"
	"github.com/pcforge/storefront-client/internal/events"
	"github.com/pcforge/storefront-client/internal/handlers"
	"github.com/pcforge/storefront-client/internal/routes"
	"github.com/pcforge/storefront-client/internal/session"
	"github.com/pcforge/storefront-client/pkg/utils"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	// Check cache encryption secret (warn if not set, but don't fail)
	var cipher *utils.Cipher
	if cfg.CacheSecret == "" {
		if cfg.IsProduction() {
			log.Fatal("CACHE_SECRET must be set in production: cached session data would be stored in plain text")
		}
		log.Println("⚠️  WARNING: CACHE_SECRET not set. Cached session data will be stored in plain text.")
		log.Println("   Set it in your environment: CACHE_SECRET=<any-strong-passphrase>")
	} else {
		cipher, err = utils.NewCipher(cfg.CacheSecret)
		if err != nil {
			log.Fatal("Invalid CACHE_SECRET:", err)
		}
		log.Println("✅ Cache encryption configured")
	}

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	rdb, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	store := cache.NewRedisStore(rdb, cipher)
	hub := events.NewHub()

	// Wire the stores. Session owns the gateway; basket and catalog borrow it.
	sess := session.New(cfg.BackendURL, store, hub)
	bsk := basket.New(store, sess, sess.Gateway(), hub)
	sess.AttachBasket(bsk)
	cat := catalog.New(store, sess.Gateway(), hub)

	ctx := context.Background()

	// Restore whatever the cache holds before talking to the network, so the
	// view layer has a usable basket even when the backend is unreachable.
	if err := bsk.LoadForUser(ctx); err != nil {
		log.Printf("Warning: basket restore failed: %v", err)
	}
	if err := sess.Initialize(ctx); err != nil {
		log.Printf("Warning: running in degraded mode: %v", err)
	}
	if err := cat.FetchCatalog(ctx); err != nil {
		log.Printf("Warning: catalog unavailable: %v", err)
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	api := handlers.NewAPI(sess, bsk, cat, hub)
	routes.SetupRoutes(r, api)

	log.Printf("🚀 Storefront client running on :%s (backend %s)", cfg.Port, cfg.BackendURL)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

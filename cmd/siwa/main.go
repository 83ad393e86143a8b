package main

import (
	"log"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"

	"github.com/layer-3/siwa/adapters/events"
	"github.com/layer-3/siwa/adapters/store"
	"github.com/layer-3/siwa/ports"
	"github.com/layer-3/siwa/service"
	"github.com/layer-3/siwa/transport/http"
)

func main() {
	cfg := service.Config{
		Domain:           envOr("SIWA_DOMAIN", "localhost"),
		URI:              envOr("SIWA_URI", "http://localhost:9000"),
		Statement:        os.Getenv("SIWA_STATEMENT"),
		RateLimitEnabled: os.Getenv("SIWA_RATE_LIMIT") != "off",
	}

	var (
		nonces   ports.NonceStore
		sessions ports.SessionStore
		limits   ports.RateLimitStore
		eventPub ports.EventPublisher
	)

	// With REDIS_URL set, state is shared across instances and session
	// events flow over a redis stream. Without it, a single-instance
	// in-memory store is used and events are skipped.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}

		redisClient := redis.NewClient(opts)

		logger := watermill.NewStdLogger(false, false)
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			logger,
		)
		if err != nil {
			log.Fatalf("Failed to create Redis publisher: %v", err)
		}

		redisStore := store.NewRedisStore(redisClient)
		nonces = redisStore.Nonces()
		sessions = redisStore.Sessions()
		limits = redisStore.RateLimits()
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		memStore := store.NewMemoryStore()
		defer memStore.Close()

		nonces = memStore.Nonces()
		sessions = memStore.Sessions()
		limits = memStore.RateLimits()
	}

	authService := service.NewAuthService(cfg, nonces, sessions, limits, eventPub)

	router := http.SetupRouter(authService)

	addr := ":" + envOr("PORT", "9000")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

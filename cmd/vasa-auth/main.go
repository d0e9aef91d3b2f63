package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/auction-man/vasa-auth/internal/adapters/driven/auth"
	"github.com/auction-man/vasa-auth/internal/adapters/driven/oidc"
	"github.com/auction-man/vasa-auth/internal/adapters/driven/postgres"
	redisadapter "github.com/auction-man/vasa-auth/internal/adapters/driven/redis"
	"github.com/auction-man/vasa-auth/internal/adapters/driven/statecodec"
	"github.com/auction-man/vasa-auth/internal/adapters/driving/http"
	"github.com/auction-man/vasa-auth/internal/config"
	"github.com/auction-man/vasa-auth/internal/core/ports/driven"
	"github.com/auction-man/vasa-auth/internal/core/services"
)

var version = "dev"

func main() {
	log.Printf("vasa-auth %s starting", version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize schema (idempotent)
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Upstream identity provider =====
	log.Println("Discovering OIDC provider...")
	provider, err := oidc.New(ctx, oidc.Config{
		IssuerURL:    cfg.OIDCIssuerURL,
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		ExtraScopes:  cfg.OIDCExtraScopes,
		Timeout:      cfg.UpstreamTimeout,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("Failed to set up OIDC provider: %v", err)
	}
	log.Println("OIDC provider ready")

	// ===== Sessions and hashing =====
	sessions, err := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to set up session signing: %v", err)
	}
	hasher, err := auth.NewPersonalNumberHasher(cfg.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to set up personal number hashing: %v", err)
	}

	// ===== Login attempt store (Redis if available, otherwise PostgreSQL) =====
	var attemptStore driven.LoginAttemptStore
	if redisClient != nil {
		attemptStore = redisadapter.NewLoginAttemptStore(redisClient)
		log.Println("Using Redis login attempt store")
	} else {
		attemptStore = postgres.NewLoginAttemptStore(db)
		log.Println("Using PostgreSQL login attempt store")
	}

	// ===== State codec =====
	var codec driven.StateCodec
	switch cfg.StateBinding {
	case config.StateBindingSelf:
		stateKey, err := auth.DeriveKey(cfg.SessionSecret, "state-signing")
		if err != nil {
			log.Fatalf("Failed to derive state signing key: %v", err)
		}
		codec = statecodec.NewSelfEncoded(stateKey, cfg.StateTTL)
		log.Println("Using self-encoded state binding")
	default:
		codec = statecodec.NewStored(attemptStore, cfg.StateTTL)
		log.Println("Using stored state binding")
	}

	// ===== Services =====
	profileStore := postgres.NewProfileStore(db)

	loginService := services.NewLoginService(services.LoginServiceConfig{
		StateCodec:       codec,
		Provider:         provider,
		Profiles:         profileStore,
		Sessions:         sessions,
		Hasher:           hasher,
		AppDomain:        cfg.AppDomain,
		DefaultReturnURL: cfg.DefaultReturnURL,
		StateTTL:         cfg.StateTTL,
		UpstreamTimeout:  cfg.UpstreamTimeout,
		Logger:           logger,
	})
	profileService := services.NewProfileService(profileStore, logger)

	// ===== Expired attempt janitor =====
	go runJanitor(ctx, attemptStore, cfg.CleanupInterval)

	// ===== HTTP server =====
	var redisPinger http.Pinger
	if redisClient != nil {
		redisPinger = redisPingAdapter{redisClient}
	}

	server := http.NewServer(http.Config{
		Host:             "0.0.0.0",
		Port:             cfg.Port,
		Version:          version,
		CookieDomain:     cfg.CookieDomain,
		SessionTTL:       cfg.SessionTTL,
		DefaultReturnURL: cfg.DefaultReturnURL,
		AppOrigin:        "https://" + cfg.AppDomain,
	}, loginService, profileService, sessions, db, redisPinger)

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runJanitor periodically removes expired login attempts. With the Redis
// store this is a no-op since keys expire on their own.
func runJanitor(ctx context.Context, store driven.LoginAttemptStore, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				log.Printf("Login attempt cleanup failed: %v", err)
			}
		}
	}
}

// redisPingAdapter maps go-redis Ping to the server's health interface
type redisPingAdapter struct {
	client *redis.Client
}

func (a redisPingAdapter) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

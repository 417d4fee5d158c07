package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"gita-guru/internal/config"
	"gita-guru/internal/db"
	"gita-guru/internal/email"
	apihttp "gita-guru/internal/http"
	"gita-guru/internal/repository"
	"gita-guru/internal/service"
	"gita-guru/internal/supabase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			fmt.Fprintln(os.Stderr, missing.Error())
			os.Exit(1)
		}
		panic(err)
	}

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	for key, origin := range cfg.Origins {
		logger.Debug("config key resolved", zap.String("key", key), zap.String("source", origin))
	}

	anon, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey,
		supabase.WithTimeout(cfg.ClientTimeout()), supabase.WithLogger(logger))
	if err != nil {
		logger.Fatal("supabase client", zap.Error(err))
	}
	admin, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey,
		supabase.WithTimeout(cfg.ClientTimeout()), supabase.WithLogger(logger))
	if err != nil {
		logger.Fatal("supabase admin client", zap.Error(err))
	}

	var profileRepo repository.ProfileRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		profileRepo = repository.NewPgProfileRepository(pool, cfg.ProfilesTable)
		logger.Info("profiles backed by postgres")
	} else {
		profileRepo = repository.NewRestProfileRepository(admin, cfg.ProfilesTable)
	}

	var (
		sessionStore = service.NewMemorySessionStore()
		loginLimiter = service.NewLoginRateLimiter(cfg.LoginRateWindow(), cfg.LoginRateLimit)
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory sessions", zap.Error(err))
		} else {
			sessionStore = service.NewRedisSessionStore(redisClient)
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, cfg.LoginRateWindow(), cfg.LoginRateLimit)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.SessionSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	if !jwtSvc.Enabled() {
		logger.Warn("session secret not configured, json api disabled")
	}

	authSvc := service.NewAuthService(logger, anon, profileRepo, loginLimiter)
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			authSvc.SetWelcomeSender(sender)
		}
	}
	recordingSvc := service.NewRecordingService(logger, admin, cfg.SupabaseBucket)

	sessions := apihttp.NewSessionManager(logger, sessionStore, cfg.SessionTTL(), cfg.CookieSecure)
	loginHandler := apihttp.NewLoginHandler(logger, authSvc, sessions, cfg.PortalPath)
	portalHandler := apihttp.NewPortalHandler(logger, authSvc, recordingSvc, sessions, cfg.PortalPath)
	apiHandler := apihttp.NewAPIHandler(logger, authSvc, jwtSvc)
	router := apihttp.NewRouter(logger, sessions, loginHandler, portalHandler, apiHandler, jwtSvc, cfg.APIAllowedOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("bucket", cfg.SupabaseBucket))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if level == "debug" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

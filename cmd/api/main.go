package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"mealcart/internal/api"
	"mealcart/internal/config"
	"mealcart/internal/grocery"
	"mealcart/internal/platform/gemini"
	"mealcart/internal/profile"
	"mealcart/internal/recipe"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := sqlx.Connect("postgres", cfg.DB.URL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	groceryStore, err := grocery.NewPostgresStore(db)
	if err != nil {
		logger.Fatal("failed to create grocery store", zap.Error(err))
	}
	profileStore, err := profile.NewPostgresStore(db)
	if err != nil {
		logger.Fatal("failed to create profile store", zap.Error(err))
	}
	recipeStore, err := recipe.NewPostgresStore(db)
	if err != nil {
		logger.Fatal("failed to create recipe store", zap.Error(err))
	}

	var profiles grocery.ProfileSource = profileStore
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := client.Ping(ctx).Err(); err != nil {
			// Profiles still come straight from Postgres without the cache.
			logger.Warn("redis unavailable, profile cache disabled", zap.Error(err))
		} else {
			profiles = profile.NewCachedSource(profileStore, client, cfg.Redis.TTL, logger)
		}
	}

	geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		logger.Fatal("failed to create gemini client", zap.Error(err))
	}

	grocerySvc := grocery.NewService(groceryStore, profiles, logger)
	handler := api.NewHandler(geminiClient, recipeStore, grocerySvc, logger)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	handler.Register(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server exited")
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zcfg.Level = lvl
	return zcfg.Build()
}

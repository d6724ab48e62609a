package main

import (
	"net/http"

	"github.com/MosinFAM/blog-platform/internal/auth"
	"github.com/MosinFAM/blog-platform/internal/cache"
	"github.com/MosinFAM/blog-platform/internal/config"
	"github.com/MosinFAM/blog-platform/internal/db"
	"github.com/MosinFAM/blog-platform/internal/handlers"
	"github.com/MosinFAM/blog-platform/internal/metrics"
	"github.com/MosinFAM/blog-platform/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "prod" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	var store storage.Storage
	if cfg.StorageType == "postgres" {
		if cfg.DatabaseURL == "" {
			logrus.Fatal("DATABASE_URL is not set")
		}
		dbConn, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to DB")
		}
		if err := db.Migrate(dbConn, cfg.Migrations); err != nil {
			logrus.WithError(err).Fatal("Failed to run migrations")
		}
		store = storage.NewPostgresStorage(dbConn)
	} else {
		store = storage.NewMemoryStorage()
	}

	var feedCache cache.Cache
	if cfg.RedisAddr != "" {
		feedCache = cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		feedCache = cache.NewMemoryCache()
	}

	sessions := auth.NewSessions([]byte(cfg.SessionKey), store)
	h := handlers.New(store, feedCache, sessions, metrics.InitMetrics())
	router := h.Router()

	// Настройка CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
	})

	logrus.WithField("addr", cfg.Addr).Info("Server is running")
	if err := http.ListenAndServe(cfg.Addr, c.Handler(router)); err != nil {
		logrus.WithError(err).Fatal("Server stopped")
	}
}

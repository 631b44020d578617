package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"metawall/config"
	"metawall/database"
	"metawall/handlers"
	"metawall/imagehost"
	"metawall/logger"
	"metawall/middleware"
	"metawall/notify"
	"metawall/routes"
	"metawall/store"
	"metawall/token"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// @title           Metawall API
// @version         1.0
// @description     Social wall backend: accounts, follows, posts, likes, comments and image upload.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.IsRelease())

	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Connecting to MongoDB...")
	db, err := database.ConnectWithRetry(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTransactions, 3, 2*time.Second)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.WithField("transactions", db.Transactions).Info("Connected to MongoDB")
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.WithError(err).Error("MongoDB disconnect failed")
		}
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}
	log.Info("MongoDB connected")

	users := store.NewUsers(db)
	subs := store.NewSubscriptions(db)

	images, err := newUploader(cfg)
	if err != nil {
		log.WithError(err).Fatal("Image host misconfigured")
	}

	hub := notify.NewHub()
	go hub.Run(ctx)

	notifier := notify.Multi{hub}
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		notifier = append(notifier, notify.NewPush(subs, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject))
	} else {
		log.Warn("VAPID keys not set, Web Push disabled (run cmd/vapidgen to create a pair)")
	}

	limiter, err := newLimiter(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Rate limiter misconfigured")
	}

	h := &handlers.Handler{
		Users:         users,
		Posts:         store.NewPosts(db),
		Comments:      store.NewComments(db),
		Subscriptions: subs,
		Tokens:        token.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiresDay)*24*time.Hour),
		Images:        images,
		Notifier:      notifier,
		Hub:           hub,
		VAPIDKey:      cfg.VAPIDPublicKey,
		BcryptCost:    cfg.BcryptCost,
	}

	router := routes.SetupRouter(h, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		Limiter:        limiter,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Forced shutdown")
	}
	log.Info("Server stopped")
}

func newUploader(cfg *config.Config) (imagehost.Uploader, error) {
	switch cfg.ImageProvider {
	case "cloudinary":
		return imagehost.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	case "imgur", "":
		if cfg.ImgurClientID == "" {
			return nil, errors.New("IMGUR_CLIENTID must be set")
		}
		return imagehost.NewImgur(imagehost.ImgurConfig{
			ClientID:     cfg.ImgurClientID,
			ClientSecret: cfg.ImgurClientSecret,
			RefreshToken: cfg.ImgurRefreshToken,
			AlbumID:      cfg.ImgurAlbumID,
		}), nil
	default:
		return nil, errors.Errorf("unknown IMAGE_PROVIDER %q", cfg.ImageProvider)
	}
}

// newLimiter returns a Redis-backed limiter when REDIS_URL is set so limits
// hold across instances, otherwise an in-process one. A non-positive limit
// disables rate limiting.
func newLimiter(ctx context.Context, cfg *config.Config) (middleware.Limiter, error) {
	if cfg.RateLimitPerMinute <= 0 {
		return nil, nil
	}
	if cfg.RedisURL == "" {
		return middleware.NewIPRateLimiter(cfg.RateLimitPerMinute, time.Minute), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse REDIS_URL")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}
	log.Info("Rate limiting through Redis")
	return middleware.NewRedisRateLimiter(client, cfg.RateLimitPerMinute, time.Minute), nil
}


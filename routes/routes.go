package routes

import (
	"net/http"
	"time"

	_ "metawall/docs"
	"metawall/handlers"
	"metawall/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Options struct {
	AllowedOrigins []string
	// Limiter is optional; nil disables rate limiting.
	Limiter middleware.Limiter
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func SetupRouter(h *handlers.Handler, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.AccessLog(), middleware.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	if opts.Limiter != nil {
		router.Use(middleware.RateLimit(opts.Limiter))
	}

	router.GET("/health", handlers.Health)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	router.POST("/sign_up", h.Signup)
	router.POST("/sign_in", h.Signin)
	router.GET("/vapid-public-key", h.GetVapidPublicKey)
	router.GET("/ws", h.Notifications)

	protected := router.Group("/")
	protected.Use(middleware.Auth(h.Tokens, h.Users))

	// Users
	protected.GET("/user", h.GetUser)
	protected.PATCH("/user/edit", h.EditUser)
	protected.PATCH("/user/update_password", h.UpdatePassword)
	protected.GET("/user/getLikes", h.GetLikes)
	protected.GET("/user/following", h.GetFollowing)
	protected.POST("/user/:id/follow", h.Follow)
	protected.DELETE("/user/:id/unfollow", h.Unfollow)

	// Posts
	protected.GET("/posts", h.GetPosts)
	protected.POST("/post", h.CreatePost)
	protected.GET("/post/:id", h.GetPost)
	protected.POST("/post/:id/like", h.Like)
	protected.DELETE("/post/:id/unlike", h.Unlike)
	protected.POST("/post/:id/comment", h.CreateComment)
	protected.GET("/post/user/:id", h.GetUserPosts)

	protected.POST("/upload", h.UploadImage)
	protected.POST("/subscribe", h.Subscribe)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "無此網站路由",
		})
	})

	return router
}

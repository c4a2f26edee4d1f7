package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/config"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/handlers"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/middleware"
)

// HealthChecker reports the state of the database behind the API.
type HealthChecker interface {
	Health() map[string]string
}

type Server struct {
	cfg     config.Config
	db      HealthChecker
	handler *handlers.Handler
	auth    gin.HandlerFunc
	log     logrus.FieldLogger
}

// NewServer builds the HTTP server. auth guards every route that needs a caller.
func NewServer(cfg config.Config, db HealthChecker, handler *handlers.Handler, auth gin.HandlerFunc, log logrus.FieldLogger) *http.Server {
	s := &Server{
		cfg:     cfg,
		db:      db,
		handler: handler,
		auth:    auth,
		log:     log,
	}

	return &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      otelhttp.NewHandler(s.RegisterRoutes(), "reddit-api"),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(s.log))
	r.Use(cors.New(corsConfig(s.cfg.CORSOrigins)))

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/signup", s.handler.Auth.Signup)
		api.POST("/auth/login", s.handler.Auth.Login)

		// Public reads
		api.GET("/subreddits", s.handler.Subreddit.GetSubreddits)
		api.GET("/subreddits/:id", s.handler.Subreddit.GetSubreddit)
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)
		api.GET("/users/:id", s.handler.User.GetUserProfile)
		api.GET("/users/:id/posts", s.handler.User.GetUserPosts)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(s.auth)
		{
			protected.POST("/auth/logout", s.handler.Auth.Logout)
			protected.GET("/me", s.handler.Auth.GetMe)
			protected.GET("/me/subscriptions", s.handler.Subreddit.GetSubscriptions)
			protected.PUT("/profile", s.handler.User.UpdateProfile)

			protected.POST("/subreddits", s.handler.Subreddit.CreateSubreddit)
			protected.PUT("/subreddits/:id", s.handler.Subreddit.UpdateSubreddit)
			protected.POST("/subreddits/:id/subscribe", s.handler.Subreddit.Subscribe)
			protected.DELETE("/subreddits/:id/subscribe", s.handler.Subreddit.Unsubscribe)
			protected.POST("/subreddits/:id/moderators", s.handler.Subreddit.AddModerator)
			protected.DELETE("/subreddits/:id/moderators/:userId", s.handler.Subreddit.RemoveModerator)
			protected.POST("/subreddits/:id/bans", s.handler.Subreddit.BanUser)
			protected.DELETE("/subreddits/:id/bans/:userId", s.handler.Subreddit.UnbanUser)
			protected.POST("/subreddits/:id/posts", s.handler.Post.CreatePost)

			protected.PUT("/posts/:id", s.handler.Post.UpdatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)

			protected.PUT("/comments/:id", s.handler.Comment.UpdateComment)
			protected.DELETE("/comments/:id", s.handler.Comment.DeleteComment)

			protected.PATCH("/vote", s.handler.Vote.Cast)
			protected.DELETE("/vote/:targetId", s.handler.Vote.Remove)
		}
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	stats := s.db.Health()
	if stats["status"] != "up" {
		c.JSON(http.StatusServiceUnavailable, stats)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// corsConfig allows credentials only for an explicit origin list; browsers
// refuse credentialed responses carrying a wildcard origin.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
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

package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gmprep/simulado-backend/internal/config"
	"github.com/gmprep/simulado-backend/internal/handler"
	"github.com/gmprep/simulado-backend/internal/middleware"
	"github.com/gmprep/simulado-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Question   *handler.QuestionHandler
	Simulation *handler.SimulationHandler
	Progress   *handler.ProgressHandler
	Essay      *handler.EssayHandler
	WS         *handler.WSHandler
	Health     *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.Health.Health)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	public := router.Group("/api/v1")
	public.Use(middleware.PublicCache(300))
	{
		public.GET("/subjects", handlers.Question.Subjects)
		public.GET("/essays/themes", handlers.Essay.Themes)
	}
	router.GET("/api/v1/questions", middleware.NoStore(), handlers.Question.Questions)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(30, time.Minute, middleware.ByClientIP)
	authGroup := router.Group("/api/v1/auth")
	authGroup.Use(middleware.NoStore())
	{
		authGroup.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		authGroup.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		authGroup.POST("/logout", middleware.RequireJWT(auth), handlers.Auth.Logout)
		authGroup.GET("/me", middleware.RequireJWT(auth), handlers.Auth.Me)
	}

	// ─── 2. User Group (JWT) ───────────────────────────────────────────
	answerLimiter := middleware.NewRateLimiter(120, time.Minute, middleware.ByUser)
	userAPI := router.Group("/api/v1")
	userAPI.Use(middleware.RequireJWT(auth), middleware.NoStore())
	{
		userAPI.POST("/questions/answer", answerLimiter.Middleware(), handlers.Question.Answer)

		userAPI.POST("/simulations", handlers.Simulation.Start)
		userAPI.GET("/simulations/:id", handlers.Simulation.State)
		userAPI.PUT("/simulations/:id/answers", answerLimiter.Middleware(), handlers.Simulation.SaveAnswer)
		userAPI.POST("/simulations/:id/submit", handlers.Simulation.Submit)

		userAPI.GET("/progress", handlers.Progress.Dashboard)
		userAPI.DELETE("/progress", handlers.Progress.Clear)
		userAPI.GET("/progress/incorrect", handlers.Progress.Incorrect)
		userAPI.GET("/progress/subjects", handlers.Progress.Subjects)
		userAPI.GET("/progress/simulations", handlers.Progress.Simulations)
		userAPI.GET("/progress/simulations/latest", handlers.Progress.LatestSimulation)

		userAPI.GET("/essays", handlers.Essay.List)
		userAPI.POST("/essays", handlers.Essay.Submit)
	}

	// ─── 3. WebSocket Group (WS Auth) ──────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(auth))
	{
		ws.GET("/simulations/:id/stream", handlers.WS.SimulationStream)
	}

	return router
}

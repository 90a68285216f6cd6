package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quizdeck/quizdeck-backend/internal/config"
	"github.com/quizdeck/quizdeck-backend/internal/handler"
	"github.com/quizdeck/quizdeck-backend/internal/middleware"
	"github.com/quizdeck/quizdeck-backend/internal/response"
	"github.com/quizdeck/quizdeck-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Quiz        *handler.QuizHandler
	Question    *handler.QuestionHandler
	Leaderboard *handler.LeaderboardHandler
	Play        *handler.PlayHandler
	Media       *handler.MediaHandler
	System      *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Serve uploaded profile photos statically with aggressive caching. File
	// names are UUIDs, so contents never change under a URL.
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", "./uploads")
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for credential endpoints (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		// Authenticated profile routes
		authed := auth.Group("")
		authed.Use(
			middleware.RequireAuth(authService),
			middleware.CheckActiveSession(authService),
		)
		{
			authed.GET("/me", handlers.Auth.Me)
			authed.PATCH("/me", handlers.Auth.UpdateProfile)
			authed.POST("/me/photo", handlers.Media.UploadAvatar)
			authed.POST("/logout", handlers.Auth.Logout)
		}
	}

	// ─── 2. Quiz Group (JWT + Active Session) ──────────────────────────
	quizzes := router.Group("/api/v1/quizzes")
	quizzes.Use(
		middleware.RequireAuth(authService),
		middleware.CheckActiveSession(authService),
	)
	{
		quizzes.GET("", handlers.Quiz.List)
		quizzes.POST("", handlers.Quiz.Create)
		quizzes.GET("/:quiz_id", handlers.Quiz.Get)
		quizzes.PATCH("/:quiz_id", handlers.Quiz.Update)
		quizzes.DELETE("/:quiz_id", handlers.Quiz.Delete)
		quizzes.GET("/:quiz_id/payload", handlers.Quiz.GetPlayPayload)

		// Question authoring (owner-only, enforced in the service)
		quizzes.GET("/:quiz_id/questions", handlers.Question.List)
		quizzes.POST("/:quiz_id/questions", handlers.Question.Create)
		quizzes.POST("/:quiz_id/questions/import", handlers.Question.Import)
		quizzes.PUT("/:quiz_id/questions/:question_id", handlers.Question.Update)
		quizzes.DELETE("/:quiz_id/questions/:question_id", handlers.Question.Delete)

		// Results
		quizzes.GET("/:quiz_id/leaderboard", handlers.Leaderboard.Get)
		quizzes.GET("/:quiz_id/attempts", handlers.Leaderboard.ListAttempts)
		quizzes.DELETE("/:quiz_id/attempts", handlers.Leaderboard.ResetAttempts)
		quizzes.DELETE("/:quiz_id/attempts/:attempt_id", handlers.Leaderboard.DeleteAttempt)
	}

	// ─── 3. WebSocket Group (WS Auth via ?token=) ──────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/quizzes/:quiz_id/play", handlers.Play.Stream)
	}

	// ─── 4. System Monitoring ──────────────────────────────────────────
	system := router.Group("/api/v1/system")
	system.Use(middleware.RequireAuth(authService))
	{
		system.GET("/metrics", handlers.System.SystemMetricsSSE)
	}

	return router
}

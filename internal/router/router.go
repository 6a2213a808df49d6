package router

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"velum-go/internal/auth"
	"velum-go/internal/config"
	"velum-go/internal/handlers"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

const defaultLoginRateLimit = 5

// Handlers groups every endpoint handler the API mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Users         *handlers.UserHandler
	Questionnaire *handlers.QuestionnaireHandler
	Tasks         *handlers.TaskHandler
	Assessments   *handlers.AssessmentHandler
	Analysis      *handlers.AnalysisHandler
	Chat          *handlers.ChatHandler
	Settings      *handlers.SettingsHandler
	Logs          *handlers.LogsHandler
	Dashboard     *handlers.DashboardHandler
	Games         *handlers.GameHandler
	Health        *handlers.HealthHandler
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	retry := int(math.Ceil(time.Until(info.ResetTime).Seconds()))
	if retry < 1 {
		retry = 1
	}
	c.Header("Retry-After", fmt.Sprint(retry))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, handlers.ErrorResponse{
		Error:   "rate_limited",
		Message: "Too many requests. Try again later.",
	})
}

// Setup builds the engine with middleware and every /api route.
func Setup(log *zap.Logger, conf config.ServerConfig, tokens *auth.TokenManager, h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(Recovery(log))
	router.Use(RequestLogger(log))
	router.Use(CORS(conf.AllowedOrigins))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
	})
	router.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	})

	limit := conf.LoginRateLimit
	if limit <= 0 {
		limit = defaultLoginRateLimit
	}
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: uint(limit),
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	router.GET("/health", h.Health.Check)

	api := router.Group("/api")
	api.POST("/auth/login", limiter, h.Auth.Login)
	api.POST("/auth/register", limiter, h.Auth.Register)

	authorized := api.Group("")
	authorized.Use(AuthRequired(tokens, log))
	admin := AdminRequired()
	{
		authorized.GET("/auth/me", h.Auth.Me)

		users := authorized.Group("/users")
		{
			users.GET("", admin, h.Users.List)
			users.POST("", admin, h.Users.Create)
			users.PUT("/profile", h.Users.UpdateProfile)
			users.GET("/:id", h.Users.Get)
			users.PUT("/:id", admin, h.Users.Update)
			users.DELETE("/:id", admin, h.Users.Delete)
		}

		questionnaires := authorized.Group("/questionnaire")
		{
			questionnaires.GET("", h.Questionnaire.List)
			questionnaires.GET("/:id", h.Questionnaire.Get)
			questionnaires.POST("", admin, h.Questionnaire.Create)
			questionnaires.POST("/parse", admin, h.Questionnaire.Parse)
			questionnaires.PUT("/:id", admin, h.Questionnaire.Update)
			questionnaires.DELETE("/:id", admin, h.Questionnaire.Delete)
		}

		tasks := authorized.Group("/tasks")
		{
			tasks.GET("/my", h.Tasks.My)
			tasks.GET("", admin, h.Tasks.List)
			tasks.POST("", admin, h.Tasks.Create)
			tasks.DELETE("/:id", admin, h.Tasks.Delete)
		}

		assessments := authorized.Group("/assessments")
		{
			assessments.POST("", h.Assessments.Submit)
			assessments.GET("/my", h.Assessments.My)
		}

		analysis := authorized.Group("/analysis", admin)
		{
			analysis.GET("/stats", h.Analysis.Stats)
			analysis.GET("/user/:id", h.Analysis.UserHistory)
			analysis.GET("/export/:id", h.Analysis.Export)
			analysis.POST("/run", h.Analysis.Run)
			analysis.POST("/analyze/:id", h.Analysis.Analyze)
		}

		chat := authorized.Group("/chat")
		{
			chat.GET("/sessions", h.Chat.ListSessions)
			chat.POST("/sessions", h.Chat.CreateSession)
			chat.GET("/sessions/:id", h.Chat.GetSession)
			chat.DELETE("/sessions/:id", h.Chat.DeleteSession)
			chat.POST("/send", h.Chat.Send)
			chat.POST("/stream", h.Chat.Stream)
		}

		settings := authorized.Group("/settings", admin)
		{
			settings.GET("", h.Settings.List)
			settings.POST("", h.Settings.Update)
			settings.DELETE("", h.Settings.Reset)
		}

		logs := authorized.Group("/logs", admin)
		{
			logs.GET("", h.Logs.List)
			logs.DELETE("/:id", h.Logs.Delete)
			logs.DELETE("", h.Logs.DeleteMany)
		}

		dashboard := authorized.Group("/dashboard", admin)
		{
			dashboard.GET("/stats", h.Dashboard.Stats)
			dashboard.GET("/charts", h.Dashboard.Charts)
		}

		games := authorized.Group("/games")
		{
			games.POST("/score", h.Games.SubmitScore)
			games.POST("/trial", h.Games.SubmitTrial)
			games.GET("/my-scores", h.Games.MyScores)
			games.GET("/leaderboard/:game", h.Games.Leaderboard)
			games.GET("/all", admin, h.Games.All)
		}
	}

	return router
}

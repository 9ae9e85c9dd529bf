package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"sitterboard/internal/domain/user"
	"sitterboard/internal/http/handlers"
	httpmw "sitterboard/internal/http/middleware"
)

type RouterDependencies struct {
	NoticeHandler      *handlers.NoticeHandler
	ApplicationHandler *handlers.ApplicationHandler
	ProfileHandler     *handlers.ProfileHandler
	Resolver           httpmw.Resolver
	Metrics            httpmw.RequestMetrics
	MetricsHandler     http.Handler
	Logger             zerolog.Logger
	RequestTimeout     time.Duration
	CORSOrigins        []string
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) *gin.Engine {
	r := gin.New()
	r.Use(
		httpmw.Logging(deps.Logger),
		httpmw.Recover(),
		httpmw.Metrics(deps.Metrics),
		cors.New(corsConfig(deps.CORSOrigins)),
		httpmw.BodyLimit(maxBodyBytes),
		httpmw.Timeout(deps.RequestTimeout),
	)

	r.GET("/health", handlers.Health)
	if deps.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	authed := r.Group("", httpmw.Authenticate(deps.Resolver))
	authed.GET("/auth/profile", deps.ProfileHandler.Get)

	notices := authed.Group("/notices")
	{
		notices.GET("", deps.NoticeHandler.ListOpen)
		notices.POST("", httpmw.RequireRole(user.RoleParent), deps.NoticeHandler.Create)
		notices.GET("/my-notices", httpmw.RequireRole(user.RoleParent), deps.NoticeHandler.ListMine)
		notices.GET("/:noticeId", deps.NoticeHandler.Get)
		notices.POST("/:noticeId/apply", deps.ApplicationHandler.Apply)
		notices.PUT("/:noticeId/applications/:applicationId", deps.ApplicationHandler.UpdateStatus)
	}
	authed.GET("/applications/my-applications", httpmw.RequireRole(user.RoleStudent), deps.ApplicationHandler.ListMine)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", httpmw.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", httpmw.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

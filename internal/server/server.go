// Package server assembles the HTTP router of the catalog service.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"trophyangler/internal/cache"
	"trophyangler/internal/config"
	"trophyangler/internal/database"
	"trophyangler/internal/metrics"
	"trophyangler/internal/middleware"
	"trophyangler/internal/modules/share"
	"trophyangler/internal/modules/trophy"
	"trophyangler/internal/modules/user"
	jwtsvc "trophyangler/internal/pkg/jwt"
	"trophyangler/internal/repository"
	sharemeta "trophyangler/internal/share"
)

// Deps are the process-scoped handles the router is built on. Cache and
// Metrics may be nil.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Log     *slog.Logger
	JWT     *jwtsvc.Service
	Cache   cache.Cache
	Metrics *metrics.Metrics
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	trophyRepo := repository.NewTrophyRepository(d.DB)
	userRepo := repository.NewUserRepository(d.DB)

	trophyService := trophy.NewService(trophyRepo, trophy.Limits{
		SearchDefault: cfg.Limits.SearchDefault,
		SearchMax:     cfg.Limits.SearchMax,
		ListDefault:   cfg.Limits.ListDefault,
		ListMax:       cfg.Limits.ListMax,
	}, trophy.WithMetrics(d.Metrics))
	trophyHandler := trophy.NewHandler(trophyService)

	shareService := share.NewService(
		trophyService,
		sharemeta.NewGenerator(cfg.Share.PublicBaseURL, cfg.Share.SiteName),
		share.WithCache(d.Cache, cfg.Share.CacheTTL),
		share.WithMetrics(d.Metrics),
	)
	shareHandler := share.NewHandler(shareService)

	userHandler := user.NewHandler(user.NewService(userRepo))

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.Recovery(d.Log),
		middleware.CORS(cfg.CORS.AllowedOrigins, cfg.ProdLike()),
		middleware.Metrics(d.Metrics),
	)

	r.GET("/health", health(d.DB))
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Deadline(cfg.HTTP.RequestTimeout))
	{
		public := v1.Group("")
		public.Use(middleware.OptionalJWTAuth(d.JWT))

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.JWT))

		internal := v1.Group("/internal")
		internal.Use(middleware.InternalTokenAuth(cfg.Internal.SyncToken, cfg.Internal.AllowedIPs, d.Log))

		trophyHandler.RegisterRoutes(public, protected)
		shareHandler.RegisterRoutes(public)
		userHandler.RegisterRoutes(public, internal)
	}

	return r
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.Ping(ctx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

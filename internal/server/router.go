// Package server assembles the admin HTTP API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"marketadmin/internal/config"
	"marketadmin/internal/middleware"
	"marketadmin/internal/moderation"
	"marketadmin/internal/modules/accounts"
	"marketadmin/internal/modules/auth"
	"marketadmin/internal/modules/catalog"
	"marketadmin/internal/modules/providers"
	"marketadmin/internal/observability"
	"marketadmin/internal/pkg/jwt"
	"marketadmin/internal/pkg/response"
	"marketadmin/internal/policy"
	"marketadmin/internal/ratelimit"
	"marketadmin/internal/repository"
)

// Deps bundles what the router needs. Limiter and Metrics may be nil.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *observability.Metrics
	Limiter ratelimit.Limiter
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	limiter := d.Limiter
	if limiter == nil {
		limiter = ratelimit.NopLimiter{}
	}
	metrics := d.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	authCfg := d.Config.Auth

	accountRepo := repository.NewAccountRepository(d.DB)
	providerRepo := repository.NewProviderRepository(d.DB)
	serviceRepo := repository.NewServiceRepository(d.DB)
	categoryRepo := repository.NewCategoryRepository(d.DB)
	tokenRepo := repository.NewRefreshTokenRepository(d.DB)

	tokens := jwt.New(authCfg.JWTSecret, authCfg.JWTAccessTTL)
	enforcer := policy.NewEnforcer(log, metrics)
	machine := moderation.NewMachine(d.DB, enforcer, log, metrics)

	authHandler := auth.NewHandler(
		auth.NewService(accountRepo, tokenRepo, tokens, metrics, log, authCfg.RefreshTokenPepper, authCfg.RefreshTTL),
		authCfg,
	)
	accountsHandler := accounts.NewHandler(accounts.NewService(accountRepo, enforcer, log))
	providersHandler := providers.NewHandler(providers.NewService(providerRepo, machine, enforcer, log))
	catalogHandler := catalog.NewHandler(
		catalog.NewService(serviceRepo, categoryRepo, providerRepo, accountRepo, machine, enforcer, log),
	)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(log),
		middleware.RequestLogger(log),
		middleware.CORS(d.Config.CORSOrigins),
		metrics.GinMiddleware(),
	)

	r.GET("/healthz", health(d.DB))
	r.GET("/metrics", metrics.Handler())

	admin := r.Group("/api/v1/admin")
	{
		authHandler.RegisterPublicRoutes(admin, ratelimit.Middleware(limiter, authCfg.LoginRateWindow, log, metrics))

		protected := admin.Group("")
		protected.Use(middleware.JWTAuth(tokens, accountRepo), middleware.RequireAdminTier())
		{
			authHandler.RegisterProtectedRoutes(protected)
			accountsHandler.RegisterRoutes(protected)
			providersHandler.RegisterRoutes(protected)
			catalogHandler.RegisterRoutes(protected)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})
	return r
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}

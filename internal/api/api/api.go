package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"anveshan/cmd/middleware"
	"anveshan/internal/metrics"
	"anveshan/internal/ratelimit"
	"anveshan/internal/service"
)

type Routers struct {
	Service    service.Service
	Limiter    ratelimit.Limiter
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	AdminToken string
	StaticDir  string
	Log        *zerolog.Logger
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AddAllowHeaders(middleware.AdminTokenHeader, middleware.RequestIDHeader)
	corsCfg.AddExposeHeaders(middleware.RequestIDHeader)

	app.Use(gin.Recovery())
	app.Use(middleware.RequestID())
	app.Use(middleware.LoggingMiddleware(r.Log))
	app.Use(cors.New(corsCfg))

	app.GET("/", r.Service.Health)
	app.GET("/healthz/db", r.Service.DBHealth)
	if r.Gatherer != nil {
		app.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := app.Group("/api")
	if r.Limiter != nil {
		apiGroup.POST("/register", ratelimit.Middleware(r.Limiter, r.Log, r.Metrics), r.Service.Register)
	} else {
		apiGroup.POST("/register", r.Service.Register)
	}

	admin := apiGroup.Group("/registrations", middleware.RequireAdminToken(r.AdminToken, r.Log))
	admin.GET("", r.Service.ListRegistrations)
	admin.DELETE("/:id", r.Service.DeleteRegistration)

	if r.StaticDir != "" {
		app.Static("/site", r.StaticDir)
	}

	return app
}

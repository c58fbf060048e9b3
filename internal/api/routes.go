package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jjm-manufacturing/core1-backend/internal/api/handlers"
	"github.com/jjm-manufacturing/core1-backend/internal/middleware"
	"github.com/jjm-manufacturing/core1-backend/internal/models"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Account   *handlers.AccountHandler
	Product   *handlers.ProductHandler
	Material  *handlers.MaterialHandler
	WorkOrder *handlers.WorkOrderHandler
	Schedule  *handlers.ScheduleHandler
	Forecast  *handlers.ForecastHandler
}

// EngineOptions configures the middleware stack of NewEngine.
type EngineOptions struct {
	ServiceName    string
	TracerProvider trace.TracerProvider
	Metrics        middleware.HTTPMetrics
	AllowedOrigins []string
}

// NewEngine builds a gin engine with recovery, tracing, CORS and request logging.
func NewEngine(logger logrus.FieldLogger, opts EngineOptions) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(logger))

	var otelOpts []otelgin.Option
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelgin.WithTracerProvider(opts.TracerProvider))
	}
	otelOpts = append(otelOpts, otelgin.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/health" && r.URL.Path != "/metrics"
	}))
	router.Use(otelgin.Middleware(opts.ServiceName, otelOpts...))
	router.Use(middleware.SpanEnricher())
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestLogger(logger, opts.Metrics))
	return router
}

// SetupRoutes mounts the back office API. metricsHandler may be nil.
func SetupRoutes(router *gin.Engine, h Handlers, auth *middleware.AuthMiddleware, metricsHandler http.Handler) {
	router.GET("/health", h.Health.HealthCheck)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/logout", auth.RequireAuth(), h.Auth.Logout)
	}

	api := router.Group("/api", auth.RequireAuth())
	{
		// Accounts
		api.GET("/admin-session", h.Account.Session)
		api.GET("/user-list", h.Account.List)
		api.POST("/account/create", middleware.RequireRole(models.RoleAdmin), h.Account.Create)
		api.DELETE("/delete-account", h.Account.Delete)
		api.PUT("/edit-account-email", h.Account.EditEmail)

		// Products
		api.GET("/products/list", h.Product.List)
		api.POST("/product/create", h.Product.Create)
		api.GET("/product/:id", h.Product.Get)
		api.PATCH("/product/:id", h.Product.Update)
		api.DELETE("/product/:id", h.Product.Delete)

		// Production schedules
		api.GET("/prodSched/list", h.Schedule.List)
		api.POST("/prodSched/create", h.Schedule.Create)
		api.GET("/prodSched/:id", h.Schedule.Get)
		api.PATCH("/prodSched/:id", h.Schedule.Update)
		api.DELETE("/prodSched/:id", h.Schedule.Delete)

		// Work orders
		api.GET("/workOrders/list", h.WorkOrder.List)
		api.POST("/workOrders/create", h.WorkOrder.Create)
		api.GET("/workOrders/:id", h.WorkOrder.Get)
		api.PATCH("/workOrders/:id", h.WorkOrder.Update)
		api.DELETE("/workOrders/:id", h.WorkOrder.Delete)

		// Materials
		api.GET("/materials/list", h.Material.List)
		api.POST("/materials/create", h.Material.Create)
		api.GET("/materials/:id", h.Material.Get)
		api.PATCH("/materials/:id", h.Material.Update)
		api.DELETE("/materials/:id", h.Material.Delete)

		// Demand forecasts; the static analysis route wins over :id
		api.GET("/forecast/analysis", h.Forecast.Analysis)
		api.GET("/forecast/list", h.Forecast.List)
		api.POST("/forecast/create", h.Forecast.Create)
		api.GET("/forecast/:id", h.Forecast.Get)
		api.PATCH("/forecast/:id", h.Forecast.Update)
		api.DELETE("/forecast/:id", h.Forecast.Delete)
	}
}

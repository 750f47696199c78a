package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/metrics"
	"github.com/mamadbah2/feedlot/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by the router. A nil Webhook leaves /webhook unmounted.
type Handlers struct {
	Cattle    *handlers.CattleHandler
	Health    *handlers.HealthHandler
	Feed      *handlers.FeedHandler
	Sales     *handlers.SalesHandler
	Dashboard *handlers.DashboardHandler
	Reports   *handlers.ReportHandler
	Webhook   *handlers.WebhookHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware(m))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
	}

	api := r.Group("/api", handlers.RequireCaller(logger.Named("auth")))

	cattle := api.Group("/cattle")
	cattle.GET("", h.Cattle.List)
	cattle.POST("", h.Cattle.Create)
	cattle.POST("/purchase", h.Cattle.Purchase)
	cattle.GET("/by-tag/:tag", h.Cattle.GetByTag)
	cattle.GET("/:id", h.Cattle.Get)
	cattle.PATCH("/:id", h.Cattle.Update)
	cattle.GET("/:id/weights", h.Cattle.WeightHistory)
	cattle.POST("/:id/weights", h.Cattle.RecordWeight)
	cattle.GET("/:id/adg", h.Cattle.AverageDailyGain)
	cattle.GET("/:id/inductions", h.Cattle.Inductions)
	cattle.POST("/:id/inductions", h.Cattle.RecordInduction)
	cattle.GET("/:id/health-metrics", h.Cattle.HealthMetrics)

	health := api.Group("/health")
	health.GET("", h.Health.List)
	health.POST("", h.Health.Create)
	health.GET("/:id", h.Health.Get)
	health.PATCH("/:id", h.Health.Update)

	feed := api.Group("/feed")
	feed.GET("/suppliers", h.Feed.ListSuppliers)
	feed.POST("/suppliers", h.Feed.CreateSupplier)
	feed.GET("/materials", h.Feed.ListRawMaterials)
	feed.POST("/materials", h.Feed.CreateRawMaterial)
	feed.GET("/materials/:id", h.Feed.GetRawMaterial)
	feed.POST("/materials/:id/stock", h.Feed.AdjustStock)
	feed.GET("/materials/:id/purchases", h.Feed.ListPurchases)
	feed.POST("/materials/:id/purchases", h.Feed.RecordPurchase)
	feed.GET("/low-stock", h.Feed.LowStock)
	feed.GET("/usage", h.Feed.ListUsage)
	feed.POST("/usage", h.Feed.RecordUsage)
	feed.GET("/rations", h.Feed.ListRations)
	feed.POST("/rations", h.Feed.CreateRation)
	feed.GET("/rations/:id", h.Feed.GetRation)

	sales := api.Group("/sales")
	sales.GET("", h.Sales.List)
	sales.POST("", h.Sales.Create)
	sales.GET("/summary", h.Sales.Summary)
	sales.GET("/:id", h.Sales.Get)
	sales.GET("/:id/profit", h.Sales.Profit)

	dashboard := api.Group("/dashboard")
	dashboard.GET("", h.Dashboard.Dashboard)
	dashboard.GET("/population", h.Dashboard.Population)
	dashboard.GET("/growth", h.Dashboard.Growth)
	dashboard.GET("/health", h.Dashboard.Health)
	dashboard.GET("/financial", h.Dashboard.Financial)
	dashboard.GET("/feed-efficiency", h.Dashboard.FeedEfficiency)
	dashboard.GET("/activities", h.Dashboard.RecentActivities)
	dashboard.GET("/snapshots", h.Dashboard.Snapshots)

	api.GET("/reports/:type", h.Reports.Download)
	api.POST("/reports/:type/publish", h.Reports.Publish)

	logger.Info("router initialized")
	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// metricsMiddleware labels requests by route template so ids stay out of label values.
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

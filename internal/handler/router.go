package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"discount-service/internal/handler/api"
	"discount-service/internal/handler/middleware"
	"discount-service/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, discountHandler *api.DiscountHandler, registry *prometheus.Registry) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, discountHandler, registry)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, discountHandler *api.DiscountHandler, registry *prometheus.Registry) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		discounts := apiGroup.Group("/discounts")
		{
			addRoutes(discounts, []route{
				{Method: http.MethodPost, Path: "", Handler: discountHandler.Create},
				{Method: http.MethodGet, Path: "", Handler: discountHandler.List},
				{Method: http.MethodPost, Path: "/bulk", Handler: discountHandler.BulkCreate},
				{Method: http.MethodPost, Path: "/auto", Handler: discountHandler.AutoGenerate},
				{Method: http.MethodPost, Path: "/evaluate", Handler: discountHandler.Evaluate},
				{Method: http.MethodPost, Path: "/redeem", Handler: discountHandler.Redeem},
				{Method: http.MethodGet, Path: "/:id", Handler: discountHandler.Get},
				{Method: http.MethodPatch, Path: "/:id", Handler: discountHandler.Update},
				{Method: http.MethodDelete, Path: "/:id", Handler: discountHandler.Delete},
				{Method: http.MethodPatch, Path: "/:id/status", Handler: discountHandler.SetStatus},
				{Method: http.MethodGet, Path: "/:id/usages", Handler: discountHandler.UsageHistory},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}

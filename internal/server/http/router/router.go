package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/config"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/metrics"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/dto"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/handlers"
	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/server/http/middleware"
)

// Params lists the router dependencies.
type Params struct {
	fx.In

	Facade  handlers.StorefrontFacade
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Config  *config.Config
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := dto.RegisterValidators(v); err != nil {
			return nil, err
		}
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.Metrics(p.Metrics))
	engine.Use(cors.New(corsConfig(p.Config)))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))
	engine.Use(middleware.Timeout(p.Config.RequestTimeout))

	otpHandler := handlers.NewOtpHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	paymentHandler := handlers.NewPaymentHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(p.Metrics.Registry, promhttp.HandlerOpts{})))

	api := engine.Group("/api")
	otp := api.Group("/otp")
	otp.POST("/send", otpHandler.Send)
	otp.POST("/verify", otpHandler.Verify)

	orders := api.Group("/orders")
	orders.POST("", middleware.AuthOptional(p.Facade), orderHandler.Create)
	orders.POST("/quote", orderHandler.Quote)
	orders.POST("/track", orderHandler.Track)
	orders.GET("/:code", orderHandler.Get)

	me := api.Group("/me")
	me.Use(middleware.AuthRequired(p.Facade))
	me.GET("/orders", orderHandler.Mine)

	payments := api.Group("/payments/:gateway")
	payments.POST("/create", paymentHandler.Create)
	payments.GET("/return", paymentHandler.Return)
	payments.GET("/ipn", paymentHandler.Notify)
	payments.POST("/ipn", paymentHandler.Notify)

	return engine, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{cfg.FrontendURL}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Encoding", "Authorization"},
		ExposeHeaders:    []string{"Retry-After", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

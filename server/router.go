package server

import (
	"time"

	"subtitle-credit/domain/repository"
	httpHandler "subtitle-credit/interfaces/http"
	"subtitle-credit/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// IEventStream serves the caller's live job and payment events.
type IEventStream interface {
	Serve(c *gin.Context)
}

type RouterConfig struct {
	AllowedOrigins []string
	AuthSecret     string
	SignupCredits  decimal.Decimal
}

func InitiateRouter(
	cfg RouterConfig,
	healthHandler httpHandler.IHealthHandler,
	videoHandler httpHandler.IVideoHandler,
	paymentHandler httpHandler.IPaymentHandler,
	webhookHandler httpHandler.IWebhookHandler,
	eventStream IEventStream,
	userRepository repository.IUser,
	limiter repository.IRateLimiter,
) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/api/credits/bundles", paymentHandler.Bundles)

	webhook := router.Group("/webhook")
	webhook.POST("/paystack", webhookHandler.Paystack)
	webhook.POST("/jobs/:jobId", webhookHandler.JobCallback)

	api := router.Group("/api")
	api.Use(middleware.Auth(userRepository, cfg.AuthSecret, cfg.SignupCredits))
	api.Use(middleware.RateLimit(limiter))

	api.GET("/credits", paymentHandler.Balance)
	api.GET("/events", eventStream.Serve)

	videos := api.Group("/videos")
	{
		videos.POST("/estimate", videoHandler.Estimate)
		videos.POST("/accept", videoHandler.Accept)
		videos.GET("/jobs", videoHandler.ListJobs)
		videos.GET("/jobs/:jobId", videoHandler.GetJob)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", paymentHandler.Initiate)
		payments.GET("", paymentHandler.List)
		payments.GET("/:reference", paymentHandler.GetStatus)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID, "X-RateLimit-Remaining"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			_, ok := allowed[origin]
			return ok
		},
		MaxAge: 12 * time.Hour,
	}
}

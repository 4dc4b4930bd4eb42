package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"swapmeet/internal/infra/config"
	"swapmeet/internal/infra/obs"
)

type ChatHTTP interface {
	List(c *gin.Context)
	History(c *gin.Context)
	Send(c *gin.Context)
	MarkRead(c *gin.Context)
}

type TradeHTTP interface {
	Propose(c *gin.Context)
	Accept(c *gin.Context)
	Reject(c *gin.Context)
	Finish(c *gin.Context)
	Complaint(c *gin.Context)
}

type MediaHTTP interface {
	UploadOfferImage(c *gin.Context)
}

type Handlers struct {
	Chat           ChatHTTP
	Trade          TradeHTTP
	Media          MediaHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Chat != nil {
		api.GET("/chats", h.Chat.List)
		api.GET("/chats/:key/messages", h.Chat.History)
		api.POST("/chats/:key/messages", h.Chat.Send)
		api.POST("/chats/:key/read", h.Chat.MarkRead)
	}
	if h.Trade != nil {
		api.POST("/ads/:id/offers", h.Trade.Propose)
		api.POST("/offers/:id/accept", h.Trade.Accept)
		api.POST("/offers/:id/reject", h.Trade.Reject)
		api.POST("/ads/:id/finish", h.Trade.Finish)
		api.POST("/ads/:id/complaint", h.Trade.Complaint)
	}
	if h.Media != nil {
		api.POST("/media/offer-image", h.Media.UploadOfferImage)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

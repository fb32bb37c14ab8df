package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/herald/internal/http/handler"
	"basegraph.app/herald/internal/http/handler/webhook"
	"basegraph.app/herald/internal/http/middleware"
	"basegraph.app/herald/internal/integration"
	"basegraph.app/herald/internal/service"
)

func SetupRoutes(router *gin.Engine, services *service.Services, registry *integration.Registry) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		webhookHandler := webhook.NewIntegrationWebhookHandler(services.Auth(), registry, services.WebhookMessages())
		WebhookRouter(v1.Group("/external"), webhookHandler)

		reportHandler := handler.NewMessageReportHandler(services.MessageReports())
		MessageRouter(v1.Group("/messages", middleware.BasicAuth(services.Auth())), reportHandler)
	}
}

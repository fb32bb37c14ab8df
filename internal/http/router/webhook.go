package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/herald/internal/http/handler/webhook"
)

func WebhookRouter(router *gin.RouterGroup, handler *webhook.IntegrationWebhookHandler) {
	router.POST("/:integration", handler.HandleEvent)
}

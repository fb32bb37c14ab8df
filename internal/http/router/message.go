package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/herald/internal/http/handler"
)

func MessageRouter(router *gin.RouterGroup, handler *handler.MessageReportHandler) {
	router.POST("/:message_id/report", handler.Report)
}

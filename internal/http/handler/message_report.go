package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"basegraph.app/herald/internal/http/dto"
	"basegraph.app/herald/internal/http/middleware"
	"basegraph.app/herald/internal/service"
)

type MessageReportHandler struct {
	reports service.MessageReportService
}

func NewMessageReportHandler(reports service.MessageReportService) *MessageReportHandler {
	return &MessageReportHandler{reports: reports}
}

func (h *MessageReportHandler) Report(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Error("not authenticated"))
		return
	}

	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("invalid message id"))
		return
	}

	var req dto.ReportMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("report_type is required"))
		return
	}

	err = h.reports.Report(ctx, service.ReportParams{
		Reporter:    user,
		MessageID:   messageID,
		ReportType:  req.ReportType,
		Description: req.Description,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.Success())
	case errors.Is(err, service.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, dto.Error("message not found"))
	case errors.Is(err, service.ErrInvalidReportType),
		errors.Is(err, service.ErrReportDescriptionRequired),
		errors.Is(err, service.ErrReportDescriptionTooLong),
		errors.Is(err, service.ErrReportingDisabled),
		errors.Is(err, service.ErrCannotReportOwnMessage):
		c.JSON(http.StatusBadRequest, dto.Error(err.Error()))
	default:
		slog.ErrorContext(ctx, "failed to report message", "error", err, "message_id", messageID)
		c.JSON(http.StatusInternalServerError, dto.Error("failed to report message"))
	}
}

package handlers

import (
	"net/http"

	"go-do-list/backend/internal/models"
	"go-do-list/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ProcessHandler struct {
	processingService services.ProcessingService
}

func NewProcessHandler(processingService services.ProcessingService) *ProcessHandler {
	return &ProcessHandler{processingService: processingService}
}

// ProcessTask answers a question about a task's attachments. Every response
// carries "success".
func (h *ProcessHandler) ProcessTask(c *gin.Context) {
	var input models.ProcessTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, models.ProcessFailure{Error: "invalid request body"})
		return
	}

	result, err := h.processingService.ProcessTask(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		status, msg := errorStatus(err)
		c.JSON(status, models.ProcessFailure{Success: false, Error: msg})
		return
	}
	c.JSON(http.StatusOK, result)
}

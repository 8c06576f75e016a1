package handlers

import (
	"net/http"

	"go-do-list/backend/internal/models"
	"go-do-list/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type FolderHandler struct {
	folderService services.FolderService
}

func NewFolderHandler(folderService services.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

func (h *FolderHandler) GetFolders(c *gin.Context) {
	folders, err := h.folderService.ListFolders(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

func (h *FolderHandler) CreateFolder(c *gin.Context) {
	var input models.CreateFolderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	folder, err := h.folderService.CreateFolder(c.Request.Context(), input)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, folder)
}

func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid folder id")
		return
	}

	if err := h.folderService.DeleteFolder(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

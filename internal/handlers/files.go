package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"go-do-list/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file limit for boundaries and
// part headers.
const multipartOverhead = 1 << 20

const uploadField = "file"

type FileHandler struct {
	fileService services.FileService
	maxBytes    int64
}

func NewFileHandler(fileService services.FileService, maxBytes int64) *FileHandler {
	return &FileHandler{fileService: fileService, maxBytes: maxBytes}
}

// UploadFile streams the "file" part of a multipart body into the file
// service without buffering the whole upload.
func (h *FileHandler) UploadFile(c *gin.Context) {
	taskID, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid task id")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	reader, err := c.Request.MultipartReader()
	if err != nil {
		badRequest(c, "expected a multipart/form-data body")
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			badRequest(c, "no file part")
			return
		}
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				badRequest(c, fmt.Sprintf("file exceeds the %d byte upload limit", h.maxBytes))
				return
			}
			badRequest(c, "malformed multipart body")
			return
		}
		if part.FormName() != uploadField {
			part.Close()
			continue
		}

		file, err := h.fileService.UploadFile(c.Request.Context(), taskID, part.FileName(), part)
		part.Close()
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusCreated, file)
		return
	}
}

func (h *FileHandler) GetFiles(c *gin.Context) {
	taskID, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid task id")
		return
	}

	files, err := h.fileService.ListFiles(c.Request.Context(), taskID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}

func (h *FileHandler) DownloadFile(c *gin.Context) {
	fileID, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid file id")
		return
	}

	download, err := h.fileService.DownloadFile(c.Request.Context(), fileID)
	if err != nil {
		handleError(c, err)
		return
	}
	defer download.Body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": download.File.Filename})
	c.DataFromReader(http.StatusOK, download.Size, "application/pdf", download.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	fileID, ok := parseID(c.Param("id"))
	if !ok {
		badRequest(c, "invalid file id")
		return
	}

	if err := h.fileService.DeleteFile(c.Request.Context(), fileID); err != nil {
		handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-do-list/backend/internal/apperrors"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "internal server error"

// errorStatus maps a service error onto an HTTP status and a message that is
// safe to show the client. Unclassified errors never leak their text.
func errorStatus(err error) (int, string) {
	msg, classified := apperrors.Message(err)
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusBadRequest, "request body too large"
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, msg
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, msg
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, msg
	case errors.Is(err, apperrors.ErrProcessing) && classified:
		return http.StatusInternalServerError, msg
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// handleError records err on the context for the request logger and writes
// the {"error": ...} body.
func handleError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, msg := errorStatus(err)
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func parseID(raw string) (uint, bool) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipegram-backend/internal/service"
)

// respondError maps service errors onto HTTP responses. Validation and
// conflict outcomes both render as 400 with a descriptive body; not-found
// and permission failures keep their own statuses.
func respondError(c *gin.Context, err error) {
	var fieldErr *service.FieldError

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action"})
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{fieldErr.Field: fieldErr.Err.Error()}})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

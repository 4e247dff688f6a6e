package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// currentUserID returns the authenticated user's ID, or uuid.Nil for
// anonymous requests.
func currentUserID(c *gin.Context) uuid.UUID {
	value, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}

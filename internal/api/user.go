package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"recipegram-backend/internal/middleware"
	"recipegram-backend/internal/models"
	"recipegram-backend/internal/service"
	"recipegram-backend/internal/types"
)

// UserHandler serves user profiles and the follow/subscription endpoints.
type UserHandler struct {
	users   *service.UserService
	follows *service.Relation[models.Follow]
	auth    *service.AuthService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(users *service.UserService, follows *service.Relation[models.Follow], auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, follows: follows, auth: auth}
}

// RegisterRoutes wires the user endpoints.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuth(h.auth), h.ListUsers)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.auth), h.Subscriptions)
		users.GET("/:id", middleware.OptionalAuth(h.auth), h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.auth), h.Unsubscribe)
	}
}

// ListUsers returns all users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	viewer := currentUserID(c)
	out := make([]types.UserResponse, 0, len(users))
	for _, user := range users {
		rendered, err := h.renderUser(c, &user, viewer)
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, rendered)
	}
	c.JSON(http.StatusOK, out)
}

// GetUser returns one user profile.
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	rendered, err := h.renderUser(c, user, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rendered)
}

// Subscribe follows an author. Following yourself or an author you already
// follow is rejected.
func (h *UserHandler) Subscribe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	author, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.follows.Add(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.UserResponse{
		ID:           author.ID,
		Username:     author.Username,
		Email:        author.Email,
		FirstName:    author.FirstName,
		LastName:     author.LastName,
		IsSubscribed: true,
	})
}

// Unsubscribe stops following an author.
func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if _, err := h.users.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	if err := h.follows.Remove(c.Request.Context(), currentUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the caller follows, each with their
// recipes. The recipes_limit query caps recipes per author.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	limit := 0
	if raw := c.Query("recipes_limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipes_limit"})
			return
		}
		limit = n
	}

	subscriptions, err := h.users.Subscriptions(c.Request.Context(), currentUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]types.SubscriptionResponse, 0, len(subscriptions))
	for _, sub := range subscriptions {
		item := types.SubscriptionResponse{
			ID:           sub.Author.ID,
			Username:     sub.Author.Username,
			Email:        sub.Author.Email,
			FirstName:    sub.Author.FirstName,
			LastName:     sub.Author.LastName,
			IsSubscribed: true,
			Recipes:      make([]types.RecipeMiniResponse, 0, len(sub.Recipes)),
			RecipesCount: sub.RecipesCount,
		}
		for _, recipe := range sub.Recipes {
			item.Recipes = append(item.Recipes, types.RecipeMiniResponse{
				ID:          recipe.ID,
				Name:        recipe.Name,
				Image:       recipe.ImageURL,
				CookingTime: recipe.CookingTime,
			})
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

func (h *UserHandler) renderUser(c *gin.Context, user *models.User, viewer uuid.UUID) (types.UserResponse, error) {
	out := types.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
	if viewer != uuid.Nil && viewer != user.ID {
		subscribed, err := h.follows.Exists(c.Request.Context(), viewer, user.ID)
		if err != nil {
			return out, err
		}
		out.IsSubscribed = subscribed
	}
	return out, nil
}

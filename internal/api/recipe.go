package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"recipegram-backend/internal/middleware"
	"recipegram-backend/internal/models"
	"recipegram-backend/internal/service"
	"recipegram-backend/internal/types"
)

// RecipeHandler serves recipe CRUD, the favorite and shopping cart relation
// endpoints, and the shopping list download.
type RecipeHandler struct {
	recipes      *service.RecipeService
	shoppingList *service.ShoppingListService
	favorites    *service.Relation[models.Favorite]
	carts        *service.Relation[models.ShoppingCartEntry]
	follows      *service.Relation[models.Follow]
	images       *service.ImageService
	auth         *service.AuthService
}

// NewRecipeHandler creates a new RecipeHandler instance. The image service
// may be nil when no object storage is configured; inline images are then
// rejected.
func NewRecipeHandler(
	recipes *service.RecipeService,
	shoppingList *service.ShoppingListService,
	favorites *service.Relation[models.Favorite],
	carts *service.Relation[models.ShoppingCartEntry],
	follows *service.Relation[models.Follow],
	images *service.ImageService,
	auth *service.AuthService,
) *RecipeHandler {
	return &RecipeHandler{
		recipes:      recipes,
		shoppingList: shoppingList,
		favorites:    favorites,
		carts:        carts,
		follows:      follows,
		images:       images,
		auth:         auth,
	}
}

// RegisterRoutes wires the recipe endpoints. Reads are public (with optional
// identity for the viewer-relative flags); mutations require a token.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", middleware.OptionalAuth(h.auth), h.ListRecipes)
		recipes.GET("/download_shopping_cart", middleware.AuthMiddleware(h.auth), h.DownloadShoppingCart)
		recipes.GET("/:id", middleware.OptionalAuth(h.auth), h.GetRecipe)
		recipes.POST("", middleware.AuthMiddleware(h.auth), h.CreateRecipe)
		recipes.PUT("/:id", middleware.AuthMiddleware(h.auth), h.ReplaceRecipe)
		recipes.DELETE("/:id", middleware.AuthMiddleware(h.auth), h.DeleteRecipe)
		recipes.POST("/:id/favorite", middleware.AuthMiddleware(h.auth), h.relationAdd(h.favorites))
		recipes.DELETE("/:id/favorite", middleware.AuthMiddleware(h.auth), h.relationRemove(h.favorites))
		recipes.POST("/:id/shopping_cart", middleware.AuthMiddleware(h.auth), h.relationAdd(h.carts))
		recipes.DELETE("/:id/shopping_cart", middleware.AuthMiddleware(h.auth), h.relationRemove(h.carts))
	}
}

// ListRecipes returns recipes, newest first, honoring the optional tag,
// author, favorited, in-cart and limit filters.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	viewer := currentUserID(c)
	filter := service.RecipeFilter{}

	if slugs := c.QueryArray("tags"); len(slugs) > 0 {
		filter.TagSlugs = slugs
	}
	if author := c.Query("author"); author != "" {
		id, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = id
	}
	if c.Query("is_favorited") == "1" && viewer != uuid.Nil {
		filter.FavoritedBy = viewer
	}
	if c.Query("is_in_shopping_cart") == "1" && viewer != uuid.Nil {
		filter.InCartOf = viewer
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = n
	}

	recipes, err := h.recipes.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		rendered, err := h.renderRecipe(c, &recipes[i], viewer)
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, rendered)
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}

// GetRecipe returns one recipe.
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	rendered, err := h.renderRecipe(c, recipe, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rendered)
}

// CreateRecipe composes a new recipe from the payload.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	input, ok := h.bindRecipeInput(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	rendered, err := h.renderRecipe(c, recipe, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rendered)
}

// ReplaceRecipe replaces the recipe's fields and whole association sets.
// Only the author may replace their recipe.
func (h *RecipeHandler) ReplaceRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	existing, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if existing.AuthorID != currentUserID(c) {
		respondError(c, service.ErrForbidden)
		return
	}

	input, ok := h.bindRecipeInput(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Replace(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	rendered, err := h.renderRecipe(c, recipe, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rendered)
}

// DeleteRecipe removes the caller's recipe.
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadShoppingCart renders the aggregated shopping list as a plain-text
// attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	report, err := h.shoppingList.BuildReport(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

// pairRelation is the uniform add/remove contract shared by the favorite and
// shopping cart stores.
type pairRelation interface {
	Add(ctx context.Context, subject, target uuid.UUID) error
	Remove(ctx context.Context, subject, target uuid.UUID) error
}

// relationAdd handles POST /recipes/:id/{favorite,shopping_cart}. The recipe
// must exist (404 otherwise); a duplicate pair is a 400.
func (h *RecipeHandler) relationAdd(relation pairRelation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
			return
		}
		recipe, err := h.recipes.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := relation.Add(c.Request.Context(), currentUserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, types.RecipeMiniResponse{
			ID:          recipe.ID,
			Name:        recipe.Name,
			Image:       recipe.ImageURL,
			CookingTime: recipe.CookingTime,
		})
	}
}

// relationRemove handles DELETE /recipes/:id/{favorite,shopping_cart}.
func (h *RecipeHandler) relationRemove(relation pairRelation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
			return
		}
		if _, err := h.recipes.Get(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		if err := relation.Remove(c.Request.Context(), currentUserID(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// bindRecipeInput parses and validates the payload, storing an inline image
// if one was submitted.
func (h *RecipeHandler) bindRecipeInput(c *gin.Context) (service.RecipeInput, bool) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.RecipeInput{}, false
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return service.RecipeInput{}, false
	}

	imageURL := req.Image
	if service.IsDataURL(req.Image) {
		if h.images == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "inline images are not supported"})
			return service.RecipeInput{}, false
		}
		url, err := h.images.StoreBase64(c.Request.Context(), req.Image)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid image: %v", err)})
			return service.RecipeInput{}, false
		}
		imageURL = url
	}

	ingredients := make([]service.IngredientRef, 0, len(req.Ingredients))
	for _, ref := range req.Ingredients {
		ingredients = append(ingredients, service.IngredientRef{ID: ref.ID, Amount: ref.Amount})
	}

	return service.RecipeInput{
		Name:        strings.TrimSpace(req.Name),
		Text:        req.Text,
		ImageURL:    imageURL,
		CookingTime: req.CookingTime,
		Ingredients: ingredients,
		Tags:        req.Tags,
	}, true
}

// renderRecipe assembles the full response shape, resolving the
// viewer-relative flags.
func (h *RecipeHandler) renderRecipe(c *gin.Context, recipe *models.Recipe, viewer uuid.UUID) (types.RecipeResponse, error) {
	ctx := c.Request.Context()

	out := types.RecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		CreatedAt:   recipe.CreatedAt,
		Author: types.UserResponse{
			ID:        recipe.Author.ID,
			Username:  recipe.Author.Username,
			Email:     recipe.Author.Email,
			FirstName: recipe.Author.FirstName,
			LastName:  recipe.Author.LastName,
		},
		Tags:        make([]types.TagResponse, 0, len(recipe.Tags)),
		Ingredients: make([]types.RecipeIngredientResponse, 0, len(recipe.Ingredients)),
	}

	for _, link := range recipe.Tags {
		out.Tags = append(out.Tags, types.TagResponse{
			ID:    link.Tag.ID,
			Name:  link.Tag.Name,
			Color: link.Tag.Color,
			Slug:  link.Tag.Slug,
		})
	}
	for _, line := range recipe.Ingredients {
		out.Ingredients = append(out.Ingredients, types.RecipeIngredientResponse{
			ID:              line.Ingredient.ID,
			Name:            line.Ingredient.Name,
			MeasurementUnit: line.Ingredient.MeasurementUnit,
			Amount:          line.Amount,
		})
	}

	if viewer != uuid.Nil {
		var err error
		if out.IsFavorited, err = h.favorites.Exists(ctx, viewer, recipe.ID); err != nil {
			return out, err
		}
		if out.IsInShoppingCart, err = h.carts.Exists(ctx, viewer, recipe.ID); err != nil {
			return out, err
		}
		if out.Author.IsSubscribed, err = h.follows.Exists(ctx, viewer, recipe.AuthorID); err != nil {
			return out, err
		}
	}

	return out, nil
}

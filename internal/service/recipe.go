package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"recipegram-backend/internal/models"
)

// IngredientRef is one (ingredient identity, quantity) pair from a recipe
// payload.
type IngredientRef struct {
	ID     uuid.UUID
	Amount float64
}

// RecipeInput carries everything needed to compose a recipe. The ingredient
// and tag lists always describe the complete desired association set.
type RecipeInput struct {
	Name        string
	Text        string
	ImageURL    string
	CookingTime int
	Ingredients []IngredientRef
	Tags        []uuid.UUID
}

// RecipeFilter scopes a listing. Zero values mean "no restriction".
type RecipeFilter struct {
	AuthorID    uuid.UUID
	TagSlugs    []string
	FavoritedBy uuid.UUID
	InCartOf    uuid.UUID
	Limit       int
}

// RecipeService owns recipe composition: creating a recipe together with its
// ingredient and tag associations, and replacing those associations as a
// whole set on update. All mutations run in a single transaction.
type RecipeService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRecipeService creates a new RecipeService instance.
func NewRecipeService(db *gorm.DB, logger *zap.Logger) *RecipeService {
	return &RecipeService{db: db, logger: logger}
}

// Create validates the payload, inserts the recipe row and bulk-inserts its
// association rows atomically. No partial recipe is ever visible.
func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        input.Name,
		Text:        input.Text,
		AuthorID:    authorID,
		ImageURL:    input.ImageURL,
		CookingTime: input.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resolveRefs(tx, input); err != nil {
			return err
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return insertAssociations(tx, recipe.ID, input)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe created",
		zap.String("recipe_id", recipe.ID.String()),
		zap.String("author_id", authorID.String()))

	return s.Get(ctx, recipe.ID)
}

// Replace updates the recipe's scalar fields and swaps the entire ingredient
// and tag association sets for the ones in the payload. Old associations are
// deleted and new ones inserted inside one transaction, so readers see either
// the previous complete set or the new complete set, never a mix. Concurrent
// replaces race at the database; last commit wins.
func (s *RecipeService) Replace(ctx context.Context, recipeID uuid.UUID, input RecipeInput) (*models.Recipe, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := resolveRefs(tx, input); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{
			"name":         input.Name,
			"text":         input.Text,
			"cooking_time": input.CookingTime,
		}
		if input.ImageURL != "" {
			updates["image_url"] = input.ImageURL
		}
		if err := tx.Model(&models.Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
			return err
		}
		return insertAssociations(tx, recipeID, input)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe replaced", zap.String("recipe_id", recipeID.String()))

	return s.Get(ctx, recipeID)
}

// Get retrieves a recipe with its author, ingredients and tags loaded.
func (s *RecipeService) Get(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags.Tag").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// List returns recipes matching the filter, newest first.
func (s *RecipeService) List(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Preload("Tags.Tag").
		Order("recipes.created_at DESC")

	if filter.AuthorID != uuid.Nil {
		query = query.Where("recipes.author_id = ?", filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.Where(
			"recipes.id IN (SELECT recipe_id FROM recipe_tags JOIN tags ON tags.id = recipe_tags.tag_id WHERE tags.slug IN ?)",
			filter.TagSlugs)
	}
	if filter.FavoritedBy != uuid.Nil {
		query = query.Where(
			"recipes.id IN (SELECT recipe_id FROM favorites WHERE user_id = ?)",
			filter.FavoritedBy)
	}
	if filter.InCartOf != uuid.Nil {
		query = query.Where(
			"recipes.id IN (SELECT recipe_id FROM shopping_cart_entries WHERE user_id = ?)",
			filter.InCartOf)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// Delete removes a recipe owned by the given user together with its
// association rows.
func (s *RecipeService) Delete(ctx context.Context, recipeID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if recipe.AuthorID != userID {
			return ErrForbidden
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipeID).Error
	})
}

// validateInput enforces the payload rules that need no database access: each
// ingredient identity at most once, every amount positive, cooking time at
// least one minute. Tag duplicates are intentionally not rejected.
func validateInput(input RecipeInput) error {
	if input.CookingTime < 1 {
		return fieldErr("cooking_time", ErrInvalidCookingTime)
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Ingredients))
	for _, ref := range input.Ingredients {
		if _, dup := seen[ref.ID]; dup {
			return fieldErr("ingredients", ErrDuplicateIngredient)
		}
		seen[ref.ID] = struct{}{}
		if ref.Amount <= 0 {
			return fieldErr("ingredients", ErrInvalidAmount)
		}
	}
	return nil
}

// resolveRefs verifies every referenced ingredient and tag exists in the
// catalog. Runs inside the composition transaction so a catalog miss aborts
// the whole operation.
func resolveRefs(tx *gorm.DB, input RecipeInput) error {
	if len(input.Ingredients) > 0 {
		ids := make([]uuid.UUID, 0, len(input.Ingredients))
		for _, ref := range input.Ingredients {
			ids = append(ids, ref.ID)
		}
		var count int64
		if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return fieldErr("ingredients", ErrUnknownIngredient)
		}
	}
	if len(input.Tags) > 0 {
		unique := make(map[uuid.UUID]struct{}, len(input.Tags))
		for _, id := range input.Tags {
			unique[id] = struct{}{}
		}
		ids := make([]uuid.UUID, 0, len(unique))
		for id := range unique {
			ids = append(ids, id)
		}
		var count int64
		if err := tx.Model(&models.Tag{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return fieldErr("tags", ErrUnknownTag)
		}
	}
	return nil
}

// insertAssociations bulk-inserts the association rows for the payload.
func insertAssociations(tx *gorm.DB, recipeID uuid.UUID, input RecipeInput) error {
	if len(input.Ingredients) > 0 {
		rows := make([]models.RecipeIngredient, 0, len(input.Ingredients))
		for _, ref := range input.Ingredients {
			rows = append(rows, models.RecipeIngredient{
				RecipeID:     recipeID,
				IngredientID: ref.ID,
				Amount:       ref.Amount,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	if len(input.Tags) > 0 {
		rows := make([]models.RecipeTag, 0, len(input.Tags))
		for _, tagID := range input.Tags {
			rows = append(rows, models.RecipeTag{RecipeID: recipeID, TagID: tagID})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}
